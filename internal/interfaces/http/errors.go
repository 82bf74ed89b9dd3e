package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/domain"
)

// domainError traduce los errores de dominio al código HTTP y cuerpo estándar.
// Los handlers lo usan como última parada de cualquier error de caso de uso.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMissingTaxRate),
		errors.Is(err, domain.ErrInvalidCredit):
		return respond(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return respond(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return respond(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		return respond(c, fiber.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return respond(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, domain.ErrProductDiscontinued):
		return respond(c, fiber.StatusConflict, "PRODUCT_DISCONTINUED", err.Error())
	case errors.Is(err, domain.ErrNegativeStock):
		return respond(c, fiber.StatusConflict, "NEGATIVE_STOCK", err.Error())
	case errors.Is(err, domain.ErrOverpayment):
		return respond(c, fiber.StatusConflict, "OVERPAYMENT", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		return respond(c, fiber.StatusConflict, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return respond(c, fiber.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrConflict):
		return respond(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrNoActiveCertificate):
		return respond(c, fiber.StatusPreconditionFailed, "NO_ACTIVE_CERTIFICATE", err.Error())
	case errors.Is(err, domain.ErrInvalidKeystore):
		return respond(c, fiber.StatusBadRequest, "INVALID_KEYSTORE", err.Error())
	default:
		return respond(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func respond(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
}
