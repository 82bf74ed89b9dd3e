package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dvillacis/puntoventa-api/internal/application/auth"
	"github.com/dvillacis/puntoventa-api/internal/application/dto"
)

// AuthHandler maneja login y alta de usuarios.
type AuthHandler struct {
	uc *auth.Usecase
}

func NewAuthHandler(uc *auth.Usecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login autentica y emite el JWT.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	resp, err := h.uc.Login(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(resp)
}

// Register da de alta un usuario en la empresa del token (solo admin).
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	user, err := h.uc.Register(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}
