package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/dvillacis/puntoventa-api/internal/application/certificates"
	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
)

// maxP12Size límite del archivo .p12 (los certificados reales pesan unos KB).
const maxP12Size = 1 << 20

// CertificateHandler maneja la bóveda de certificados de firma.
type CertificateHandler struct {
	vault *certificates.Vault
}

func NewCertificateHandler(vault *certificates.Vault) *CertificateHandler {
	return &CertificateHandler{vault: vault}
}

// Store recibe el .p12 por multipart (campos: certificate, name, passphrase).
// El binario y la contraseña jamás se devuelven ni se loguean.
// POST /api/certificates
func (h *CertificateHandler) Store(c *fiber.Ctx) error {
	file, err := c.FormFile("certificate")
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "archivo certificate requerido")
	}
	if file.Size > maxP12Size {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "archivo demasiado grande")
	}
	src, err := file.Open()
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "archivo ilegible")
	}
	defer src.Close()
	p12, err := io.ReadAll(io.LimitReader(src, maxP12Size))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "archivo ilegible")
	}

	cert, err := h.vault.Store(c.Context(), certificates.StoreInput{
		CompanyID:  GetCompanyID(c),
		Name:       c.FormValue("name"),
		P12:        p12,
		Passphrase: c.FormValue("passphrase"),
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(certificateResponse(cert))
}

// List lista los certificados de la empresa (solo metadatos).
// GET /api/certificates
func (h *CertificateHandler) List(c *fiber.Ctx) error {
	items, err := h.vault.List(c.Context(), GetCompanyID(c))
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.CertificateResponse, 0, len(items))
	for _, cert := range items {
		out = append(out, certificateResponse(cert))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Activate marca el certificado como el activo de la empresa y desactiva el
// anterior en la misma transacción.
// POST /api/certificates/:id/activate
func (h *CertificateHandler) Activate(c *fiber.Ctx) error {
	if err := h.vault.SetActive(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Deactivate desactiva el certificado sin eliminarlo.
// POST /api/certificates/:id/deactivate
func (h *CertificateHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.vault.Deactivate(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func certificateResponse(cert *entity.Certificate) dto.CertificateResponse {
	return dto.CertificateResponse{
		ID:        cert.ID,
		Name:      cert.Name,
		SubjectCN: cert.SubjectCN,
		NotAfter:  cert.NotAfter,
		Active:    cert.Active,
		CreatedAt: cert.CreatedAt,
	}
}
