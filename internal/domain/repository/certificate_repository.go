package repository

import (
	"context"

	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
)

// CertificateRepository acceso a la bóveda de certificados. No existe Delete:
// los certificados históricos se conservan para re-verificar firmas antiguas.
type CertificateRepository interface {
	Create(cert *entity.Certificate) error
	GetByID(id string) (*entity.Certificate, error)
	// GetActive devuelve el certificado activo de la empresa o nil si no hay.
	GetActive(companyID string) (*entity.Certificate, error)
	List(companyID string) ([]*entity.Certificate, error)
	// ActivateExclusive desactiva el activo anterior y activa el objetivo en
	// una sola transacción: el invariante "exactamente uno activo" se fuerza
	// aquí, no en los callers.
	ActivateExclusive(ctx context.Context, companyID, id string) error
	Deactivate(id string) error
}
