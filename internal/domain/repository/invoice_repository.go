package repository

import "github.com/dvillacis/puntoventa-api/internal/domain/entity"

// InvoiceRepository acceso a facturas y sus líneas. Los totales se escriben
// una sola vez en Create; UpdateSriFields solo toca estado/autorización/XML.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateLine(line *entity.InvoiceLine) error
	GetByID(id string) (*entity.Invoice, error)
	GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error)
	UpdateSriFields(invoice *entity.Invoice) error
	// GetSriStatus consulta ligera para el polling del frontend.
	GetSriStatus(id string) (*entity.Invoice, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error)
}

// SriLogRepository bitácora de transiciones de estado SRI (append-only).
type SriLogRepository interface {
	Create(log *entity.SriStatusLog) error
	ListByInvoice(invoiceID string) ([]*entity.SriStatusLog, error)
}
