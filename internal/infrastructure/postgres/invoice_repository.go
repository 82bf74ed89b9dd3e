package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera. Los totales se escriben aquí y nunca más.
func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, company_id, client_id, payment_method_id, sale_type, credit_days,
		                      estab, pto_emi, sequential, issue_date,
		                      subtotal_exempt, subtotal_taxed, discount_total, tax_total, grand_total,
		                      sri_status, access_key, authorization_number, authorized_at, signed_xml, sri_messages,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.CompanyID, inv.ClientID, inv.PaymentMethodID, inv.SaleType, inv.CreditDays,
		inv.Estab, inv.PtoEmi, inv.Sequential, inv.IssueDate,
		inv.SubtotalExempt, inv.SubtotalTaxed, inv.DiscountTotal, inv.TaxTotal, inv.GrandTotal,
		inv.SriStatus, inv.AccessKey, nullIfEmpty(inv.AuthorizationNumber), inv.AuthorizedAt,
		nullIfEmpty(inv.SignedXML), nullIfEmpty(inv.SriMessages),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea con sus montos congelados.
func (r *InvoiceRepo) CreateLine(l *entity.InvoiceLine) error {
	query := `
		INSERT INTO invoice_lines (id, invoice_id, product_id, quantity, unit_price,
		                           tax_rate_id, tax_percent, discount_id, discount_percent,
		                           subtotal, discount_amount, taxable_base, tax_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.InvoiceID, l.ProductID, l.Quantity, l.UnitPrice,
		l.TaxRateID, l.TaxPercent, nullIfEmpty(l.DiscountID), l.DiscountPercent,
		l.Subtotal, l.DiscountAmount, l.TaxableBase, l.TaxAmount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

const invoiceColumns = `id, company_id, client_id, payment_method_id, sale_type, credit_days,
	estab, pto_emi, sequential, issue_date,
	subtotal_exempt, subtotal_taxed, discount_total, tax_total, grand_total,
	sri_status, access_key, authorization_number, authorized_at, signed_xml, sri_messages,
	created_at, updated_at`

// GetByID obtiene una factura completa.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	var inv entity.Invoice
	var authNum, signedXML, messages *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.CompanyID, &inv.ClientID, &inv.PaymentMethodID, &inv.SaleType, &inv.CreditDays,
		&inv.Estab, &inv.PtoEmi, &inv.Sequential, &inv.IssueDate,
		&inv.SubtotalExempt, &inv.SubtotalTaxed, &inv.DiscountTotal, &inv.TaxTotal, &inv.GrandTotal,
		&inv.SriStatus, &inv.AccessKey, &authNum, &inv.AuthorizedAt, &signedXML, &messages,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.AuthorizationNumber = deref(authNum)
	inv.SignedXML = deref(signedXML)
	inv.SriMessages = deref(messages)
	return &inv, nil
}

// GetLinesByInvoiceID devuelve las líneas de una factura.
func (r *InvoiceRepo) GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, product_id, quantity, unit_price,
		       tax_rate_id, tax_percent, discount_id, discount_percent,
		       subtotal, discount_amount, taxable_base, tax_amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		var discountID *string
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.Quantity, &l.UnitPrice,
			&l.TaxRateID, &l.TaxPercent, &discountID, &l.DiscountPercent,
			&l.Subtotal, &l.DiscountAmount, &l.TaxableBase, &l.TaxAmount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		l.DiscountID = deref(discountID)
		out = append(out, &l)
	}
	return out, rows.Err()
}

// UpdateSriFields actualiza solo estado, autorización, XML y mensajes. Los
// totales quedan fuera a propósito: son inmutables.
func (r *InvoiceRepo) UpdateSriFields(inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET sri_status           = $2,
		    authorization_number = COALESCE($3, authorization_number),
		    authorized_at        = COALESCE($4, authorized_at),
		    signed_xml           = COALESCE($5, signed_xml),
		    sri_messages         = COALESCE($6, sri_messages),
		    updated_at           = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.SriStatus,
		nullIfEmpty(inv.AuthorizationNumber), inv.AuthorizedAt,
		nullIfEmpty(inv.SignedXML), nullIfEmpty(inv.SriMessages),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice sri: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetSriStatus consulta ligera para el polling del estado.
func (r *InvoiceRepo) GetSriStatus(id string) (*entity.Invoice, error) {
	query := `
		SELECT id, sri_status, access_key, authorization_number, authorized_at, sri_messages
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	var authNum, messages *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.SriStatus, &inv.AccessKey, &authNum, &inv.AuthorizedAt, &messages,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice status: %w", err)
	}
	inv.AuthorizationNumber = deref(authNum)
	inv.SriMessages = deref(messages)
	return &inv, nil
}

// ListByCompany devuelve facturas de la empresa, más reciente primero.
func (r *InvoiceRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE company_id = $1
		ORDER BY issue_date DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		var authNum, signedXML, messages *string
		if err := rows.Scan(
			&inv.ID, &inv.CompanyID, &inv.ClientID, &inv.PaymentMethodID, &inv.SaleType, &inv.CreditDays,
			&inv.Estab, &inv.PtoEmi, &inv.Sequential, &inv.IssueDate,
			&inv.SubtotalExempt, &inv.SubtotalTaxed, &inv.DiscountTotal, &inv.TaxTotal, &inv.GrandTotal,
			&inv.SriStatus, &inv.AccessKey, &authNum, &inv.AuthorizedAt, &signedXML, &messages,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.AuthorizationNumber = deref(authNum)
		inv.SignedXML = deref(signedXML)
		inv.SriMessages = deref(messages)
		out = append(out, &inv)
	}
	return out, rows.Err()
}

var _ repository.SriLogRepository = (*SriLogRepo)(nil)

// SriLogRepo bitácora de transiciones SRI (append-only).
type SriLogRepo struct {
	q Querier
}

func NewSriLogRepository(q Querier) *SriLogRepo {
	return &SriLogRepo{q: q}
}

// Create inserta una entrada de bitácora.
func (r *SriLogRepo) Create(l *entity.SriStatusLog) error {
	query := `
		INSERT INTO sri_status_logs (id, invoice_id, from_status, to_status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.InvoiceID, l.FromStatus, l.ToStatus, l.Message, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sri log: %w", err)
	}
	return nil
}

// ListByInvoice devuelve la bitácora en orden cronológico.
func (r *SriLogRepo) ListByInvoice(invoiceID string) ([]*entity.SriStatusLog, error) {
	query := `
		SELECT id, invoice_id, from_status, to_status, message, created_at
		FROM sri_status_logs WHERE invoice_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list sri logs: %w", err)
	}
	defer rows.Close()

	var out []*entity.SriStatusLog
	for rows.Next() {
		var l entity.SriStatusLog
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.FromStatus, &l.ToStatus, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sri log: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
