package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de agregación para el tablero financiero.
// Solo lectura; siempre sobre el pool, nunca dentro de una tx de venta.
type AnalyticsRepo struct {
	q Querier
}

func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// DailySalesTotal suma las ventas del día. Excluye anuladas: una factura
// anulada no es venta.
func (r *AnalyticsRepo) DailySalesTotal(ctx context.Context, companyID string, day time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(grand_total), 0)
		FROM invoices
		WHERE company_id = $1
		  AND issue_date >= $2 AND issue_date < $3
		  AND sri_status <> 'ANNULLED'`
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, start, start.AddDate(0, 0, 1)).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("daily sales total: %w", err)
	}
	return total, nil
}

// CountInvoicesByStatus cuenta facturas por estado SRI.
func (r *AnalyticsRepo) CountInvoicesByStatus(ctx context.Context, companyID string) (map[string]int, error) {
	query := `
		SELECT sri_status, COUNT(*)
		FROM invoices
		WHERE company_id = $1
		GROUP BY sri_status`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("count invoices by status: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out[status] = count
	}
	return out, rows.Err()
}

// OverdueReceivables cuentas por cobrar vencidas y no pagadas.
func (r *AnalyticsRepo) OverdueReceivables(ctx context.Context, companyID string, now time.Time) ([]*entity.AccountReceivable, error) {
	query := `SELECT ` + receivableColumns + `
		FROM accounts_receivable
		WHERE company_id = $1 AND status <> 'PAID' AND due_date < $2
		ORDER BY due_date`
	rows, err := r.q.Query(ctx, query, companyID, now)
	if err != nil {
		return nil, fmt.Errorf("overdue receivables: %w", err)
	}
	defer rows.Close()

	var out []*entity.AccountReceivable
	for rows.Next() {
		var a entity.AccountReceivable
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.InvoiceID, &a.ClientID, &a.Amount,
			&a.AmountPaid, &a.DueDate, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan overdue receivable: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// OverduePayables cuentas por pagar vencidas y no pagadas.
func (r *AnalyticsRepo) OverduePayables(ctx context.Context, companyID string, now time.Time) ([]*entity.AccountPayable, error) {
	query := `SELECT ` + payableColumns + `
		FROM accounts_payable
		WHERE company_id = $1 AND status <> 'PAID' AND due_date < $2
		ORDER BY due_date`
	rows, err := r.q.Query(ctx, query, companyID, now)
	if err != nil {
		return nil, fmt.Errorf("overdue payables: %w", err)
	}
	defer rows.Close()

	var out []*entity.AccountPayable
	for rows.Next() {
		var a entity.AccountPayable
		var ref *string
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.SupplierID, &ref, &a.Amount,
			&a.AmountPaid, &a.DueDate, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan overdue payable: %w", err)
		}
		a.Reference = deref(ref)
		out = append(out, &a)
	}
	return out, rows.Err()
}

// LowStockProducts productos en o bajo su stock mínimo (descontinuados fuera).
func (r *AnalyticsRepo) LowStockProducts(ctx context.Context, companyID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE company_id = $1 AND stock <= min_stock AND status <> 'DISCONTINUED'
		ORDER BY stock`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
