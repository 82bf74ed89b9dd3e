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

var _ repository.TaxRateRepository = (*TaxRateRepo)(nil)

// TaxRateRepo catálogo de tarifas de impuesto.
type TaxRateRepo struct {
	q Querier
}

func NewTaxRateRepository(q Querier) *TaxRateRepo {
	return &TaxRateRepo{q: q}
}

func (r *TaxRateRepo) Create(t *entity.TaxRate) error {
	query := `
		INSERT INTO tax_rates (id, code, percentage_code, percent, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.Code, t.PercentageCode, t.Percent, t.Description, t.Active, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tax rate: %w", err)
	}
	return nil
}

func (r *TaxRateRepo) GetByID(id string) (*entity.TaxRate, error) {
	query := `
		SELECT id, code, percentage_code, percent, description, active, created_at
		FROM tax_rates WHERE id = $1`
	var t entity.TaxRate
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.Code, &t.PercentageCode, &t.Percent, &t.Description, &t.Active, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tax rate: %w", err)
	}
	return &t, nil
}

func (r *TaxRateRepo) List() ([]*entity.TaxRate, error) {
	query := `
		SELECT id, code, percentage_code, percent, description, active, created_at
		FROM tax_rates ORDER BY percent`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list tax rates: %w", err)
	}
	defer rows.Close()

	var out []*entity.TaxRate
	for rows.Next() {
		var t entity.TaxRate
		if err := rows.Scan(&t.ID, &t.Code, &t.PercentageCode, &t.Percent, &t.Description,
			&t.Active, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tax rate: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

var _ repository.DiscountRepository = (*DiscountRepo)(nil)

// DiscountRepo catálogo de descuentos.
type DiscountRepo struct {
	q Querier
}

func NewDiscountRepository(q Querier) *DiscountRepo {
	return &DiscountRepo{q: q}
}

func (r *DiscountRepo) Create(d *entity.Discount) error {
	query := `
		INSERT INTO discounts (id, percent, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, d.ID, d.Percent, d.Description, d.Active, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert discount: %w", err)
	}
	return nil
}

func (r *DiscountRepo) GetByID(id string) (*entity.Discount, error) {
	query := `SELECT id, percent, description, active, created_at FROM discounts WHERE id = $1`
	var d entity.Discount
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&d.ID, &d.Percent, &d.Description, &d.Active, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get discount: %w", err)
	}
	return &d, nil
}

func (r *DiscountRepo) List() ([]*entity.Discount, error) {
	query := `SELECT id, percent, description, active, created_at FROM discounts ORDER BY percent`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()

	var out []*entity.Discount
	for rows.Next() {
		var d entity.Discount
		if err := rows.Scan(&d.ID, &d.Percent, &d.Description, &d.Active, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

var _ repository.PaymentMethodRepository = (*PaymentMethodRepo)(nil)

// PaymentMethodRepo catálogo de formas de pago (códigos SRI tabla 24).
type PaymentMethodRepo struct {
	q Querier
}

func NewPaymentMethodRepository(q Querier) *PaymentMethodRepo {
	return &PaymentMethodRepo{q: q}
}

func (r *PaymentMethodRepo) Create(p *entity.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (id, sri_code, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, p.ID, p.SRICode, p.Description, p.Active, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepo) GetByID(id string) (*entity.PaymentMethod, error) {
	query := `SELECT id, sri_code, description, active, created_at FROM payment_methods WHERE id = $1`
	var p entity.PaymentMethod
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.SRICode, &p.Description, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return &p, nil
}

func (r *PaymentMethodRepo) List() ([]*entity.PaymentMethod, error) {
	query := `SELECT id, sri_code, description, active, created_at FROM payment_methods ORDER BY sri_code`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var out []*entity.PaymentMethod
	for rows.Next() {
		var p entity.PaymentMethod
		if err := rows.Scan(&p.ID, &p.SRICode, &p.Description, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
