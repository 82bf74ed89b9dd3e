package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

var _ repository.CertificateRepository = (*CertificateRepo)(nil)

// CertificateRepo bóveda de certificados sobre PostgreSQL. Mantiene el pool
// además del Querier porque ActivateExclusive abre su propia transacción.
type CertificateRepo struct {
	q    Querier
	pool *pgxpool.Pool
}

func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepo {
	return &CertificateRepo{q: pool, pool: pool}
}

const certColumns = `id, company_id, name, keystore_enc, passphrase_enc, subject_cn, not_after, active, created_at, updated_at`

// Create persiste el certificado cifrado.
func (r *CertificateRepo) Create(c *entity.Certificate) error {
	query := `
		INSERT INTO certificates (` + certColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.CompanyID, c.Name, c.KeyStoreEnc, c.PassphraseEnc,
		c.SubjectCN, c.NotAfter, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// GetByID obtiene un certificado (con material cifrado).
func (r *CertificateRepo) GetByID(id string) (*entity.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates WHERE id = $1`
	var c entity.Certificate
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.KeyStoreEnc, &c.PassphraseEnc,
		&c.SubjectCN, &c.NotAfter, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return &c, nil
}

// GetActive devuelve el certificado activo de la empresa o nil si no hay.
func (r *CertificateRepo) GetActive(companyID string) (*entity.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates WHERE company_id = $1 AND active`
	var c entity.Certificate
	err := r.q.QueryRow(context.Background(), query, companyID).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.KeyStoreEnc, &c.PassphraseEnc,
		&c.SubjectCN, &c.NotAfter, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active certificate: %w", err)
	}
	return &c, nil
}

// List devuelve los certificados de la empresa, más reciente primero.
func (r *CertificateRepo) List(companyID string) ([]*entity.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates WHERE company_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var out []*entity.Certificate
	for rows.Next() {
		var c entity.Certificate
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.KeyStoreEnc, &c.PassphraseEnc,
			&c.SubjectCN, &c.NotAfter, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ActivateExclusive desactiva el activo anterior y activa el objetivo en una
// sola transacción: la base nunca queda con dos certificados activos.
func (r *CertificateRepo) ActivateExclusive(ctx context.Context, companyID, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE certificates SET active = false, updated_at = now() WHERE company_id = $1 AND active`,
		companyID); err != nil {
		return fmt.Errorf("deactivate previous certificate: %w", err)
	}
	tag, err := tx.Exec(ctx,
		`UPDATE certificates SET active = true, updated_at = now() WHERE id = $1 AND company_id = $2`,
		id, companyID)
	if err != nil {
		return fmt.Errorf("activate certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Deactivate desactiva un certificado.
func (r *CertificateRepo) Deactivate(id string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE certificates SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
