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

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación de CompanyRepository (usable con pool o tx).
type CompanyRepo struct {
	q Querier
}

func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, ruc, razon_social, nombre_comercial, dir_matriz, estab, pto_emi,
	last_sequential, obligado_contabilidad, status, created_at, updated_at`

// Create persiste el emisor.
func (r *CompanyRepo) Create(c *entity.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.RUC, c.RazonSocial, c.NombreComercial, c.DirMatriz, c.Estab, c.PtoEmi,
		c.LastSequential, c.ObligadoContabilidad, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene el emisor.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	var c entity.Company
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.RUC, &c.RazonSocial, &c.NombreComercial, &c.DirMatriz, &c.Estab, &c.PtoEmi,
		&c.LastSequential, &c.ObligadoContabilidad, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// List devuelve todas las empresas.
func (r *CompanyRepo) List() ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY razon_social`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(
			&c.ID, &c.RUC, &c.RazonSocial, &c.NombreComercial, &c.DirMatriz, &c.Estab, &c.PtoEmi,
			&c.LastSequential, &c.ObligadoContabilidad, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// NextSequential incrementa y devuelve el secuencial con la fila bloqueada.
// UPDATE ... RETURNING toma el lock y entrega el valor en una sola vuelta:
// dos ventas concurrentes jamás comparten número.
func (r *CompanyRepo) NextSequential(id string) (int64, error) {
	query := `
		UPDATE companies
		SET last_sequential = last_sequential + 1, updated_at = now()
		WHERE id = $1
		RETURNING last_sequential`
	var seq int64
	err := r.q.QueryRow(context.Background(), query, id).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("next sequential: %w", err)
	}
	return seq, nil
}

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository.
type ClientRepo struct {
	q Querier
}

func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// Create persiste un cliente.
func (r *ClientRepo) Create(c *entity.Client) error {
	query := `
		INSERT INTO clients (id, company_id, name, tax_id, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.CompanyID, c.Name, c.TaxID,
		nullIfEmpty(c.Email), nullIfEmpty(c.Phone), nullIfEmpty(c.Address),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente.
func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	query := `
		SELECT id, company_id, name, tax_id, email, phone, address, created_at, updated_at
		FROM clients WHERE id = $1`
	var c entity.Client
	var email, phone, address *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &email, &phone, &address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	c.Email, c.Phone, c.Address = deref(email), deref(phone), deref(address)
	return &c, nil
}

// List devuelve los clientes de la empresa.
func (r *ClientRepo) List(companyID string, limit, offset int) ([]*entity.Client, error) {
	query := `
		SELECT id, company_id, name, tax_id, email, phone, address, created_at, updated_at
		FROM clients WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []*entity.Client
	for rows.Next() {
		var c entity.Client
		var email, phone, address *string
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &email, &phone, &address,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.Email, c.Phone, c.Address = deref(email), deref(phone), deref(address)
		out = append(out, &c)
	}
	return out, rows.Err()
}

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación de SupplierRepository.
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// Create persiste un proveedor.
func (r *SupplierRepo) Create(s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (id, company_id, name, tax_id, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.CompanyID, s.Name, s.TaxID,
		nullIfEmpty(s.Email), nullIfEmpty(s.Phone), nullIfEmpty(s.Address),
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetByID obtiene un proveedor.
func (r *SupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	query := `
		SELECT id, company_id, name, tax_id, email, phone, address, created_at, updated_at
		FROM suppliers WHERE id = $1`
	var s entity.Supplier
	var email, phone, address *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.CompanyID, &s.Name, &s.TaxID, &email, &phone, &address, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	s.Email, s.Phone, s.Address = deref(email), deref(phone), deref(address)
	return &s, nil
}

// List devuelve los proveedores de la empresa.
func (r *SupplierRepo) List(companyID string, limit, offset int) ([]*entity.Supplier, error) {
	query := `
		SELECT id, company_id, name, tax_id, email, phone, address, created_at, updated_at
		FROM suppliers WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		var email, phone, address *string
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.TaxID, &email, &phone, &address,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		s.Email, s.Phone, s.Address = deref(email), deref(phone), deref(address)
		out = append(out, &s)
	}
	return out, rows.Err()
}

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación de UserRepository.
type UserRepo struct {
	q Querier
}

func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un usuario.
func (r *UserRepo) Create(u *entity.User) error {
	query := `
		INSERT INTO users (id, company_id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		u.ID, u.CompanyID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail obtiene un usuario por email (login).
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	query := `
		SELECT id, company_id, email, password_hash, name, role, created_at, updated_at
		FROM users WHERE email = $1`
	return r.scanOne(query, email)
}

// GetByID obtiene un usuario.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	query := `
		SELECT id, company_id, email, password_hash, name, role, created_at, updated_at
		FROM users WHERE id = $1`
	return r.scanOne(query, id)
}

func (r *UserRepo) scanOne(query string, arg any) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
