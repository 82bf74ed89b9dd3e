package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

var _ repository.ReceivableRepository = (*ReceivableRepo)(nil)

// ReceivableRepo cuentas por cobrar sobre PostgreSQL.
type ReceivableRepo struct {
	q Querier
}

func NewReceivableRepository(q Querier) *ReceivableRepo {
	return &ReceivableRepo{q: q}
}

const receivableColumns = `id, company_id, invoice_id, client_id, amount, amount_paid, due_date, status, created_at, updated_at`

// Create persiste una cuenta por cobrar.
func (r *ReceivableRepo) Create(a *entity.AccountReceivable) error {
	query := `
		INSERT INTO accounts_receivable (` + receivableColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.CompanyID, a.InvoiceID, a.ClientID, a.Amount, a.AmountPaid,
		a.DueDate, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receivable: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por cobrar.
func (r *ReceivableRepo) GetByID(id string) (*entity.AccountReceivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM accounts_receivable WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate bloquea la fila: dos abonos concurrentes no leen el mismo saldo.
func (r *ReceivableRepo) GetForUpdate(id string) (*entity.AccountReceivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM accounts_receivable WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// Update persiste abonado y estado.
func (r *ReceivableRepo) Update(a *entity.AccountReceivable) error {
	query := `
		UPDATE accounts_receivable
		SET amount_paid = $2, status = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, a.ID, a.AmountPaid, a.Status, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update receivable: %w", err)
	}
	return nil
}

// ListByCompany devuelve la cartera por cobrar, vencimientos primero.
func (r *ReceivableRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.AccountReceivable, error) {
	query := `SELECT ` + receivableColumns + `
		FROM accounts_receivable
		WHERE company_id = $1
		ORDER BY due_date
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list receivables: %w", err)
	}
	defer rows.Close()

	var out []*entity.AccountReceivable
	for rows.Next() {
		var a entity.AccountReceivable
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.InvoiceID, &a.ClientID, &a.Amount,
			&a.AmountPaid, &a.DueDate, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan receivable: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *ReceivableRepo) scanOne(query string, args ...any) (*entity.AccountReceivable, error) {
	var a entity.AccountReceivable
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&a.ID, &a.CompanyID, &a.InvoiceID, &a.ClientID, &a.Amount, &a.AmountPaid,
		&a.DueDate, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get receivable: %w", err)
	}
	return &a, nil
}

var _ repository.PayableRepository = (*PayableRepo)(nil)

// PayableRepo cuentas por pagar sobre PostgreSQL.
type PayableRepo struct {
	q Querier
}

func NewPayableRepository(q Querier) *PayableRepo {
	return &PayableRepo{q: q}
}

const payableColumns = `id, company_id, supplier_id, reference, amount, amount_paid, due_date, status, created_at, updated_at`

// Create persiste una cuenta por pagar.
func (r *PayableRepo) Create(a *entity.AccountPayable) error {
	query := `
		INSERT INTO accounts_payable (` + payableColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.CompanyID, a.SupplierID, nullIfEmpty(a.Reference), a.Amount, a.AmountPaid,
		a.DueDate, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payable: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por pagar.
func (r *PayableRepo) GetByID(id string) (*entity.AccountPayable, error) {
	query := `SELECT ` + payableColumns + ` FROM accounts_payable WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate bloquea la fila para el abono.
func (r *PayableRepo) GetForUpdate(id string) (*entity.AccountPayable, error) {
	query := `SELECT ` + payableColumns + ` FROM accounts_payable WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// Update persiste abonado y estado.
func (r *PayableRepo) Update(a *entity.AccountPayable) error {
	query := `
		UPDATE accounts_payable
		SET amount_paid = $2, status = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, a.ID, a.AmountPaid, a.Status, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update payable: %w", err)
	}
	return nil
}

// ListByCompany devuelve la cartera por pagar, vencimientos primero.
func (r *PayableRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.AccountPayable, error) {
	query := `SELECT ` + payableColumns + `
		FROM accounts_payable
		WHERE company_id = $1
		ORDER BY due_date
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payables: %w", err)
	}
	defer rows.Close()

	var out []*entity.AccountPayable
	for rows.Next() {
		var a entity.AccountPayable
		var ref *string
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.SupplierID, &ref, &a.Amount,
			&a.AmountPaid, &a.DueDate, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payable: %w", err)
		}
		a.Reference = deref(ref)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *PayableRepo) scanOne(query string, args ...any) (*entity.AccountPayable, error) {
	var a entity.AccountPayable
	var ref *string
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&a.ID, &a.CompanyID, &a.SupplierID, &ref, &a.Amount, &a.AmountPaid,
		&a.DueDate, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get payable: %w", err)
	}
	a.Reference = deref(ref)
	return &a, nil
}

var _ repository.BankAccountRepository = (*BankAccountRepo)(nil)

// BankAccountRepo cuentas bancarias sobre PostgreSQL.
type BankAccountRepo struct {
	q Querier
}

func NewBankAccountRepository(q Querier) *BankAccountRepo {
	return &BankAccountRepo{q: q}
}

const bankAccountColumns = `id, company_id, bank, number, type, balance, active, created_at, updated_at`

// Create persiste una cuenta bancaria.
func (r *BankAccountRepo) Create(a *entity.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (` + bankAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.CompanyID, a.Bank, a.Number, a.Type, a.Balance, a.Active, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert bank account: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta bancaria.
func (r *BankAccountRepo) GetByID(id string) (*entity.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate bloquea la fila para el asiento.
func (r *BankAccountRepo) GetForUpdate(id string) (*entity.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// UpdateBalance persiste el saldo. Solo se llama dentro de la misma tx que
// inserta el movimiento correspondiente.
func (r *BankAccountRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	query := `UPDATE bank_accounts SET balance = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, balance)
	if err != nil {
		return fmt.Errorf("update bank balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve las cuentas bancarias de la empresa.
func (r *BankAccountRepo) List(companyID string) ([]*entity.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE company_id = $1 ORDER BY bank, number`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()

	var out []*entity.BankAccount
	for rows.Next() {
		var a entity.BankAccount
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Bank, &a.Number, &a.Type, &a.Balance,
			&a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bank account: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// FoldBalance recalcula el saldo desde los movimientos. Auditoría: el
// resultado debe cuadrar con la columna balance.
func (r *BankAccountRepo) FoldBalance(accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'OUT' THEN -amount ELSE amount END), 0)
		FROM bank_movements WHERE account_id = $1`
	var balance decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, accountID).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("fold bank balance: %w", err)
	}
	return balance, nil
}

func (r *BankAccountRepo) scanOne(query string, args ...any) (*entity.BankAccount, error) {
	var a entity.BankAccount
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&a.ID, &a.CompanyID, &a.Bank, &a.Number, &a.Type, &a.Balance, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get bank account: %w", err)
	}
	return &a, nil
}

var _ repository.BankMovementRepository = (*BankMovementRepo)(nil)

// BankMovementRepo libro bancario (append-only).
type BankMovementRepo struct {
	q Querier
}

func NewBankMovementRepository(q Querier) *BankMovementRepo {
	return &BankMovementRepo{q: q}
}

// Create inserta un asiento bancario.
func (r *BankMovementRepo) Create(m *entity.BankMovement) error {
	query := `
		INSERT INTO bank_movements (id, company_id, account_id, direction, amount, concept, reference_id, transfer_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.CompanyID, m.AccountID, m.Direction, m.Amount, m.Concept,
		nullIfEmpty(m.ReferenceID), nullIfEmpty(m.TransferID), m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert bank movement: %w", err)
	}
	return nil
}

// ListByAccount devuelve el libro, más reciente primero.
func (r *BankMovementRepo) ListByAccount(accountID string, limit, offset int) ([]*entity.BankMovement, error) {
	query := `
		SELECT id, company_id, account_id, direction, amount, concept, reference_id, transfer_id, created_at, created_by
		FROM bank_movements
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bank movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.BankMovement
	for rows.Next() {
		var m entity.BankMovement
		var ref, transfer *string
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.AccountID, &m.Direction, &m.Amount,
			&m.Concept, &ref, &transfer, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan bank movement: %w", err)
		}
		m.ReferenceID, m.TransferID = deref(ref), deref(transfer)
		out = append(out, &m)
	}
	return out, rows.Err()
}
