package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvillacis/puntoventa-api/internal/application/billing"
	"github.com/dvillacis/puntoventa-api/internal/application/finance"
	"github.com/dvillacis/puntoventa-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ billing.SaleTxRunner = (*TxRunner)(nil)
var _ finance.TxRunner = (*FinanceTxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con
// repositorios atados a la tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run transacción de inventario: producto + kardex.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(inventory.TxRepos{
		Products:  NewProductRepository(tx),
		Movements: NewStockMovementRepository(tx),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSale transacción de venta: numeración, stock, factura y cartera.
func (r *TxRunner) RunSale(ctx context.Context, fn func(repos billing.SaleTxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(billing.SaleTxRepos{
		Companies:   NewCompanyRepository(tx),
		Products:    NewProductRepository(tx),
		Movements:   NewStockMovementRepository(tx),
		Invoices:    NewInvoiceRepository(tx),
		Receivables: NewReceivableRepository(tx),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// FinanceTxRunner ejecuta transacciones financieras: cartera y bancos.
// Es un tipo aparte porque su firma de Run difiere de la de inventario.
type FinanceTxRunner struct {
	pool *pgxpool.Pool
}

func NewFinanceTxRunner(pool *pgxpool.Pool) *FinanceTxRunner {
	return &FinanceTxRunner{pool: pool}
}

// Run transacción financiera.
func (r *FinanceTxRunner) Run(ctx context.Context, fn func(repos finance.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(finance.TxRepos{
		Receivables:   NewReceivableRepository(tx),
		Payables:      NewPayableRepository(tx),
		BankAccounts:  NewBankAccountRepository(tx),
		BankMovements: NewBankMovementRepository(tx),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
