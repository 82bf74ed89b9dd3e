package repository

import (
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
)

// ReceivableRepository cuentas por cobrar. GetForUpdate bloquea la fila para
// que dos abonos concurrentes no lean el mismo saldo.
type ReceivableRepository interface {
	Create(ar *entity.AccountReceivable) error
	GetByID(id string) (*entity.AccountReceivable, error)
	GetForUpdate(id string) (*entity.AccountReceivable, error)
	Update(ar *entity.AccountReceivable) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.AccountReceivable, error)
}

// PayableRepository cuentas por pagar.
type PayableRepository interface {
	Create(ap *entity.AccountPayable) error
	GetByID(id string) (*entity.AccountPayable, error)
	GetForUpdate(id string) (*entity.AccountPayable, error)
	Update(ap *entity.AccountPayable) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.AccountPayable, error)
}

// BankAccountRepository cuentas bancarias. El saldo solo se escribe vía
// UpdateBalance dentro de la misma tx que inserta el movimiento.
type BankAccountRepository interface {
	Create(account *entity.BankAccount) error
	GetByID(id string) (*entity.BankAccount, error)
	GetForUpdate(id string) (*entity.BankAccount, error)
	UpdateBalance(id string, balance decimal.Decimal) error
	List(companyID string) ([]*entity.BankAccount, error)
	// FoldBalance recalcula el saldo desde los movimientos (auditoría).
	FoldBalance(accountID string) (decimal.Decimal, error)
}

// BankMovementRepository movimientos bancarios (append-only).
type BankMovementRepository interface {
	Create(mov *entity.BankMovement) error
	ListByAccount(accountID string, limit, offset int) ([]*entity.BankMovement, error)
}
