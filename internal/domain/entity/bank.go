package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de cuenta bancaria y direcciones de movimiento.
const (
	BankAccountSavings  = "SAVINGS"
	BankAccountChecking = "CHECKING"

	MovementIn  = "IN"
	MovementOut = "OUT"
)

// BankAccount representa una cuenta bancaria. Balance es un valor derivado del
// fold de movimientos; solo se actualiza dentro de la misma transacción que
// inserta el movimiento — no existe otra vía de escritura.
type BankAccount struct {
	ID        string
	CompanyID string
	Bank      string
	Number    string
	Type      string // SAVINGS | CHECKING
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BankMovement es un movimiento bancario inmutable. Una transferencia son dos
// movimientos enlazados por TransferID (OUT en origen, IN en destino) creados
// en la misma transacción.
type BankMovement struct {
	ID          string
	CompanyID   string
	AccountID   string
	Direction   string // IN | OUT
	Amount      decimal.Decimal // siempre positivo; la dirección da el signo
	Concept     string
	ReferenceID string // cuenta por cobrar/pagar que originó el asiento
	TransferID  string // vacío si no es transferencia
	CreatedAt   time.Time
	CreatedBy   string
}

// SignedAmount devuelve el delta con signo que el movimiento aplica al saldo.
func (m *BankMovement) SignedAmount() decimal.Decimal {
	if m.Direction == MovementOut {
		return m.Amount.Neg()
	}
	return m.Amount
}
