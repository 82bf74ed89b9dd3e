package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cuenta por cobrar/pagar. El estado es una función pura de
// (monto abonado, monto original): nunca se asigna a mano.
const (
	AccountPending = "PENDING"
	AccountPartial = "PARTIAL"
	AccountPaid    = "PAID"
)

// AccountStatusFor deriva el estado a partir del abonado y el original.
func AccountStatusFor(paid, original decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(original):
		return AccountPaid
	case paid.GreaterThan(decimal.Zero):
		return AccountPartial
	default:
		return AccountPending
	}
}

// OverdueDays calcula los días de mora a una fecha dada (0 si no vencida o pagada).
func OverdueDays(dueDate time.Time, status string, now time.Time) int {
	if status == AccountPaid || !now.After(dueDate) {
		return 0
	}
	return int(now.Sub(dueDate).Hours() / 24)
}

// AccountReceivable es una cuenta por cobrar (venta a crédito).
// Invariante: AmountPaid ≤ Amount.
type AccountReceivable struct {
	ID         string
	CompanyID  string
	InvoiceID  string
	ClientID   string
	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	DueDate    time.Time
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Outstanding devuelve el saldo pendiente.
func (a *AccountReceivable) Outstanding() decimal.Decimal {
	return a.Amount.Sub(a.AmountPaid)
}

// AccountPayable es una cuenta por pagar a proveedor.
type AccountPayable struct {
	ID         string
	CompanyID  string
	SupplierID string
	Reference  string // número de factura del proveedor
	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	DueDate    time.Time
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Outstanding devuelve el saldo pendiente.
func (a *AccountPayable) Outstanding() decimal.Decimal {
	return a.Amount.Sub(a.AmountPaid)
}
