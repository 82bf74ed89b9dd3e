package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate es una tarifa de impuesto del catálogo SRI (IVA 0%, 15%, exento...).
// Toda línea de venta debe referenciar una tarifa explícitamente: la ausencia
// es un error de validación, nunca un 0% implícito.
type TaxRate struct {
	ID             string
	Code           string          // código de impuesto SRI ("2" = IVA)
	PercentageCode string          // código porcentaje SRI ("0", "4", ...)
	Percent        decimal.Decimal // 0, 15, ...
	Description    string
	Active         bool
	CreatedAt      time.Time
}

// Discount es un descuento porcentual del catálogo.
type Discount struct {
	ID          string
	Percent     decimal.Decimal
	Description string
	Active      bool
	CreatedAt   time.Time
}

// PaymentMethod es una forma de pago del catálogo (código SRI tabla 24).
type PaymentMethod struct {
	ID          string
	SRICode     string // "01" efectivo, "19" tarjeta de crédito, "20" transferencia...
	Description string
	Active      bool
	CreatedAt   time.Time
}
