package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de venta.
const (
	SaleCash   = "CASH"
	SaleCredit = "CREDIT"
)

// Invoice representa la cabecera de una factura electrónica. Los totales son
// inmutables una vez creada: el procesador de ventas es el único que la crea y
// la máquina de estados SRI solo toca los campos de estado/autorización.
type Invoice struct {
	ID              string
	CompanyID       string
	ClientID        string
	PaymentMethodID string
	SaleType        string // CASH | CREDIT
	CreditDays      int    // solo CREDIT, > 0
	Estab           string // establecimiento, 3 dígitos (ej: 001)
	PtoEmi          string // punto de emisión, 3 dígitos
	Sequential      string // secuencial de 9 dígitos
	IssueDate       time.Time

	SubtotalExempt decimal.Decimal // subtotal tarifa 0% / exento
	SubtotalTaxed  decimal.Decimal // subtotal gravado
	DiscountTotal  decimal.Decimal
	TaxTotal       decimal.Decimal
	GrandTotal     decimal.Decimal

	SriStatus           string // ver internal/domain/sri
	AccessKey           string // clave de acceso de 49 dígitos
	AuthorizationNumber string // número de autorización del SRI
	AuthorizedAt        *time.Time
	SignedXML           string // XML firmado completo
	SriMessages         string // mensajes devueltos por el SRI (rechazo/devolución)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Number devuelve el número legible de la factura: estab-ptoEmi-secuencial.
func (i *Invoice) Number() string {
	return fmt.Sprintf("%s-%s-%s", i.Estab, i.PtoEmi, i.Sequential)
}

// InvoiceLine representa una línea de detalle. Los montos se congelan al
// momento de la venta (snapshot de precio, descuento y tarifa).
type InvoiceLine struct {
	ID        string
	InvoiceID string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal

	TaxRateID       string
	TaxPercent      decimal.Decimal
	DiscountID      string // vacío si la línea no lleva descuento
	DiscountPercent decimal.Decimal

	Subtotal       decimal.Decimal // precio × cantidad
	DiscountAmount decimal.Decimal
	TaxableBase    decimal.Decimal // subtotal − descuento
	TaxAmount      decimal.Decimal
}

// SriStatusLog es el registro de auditoría de cada transición de estado:
// se guarda siempre con la respuesta cruda de la autoridad.
type SriStatusLog struct {
	ID         string
	InvoiceID  string
	FromStatus string
	ToStatus   string
	Message    string // respuesta cruda del SRI o detalle del fallo local
	CreatedAt  time.Time
}
