package dto

import "time"

// SaleLineRequest una línea del carrito. El precio nunca viene del cliente:
// se toma del producto al momento de la venta.
type SaleLineRequest struct {
	ProductID  string `json:"product_id"`
	Quantity   string `json:"quantity"` // decimal como string
	TaxRateID  string `json:"tax_rate_id"`
	DiscountID string `json:"discount_id,omitempty"`
}

// CreateSaleRequest solicitud de venta completa.
type CreateSaleRequest struct {
	ClientID        string            `json:"client_id"`
	PaymentMethodID string            `json:"payment_method_id"`
	SaleType        string            `json:"sale_type"` // CASH | CREDIT
	CreditDays      int               `json:"credit_days,omitempty"`
	Lines           []SaleLineRequest `json:"lines"`
}

// SaleResponse respuesta inmediata de la venta: la factura queda PENDIENTE y
// el envío al SRI continúa en segundo plano.
type SaleResponse struct {
	InvoiceID  string `json:"invoice_id"`
	Number     string `json:"number"`
	AccessKey  string `json:"access_key"`
	SriStatus  string `json:"sri_status"`
	GrandTotal string `json:"grand_total"`
}

// InvoiceLineResponse línea de factura con montos congelados.
type InvoiceLineResponse struct {
	ProductID       string `json:"product_id"`
	Quantity        string `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	TaxPercent      string `json:"tax_percent"`
	DiscountPercent string `json:"discount_percent"`
	Subtotal        string `json:"subtotal"`
	DiscountAmount  string `json:"discount_amount"`
	TaxAmount       string `json:"tax_amount"`
}

// InvoiceResponse factura completa.
type InvoiceResponse struct {
	ID                  string                `json:"id"`
	Number              string                `json:"number"`
	ClientID            string                `json:"client_id"`
	SaleType            string                `json:"sale_type"`
	IssueDate           time.Time             `json:"issue_date"`
	SubtotalExempt      string                `json:"subtotal_exempt"`
	SubtotalTaxed       string                `json:"subtotal_taxed"`
	DiscountTotal       string                `json:"discount_total"`
	TaxTotal            string                `json:"tax_total"`
	GrandTotal          string                `json:"grand_total"`
	SriStatus           string                `json:"sri_status"`
	AccessKey           string                `json:"access_key"`
	AuthorizationNumber string                `json:"authorization_number,omitempty"`
	AuthorizedAt        *time.Time            `json:"authorized_at,omitempty"`
	SriMessages         string                `json:"sri_messages,omitempty"`
	Lines               []InvoiceLineResponse `json:"lines,omitempty"`
}

// InvoiceStatusResponse respuesta ligera para el polling de estado.
type InvoiceStatusResponse struct {
	InvoiceID           string     `json:"invoice_id"`
	SriStatus           string     `json:"sri_status"`
	AuthorizationNumber string     `json:"authorization_number,omitempty"`
	AuthorizedAt        *time.Time `json:"authorized_at,omitempty"`
	SriMessages         string     `json:"sri_messages,omitempty"`
}
