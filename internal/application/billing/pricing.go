package billing

import "github.com/shopspring/decimal"

// PricingInput es una línea de carrito ya resuelta contra los catálogos:
// precio tomado del producto, porcentajes tomados de tarifa y descuento.
type PricingInput struct {
	ProductID       string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRateID       string
	TaxPercent      decimal.Decimal
	DiscountID      string
	DiscountPercent decimal.Decimal
}

// PricedLine es la línea con todos los montos congelados, redondeados a dos
// decimales a nivel de línea. Los totales de la factura son sumas exactas de
// líneas ya redondeadas, nunca un recálculo.
type PricedLine struct {
	PricingInput
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableBase    decimal.Decimal
	TaxAmount      decimal.Decimal
}

// Totals agrega los montos de la factura.
type Totals struct {
	SubtotalExempt decimal.Decimal // base de líneas con tarifa 0%
	SubtotalTaxed  decimal.Decimal // base de líneas gravadas
	DiscountTotal  decimal.Decimal
	TaxTotal       decimal.Decimal
	GrandTotal     decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals calcula los montos de cada línea y los totales. Es una función
// pura: mismo carrito, mismos montos, sin tocar base de datos.
func ComputeTotals(lines []PricingInput) ([]PricedLine, Totals) {
	priced := make([]PricedLine, 0, len(lines))
	var totals Totals
	totals.SubtotalExempt = decimal.Zero
	totals.SubtotalTaxed = decimal.Zero
	totals.DiscountTotal = decimal.Zero
	totals.TaxTotal = decimal.Zero

	for _, in := range lines {
		subtotal := in.UnitPrice.Mul(in.Quantity).Round(2)
		discount := subtotal.Mul(in.DiscountPercent).Div(hundred).Round(2)
		base := subtotal.Sub(discount)
		tax := base.Mul(in.TaxPercent).Div(hundred).Round(2)

		priced = append(priced, PricedLine{
			PricingInput:   in,
			Subtotal:       subtotal,
			DiscountAmount: discount,
			TaxableBase:    base,
			TaxAmount:      tax,
		})

		if in.TaxPercent.IsZero() {
			totals.SubtotalExempt = totals.SubtotalExempt.Add(base)
		} else {
			totals.SubtotalTaxed = totals.SubtotalTaxed.Add(base)
		}
		totals.DiscountTotal = totals.DiscountTotal.Add(discount)
		totals.TaxTotal = totals.TaxTotal.Add(tax)
	}

	totals.GrandTotal = totals.SubtotalExempt.
		Add(totals.SubtotalTaxed).
		Add(totals.TaxTotal)
	return priced, totals
}
