// Package pdf implementa la generación del RIDE (Representación Impresa del
// Documento Electrónico) de la factura, según la Ficha Técnica SRI.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RUC  │  N° Factura + Autorización    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLAVE DE ACCESO: código de barras Code 128                  │
//	│  ADQUIRENTE: Nombre + identificación + fecha de emisión      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Dcto | Total           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal 15% / Subtotal 0% / Descuento / IVA /     │
//	│           VALOR TOTAL — y forma de pago                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/dvillacis/puntoventa-api/internal/application/billing"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	sridom "github.com/dvillacis/puntoventa-api/internal/domain/sri"
)

var (
	colorPrimary = &props.Color{Red: 16, Green: 78, Blue: 139}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// RIDEGenerator implementa billing.RIDEGenerator usando Maroto v2.
type RIDEGenerator struct{}

func NewRIDEGenerator() *RIDEGenerator { return &RIDEGenerator{} }

var _ billing.RIDEGenerator = (*RIDEGenerator)(nil)

// GenerateRIDE genera el PDF del comprobante y devuelve sus bytes.
func (g *RIDEGenerator) GenerateRIDE(_ context.Context, doc billing.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil || doc.Company == nil || doc.Client == nil {
		return nil, fmt.Errorf("pdf: documento incompleto")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+doc.Invoice.Number(), true).
		WithAuthor(doc.Company.RazonSocial, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc.Invoice, doc.Company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(accessKeyRows(doc.Invoice)...)
	m.AddRows(buyerRow(doc.Invoice, doc.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc.Invoice))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// headerRow: razón social + RUC (izq), número y autorización (der).
func headerRow(inv *entity.Invoice, co *entity.Company) core.Row {
	name := co.RazonSocial
	if co.NombreComercial != "" {
		name = co.NombreComercial
	}
	return row.New(24).Add(
		col.New(7).Add(
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RUC: "+co.RUC, props.Text{Size: 9, Top: 9, Color: colorGray}),
			text.New("Matriz: "+co.DirMatriz, props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("No. "+inv.Number(), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New(authorizationLine(inv), props.Text{
				Size: 7, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Fecha emisión: "+inv.IssueDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 18, Color: colorGray,
			}),
		),
	)
}

func authorizationLine(inv *entity.Invoice) string {
	if inv.SriStatus == sridom.StatusAuthorized && inv.AuthorizationNumber != "" {
		return "Autorización: " + inv.AuthorizationNumber
	}
	return "Estado SRI: " + inv.SriStatus
}

// accessKeyRows: la clave de acceso en texto y como código de barras Code 128.
func accessKeyRows(inv *entity.Invoice) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("CLAVE DE ACCESO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	if inv.AccessKey != "" {
		rows = append(rows,
			row.New(14).Add(col.New(12).Add(
				code.NewBar(inv.AccessKey, props.Barcode{Percent: 95, Center: true}),
			)),
			row.New(5).Add(col.New(12).Add(
				text.New(inv.AccessKey, props.Text{
					Size: 7, Align: align.Center, Color: colorGray, Top: 0.5,
				}),
			)),
		)
	}
	return rows
}

// buyerRow: datos del adquirente.
func buyerRow(inv *entity.Invoice, cl *entity.Client) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ADQUIRENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(cl.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Identificación: %s   |   Email: %s   |   Tel: %s",
				cl.TaxID, nonEmpty(cl.Email, "—"), nonEmpty(cl.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unitario", 2, align.Right),
		h("Dcto.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func tableDetailRows(doc billing.InvoiceDocument) []core.Row {
	result := make([]core.Row, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		desc := l.ProductID
		if p, ok := doc.Products[l.ProductID]; ok && p != nil {
			desc = p.Name
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				l.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				desc,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+l.UnitPrice.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+l.DiscountAmount.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+l.TaxableBase.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	return row.New(34).Add(
		col.New(5),
		col.New(4).Add(
			label("Subtotal gravado:"),
			label("Subtotal 0%:"),
			label("Descuento:"),
			label("IVA:"),
			text.New("VALOR TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 2, Top: 24,
			}),
		),
		col.New(3).Add(
			value("$"+inv.SubtotalTaxed.StringFixed(2)),
			value("$"+inv.SubtotalExempt.StringFixed(2)),
			value("$"+inv.DiscountTotal.StringFixed(2)),
			value("$"+inv.TaxTotal.StringFixed(2)),
			text.New("$"+inv.GrandTotal.StringFixed(2), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 1, Top: 24,
			}),
		),
	)
}

// footerRows: forma de pago y leyenda del ambiente.
func footerRows(doc billing.InvoiceDocument) []core.Row {
	pago := "Forma de pago: " + doc.PaymentCode
	if doc.Invoice.SaleType == entity.SaleCredit {
		pago += fmt.Sprintf("   |   Crédito a %d días", doc.Invoice.CreditDays)
	}
	return []core.Row{
		row.New(3),
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}),
		row.New(6).Add(col.New(12).Add(
			text.New(pago, props.Text{Size: 8, Top: 1, Color: colorGray}),
		)),
		row.New(8).Add(col.New(12).Add(
			text.New(
				"Documento generado bajo el esquema de comprobantes electrónicos "+
					"del Servicio de Rentas Internas. Conserve este documento como "+
					"soporte tributario.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
