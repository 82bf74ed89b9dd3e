// Package sri implementa la infraestructura de facturación electrónica SRI:
// construcción del XML <factura>, firma XAdES-BES y clientes SOAP de los web
// services de recepción y autorización (esquema offline v2.21).
package sri

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dvillacis/puntoventa-api/internal/application/billing"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	sricat "github.com/dvillacis/puntoventa-api/pkg/sri"
)

// ComprobanteElementID es el id del elemento raíz al que apunta la Reference
// de la firma XAdES (obligatorio en el esquema del SRI).
const ComprobanteElementID = "comprobante"

const facturaVersion = "1.1.0"

// XMLBuilderService construye el XML <factura> v1.1.0 sin firma, conforme a
// la Ficha Técnica de Comprobantes Electrónicos.
type XMLBuilderService struct {
	environment  string // "1" pruebas, "2" producción
	emissionType string // "1" emisión normal
}

func NewXMLBuilderService(environment, emissionType string) *XMLBuilderService {
	return &XMLBuilderService{environment: environment, emissionType: emissionType}
}

var _ billing.XMLBuilder = (*XMLBuilderService)(nil)

// Build genera el []byte del comprobante. El orden de los elementos sigue el
// XSD del SRI: infoTributaria, infoFactura, detalles.
func (s *XMLBuilderService) Build(doc billing.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil || doc.Company == nil || doc.Client == nil {
		return nil, fmt.Errorf("sri: faltan invoice, company o client en el documento")
	}
	if len(doc.Lines) == 0 {
		return nil, fmt.Errorf("sri: la factura no tiene líneas de detalle")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "factura"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: ComprobanteElementID},
			{Name: xml.Name{Local: "version"}, Value: facturaVersion},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	if err := s.writeInfoTributaria(enc, doc); err != nil {
		return nil, err
	}
	if err := s.writeInfoFactura(enc, doc); err != nil {
		return nil, err
	}
	if err := s.writeDetalles(enc, doc); err != nil {
		return nil, err
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *XMLBuilderService) writeInfoTributaria(enc *xml.Encoder, doc billing.InvoiceDocument) error {
	inv, co := doc.Invoice, doc.Company

	open(enc, "infoTributaria")
	writeEl(enc, "ambiente", s.environment)
	writeEl(enc, "tipoEmision", s.emissionType)
	writeEl(enc, "razonSocial", sanitizeText(co.RazonSocial))
	if co.NombreComercial != "" {
		writeEl(enc, "nombreComercial", sanitizeText(co.NombreComercial))
	}
	writeEl(enc, "ruc", co.RUC)
	writeEl(enc, "claveAcceso", inv.AccessKey)
	writeEl(enc, "codDoc", sricat.DocTypeFactura)
	writeEl(enc, "estab", inv.Estab)
	writeEl(enc, "ptoEmi", inv.PtoEmi)
	writeEl(enc, "secuencial", inv.Sequential)
	writeEl(enc, "dirMatriz", sanitizeText(co.DirMatriz))
	closeEl(enc, "infoTributaria")
	return nil
}

func (s *XMLBuilderService) writeInfoFactura(enc *xml.Encoder, doc billing.InvoiceDocument) error {
	inv, co, cl := doc.Invoice, doc.Company, doc.Client

	open(enc, "infoFactura")
	writeEl(enc, "fechaEmision", inv.IssueDate.Format("02/01/2006"))
	if co.DirMatriz != "" {
		writeEl(enc, "dirEstablecimiento", sanitizeText(co.DirMatriz))
	}
	writeEl(enc, "obligadoContabilidad", siNo(co.ObligadoContabilidad))
	writeEl(enc, "tipoIdentificacionComprador", sricat.IdentificationTypeFor(cl.TaxID))
	writeEl(enc, "razonSocialComprador", sanitizeText(cl.Name))
	writeEl(enc, "identificacionComprador", cl.TaxID)
	if cl.Address != "" {
		writeEl(enc, "direccionComprador", sanitizeText(cl.Address))
	}

	totalSinImpuestos := inv.SubtotalExempt.Add(inv.SubtotalTaxed)
	writeEl(enc, "totalSinImpuestos", money(totalSinImpuestos))
	writeEl(enc, "totalDescuento", money(inv.DiscountTotal))

	// totalConImpuestos: un totalImpuesto por cada código porcentaje presente.
	open(enc, "totalConImpuestos")
	for _, agg := range aggregateTaxes(doc) {
		open(enc, "totalImpuesto")
		writeEl(enc, "codigo", sricat.TaxCodeIVA)
		writeEl(enc, "codigoPorcentaje", agg.percentageCode)
		writeEl(enc, "baseImponible", money(agg.base))
		writeEl(enc, "valor", money(agg.amount))
		closeEl(enc, "totalImpuesto")
	}
	closeEl(enc, "totalConImpuestos")

	writeEl(enc, "propina", "0.00")
	writeEl(enc, "importeTotal", money(inv.GrandTotal))
	writeEl(enc, "moneda", "DOLAR")

	open(enc, "pagos")
	open(enc, "pago")
	writeEl(enc, "formaPago", doc.PaymentCode)
	writeEl(enc, "total", money(inv.GrandTotal))
	if inv.SaleType == entity.SaleCredit && inv.CreditDays > 0 {
		writeEl(enc, "plazo", strconv.Itoa(inv.CreditDays))
		writeEl(enc, "unidadTiempo", sricat.CreditTermUnit)
	}
	closeEl(enc, "pago")
	closeEl(enc, "pagos")

	closeEl(enc, "infoFactura")
	return nil
}

func (s *XMLBuilderService) writeDetalles(enc *xml.Encoder, doc billing.InvoiceDocument) error {
	open(enc, "detalles")
	for _, line := range doc.Lines {
		code := line.ProductID
		desc := "Item"
		if p, ok := doc.Products[line.ProductID]; ok && p != nil {
			code = p.SKU
			desc = p.Name
		}
		open(enc, "detalle")
		writeEl(enc, "codigoPrincipal", sanitizeText(code))
		writeEl(enc, "descripcion", sanitizeText(desc))
		writeEl(enc, "cantidad", qty(line.Quantity))
		writeEl(enc, "precioUnitario", qty(line.UnitPrice))
		writeEl(enc, "descuento", money(line.DiscountAmount))
		writeEl(enc, "precioTotalSinImpuesto", money(line.TaxableBase))

		open(enc, "impuestos")
		open(enc, "impuesto")
		writeEl(enc, "codigo", sricat.TaxCodeIVA)
		writeEl(enc, "codigoPorcentaje", doc.PercentageCodes[line.TaxRateID])
		writeEl(enc, "tarifa", line.TaxPercent.StringFixed(2))
		writeEl(enc, "baseImponible", money(line.TaxableBase))
		writeEl(enc, "valor", money(line.TaxAmount))
		closeEl(enc, "impuesto")
		closeEl(enc, "impuestos")

		closeEl(enc, "detalle")
	}
	closeEl(enc, "detalles")
	return nil
}

// taxAggregate acumula base y valor por código porcentaje para totalConImpuestos.
type taxAggregate struct {
	percentageCode string
	base           decimal.Decimal
	amount         decimal.Decimal
}

func aggregateTaxes(doc billing.InvoiceDocument) []taxAggregate {
	var order []string
	byCode := map[string]*taxAggregate{}
	for _, line := range doc.Lines {
		code := doc.PercentageCodes[line.TaxRateID]
		agg, ok := byCode[code]
		if !ok {
			agg = &taxAggregate{percentageCode: code}
			byCode[code] = agg
			order = append(order, code)
		}
		agg.base = agg.base.Add(line.TaxableBase)
		agg.amount = agg.amount.Add(line.TaxAmount)
	}
	out := make([]taxAggregate, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

func open(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func closeEl(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func writeEl(enc *xml.Encoder, local, value string) {
	open(enc, local)
	_ = enc.EncodeToken(xml.CharData(value))
	closeEl(enc, local)
}

func money(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// qty cantidades y precios unitarios van con 6 decimales según el XSD.
func qty(d decimal.Decimal) string {
	return d.StringFixed(6)
}

func siNo(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}

// diacriticStripper descompone (NFD), elimina marcas diacríticas y recompone.
// El validador del SRI rechaza caracteres fuera de su alfabeto.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

func sanitizeText(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}
