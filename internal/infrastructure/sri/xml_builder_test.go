package sri

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvillacis/puntoventa-api/internal/application/billing"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	sricat "github.com/dvillacis/puntoventa-api/pkg/sri"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleDocument() billing.InvoiceDocument {
	issue := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	inv := &entity.Invoice{
		ID:             "inv-1",
		CompanyID:      "c1",
		ClientID:       "cl1",
		SaleType:       entity.SaleCash,
		Estab:          "001",
		PtoEmi:         "001",
		Sequential:     "000000123",
		IssueDate:      issue,
		SubtotalExempt: dec("0"),
		SubtotalTaxed:  dec("20.00"),
		DiscountTotal:  dec("0.00"),
		TaxTotal:       dec("3.00"),
		GrandTotal:     dec("23.00"),
		AccessKey:      "2908202601179001234500110010010000001231234567811",
	}
	lines := []*entity.InvoiceLine{{
		ID:          "l1",
		InvoiceID:   "inv-1",
		ProductID:   "p1",
		Quantity:    dec("2"),
		UnitPrice:   dec("10.00"),
		TaxRateID:   "iva15",
		TaxPercent:  dec("15"),
		Subtotal:    dec("20.00"),
		TaxableBase: dec("20.00"),
		TaxAmount:   dec("3.00"),
	}}
	return billing.InvoiceDocument{
		Invoice: inv,
		Lines:   lines,
		Company: &entity.Company{
			ID: "c1", RUC: "1790012345001", RazonSocial: "Comercial Andina S.A.",
			DirMatriz: "Av. Amazonas N24-03, Quito", Estab: "001", PtoEmi: "001",
			ObligadoContabilidad: true,
		},
		Client:          &entity.Client{ID: "cl1", Name: "Ana Suárez", TaxID: "0926484571"},
		PaymentCode:     sricat.PaymentCash,
		PercentageCodes: map[string]string{"iva15": sricat.IVARate15},
		Products: map[string]*entity.Product{
			"p1": {ID: "p1", SKU: "SKU-1", Name: "Café molido 400g"},
		},
	}
}

func TestBuild_EstructuraFactura(t *testing.T) {
	b := NewXMLBuilderService(sricat.AmbientePruebas, sricat.EmisionNormal)
	out, err := b.Build(sampleDocument())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)

	assert.Equal(t, "factura", root.Tag)
	assert.Equal(t, "comprobante", root.SelectAttrValue("id", ""))
	assert.Equal(t, "1.1.0", root.SelectAttrValue("version", ""))

	trib := root.FindElement("infoTributaria")
	require.NotNil(t, trib)
	assert.Equal(t, "1", trib.FindElement("ambiente").Text())
	assert.Equal(t, "1790012345001", trib.FindElement("ruc").Text())
	assert.Equal(t, "01", trib.FindElement("codDoc").Text())
	assert.Equal(t, "000000123", trib.FindElement("secuencial").Text())
	assert.Len(t, trib.FindElement("claveAcceso").Text(), 49)

	info := root.FindElement("infoFactura")
	require.NotNil(t, info)
	assert.Equal(t, "29/08/2026", info.FindElement("fechaEmision").Text())
	assert.Equal(t, "SI", info.FindElement("obligadoContabilidad").Text())
	assert.Equal(t, "05", info.FindElement("tipoIdentificacionComprador").Text())
	assert.Equal(t, "20.00", info.FindElement("totalSinImpuestos").Text())
	assert.Equal(t, "23.00", info.FindElement("importeTotal").Text())
	assert.Equal(t, "DOLAR", info.FindElement("moneda").Text())

	imp := info.FindElement("totalConImpuestos/totalImpuesto")
	require.NotNil(t, imp)
	assert.Equal(t, "2", imp.FindElement("codigo").Text())
	assert.Equal(t, "4", imp.FindElement("codigoPorcentaje").Text())
	assert.Equal(t, "20.00", imp.FindElement("baseImponible").Text())
	assert.Equal(t, "3.00", imp.FindElement("valor").Text())

	pago := info.FindElement("pagos/pago")
	require.NotNil(t, pago)
	assert.Equal(t, "01", pago.FindElement("formaPago").Text())
	assert.Equal(t, "23.00", pago.FindElement("total").Text())
	assert.Nil(t, pago.FindElement("plazo"), "venta de contado no lleva plazo")
}

func TestBuild_Detalle(t *testing.T) {
	b := NewXMLBuilderService(sricat.AmbientePruebas, sricat.EmisionNormal)
	out, err := b.Build(sampleDocument())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	det := doc.FindElement("//detalles/detalle")
	require.NotNil(t, det)
	assert.Equal(t, "SKU-1", det.FindElement("codigoPrincipal").Text())
	// Diacríticos eliminados para el validador del SRI.
	assert.Equal(t, "Cafe molido 400g", det.FindElement("descripcion").Text())
	assert.Equal(t, "2.000000", det.FindElement("cantidad").Text())
	assert.Equal(t, "10.000000", det.FindElement("precioUnitario").Text())
	assert.Equal(t, "20.00", det.FindElement("precioTotalSinImpuesto").Text())

	imp := det.FindElement("impuestos/impuesto")
	require.NotNil(t, imp)
	assert.Equal(t, "4", imp.FindElement("codigoPorcentaje").Text())
	assert.Equal(t, "15.00", imp.FindElement("tarifa").Text())
}

func TestBuild_VentaCreditoLlevaPlazo(t *testing.T) {
	docIn := sampleDocument()
	docIn.Invoice.SaleType = entity.SaleCredit
	docIn.Invoice.CreditDays = 30
	docIn.PaymentCode = sricat.PaymentBankTransfer

	b := NewXMLBuilderService(sricat.AmbientePruebas, sricat.EmisionNormal)
	out, err := b.Build(docIn)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	pago := doc.FindElement("//pagos/pago")
	require.NotNil(t, pago)
	assert.Equal(t, "20", pago.FindElement("formaPago").Text())
	assert.Equal(t, "30", pago.FindElement("plazo").Text())
	assert.Equal(t, "dias", pago.FindElement("unidadTiempo").Text())
}

func TestBuild_AgrupaImpuestosPorCodigo(t *testing.T) {
	docIn := sampleDocument()
	docIn.Lines = append(docIn.Lines, &entity.InvoiceLine{
		ID: "l2", InvoiceID: "inv-1", ProductID: "p1",
		Quantity: dec("1"), UnitPrice: dec("5.00"),
		TaxRateID: "iva0", TaxPercent: dec("0"),
		Subtotal: dec("5.00"), TaxableBase: dec("5.00"), TaxAmount: dec("0"),
	})
	docIn.PercentageCodes["iva0"] = sricat.IVARate0

	b := NewXMLBuilderService(sricat.AmbientePruebas, sricat.EmisionNormal)
	out, err := b.Build(docIn)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	totals := doc.FindElements("//totalConImpuestos/totalImpuesto")
	require.Len(t, totals, 2)
	assert.Equal(t, "4", totals[0].FindElement("codigoPorcentaje").Text())
	assert.Equal(t, "0", totals[1].FindElement("codigoPorcentaje").Text())
	assert.Equal(t, "5.00", totals[1].FindElement("baseImponible").Text())
}

func TestBuild_SinLineasFalla(t *testing.T) {
	docIn := sampleDocument()
	docIn.Lines = nil
	b := NewXMLBuilderService(sricat.AmbientePruebas, sricat.EmisionNormal)
	_, err := b.Build(docIn)
	assert.Error(t, err)
}
