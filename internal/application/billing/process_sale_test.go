package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/application/inventory"
	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	sridom "github.com/dvillacis/puntoventa-api/internal/domain/sri"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
	"github.com/dvillacis/puntoventa-api/pkg/sri"
)

// Repositorios en memoria para el procesador de ventas. El runner restaura un
// snapshot completo cuando fn falla: o toda la venta o nada.

type memCompanyRepo struct{ items map[string]*entity.Company }

func (m *memCompanyRepo) Create(c *entity.Company) error { m.items[c.ID] = c; return nil }
func (m *memCompanyRepo) GetByID(id string) (*entity.Company, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}
func (m *memCompanyRepo) List() ([]*entity.Company, error) { return nil, nil }
func (m *memCompanyRepo) NextSequential(id string) (int64, error) {
	c, ok := m.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	c.LastSequential++
	return c.LastSequential, nil
}

type memProductRepo struct{ items map[string]*entity.Product }

func (m *memProductRepo) Create(p *entity.Product) error { m.items[p.ID] = p; return nil }
func (m *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
func (m *memProductRepo) GetForUpdate(id string) (*entity.Product, error) { return m.GetByID(id) }
func (m *memProductRepo) List(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (m *memProductRepo) Update(p *entity.Product) error                   { m.items[p.ID] = p; return nil }
func (m *memProductRepo) UpdateStockAndStatus(id string, stock decimal.Decimal, status string) error {
	p, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	p.Status = status
	return nil
}
func (m *memProductRepo) SetStatus(id, status string) error {
	p, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

type memMovementRepo struct{ items []*entity.StockMovement }

func (m *memMovementRepo) Create(mov *entity.StockMovement) error {
	m.items = append(m.items, mov)
	return nil
}
func (m *memMovementRepo) ListByProduct(string, int, int) ([]*entity.StockMovement, error) {
	return m.items, nil
}

type memInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	lines    []*entity.InvoiceLine
}

func (m *memInvoiceRepo) Create(i *entity.Invoice) error { m.invoices[i.ID] = i; return nil }
func (m *memInvoiceRepo) CreateLine(l *entity.InvoiceLine) error {
	m.lines = append(m.lines, l)
	return nil
}
func (m *memInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	i, ok := m.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *i
	return &cp, nil
}
func (m *memInvoiceRepo) GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error) {
	var out []*entity.InvoiceLine
	for _, l := range m.lines {
		if l.InvoiceID == invoiceID {
			out = append(out, l)
		}
	}
	return out, nil
}
func (m *memInvoiceRepo) UpdateSriFields(i *entity.Invoice) error { m.invoices[i.ID] = i; return nil }
func (m *memInvoiceRepo) GetSriStatus(id string) (*entity.Invoice, error) { return m.GetByID(id) }
func (m *memInvoiceRepo) ListByCompany(string, int, int) ([]*entity.Invoice, error) {
	return nil, nil
}

type memReceivableRepo struct{ items map[string]*entity.AccountReceivable }

func (m *memReceivableRepo) Create(a *entity.AccountReceivable) error { m.items[a.ID] = a; return nil }
func (m *memReceivableRepo) GetByID(id string) (*entity.AccountReceivable, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}
func (m *memReceivableRepo) GetForUpdate(id string) (*entity.AccountReceivable, error) {
	return m.GetByID(id)
}
func (m *memReceivableRepo) Update(a *entity.AccountReceivable) error { m.items[a.ID] = a; return nil }
func (m *memReceivableRepo) ListByCompany(string, int, int) ([]*entity.AccountReceivable, error) {
	return nil, nil
}

type memClientRepo struct{ items map[string]*entity.Client }

func (m *memClientRepo) Create(c *entity.Client) error { m.items[c.ID] = c; return nil }
func (m *memClientRepo) GetByID(id string) (*entity.Client, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}
func (m *memClientRepo) List(string, int, int) ([]*entity.Client, error) { return nil, nil }

type memTaxRateRepo struct{ items map[string]*entity.TaxRate }

func (m *memTaxRateRepo) Create(r *entity.TaxRate) error { m.items[r.ID] = r; return nil }
func (m *memTaxRateRepo) GetByID(id string) (*entity.TaxRate, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}
func (m *memTaxRateRepo) List() ([]*entity.TaxRate, error) { return nil, nil }

type memDiscountRepo struct{ items map[string]*entity.Discount }

func (m *memDiscountRepo) Create(d *entity.Discount) error { m.items[d.ID] = d; return nil }
func (m *memDiscountRepo) GetByID(id string) (*entity.Discount, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}
func (m *memDiscountRepo) List() ([]*entity.Discount, error) { return nil, nil }

type memPaymentMethodRepo struct{ items map[string]*entity.PaymentMethod }

func (m *memPaymentMethodRepo) Create(p *entity.PaymentMethod) error { m.items[p.ID] = p; return nil }
func (m *memPaymentMethodRepo) GetByID(id string) (*entity.PaymentMethod, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
func (m *memPaymentMethodRepo) List() ([]*entity.PaymentMethod, error) { return nil, nil }

type memSaleTxRunner struct {
	mu          sync.Mutex
	companies   *memCompanyRepo
	products    *memProductRepo
	movements   *memMovementRepo
	invoices    *memInvoiceRepo
	receivables *memReceivableRepo
}

func (m *memSaleTxRunner) RunSale(_ context.Context, fn func(r SaleTxRepos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapCompanies := map[string]*entity.Company{}
	for k, v := range m.companies.items {
		cp := *v
		snapCompanies[k] = &cp
	}
	snapProducts := map[string]*entity.Product{}
	for k, v := range m.products.items {
		cp := *v
		snapProducts[k] = &cp
	}
	snapMoves := len(m.movements.items)
	snapInvoices := map[string]*entity.Invoice{}
	for k, v := range m.invoices.invoices {
		cp := *v
		snapInvoices[k] = &cp
	}
	snapLines := len(m.invoices.lines)
	snapAR := map[string]*entity.AccountReceivable{}
	for k, v := range m.receivables.items {
		cp := *v
		snapAR[k] = &cp
	}

	err := fn(SaleTxRepos{
		Companies:   m.companies,
		Products:    m.products,
		Movements:   m.movements,
		Invoices:    m.invoices,
		Receivables: m.receivables,
	})
	if err != nil {
		m.companies.items = snapCompanies
		m.products.items = snapProducts
		m.movements.items = m.movements.items[:snapMoves]
		m.invoices.invoices = snapInvoices
		m.invoices.lines = m.invoices.lines[:snapLines]
		m.receivables.items = snapAR
	}
	return err
}

type recordingSubmitter struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingSubmitter) ProcessAsync(invoiceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, invoiceID)
}

type saleFixture struct {
	processor   *SaleProcessor
	companies   *memCompanyRepo
	products    *memProductRepo
	movements   *memMovementRepo
	invoices    *memInvoiceRepo
	receivables *memReceivableRepo
	submitter   *recordingSubmitter
}

func dec2(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	companies := &memCompanyRepo{items: map[string]*entity.Company{
		"c1": {
			ID:             "c1",
			RUC:            "1790012345001",
			RazonSocial:    "Comercial Andina S.A.",
			Estab:          "001",
			PtoEmi:         "001",
			LastSequential: 0,
			Status:         "active",
		},
	}}
	products := &memProductRepo{items: map[string]*entity.Product{
		"p1": {ID: "p1", CompanyID: "c1", SKU: "SKU-1", Name: "Arroz 5kg", Price: dec2("10.00"), Stock: dec2("20"), Status: entity.ProductActive},
		"p2": {ID: "p2", CompanyID: "c1", SKU: "SKU-2", Name: "Aceite 1L", Price: dec2("4.50"), Stock: dec2("5"), Status: entity.ProductActive},
	}}
	movements := &memMovementRepo{}
	invoices := &memInvoiceRepo{invoices: map[string]*entity.Invoice{}}
	receivables := &memReceivableRepo{items: map[string]*entity.AccountReceivable{}}
	clients := &memClientRepo{items: map[string]*entity.Client{
		"cl1": {ID: "cl1", CompanyID: "c1", TaxID: "0926484571", Name: "Ana Suárez"},
	}}
	taxRates := &memTaxRateRepo{items: map[string]*entity.TaxRate{
		"iva15": {ID: "iva15", Code: sri.TaxCodeIVA, PercentageCode: sri.IVARate15, Percent: dec2("15"), Active: true},
		"iva0":  {ID: "iva0", Code: sri.TaxCodeIVA, PercentageCode: sri.IVARate0, Percent: dec2("0"), Active: true},
	}}
	discounts := &memDiscountRepo{items: map[string]*entity.Discount{
		"d10": {ID: "d10", Percent: dec2("10"), Active: true},
	}}
	payments := &memPaymentMethodRepo{items: map[string]*entity.PaymentMethod{
		"efectivo": {ID: "efectivo", SRICode: sri.PaymentCash, Active: true},
	}}

	tx := &memSaleTxRunner{
		companies:   companies,
		products:    products,
		movements:   movements,
		invoices:    invoices,
		receivables: receivables,
	}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	inv := inventory.NewUsecase(nil, products, movements, log)
	submitter := &recordingSubmitter{}
	processor := NewSaleProcessor(tx, clients, taxRates, discounts, payments, inv, submitter,
		SRIParams{Environment: sri.AmbientePruebas, EmissionType: sri.EmisionNormal}, log)

	return &saleFixture{
		processor:   processor,
		companies:   companies,
		products:    products,
		movements:   movements,
		invoices:    invoices,
		receivables: receivables,
		submitter:   submitter,
	}
}

func cashRequest() dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		ClientID:        "cl1",
		PaymentMethodID: "efectivo",
		SaleType:        entity.SaleCash,
		Lines: []dto.SaleLineRequest{
			{ProductID: "p1", Quantity: "2", TaxRateID: "iva15"},
		},
	}
}

func TestProcessSale_ContadoCompleta(t *testing.T) {
	fx := newSaleFixture(t)

	inv, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", cashRequest())
	require.NoError(t, err)

	// Totales: 2 × 10.00 con IVA 15% = 20.00 + 3.00
	assert.True(t, inv.SubtotalTaxed.Equal(dec2("20.00")))
	assert.True(t, inv.TaxTotal.Equal(dec2("3.00")))
	assert.True(t, inv.GrandTotal.Equal(dec2("23.00")))

	// Numeración y clave de acceso.
	assert.Equal(t, "001-001-000000001", inv.Number())
	assert.Equal(t, sridom.StatusPending, inv.SriStatus)
	require.Len(t, inv.AccessKey, 49)
	assert.NoError(t, sri.ValidateAccessKey(inv.AccessKey))
	assert.Contains(t, inv.AccessKey, "1790012345001")

	// Stock deducido con su entrada de kardex enlazada a la factura.
	p, _ := fx.products.GetByID("p1")
	assert.True(t, p.Stock.Equal(dec2("18")))
	require.Len(t, fx.movements.items, 1)
	assert.Equal(t, entity.MovementSale, fx.movements.items[0].Type)
	assert.Equal(t, inv.ID, fx.movements.items[0].ReferenceID)

	// Contado: sin cuenta por cobrar. El envío SRI quedó disparado.
	assert.Empty(t, fx.receivables.items)
	assert.Equal(t, []string{inv.ID}, fx.submitter.ids)
}

func TestProcessSale_CreditoCreaCuentaPorCobrar(t *testing.T) {
	fx := newSaleFixture(t)

	req := cashRequest()
	req.SaleType = entity.SaleCredit
	req.CreditDays = 30

	inv, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", req)
	require.NoError(t, err)

	require.Len(t, fx.receivables.items, 1)
	for _, ar := range fx.receivables.items {
		assert.Equal(t, inv.ID, ar.InvoiceID)
		assert.Equal(t, "cl1", ar.ClientID)
		assert.True(t, ar.Amount.Equal(inv.GrandTotal))
		assert.Equal(t, entity.AccountPending, ar.Status)
		wantDue := inv.IssueDate.AddDate(0, 0, 30)
		assert.WithinDuration(t, wantDue, ar.DueDate, time.Second)
	}
}

func TestProcessSale_CreditoSinPlazo(t *testing.T) {
	fx := newSaleFixture(t)

	req := cashRequest()
	req.SaleType = entity.SaleCredit
	req.CreditDays = 0

	_, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", req)
	assert.ErrorIs(t, err, domain.ErrInvalidCredit)
}

func TestProcessSale_CarritoVacio(t *testing.T) {
	fx := newSaleFixture(t)

	req := cashRequest()
	req.Lines = nil
	_, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", req)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestProcessSale_LineaSinTarifa(t *testing.T) {
	fx := newSaleFixture(t)

	req := cashRequest()
	req.Lines[0].TaxRateID = ""
	_, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", req)
	assert.ErrorIs(t, err, domain.ErrMissingTaxRate)
}

func TestProcessSale_StockInsuficienteRevierteTodo(t *testing.T) {
	fx := newSaleFixture(t)

	req := cashRequest()
	req.Lines = []dto.SaleLineRequest{
		{ProductID: "p1", Quantity: "2", TaxRateID: "iva15"},
		{ProductID: "p2", Quantity: "50", TaxRateID: "iva15"}, // stock 5
	}

	_, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", req)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada quedó a medias: ni factura, ni kardex, ni stock, ni secuencial.
	assert.Empty(t, fx.invoices.invoices)
	assert.Empty(t, fx.invoices.lines)
	assert.Empty(t, fx.movements.items)
	p1, _ := fx.products.GetByID("p1")
	assert.True(t, p1.Stock.Equal(dec2("20")))
	assert.EqualValues(t, 0, fx.companies.items["c1"].LastSequential, "el secuencial no se consume en ventas fallidas")
	assert.Empty(t, fx.submitter.ids, "el envío SRI no se dispara si la venta falla")
}

func TestProcessSale_DescuentoAplicadoEnLinea(t *testing.T) {
	fx := newSaleFixture(t)

	req := cashRequest()
	req.Lines[0].DiscountID = "d10"

	inv, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", req)
	require.NoError(t, err)

	// 20.00 − 10% = 18.00; IVA 15% sobre 18.00 = 2.70
	assert.True(t, inv.DiscountTotal.Equal(dec2("2.00")))
	assert.True(t, inv.SubtotalTaxed.Equal(dec2("18.00")))
	assert.True(t, inv.TaxTotal.Equal(dec2("2.70")))
	assert.True(t, inv.GrandTotal.Equal(dec2("20.70")))

	lines, _ := fx.invoices.GetLinesByInvoiceID(inv.ID)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(dec2("10.00")), "el precio queda congelado en la línea")
	assert.True(t, lines[0].DiscountPercent.Equal(dec2("10")))
}

func TestProcessSale_SecuencialesConsecutivos(t *testing.T) {
	fx := newSaleFixture(t)

	a, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", cashRequest())
	require.NoError(t, err)
	b, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", cashRequest())
	require.NoError(t, err)

	assert.Equal(t, "000000001", a.Sequential)
	assert.Equal(t, "000000002", b.Sequential)
	assert.NotEqual(t, a.AccessKey, b.AccessKey)
}

func TestProcessSale_ClienteInexistente(t *testing.T) {
	fx := newSaleFixture(t)

	req := cashRequest()
	req.ClientID = "nope"
	_, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessSale_ProductoDescontinuado(t *testing.T) {
	fx := newSaleFixture(t)
	fx.products.items["p1"].Status = entity.ProductDiscontinued

	_, err := fx.processor.ProcessSale(context.Background(), "c1", "u1", cashRequest())
	assert.ErrorIs(t, err, domain.ErrProductDiscontinued)
	assert.Empty(t, fx.invoices.invoices)
}
