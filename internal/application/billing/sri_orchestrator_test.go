package billing

import (
	"context"
	"crypto/tls"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	sridom "github.com/dvillacis/puntoventa-api/internal/domain/sri"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
	"github.com/dvillacis/puntoventa-api/pkg/sri"
)

type memSriLogRepo struct{ items []*entity.SriStatusLog }

func (m *memSriLogRepo) Create(l *entity.SriStatusLog) error {
	m.items = append(m.items, l)
	return nil
}
func (m *memSriLogRepo) ListByInvoice(invoiceID string) ([]*entity.SriStatusLog, error) {
	var out []*entity.SriStatusLog
	for _, l := range m.items {
		if l.InvoiceID == invoiceID {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubBuilder struct{ err error }

func (s *stubBuilder) Build(InvoiceDocument) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("<factura id=\"comprobante\"/>"), nil
}

type stubSigner struct{ err error }

func (s *stubSigner) Sign(xmlBytes []byte, _ tls.Certificate) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append(xmlBytes, []byte("<!--firmado-->")...), nil
}

type stubKeys struct{ err error }

func (s *stubKeys) ActiveSigningKey(context.Context, string) (tls.Certificate, error) {
	return tls.Certificate{}, s.err
}

// stubSRIClient guioniza las respuestas de recepción y autorización. Los
// errores en submitErrs se consumen uno por intento para probar el reintento.
type stubSRIClient struct {
	submitErrs  []error
	reception   ReceptionResult
	authErr     error
	auth        AuthorizationResult
	submitCalls int
	authCalls   int
}

func (s *stubSRIClient) Submit(context.Context, []byte) (ReceptionResult, error) {
	s.submitCalls++
	if len(s.submitErrs) > 0 {
		err := s.submitErrs[0]
		s.submitErrs = s.submitErrs[1:]
		if err != nil {
			return ReceptionResult{}, err
		}
	}
	return s.reception, nil
}

func (s *stubSRIClient) Authorize(context.Context, string) (AuthorizationResult, error) {
	s.authCalls++
	if s.authErr != nil {
		return AuthorizationResult{}, s.authErr
	}
	return s.auth, nil
}

type orchFixture struct {
	orch     *Orchestrator
	invoices *memInvoiceRepo
	logs     *memSriLogRepo
	client   *stubSRIClient
	builder  *stubBuilder
	signer   *stubSigner
	keys     *stubKeys
}

func newOrchFixture(t *testing.T, appEnv string) *orchFixture {
	t.Helper()
	invoices := &memInvoiceRepo{invoices: map[string]*entity.Invoice{}}
	logs := &memSriLogRepo{}
	companies := &memCompanyRepo{items: map[string]*entity.Company{
		"c1": {ID: "c1", RUC: "1790012345001", RazonSocial: "Comercial Andina S.A.", Estab: "001", PtoEmi: "001"},
	}}
	clients := &memClientRepo{items: map[string]*entity.Client{
		"cl1": {ID: "cl1", CompanyID: "c1", TaxID: "0926484571", Name: "Ana Suárez"},
	}}
	payments := &memPaymentMethodRepo{items: map[string]*entity.PaymentMethod{
		"efectivo": {ID: "efectivo", SRICode: sri.PaymentCash, Active: true},
	}}
	taxRates := &memTaxRateRepo{items: map[string]*entity.TaxRate{
		"iva15": {ID: "iva15", Code: sri.TaxCodeIVA, PercentageCode: sri.IVARate15, Percent: dec2("15"), Active: true},
	}}
	products := &memProductRepo{items: map[string]*entity.Product{
		"p1": {ID: "p1", CompanyID: "c1", SKU: "SKU-1", Name: "Arroz 5kg", Price: dec2("10.00"), Status: entity.ProductActive},
	}}

	builder := &stubBuilder{}
	signer := &stubSigner{}
	keys := &stubKeys{}
	client := &stubSRIClient{reception: ReceptionResult{Status: sri.ReceptionReceived}}

	orch := NewOrchestrator(OrchestratorDeps{
		Invoices:  invoices,
		Logs:      logs,
		Companies: companies,
		Clients:   clients,
		Payments:  payments,
		TaxRates:  taxRates,
		Products:  products,
		Builder:   builder,
		Signer:    signer,
		Keys:      keys,
		Client:    client,
		AppEnv:    appEnv,
		Logger:    logger.New(logger.Config{Env: "test", Level: "error"}),
	})
	orch.backoffBase = time.Millisecond // sin esperas reales en pruebas

	return &orchFixture{orch: orch, invoices: invoices, logs: logs, client: client, builder: builder, signer: signer, keys: keys}
}

func (fx *orchFixture) seedInvoice(status string) *entity.Invoice {
	inv := &entity.Invoice{
		ID:              "inv-1",
		CompanyID:       "c1",
		ClientID:        "cl1",
		PaymentMethodID: "efectivo",
		SaleType:        entity.SaleCash,
		Estab:           "001",
		PtoEmi:          "001",
		Sequential:      "000000001",
		IssueDate:       time.Now(),
		SriStatus:       status,
		AccessKey:       "2908202601179001234500110010010000001231234567811",
	}
	fx.invoices.invoices[inv.ID] = inv
	fx.invoices.lines = append(fx.invoices.lines, &entity.InvoiceLine{
		ID: "l1", InvoiceID: inv.ID, ProductID: "p1", Quantity: dec2("2"),
		UnitPrice: dec2("10.00"), TaxRateID: "iva15", TaxPercent: dec2("15"),
		Subtotal: dec2("20.00"), TaxableBase: dec2("20.00"), TaxAmount: dec2("3.00"),
	})
	return inv
}

func (fx *orchFixture) status(t *testing.T) string {
	t.Helper()
	inv, err := fx.invoices.GetByID("inv-1")
	require.NoError(t, err)
	return inv.SriStatus
}

func transitions(logs *memSriLogRepo) []string {
	var out []string
	for _, l := range logs.items {
		out = append(out, l.FromStatus+">"+l.ToStatus)
	}
	return out
}

func TestProcess_CicloCompletoAutorizado(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.client.auth = AuthorizationResult{
		Status:       sri.AuthorizationAuthorized,
		Number:       "2908202601179001234500110010010000001231234567811",
		AuthorizedAt: time.Now(),
	}

	require.NoError(t, fx.orch.Process(context.Background(), "inv-1"))

	inv, _ := fx.invoices.GetByID("inv-1")
	assert.Equal(t, sridom.StatusAuthorized, inv.SriStatus)
	assert.NotEmpty(t, inv.AuthorizationNumber)
	assert.NotNil(t, inv.AuthorizedAt)
	assert.NotEmpty(t, inv.SignedXML, "el XML firmado queda persistido")
	assert.Equal(t, []string{
		"PENDING>SIGNED",
		"SIGNED>RECEIVED",
		"RECEIVED>AUTHORIZED",
	}, transitions(fx.logs), "cada paso queda en la bitácora")
}

func TestProcess_FalloDeFirmaDejaPendiente(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.keys.err = domain.ErrNoActiveCertificate

	err := fx.orch.Process(context.Background(), "inv-1")
	assert.ErrorIs(t, err, domain.ErrNoActiveCertificate)

	// Queda PENDIENTE con el fallo en bitácora; se puede reintentar.
	assert.Equal(t, sridom.StatusPending, fx.status(t))
	require.NotEmpty(t, fx.logs.items)
	assert.Equal(t, "PENDING>PENDING", transitions(fx.logs)[0])
	assert.Contains(t, fx.logs.items[0].Message, "fallo de firma")
	assert.Zero(t, fx.client.submitCalls, "nada se envía sin firma")
}

func TestProcess_ContrasenaIncorrectaPermiteReintento(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.signer.err = errors.New("pkcs12: decryption password incorrect")

	require.Error(t, fx.orch.Process(context.Background(), "inv-1"))
	assert.Equal(t, sridom.StatusPending, fx.status(t))

	// Tras corregir el certificado, el mismo comprobante procesa completo.
	fx.signer.err = nil
	fx.client.auth = AuthorizationResult{Status: sri.AuthorizationAuthorized, Number: "x"}
	require.NoError(t, fx.orch.Process(context.Background(), "inv-1"))
	assert.Equal(t, sridom.StatusAuthorized, fx.status(t))
}

func TestProcess_DevueltaConMensajes(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.client.reception = ReceptionResult{
		Status:   sri.ReceptionReturned,
		Messages: "ERROR 45: secuencial registrado",
	}

	require.NoError(t, fx.orch.Process(context.Background(), "inv-1"))

	inv, _ := fx.invoices.GetByID("inv-1")
	assert.Equal(t, sridom.StatusReturned, inv.SriStatus)
	assert.Contains(t, inv.SriMessages, "secuencial registrado")
}

func TestProcess_RechazadaEnAutorizacion(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.client.auth = AuthorizationResult{
		Status:   sri.AuthorizationRejected,
		Messages: "ERROR 60: firma inválida",
	}

	require.NoError(t, fx.orch.Process(context.Background(), "inv-1"))

	inv, _ := fx.invoices.GetByID("inv-1")
	assert.Equal(t, sridom.StatusRejected, inv.SriStatus)
	assert.Contains(t, inv.SriMessages, "firma inválida")
}

func TestProcess_ReintentaTransporteYRecupera(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.client.submitErrs = []error{errors.New("timeout"), errors.New("timeout")}
	fx.client.auth = AuthorizationResult{Status: sri.AuthorizationAuthorized, Number: "x"}

	require.NoError(t, fx.orch.Process(context.Background(), "inv-1"))
	assert.Equal(t, 3, fx.client.submitCalls, "dos fallos y el tercero entra")
	assert.Equal(t, sridom.StatusAuthorized, fx.status(t))
}

func TestProcess_TransporteAgotadoQuedaFirmada(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.client.submitErrs = []error{errors.New("timeout"), errors.New("timeout"), errors.New("timeout")}

	err := fx.orch.Process(context.Background(), "inv-1")
	require.Error(t, err)
	assert.Equal(t, 3, fx.client.submitCalls)
	assert.Equal(t, sridom.StatusSigned, fx.status(t), "el agotamiento no inventa un estado SRI")
}

func TestProcess_EnProcesoQuedaRecibida(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.client.auth = AuthorizationResult{Status: sri.AuthorizationInProcess}

	require.NoError(t, fx.orch.Process(context.Background(), "inv-1"))
	assert.Equal(t, sridom.StatusReceived, fx.status(t))

	// El polling posterior resuelve la autorización.
	fx.client.auth = AuthorizationResult{Status: sri.AuthorizationAuthorized, Number: "x"}
	inv, err := fx.orch.CheckAuthorization(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, sridom.StatusAuthorized, inv.SriStatus)
}

func TestProcess_AmbienteDevSimulaAutorizacion(t *testing.T) {
	fx := newOrchFixture(t, "dev")
	seeded := fx.seedInvoice(sridom.StatusPending)

	require.NoError(t, fx.orch.Process(context.Background(), "inv-1"))

	inv, _ := fx.invoices.GetByID("inv-1")
	assert.Equal(t, sridom.StatusAuthorized, inv.SriStatus)
	assert.Equal(t, seeded.AccessKey, inv.AuthorizationNumber, "offline: el número de autorización es la clave de acceso")
	assert.Zero(t, fx.client.submitCalls, "dev jamás llama al SRI")
	assert.Zero(t, fx.client.authCalls)
}

func TestResubmit_DevueltaReiniciaCiclo(t *testing.T) {
	fx := newOrchFixture(t, "dev")
	fx.seedInvoice(sridom.StatusReturned)

	require.NoError(t, fx.orch.Resubmit(context.Background(), "inv-1"))
	assert.Equal(t, sridom.StatusAuthorized, fx.status(t))
	assert.Equal(t, "RETURNED>PENDING", transitions(fx.logs)[0])
}

func TestResubmit_PendienteReintentaDesdeLaFirma(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	fx.seedInvoice(sridom.StatusPending)
	fx.keys.err = domain.ErrNoActiveCertificate

	// Primer intento: sin certificado la factura queda PENDIENTE.
	require.Error(t, fx.orch.Process(context.Background(), "inv-1"))
	assert.Equal(t, sridom.StatusPending, fx.status(t))

	// El reenvío manual retoma desde la firma y completa el ciclo.
	fx.keys.err = nil
	fx.client.auth = AuthorizationResult{Status: sri.AuthorizationAuthorized, Number: "x"}
	require.NoError(t, fx.orch.Resubmit(context.Background(), "inv-1"))
	assert.Equal(t, sridom.StatusAuthorized, fx.status(t))
}

func TestResubmit_FirmadaReanudaEnRecepcion(t *testing.T) {
	fx := newOrchFixture(t, "prod")
	inv := fx.seedInvoice(sridom.StatusSigned)
	inv.SignedXML = "<factura id=\"comprobante\"/><!--firmado-->"
	// Sin certificado activo: si el reenvío intentara firmar de nuevo, fallaría.
	fx.keys.err = domain.ErrNoActiveCertificate
	fx.client.auth = AuthorizationResult{Status: sri.AuthorizationAuthorized, Number: "x"}

	require.NoError(t, fx.orch.Resubmit(context.Background(), "inv-1"))
	assert.Equal(t, sridom.StatusAuthorized, fx.status(t))
	assert.Equal(t, 1, fx.client.submitCalls, "reutiliza el XML ya firmado")
}

func TestResubmit_RechazaOtrosEstados(t *testing.T) {
	fx := newOrchFixture(t, "dev")
	fx.seedInvoice(sridom.StatusAuthorized)

	err := fx.orch.Resubmit(context.Background(), "inv-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAnnul_SoloAutorizada(t *testing.T) {
	fx := newOrchFixture(t, "dev")
	fx.seedInvoice(sridom.StatusAuthorized)

	require.NoError(t, fx.orch.Annul(context.Background(), "inv-1", "devolución del cliente"))
	assert.Equal(t, sridom.StatusAnnulled, fx.status(t))

	last := fx.logs.items[len(fx.logs.items)-1]
	assert.Contains(t, last.Message, "devolución del cliente")
}

func TestAnnul_RechazaNoAutorizada(t *testing.T) {
	fx := newOrchFixture(t, "dev")
	fx.seedInvoice(sridom.StatusPending)

	err := fx.orch.Annul(context.Background(), "inv-1", "motivo")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, sridom.StatusPending, fx.status(t))
}

func TestAnnul_RequiereMotivo(t *testing.T) {
	fx := newOrchFixture(t, "dev")
	fx.seedInvoice(sridom.StatusAuthorized)

	err := fx.orch.Annul(context.Background(), "inv-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcess_RechazaEstadosNoPendientes(t *testing.T) {
	fx := newOrchFixture(t, "dev")
	fx.seedInvoice(sridom.StatusAuthorized)

	err := fx.orch.Process(context.Background(), "inv-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
