package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
	sridom "github.com/dvillacis/puntoventa-api/internal/domain/sri"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
	"github.com/dvillacis/puntoventa-api/pkg/sri"
)

// Orchestrator lleva cada factura por el ciclo SRI: construir XML, firmar,
// enviar a recepción y consultar autorización. Cada transición de estado pasa
// por la máquina de estados del dominio y deja registro en la bitácora.
type Orchestrator struct {
	invoices  repository.InvoiceRepository
	logs      repository.SriLogRepository
	companies repository.CompanyRepository
	clients   repository.ClientRepository
	payments  repository.PaymentMethodRepository
	taxRates  repository.TaxRateRepository
	products  repository.ProductRepository

	builder XMLBuilder
	signer  sri.Signer
	keys    KeyProvider
	client  SRIClient

	appEnv      string // dev = simula autorización sin llamar al SRI
	timeout     time.Duration
	maxAttempts int
	backoffBase time.Duration
	log         *logger.Logger
}

type OrchestratorDeps struct {
	Invoices  repository.InvoiceRepository
	Logs      repository.SriLogRepository
	Companies repository.CompanyRepository
	Clients   repository.ClientRepository
	Payments  repository.PaymentMethodRepository
	TaxRates  repository.TaxRateRepository
	Products  repository.ProductRepository
	Builder   XMLBuilder
	Signer    sri.Signer
	Keys      KeyProvider
	Client    SRIClient
	AppEnv    string
	Logger    *logger.Logger
}

func NewOrchestrator(d OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		invoices:    d.Invoices,
		logs:        d.Logs,
		companies:   d.Companies,
		clients:     d.Clients,
		payments:    d.Payments,
		taxRates:    d.TaxRates,
		products:    d.Products,
		builder:     d.Builder,
		signer:      d.Signer,
		keys:        d.Keys,
		client:      d.Client,
		appEnv:      d.AppEnv,
		timeout:     90 * time.Second,
		maxAttempts: 3,
		backoffBase: 2 * time.Second,
		log:         d.Logger,
	}
}

// ProcessAsync procesa la factura en segundo plano. Usa context.Background
// porque el ciclo SRI sobrevive a la petición HTTP que disparó la venta.
func (o *Orchestrator) ProcessAsync(invoiceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		defer cancel()
		if err := o.Process(ctx, invoiceID); err != nil {
			o.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("procesamiento SRI falló")
		}
	}()
}

// Process ejecuta el ciclo completo para una factura PENDIENTE: firma, envío
// y autorización. Cualquier fallo deja la factura en un estado desde el cual
// se puede reintentar.
func (o *Orchestrator) Process(ctx context.Context, invoiceID string) error {
	inv, err := o.invoices.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if inv.SriStatus != sridom.StatusPending {
		return domain.ErrInvalidTransition
	}

	signed, err := o.buildAndSign(ctx, inv)
	if err != nil {
		// La factura queda PENDIENTE: corregir el certificado y reintentar.
		inv.SriMessages = "fallo de firma: " + err.Error()
		o.transition(inv, sridom.StatusPending, inv.SriMessages)
		return err
	}
	inv.SignedXML = string(signed)
	if err := o.transition(inv, sridom.StatusSigned, "comprobante firmado"); err != nil {
		return err
	}
	return o.submitSigned(ctx, inv, signed)
}

// submitSigned continúa el ciclo de una factura ya FIRMADA: envío a recepción
// y resolución de la autorización. En dev no hay conectividad con el SRI y la
// autorización se simula localmente.
func (o *Orchestrator) submitSigned(ctx context.Context, inv *entity.Invoice, signed []byte) error {
	if o.appEnv == "dev" {
		return o.simulateAuthorization(inv)
	}

	reception, err := o.submitWithRetry(ctx, signed)
	if err != nil {
		// Transporte agotado: sigue FIRMADA, el reenvío la retoma.
		o.appendLog(inv, inv.SriStatus, inv.SriStatus, "recepción inalcanzable: "+err.Error())
		return err
	}
	if reception.Status != sri.ReceptionReceived {
		inv.SriMessages = reception.Messages
		return o.transition(inv, sridom.StatusReturned, reception.Messages)
	}
	if err := o.transition(inv, sridom.StatusReceived, "recibida por el SRI"); err != nil {
		return err
	}

	return o.resolveAuthorization(ctx, inv)
}

// CheckAuthorization consulta la autorización de una factura RECIBIDA cuyo
// resultado quedó EN PROCESO.
func (o *Orchestrator) CheckAuthorization(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	inv, err := o.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.SriStatus != sridom.StatusReceived {
		return inv, nil
	}
	if err := o.resolveAuthorization(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Resubmit retoma manualmente una factura atascada. Una DEVUELTA vuelve a
// PENDIENTE y reinicia el ciclo completo; una PENDIENTE con fallo de firma
// reintenta desde la firma; una FIRMADA cuyo envío agotó el transporte
// reanuda en la recepción sin volver a firmar. Es la única vía de salida de
// DEVUELTA.
func (o *Orchestrator) Resubmit(ctx context.Context, invoiceID string) error {
	inv, err := o.invoices.GetByID(invoiceID)
	if err != nil {
		return err
	}
	switch inv.SriStatus {
	case sridom.StatusReturned:
		if err := o.transition(inv, sridom.StatusPending, "reenvío manual"); err != nil {
			return err
		}
		return o.Process(ctx, invoiceID)
	case sridom.StatusPending:
		return o.Process(ctx, invoiceID)
	case sridom.StatusSigned:
		o.appendLog(inv, inv.SriStatus, inv.SriStatus, "reenvío manual desde firmada")
		return o.submitSigned(ctx, inv, []byte(inv.SignedXML))
	default:
		return domain.ErrInvalidTransition
	}
}

// Annul anula una factura AUTORIZADA. La anulación ante el SRI se tramita por
// el portal del contribuyente; aquí queda el registro contable y la bitácora.
func (o *Orchestrator) Annul(ctx context.Context, invoiceID, reason string) error {
	if reason == "" {
		return domain.ErrInvalidInput
	}
	inv, err := o.invoices.GetByID(invoiceID)
	if err != nil {
		return err
	}
	return o.transition(inv, sridom.StatusAnnulled, "anulada: "+reason)
}

// StatusHistory devuelve la bitácora de transiciones de una factura.
func (o *Orchestrator) StatusHistory(ctx context.Context, invoiceID string) ([]*entity.SriStatusLog, error) {
	if _, err := o.invoices.GetByID(invoiceID); err != nil {
		return nil, err
	}
	return o.logs.ListByInvoice(invoiceID)
}

// Document arma el documento completo de una factura existente; lo usan el
// constructor de XML y la generación del RIDE.
func (o *Orchestrator) Document(ctx context.Context, invoiceID string) (InvoiceDocument, error) {
	inv, err := o.invoices.GetByID(invoiceID)
	if err != nil {
		return InvoiceDocument{}, err
	}
	return o.buildDocument(inv)
}

func (o *Orchestrator) buildDocument(inv *entity.Invoice) (InvoiceDocument, error) {
	lines, err := o.invoices.GetLinesByInvoiceID(inv.ID)
	if err != nil {
		return InvoiceDocument{}, err
	}
	company, err := o.companies.GetByID(inv.CompanyID)
	if err != nil {
		return InvoiceDocument{}, err
	}
	client, err := o.clients.GetByID(inv.ClientID)
	if err != nil {
		return InvoiceDocument{}, err
	}
	method, err := o.payments.GetByID(inv.PaymentMethodID)
	if err != nil {
		return InvoiceDocument{}, err
	}
	codes := make(map[string]string, len(lines))
	products := make(map[string]*entity.Product, len(lines))
	for _, l := range lines {
		if _, ok := codes[l.TaxRateID]; !ok {
			rate, err := o.taxRates.GetByID(l.TaxRateID)
			if err != nil {
				return InvoiceDocument{}, err
			}
			codes[l.TaxRateID] = rate.PercentageCode
		}
		if _, ok := products[l.ProductID]; !ok {
			p, err := o.products.GetByID(l.ProductID)
			if err != nil {
				return InvoiceDocument{}, err
			}
			products[l.ProductID] = p
		}
	}
	return InvoiceDocument{
		Invoice:         inv,
		Lines:           lines,
		Company:         company,
		Client:          client,
		PaymentCode:     method.SRICode,
		PercentageCodes: codes,
		Products:        products,
	}, nil
}

func (o *Orchestrator) buildAndSign(ctx context.Context, inv *entity.Invoice) ([]byte, error) {
	doc, err := o.buildDocument(inv)
	if err != nil {
		return nil, err
	}
	xmlBytes, err := o.builder.Build(doc)
	if err != nil {
		return nil, err
	}
	key, err := o.keys.ActiveSigningKey(ctx, inv.CompanyID)
	if err != nil {
		return nil, err
	}
	return o.signer.Sign(xmlBytes, key)
}

// submitWithRetry reintenta solo errores de transporte, con espera
// exponencial. Una respuesta del SRI, buena o mala, corta el ciclo.
func (o *Orchestrator) submitWithRetry(ctx context.Context, signed []byte) (ReceptionResult, error) {
	var lastErr error
	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		if attempt > 0 {
			wait := o.backoffBase * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ReceptionResult{}, ctx.Err()
			}
		}
		result, err := o.client.Submit(ctx, signed)
		if err == nil {
			return result, nil
		}
		lastErr = err
		o.log.Warn().Err(err).Int("attempt", attempt+1).Msg("recepción SRI falló, reintentando")
	}
	return ReceptionResult{}, lastErr
}

func (o *Orchestrator) resolveAuthorization(ctx context.Context, inv *entity.Invoice) error {
	auth, err := o.client.Authorize(ctx, inv.AccessKey)
	if err != nil {
		o.appendLog(inv, inv.SriStatus, inv.SriStatus, "autorización inalcanzable: "+err.Error())
		return err
	}
	switch auth.Status {
	case sri.AuthorizationAuthorized:
		inv.AuthorizationNumber = auth.Number
		at := auth.AuthorizedAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		inv.AuthorizedAt = &at
		return o.transition(inv, sridom.StatusAuthorized, "autorizada")
	case sri.AuthorizationInProcess:
		// Sigue RECIBIDA; el polling de estado volverá a consultar.
		o.appendLog(inv, inv.SriStatus, inv.SriStatus, "autorización en proceso")
		return nil
	default:
		inv.SriMessages = auth.Messages
		return o.transition(inv, sridom.StatusRejected, auth.Messages)
	}
}

// simulateAuthorization autoriza localmente en ambiente dev, donde no hay
// conectividad con el SRI. El número de autorización simulado es la clave de
// acceso, igual que en el esquema offline real.
func (o *Orchestrator) simulateAuthorization(inv *entity.Invoice) error {
	if err := o.transition(inv, sridom.StatusReceived, "recepción simulada (dev)"); err != nil {
		return err
	}
	now := time.Now().UTC()
	inv.AuthorizationNumber = inv.AccessKey
	inv.AuthorizedAt = &now
	return o.transition(inv, sridom.StatusAuthorized, "autorización simulada (dev)")
}

// transition aplica la máquina de estados, persiste la factura y deja
// bitácora. Una transición inválida no toca la base.
func (o *Orchestrator) transition(inv *entity.Invoice, to, message string) error {
	next, err := sridom.Transition(inv.SriStatus, to)
	if err != nil {
		o.log.Error().
			Str("invoice_id", inv.ID).
			Str("from", inv.SriStatus).
			Str("to", to).
			Msg("transición de estado inválida")
		return err
	}
	from := inv.SriStatus
	inv.SriStatus = next
	inv.UpdatedAt = time.Now().UTC()
	if err := o.invoices.UpdateSriFields(inv); err != nil {
		inv.SriStatus = from
		return err
	}
	o.appendLog(inv, from, next, message)
	return nil
}

func (o *Orchestrator) appendLog(inv *entity.Invoice, from, to, message string) {
	entry := &entity.SriStatusLog{
		ID:         uuid.NewString(),
		InvoiceID:  inv.ID,
		FromStatus: from,
		ToStatus:   to,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.logs.Create(entry); err != nil {
		o.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo registrar la bitácora SRI")
	}
}
