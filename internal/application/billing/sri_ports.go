package billing

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
)

// InvoiceDocument agrupa todo lo necesario para construir el XML del
// comprobante: la factura con sus líneas ya congeladas más los datos del
// emisor y el comprador.
type InvoiceDocument struct {
	Invoice     *entity.Invoice
	Lines       []*entity.InvoiceLine
	Company     *entity.Company
	Client      *entity.Client
	PaymentCode string // código SRI de la forma de pago (tabla 24)
	// PercentageCodes mapea TaxRateID al código porcentaje SRI de la tarifa.
	PercentageCodes map[string]string
	// Products mapea ProductID al producto, para descripción y código principal.
	Products map[string]*entity.Product
}

// XMLBuilder arma el XML <factura> v1.1.0 sin firma.
type XMLBuilder interface {
	Build(doc InvoiceDocument) ([]byte, error)
}

// KeyProvider entrega la llave de firma activa de la empresa.
type KeyProvider interface {
	ActiveSigningKey(ctx context.Context, companyID string) (tls.Certificate, error)
}

// ReceptionResult respuesta del web service de recepción.
type ReceptionResult struct {
	Status   string // RECIBIDA | DEVUELTA
	Messages string // detalle de errores cuando DEVUELTA
}

// AuthorizationResult respuesta del web service de autorización.
type AuthorizationResult struct {
	Status       string // AUTORIZADO | NO AUTORIZADO | EN PROCESO
	Number       string // número de autorización (la clave de acceso en offline)
	AuthorizedAt time.Time
	Messages     string
}

// RIDEGenerator genera la representación impresa (RIDE) del comprobante.
type RIDEGenerator interface {
	GenerateRIDE(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// SRIClient habla con los web services SOAP del SRI. Un error de transporte
// (red caída, timeout) se devuelve como error; una respuesta negativa del SRI
// llega en el resultado.
type SRIClient interface {
	Submit(ctx context.Context, signedXML []byte) (ReceptionResult, error)
	Authorize(ctx context.Context, accessKey string) (AuthorizationResult, error)
}
