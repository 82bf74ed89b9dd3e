package billing

import (
	"context"

	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

// SaleTxRepos son los repositorios ligados a la transacción de venta: la
// numeración, el stock, la factura y la cuenta por cobrar se confirman o
// descartan juntos.
type SaleTxRepos struct {
	Companies   repository.CompanyRepository
	Products    repository.ProductRepository
	Movements   repository.StockMovementRepository
	Invoices    repository.InvoiceRepository
	Receivables repository.ReceivableRepository
}

// SaleTxRunner ejecuta fn dentro de la transacción de venta.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(r SaleTxRepos) error) error
}

// Submitter dispara el procesamiento SRI de una factura en segundo plano.
// La venta nunca espera al SRI.
type Submitter interface {
	ProcessAsync(invoiceID string)
}
