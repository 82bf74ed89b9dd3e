package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dvillacis/puntoventa-api/internal/application/billing"
	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

// SaleHandler maneja ventas, facturas y su ciclo SRI.
type SaleHandler struct {
	sales    *billing.SaleProcessor
	orch     *billing.Orchestrator
	ride     billing.RIDEGenerator
	invoices repository.InvoiceRepository
}

func NewSaleHandler(sales *billing.SaleProcessor, orch *billing.Orchestrator, ride billing.RIDEGenerator, invoices repository.InvoiceRepository) *SaleHandler {
	return &SaleHandler{sales: sales, orch: orch, ride: ride, invoices: invoices}
}

// Create procesa una venta: descuenta stock, emite la factura PENDIENTE y
// dispara el ciclo SRI en segundo plano.
// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	inv, err := h.sales.ProcessSale(c.Context(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleResponse{
		InvoiceID:  inv.ID,
		Number:     inv.Number(),
		AccessKey:  inv.AccessKey,
		SriStatus:  inv.SriStatus,
		GrandTotal: inv.GrandTotal.StringFixed(2),
	})
}

// GetByID obtiene la factura completa con sus líneas.
// GET /api/invoices/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.ownedInvoice(c)
	if err != nil {
		return domainError(c, err)
	}
	lines, err := h.invoices.GetLinesByInvoiceID(inv.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(invoiceResponse(inv, lines))
}

// List lista las facturas de la empresa, más reciente primero.
// GET /api/invoices
func (h *SaleHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	items, err := h.invoices.ListByCompany(GetCompanyID(c), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.InvoiceResponse, 0, len(items))
	for _, inv := range items {
		out = append(out, invoiceResponse(inv, nil))
	}
	return c.JSON(fiber.Map{"data": out, "meta": dto.ListMeta{Limit: limit, Offset: offset, Count: len(out)}})
}

// Status consulta ligera para el polling del punto de venta.
// GET /api/invoices/:id/status
func (h *SaleHandler) Status(c *fiber.Ctx) error {
	if _, err := h.ownedInvoice(c); err != nil {
		return domainError(c, err)
	}
	inv, err := h.invoices.GetSriStatus(c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.InvoiceStatusResponse{
		InvoiceID:           inv.ID,
		SriStatus:           inv.SriStatus,
		AuthorizationNumber: inv.AuthorizationNumber,
		AuthorizedAt:        inv.AuthorizedAt,
		SriMessages:         inv.SriMessages,
	})
}

// XML descarga el comprobante firmado.
// GET /api/invoices/:id/xml
func (h *SaleHandler) XML(c *fiber.Ctx) error {
	inv, err := h.ownedInvoice(c)
	if err != nil {
		return domainError(c, err)
	}
	if inv.SignedXML == "" {
		return respond(c, fiber.StatusConflict, "NOT_SIGNED", "la factura aún no está firmada")
	}
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+inv.AccessKey+`.xml"`)
	return c.SendString(inv.SignedXML)
}

// RIDE descarga la representación impresa en PDF.
// GET /api/invoices/:id/ride
func (h *SaleHandler) RIDE(c *fiber.Ctx) error {
	inv, err := h.ownedInvoice(c)
	if err != nil {
		return domainError(c, err)
	}
	doc, err := h.orch.Document(c.Context(), inv.ID)
	if err != nil {
		return domainError(c, err)
	}
	pdf, err := h.ride.GenerateRIDE(c.Context(), doc)
	if err != nil {
		return domainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+inv.Number()+`.pdf"`)
	return c.Send(pdf)
}

// CheckAuthorization vuelve a consultar la autorización de una factura
// RECIBIDA y devuelve el estado resultante.
// POST /api/invoices/:id/check-authorization
func (h *SaleHandler) CheckAuthorization(c *fiber.Ctx) error {
	inv, err := h.ownedInvoice(c)
	if err != nil {
		return domainError(c, err)
	}
	updated, err := h.orch.CheckAuthorization(c.Context(), inv.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.InvoiceStatusResponse{
		InvoiceID:           updated.ID,
		SriStatus:           updated.SriStatus,
		AuthorizationNumber: updated.AuthorizationNumber,
		AuthorizedAt:        updated.AuthorizedAt,
		SriMessages:         updated.SriMessages,
	})
}

// Resubmit retoma una factura atascada: DEVUELTA reinicia el ciclo,
// PENDIENTE reintenta la firma y FIRMADA reanuda en la recepción.
// POST /api/invoices/:id/resubmit
func (h *SaleHandler) Resubmit(c *fiber.Ctx) error {
	inv, err := h.ownedInvoice(c)
	if err != nil {
		return domainError(c, err)
	}
	if err := h.orch.Resubmit(c.Context(), inv.ID); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// Annul anula una factura AUTORIZADA; el motivo es obligatorio.
// POST /api/invoices/:id/annul
func (h *SaleHandler) Annul(c *fiber.Ctx) error {
	inv, err := h.ownedInvoice(c)
	if err != nil {
		return domainError(c, err)
	}
	var in struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.orch.Annul(c.Context(), inv.ID, in.Reason); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History devuelve la bitácora de transiciones SRI de la factura.
// GET /api/invoices/:id/history
func (h *SaleHandler) History(c *fiber.Ctx) error {
	inv, err := h.ownedInvoice(c)
	if err != nil {
		return domainError(c, err)
	}
	logs, err := h.orch.StatusHistory(c.Context(), inv.ID)
	if err != nil {
		return domainError(c, err)
	}
	type logEntry struct {
		FromStatus string `json:"from_status"`
		ToStatus   string `json:"to_status"`
		Message    string `json:"message,omitempty"`
		CreatedAt  string `json:"created_at"`
	}
	out := make([]logEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, logEntry{
			FromStatus: l.FromStatus,
			ToStatus:   l.ToStatus,
			Message:    l.Message,
			CreatedAt:  l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// ownedInvoice carga la factura y verifica que pertenezca a la empresa del token.
func (h *SaleHandler) ownedInvoice(c *fiber.Ctx) (*entity.Invoice, error) {
	inv, err := h.invoices.GetByID(c.Params("id"))
	if err != nil {
		return nil, err
	}
	if inv.CompanyID != GetCompanyID(c) {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func invoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLine) dto.InvoiceResponse {
	out := dto.InvoiceResponse{
		ID:                  inv.ID,
		Number:              inv.Number(),
		ClientID:            inv.ClientID,
		SaleType:            inv.SaleType,
		IssueDate:           inv.IssueDate,
		SubtotalExempt:      inv.SubtotalExempt.StringFixed(2),
		SubtotalTaxed:       inv.SubtotalTaxed.StringFixed(2),
		DiscountTotal:       inv.DiscountTotal.StringFixed(2),
		TaxTotal:            inv.TaxTotal.StringFixed(2),
		GrandTotal:          inv.GrandTotal.StringFixed(2),
		SriStatus:           inv.SriStatus,
		AccessKey:           inv.AccessKey,
		AuthorizationNumber: inv.AuthorizationNumber,
		AuthorizedAt:        inv.AuthorizedAt,
		SriMessages:         inv.SriMessages,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.InvoiceLineResponse{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity.String(),
			UnitPrice:       l.UnitPrice.StringFixed(2),
			TaxPercent:      l.TaxPercent.StringFixed(2),
			DiscountPercent: l.DiscountPercent.StringFixed(2),
			Subtotal:        l.Subtotal.StringFixed(2),
			DiscountAmount:  l.DiscountAmount.StringFixed(2),
			TaxAmount:       l.TaxAmount.StringFixed(2),
		})
	}
	return out
}
