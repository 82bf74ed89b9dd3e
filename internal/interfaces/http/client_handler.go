package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

// ClientHandler maneja clientes y proveedores (catálogo simple).
type ClientHandler struct {
	clients   repository.ClientRepository
	suppliers repository.SupplierRepository
}

func NewClientHandler(clients repository.ClientRepository, suppliers repository.SupplierRepository) *ClientHandler {
	return &ClientHandler{clients: clients, suppliers: suppliers}
}

// CreateClient da de alta un cliente.
// POST /api/clients
func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var in dto.CreateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.TaxID == "" || in.Name == "" {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "tax_id y name son obligatorios")
	}
	now := time.Now().UTC()
	client := &entity.Client{
		ID:        uuid.NewString(),
		CompanyID: GetCompanyID(c),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.clients.Create(client); err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(clientResponse(client))
}

// ListClients lista los clientes de la empresa.
// GET /api/clients
func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	items, err := h.clients.List(GetCompanyID(c), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.ClientResponse, 0, len(items))
	for _, cl := range items {
		out = append(out, clientResponse(cl))
	}
	return c.JSON(fiber.Map{"data": out, "meta": dto.ListMeta{Limit: limit, Offset: offset, Count: len(out)}})
}

// GetClient obtiene un cliente.
// GET /api/clients/:id
func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	cl, err := h.clients.GetByID(c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	if cl.CompanyID != GetCompanyID(c) {
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", "cliente no encontrado")
	}
	return c.JSON(clientResponse(cl))
}

// CreateSupplier da de alta un proveedor.
// POST /api/suppliers
func (h *ClientHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.TaxID == "" || in.Name == "" {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "tax_id y name son obligatorios")
	}
	now := time.Now().UTC()
	supplier := &entity.Supplier{
		ID:        uuid.NewString(),
		CompanyID: GetCompanyID(c),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.suppliers.Create(supplier); err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(supplierResponse(supplier))
}

// ListSuppliers lista los proveedores de la empresa.
// GET /api/suppliers
func (h *ClientHandler) ListSuppliers(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	items, err := h.suppliers.List(GetCompanyID(c), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.ClientResponse, 0, len(items))
	for _, s := range items {
		out = append(out, supplierResponse(s))
	}
	return c.JSON(fiber.Map{"data": out, "meta": dto.ListMeta{Limit: limit, Offset: offset, Count: len(out)}})
}

func clientResponse(cl *entity.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID: cl.ID, TaxID: cl.TaxID, Name: cl.Name,
		Email: cl.Email, Phone: cl.Phone, Address: cl.Address,
	}
}

func supplierResponse(s *entity.Supplier) dto.ClientResponse {
	return dto.ClientResponse{
		ID: s.ID, TaxID: s.TaxID, Name: s.Name,
		Email: s.Email, Phone: s.Phone, Address: s.Address,
	}
}
