package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/application/inventory"
	"github.com/dvillacis/puntoventa-api/internal/application/products"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
)

// ProductHandler maneja productos y su kardex.
type ProductHandler struct {
	products  *products.Usecase
	inventory *inventory.Usecase
}

func NewProductHandler(p *products.Usecase, inv *inventory.Usecase) *ProductHandler {
	return &ProductHandler{products: p, inventory: inv}
}

// Create da de alta un producto con su carga inicial de stock.
// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.products.Create(c.Context(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(productResponse(p))
}

// List lista los productos de la empresa.
// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	items, err := h.products.List(c.Context(), GetCompanyID(c), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, productResponse(p))
	}
	return c.JSON(fiber.Map{"data": out, "meta": dto.ListMeta{Limit: limit, Offset: offset, Count: len(out)}})
}

// GetByID obtiene un producto.
// GET /api/products/:id
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.products.Get(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	if p.CompanyID != GetCompanyID(c) {
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", "producto no encontrado")
	}
	return c.JSON(productResponse(p))
}

// Update edita datos maestros del producto (no el stock).
// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.products.Update(c.Context(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(productResponse(p))
}

// Discontinue retira el producto del catálogo de forma permanente.
// DELETE /api/products/:id
func (h *ProductHandler) Discontinue(c *fiber.Ctx) error {
	if err := h.products.Discontinue(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Reactivate devuelve al catálogo un producto descontinuado.
// POST /api/products/:id/reactivate
func (h *ProductHandler) Reactivate(c *fiber.Ctx) error {
	if err := h.products.Reactivate(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Restock registra una entrada de mercadería.
// POST /api/products/:id/restock
func (h *ProductHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	qty, err := decimal.NewFromString(in.Quantity)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "cantidad inválida")
	}
	err = h.inventory.Restock(c.Context(), inventory.MovementInput{
		CompanyID:   GetCompanyID(c),
		ProductID:   c.Params("id"),
		Quantity:    qty,
		Detail:      in.Detail,
		ReferenceID: in.SupplierID,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Adjust registra un ajuste manual de stock (+/-) con motivo obligatorio.
// POST /api/products/:id/adjust
func (h *ProductHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	qty, err := decimal.NewFromString(in.Quantity)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "cantidad inválida")
	}
	err = h.inventory.Adjust(c.Context(), inventory.MovementInput{
		CompanyID: GetCompanyID(c),
		ProductID: c.Params("id"),
		Quantity:  qty,
		Detail:    in.Detail,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Kardex devuelve el historial de movimientos del producto, más reciente primero.
// GET /api/products/:id/kardex
func (h *ProductHandler) Kardex(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	movements, err := h.inventory.Kardex(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:          m.ID,
			Type:        m.Type,
			Quantity:    m.Quantity.String(),
			Detail:      m.Detail,
			ReferenceID: m.ReferenceID,
			CreatedAt:   m.CreatedAt,
			CreatedBy:   m.CreatedBy,
		})
	}
	return c.JSON(fiber.Map{"data": out, "meta": dto.ListMeta{Limit: limit, Offset: offset, Count: len(out)}})
}

func productResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price.StringFixed(2),
		Stock:    p.Stock.String(),
		MinStock: p.MinStock.String(),
		Status:   p.Status,
	}
}

// pagination lee limit/offset de la query con defaults sanos.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
