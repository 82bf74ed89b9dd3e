package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dvillacis/puntoventa-api/internal/application/analytics"
	"github.com/dvillacis/puntoventa-api/internal/application/dto"
)

// DashboardHandler expone el resumen financiero y las alertas de stock.
type DashboardHandler struct {
	uc *analytics.Usecase
}

func NewDashboardHandler(uc *analytics.Usecase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Summary devuelve el tablero del día. Acepta ?date=YYYY-MM-DD; por defecto hoy.
// GET /api/dashboard
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return respond(c, fiber.StatusBadRequest, "VALIDATION", "date debe ser YYYY-MM-DD")
		}
		day = parsed
	}
	summary, err := h.uc.Dashboard(c.Context(), GetCompanyID(c), day)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(summary)
}

// LowStock lista los productos activos con stock en o bajo el mínimo.
// GET /api/dashboard/low-stock
func (h *DashboardHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.uc.LowStock(c.Context(), GetCompanyID(c))
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, productResponse(p))
	}
	return c.JSON(fiber.Map{"data": out})
}
