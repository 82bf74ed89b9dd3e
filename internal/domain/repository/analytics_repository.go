package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
)

// AnalyticsRepository consultas de agregación para el tablero financiero.
type AnalyticsRepository interface {
	DailySalesTotal(ctx context.Context, companyID string, day time.Time) (decimal.Decimal, error)
	CountInvoicesByStatus(ctx context.Context, companyID string) (map[string]int, error)
	OverdueReceivables(ctx context.Context, companyID string, now time.Time) ([]*entity.AccountReceivable, error)
	OverduePayables(ctx context.Context, companyID string, now time.Time) ([]*entity.AccountPayable, error)
	LowStockProducts(ctx context.Context, companyID string) ([]*entity.Product, error)
}
