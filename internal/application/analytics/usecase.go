package analytics

import (
	"context"
	"time"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
)

// Usecase arma el tablero financiero del día: ventas, estados SRI, cuentas
// vencidas, productos bajo mínimo y saldos bancarios.
type Usecase struct {
	analytics repository.AnalyticsRepository
	accounts  repository.BankAccountRepository
	log       *logger.Logger
}

func NewUsecase(analytics repository.AnalyticsRepository, accounts repository.BankAccountRepository, log *logger.Logger) *Usecase {
	return &Usecase{analytics: analytics, accounts: accounts, log: log}
}

// Dashboard calcula el resumen para la fecha dada (normalmente hoy).
func (u *Usecase) Dashboard(ctx context.Context, companyID string, day time.Time) (*dto.DashboardResponse, error) {
	sales, err := u.analytics.DailySalesTotal(ctx, companyID, day)
	if err != nil {
		return nil, err
	}
	byStatus, err := u.analytics.CountInvoicesByStatus(ctx, companyID)
	if err != nil {
		return nil, err
	}
	overdueAR, err := u.analytics.OverdueReceivables(ctx, companyID, day)
	if err != nil {
		return nil, err
	}
	overdueAP, err := u.analytics.OverduePayables(ctx, companyID, day)
	if err != nil {
		return nil, err
	}
	lowStock, err := u.analytics.LowStockProducts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	banks, err := u.accounts.List(companyID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		Date:               day.Format("2006-01-02"),
		DailySalesTotal:    sales.StringFixed(2),
		InvoicesByStatus:   byStatus,
		OverdueReceivables: len(overdueAR),
		OverduePayables:    len(overdueAP),
		LowStockProducts:   len(lowStock),
	}
	for _, b := range banks {
		resp.BankBalances = append(resp.BankBalances, dto.BankAccountResponse{
			ID:      b.ID,
			Bank:    b.Bank,
			Number:  b.Number,
			Type:    b.Type,
			Balance: b.Balance.StringFixed(2),
		})
	}
	return resp, nil
}

// LowStock lista los productos en o bajo su stock mínimo.
func (u *Usecase) LowStock(ctx context.Context, companyID string) ([]*entity.Product, error) {
	return u.analytics.LowStockProducts(ctx, companyID)
}
