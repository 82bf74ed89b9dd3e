package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
)

// Usecase gobierna el kardex: todo cambio de stock pasa por aquí y deja una
// entrada inmutable en la misma transacción que actualiza el producto.
type Usecase struct {
	tx        TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	log       *logger.Logger
}

func NewUsecase(tx TxRunner, products repository.ProductRepository, movements repository.StockMovementRepository, log *logger.Logger) *Usecase {
	return &Usecase{tx: tx, products: products, movements: movements, log: log}
}

// MovementInput parámetros comunes de un movimiento.
type MovementInput struct {
	CompanyID   string
	ProductID   string
	Quantity    decimal.Decimal
	Detail      string
	ReferenceID string
	UserID      string
}

// RegisterInitial registra la carga inicial de stock de un producto recién
// creado. Cantidad cero es válida: queda la entrada INITIAL como punto de
// partida del kardex.
func (u *Usecase) RegisterInitial(ctx context.Context, in MovementInput) error {
	if in.Quantity.IsNegative() {
		return domain.ErrInvalidInput
	}
	return u.tx.Run(ctx, func(r TxRepos) error {
		p, err := r.Products.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		p.Stock = in.Quantity
		if err := u.appendMovement(r, p, entity.MovementInitial, in.Quantity, in); err != nil {
			return err
		}
		return r.Products.UpdateStockAndStatus(p.ID, p.Stock, statusAfter(p))
	})
}

// Restock registra una entrada de mercadería (compra). Rechaza cantidades no
// positivas y productos descontinuados.
func (u *Usecase) Restock(ctx context.Context, in MovementInput) error {
	if !in.Quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	return u.tx.Run(ctx, func(r TxRepos) error {
		p, err := r.Products.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if !p.CanMove() {
			return domain.ErrProductDiscontinued
		}
		p.Stock = p.Stock.Add(in.Quantity)
		if err := u.appendMovement(r, p, entity.MovementPurchase, in.Quantity, in); err != nil {
			return err
		}
		return r.Products.UpdateStockAndStatus(p.ID, p.Stock, statusAfter(p))
	})
}

// Adjust registra un ajuste manual con signo (merma, conteo físico). El motivo
// es obligatorio y el resultado nunca puede ser negativo.
func (u *Usecase) Adjust(ctx context.Context, in MovementInput) error {
	if in.Quantity.IsZero() || in.Detail == "" {
		return domain.ErrInvalidInput
	}
	return u.tx.Run(ctx, func(r TxRepos) error {
		p, err := r.Products.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if !p.CanMove() {
			return domain.ErrProductDiscontinued
		}
		next := p.Stock.Add(in.Quantity)
		if next.IsNegative() {
			return domain.ErrNegativeStock
		}
		p.Stock = next
		if err := u.appendMovement(r, p, entity.MovementAdjustment, in.Quantity, in); err != nil {
			return err
		}
		return r.Products.UpdateStockAndStatus(p.ID, p.Stock, statusAfter(p))
	})
}

// DeductForSaleInTx descuenta stock por una línea de venta dentro de una
// transacción ya abierta por el procesador de ventas: el lock de fila dura
// hasta el commit de toda la venta.
func (u *Usecase) DeductForSaleInTx(r TxRepos, in MovementInput) error {
	if !in.Quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	p, err := r.Products.GetForUpdate(in.ProductID)
	if err != nil {
		return err
	}
	if !p.CanMove() {
		return domain.ErrProductDiscontinued
	}
	if p.Stock.LessThan(in.Quantity) {
		return domain.ErrInsufficientStock
	}
	p.Stock = p.Stock.Sub(in.Quantity)
	if err := u.appendMovement(r, p, entity.MovementSale, in.Quantity.Neg(), in); err != nil {
		return err
	}
	return r.Products.UpdateStockAndStatus(p.ID, p.Stock, statusAfter(p))
}

// Kardex devuelve el historial de movimientos de un producto, más reciente
// primero.
func (u *Usecase) Kardex(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if _, err := u.products.GetByID(productID); err != nil {
		return nil, err
	}
	return u.movements.ListByProduct(productID, limit, offset)
}

func (u *Usecase) appendMovement(r TxRepos, p *entity.Product, movType string, qty decimal.Decimal, in MovementInput) error {
	return r.Movements.Create(&entity.StockMovement{
		ID:          uuid.NewString(),
		CompanyID:   p.CompanyID,
		ProductID:   p.ID,
		Type:        movType,
		Quantity:    qty,
		Detail:      in.Detail,
		ReferenceID: in.ReferenceID,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   in.UserID,
	})
}

// statusAfter alterna entre ACTIVE y OUT_OF_STOCK según el stock resultante.
// Los estados manuales (INACTIVE, DISCONTINUED) no se tocan.
func statusAfter(p *entity.Product) string {
	switch p.Status {
	case entity.ProductInactive, entity.ProductDiscontinued:
		return p.Status
	}
	if p.Stock.IsZero() {
		return entity.ProductOutOfStock
	}
	return entity.ProductActive
}
