package repository

import (
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
)

// ProductRepository acceso a productos. GetForUpdate bloquea la fila
// (SELECT FOR UPDATE) para serializar deducciones concurrentes de stock.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetForUpdate(id string) (*entity.Product, error)
	List(companyID string, limit, offset int) ([]*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateStockAndStatus persiste stock y estado en una sola sentencia;
	// debe llamarse dentro de la misma tx que registra el movimiento.
	UpdateStockAndStatus(id string, stock decimal.Decimal, status string) error
	SetStatus(id, status string) error
}

// StockMovementRepository acceso al kardex. Solo inserta y lee: las entradas
// son inmutables por diseño.
type StockMovementRepository interface {
	Create(mov *entity.StockMovement) error
	ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error)
}
