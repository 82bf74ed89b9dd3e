package products

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/application/inventory"
	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
)

// Usecase CRUD de productos. El stock nunca se edita directo: todo cambio
// pasa por el caso de uso de inventario para dejar kardex.
type Usecase struct {
	products  repository.ProductRepository
	inventory *inventory.Usecase
	log       *logger.Logger
}

func NewUsecase(products repository.ProductRepository, inv *inventory.Usecase, log *logger.Logger) *Usecase {
	return &Usecase{products: products, inventory: inv, log: log}
}

// Create da de alta el producto y asienta su stock inicial en el kardex.
func (u *Usecase) Create(ctx context.Context, companyID, userID string, req dto.CreateProductRequest) (*entity.Product, error) {
	if req.SKU == "" || req.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	minStock := decimal.Zero
	if req.MinStock != "" {
		if minStock, err = decimal.NewFromString(req.MinStock); err != nil || minStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}
	initial := decimal.Zero
	if req.InitialStock != "" {
		if initial, err = decimal.NewFromString(req.InitialStock); err != nil || initial.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now().UTC()
	p := &entity.Product{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		SKU:         req.SKU,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       price,
		Stock:       decimal.Zero,
		MinStock:    minStock,
		Status:      entity.ProductOutOfStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.products.Create(p); err != nil {
		return nil, err
	}
	if err := u.inventory.RegisterInitial(ctx, inventory.MovementInput{
		CompanyID: companyID,
		ProductID: p.ID,
		Quantity:  initial,
		Detail:    "stock inicial",
		UserID:    userID,
	}); err != nil {
		return nil, err
	}
	p.Stock = initial
	if initial.IsPositive() {
		p.Status = entity.ProductActive
	}
	return p, nil
}

// Update edita datos maestros. Un producto descontinuado no se edita.
func (u *Usecase) Update(ctx context.Context, companyID, id string, req dto.UpdateProductRequest) (*entity.Product, error) {
	p, err := u.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if p.Status == entity.ProductDiscontinued {
		return nil, domain.ErrProductDiscontinued
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil || !price.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		p.Price = price
	}
	if req.MinStock != "" {
		min, err := decimal.NewFromString(req.MinStock)
		if err != nil || min.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p.MinStock = min
	}
	if req.Status == entity.ProductActive || req.Status == entity.ProductInactive {
		p.Status = req.Status
	}
	p.UpdatedAt = time.Now().UTC()
	if err := u.products.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Discontinue marca el producto como descontinuado: conserva historial pero
// bloquea ventas, compras y ediciones.
func (u *Usecase) Discontinue(ctx context.Context, companyID, id string) error {
	p, err := u.products.GetByID(id)
	if err != nil {
		return err
	}
	if p.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return u.products.SetStatus(id, entity.ProductDiscontinued)
}

// Reactivate devuelve al catálogo un producto descontinuado. Si no tiene
// existencias queda SIN STOCK hasta el próximo reabastecimiento.
func (u *Usecase) Reactivate(ctx context.Context, companyID, id string) error {
	p, err := u.products.GetByID(id)
	if err != nil {
		return err
	}
	if p.CompanyID != companyID {
		return domain.ErrForbidden
	}
	if p.Status != entity.ProductDiscontinued {
		return domain.ErrConflict
	}
	status := entity.ProductActive
	if !p.Stock.IsPositive() {
		status = entity.ProductOutOfStock
	}
	return u.products.SetStatus(id, status)
}

// Get devuelve un producto.
func (u *Usecase) Get(ctx context.Context, id string) (*entity.Product, error) {
	return u.products.GetByID(id)
}

// List devuelve los productos de la empresa.
func (u *Usecase) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	return u.products.List(companyID, limit, offset)
}
