package repository

import "github.com/dvillacis/puntoventa-api/internal/domain/entity"

// TaxRateRepository catálogo de tarifas de impuesto (solo lectura en ventas).
type TaxRateRepository interface {
	Create(rate *entity.TaxRate) error
	GetByID(id string) (*entity.TaxRate, error)
	List() ([]*entity.TaxRate, error)
}

// DiscountRepository catálogo de descuentos.
type DiscountRepository interface {
	Create(discount *entity.Discount) error
	GetByID(id string) (*entity.Discount, error)
	List() ([]*entity.Discount, error)
}

// PaymentMethodRepository catálogo de formas de pago.
type PaymentMethodRepository interface {
	Create(method *entity.PaymentMethod) error
	GetByID(id string) (*entity.PaymentMethod, error)
	List() ([]*entity.PaymentMethod, error)
}
