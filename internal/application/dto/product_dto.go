package dto

import "time"

// CreateProductRequest alta de producto con stock inicial opcional.
type CreateProductRequest struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	InitialStock string `json:"initial_stock,omitempty"`
	MinStock     string `json:"min_stock"`
}

// UpdateProductRequest edición de datos maestros (el stock no se edita aquí).
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       string `json:"price"`
	MinStock    string `json:"min_stock"`
	Status      string `json:"status"`
}

// RestockRequest entrada de mercadería por compra.
type RestockRequest struct {
	Quantity   string `json:"quantity"`
	Detail     string `json:"detail"`
	SupplierID string `json:"supplier_id,omitempty"`
}

// AdjustStockRequest ajuste manual (+/-) con motivo obligatorio.
type AdjustStockRequest struct {
	Quantity string `json:"quantity"` // con signo
	Detail   string `json:"detail"`
}

// ProductResponse producto con stock vigente.
type ProductResponse struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Stock    string `json:"stock"`
	MinStock string `json:"min_stock"`
	Status   string `json:"status"`
}

// MovementResponse entrada del kardex.
type MovementResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Quantity    string    `json:"quantity"`
	Detail      string    `json:"detail"`
	ReferenceID string    `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}
