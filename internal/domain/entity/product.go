package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un producto.
// OUT_OF_STOCK se asigna automáticamente cuando el stock llega a cero y se
// revierte a ACTIVE solo por reabastecimiento o reactivación explícita.
// DISCONTINUED lo asigna un administrador y bloquea movimientos y ediciones.
const (
	ProductActive       = "ACTIVE"
	ProductInactive     = "INACTIVE"
	ProductOutOfStock   = "OUT_OF_STOCK"
	ProductDiscontinued = "DISCONTINUED"
)

// Product representa un producto del inventario. Stock es la existencia
// actual; solo se modifica dentro de la misma transacción que registra el
// movimiento de kardex correspondiente.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal // precio de venta unitario
	Stock       decimal.Decimal // existencia actual, nunca negativa
	MinStock    decimal.Decimal // alerta de reposición
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanMove indica si el producto admite movimientos de inventario.
func (p *Product) CanMove() bool {
	return p.Status != ProductDiscontinued
}
