package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de kardex.
const (
	MovementInitial    = "INITIAL"    // saldo inicial al crear el producto
	MovementPurchase   = "PURCHASE"   // compra / reabastecimiento
	MovementSale       = "SALE"       // salida por venta (cantidad negativa)
	MovementAdjustment = "ADJUSTMENT" // ajuste administrativo en cualquier dirección
)

// StockMovement es una entrada inmutable del kardex: una vez creada nunca se
// actualiza ni se elimina (pista de auditoría completa).
type StockMovement struct {
	ID          string
	CompanyID   string
	ProductID   string
	Type        string
	Quantity    decimal.Decimal // delta con signo: negativo en SALE
	Detail      string          // texto libre: motivo, referencia humana
	ReferenceID string          // ID de la factura u operación que lo originó
	CreatedAt   time.Time
	CreatedBy   string // UserID
}
