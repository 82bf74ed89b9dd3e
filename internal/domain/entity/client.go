package entity

import "time"

// Client representa un cliente (adquirente) de la empresa.
type Client struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string // cédula (10), RUC (13) o pasaporte
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Supplier representa un proveedor (cuentas por pagar).
type Supplier struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
