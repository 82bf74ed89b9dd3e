package entity

import "time"

// Company representa al emisor (contribuyente) del sistema.
// LastSequential es el último secuencial de factura usado; se incrementa con
// bloqueo de fila dentro de la transacción de venta.
type Company struct {
	ID              string
	RUC             string // RUC ecuatoriano, 13 dígitos
	RazonSocial     string
	NombreComercial string
	DirMatriz       string
	Estab           string // establecimiento por defecto (001)
	PtoEmi          string // punto de emisión por defecto (001)
	LastSequential  int64
	ObligadoContabilidad bool
	Status          string // active, suspended, inactive
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Series devuelve estab+ptoEmi (6 dígitos) para la clave de acceso.
func (c *Company) Series() string {
	return c.Estab + c.PtoEmi
}
