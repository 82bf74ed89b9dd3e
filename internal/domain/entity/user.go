package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin    = "admin"
	RoleCajero   = "cajero"
	RoleContador = "contador"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string // admin | cajero | contador
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
