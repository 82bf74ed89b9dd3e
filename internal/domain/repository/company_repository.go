package repository

import "github.com/dvillacis/puntoventa-api/internal/domain/entity"

// CompanyRepository acceso al emisor. NextSequential incrementa y devuelve el
// secuencial de factura con bloqueo de fila; debe invocarse dentro de la
// transacción de venta para que dos ventas concurrentes no compartan número.
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	List() ([]*entity.Company, error)
	NextSequential(id string) (int64, error)
}

// ClientRepository acceso a clientes (lectura durante la venta).
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	List(companyID string, limit, offset int) ([]*entity.Client, error)
}

// SupplierRepository acceso a proveedores.
type SupplierRepository interface {
	Create(supplier *entity.Supplier) error
	GetByID(id string) (*entity.Supplier, error)
	List(companyID string, limit, offset int) ([]*entity.Supplier, error)
}

// UserRepository acceso a usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	GetByEmail(email string) (*entity.User, error)
	GetByID(id string) (*entity.User, error)
}
