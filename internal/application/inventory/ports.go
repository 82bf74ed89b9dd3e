package inventory

import (
	"context"

	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

// TxRepos son los repositorios ligados a una misma transacción.
type TxRepos struct {
	Products  repository.ProductRepository
	Movements repository.StockMovementRepository
}

// TxRunner ejecuta fn dentro de una transacción: commit si fn devuelve nil,
// rollback en caso contrario.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
