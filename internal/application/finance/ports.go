package finance

import (
	"context"

	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

// TxRepos son los repositorios financieros ligados a una misma transacción.
type TxRepos struct {
	Receivables   repository.ReceivableRepository
	Payables      repository.PayableRepository
	BankAccounts  repository.BankAccountRepository
	BankMovements repository.BankMovementRepository
}

// TxRunner ejecuta fn dentro de una transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
