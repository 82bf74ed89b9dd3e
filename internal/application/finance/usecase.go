package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
)

// Usecase gobierna el libro financiero: cuentas por cobrar/pagar y bancos.
// Los saldos bancarios solo cambian en la misma transacción que registra el
// movimiento correspondiente.
type Usecase struct {
	tx          TxRunner
	receivables repository.ReceivableRepository
	payables    repository.PayableRepository
	accounts    repository.BankAccountRepository
	movements   repository.BankMovementRepository
	log         *logger.Logger
}

func NewUsecase(tx TxRunner, receivables repository.ReceivableRepository, payables repository.PayableRepository, accounts repository.BankAccountRepository, movements repository.BankMovementRepository, log *logger.Logger) *Usecase {
	return &Usecase{
		tx:          tx,
		receivables: receivables,
		payables:    payables,
		accounts:    accounts,
		movements:   movements,
		log:         log,
	}
}

// PayableInput registro de deuda con proveedor.
type PayableInput struct {
	CompanyID  string
	SupplierID string
	Reference  string
	Amount     decimal.Decimal
	DueDate    time.Time
}

// CreatePayable registra una cuenta por pagar en estado PENDING.
func (u *Usecase) CreatePayable(ctx context.Context, in PayableInput) (*entity.AccountPayable, error) {
	if !in.Amount.IsPositive() || in.SupplierID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	ap := &entity.AccountPayable{
		ID:         uuid.NewString(),
		CompanyID:  in.CompanyID,
		SupplierID: in.SupplierID,
		Reference:  in.Reference,
		Amount:     in.Amount,
		AmountPaid: decimal.Zero,
		DueDate:    in.DueDate,
		Status:     entity.AccountPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := u.payables.Create(ap); err != nil {
		return nil, err
	}
	return ap, nil
}

// PaymentInput abono a una cuenta. BankAccountID vacío registra el abono sin
// tocar bancos (efectivo en caja).
type PaymentInput struct {
	AccountID     string
	Amount        decimal.Decimal
	BankAccountID string
	Concept       string
	UserID        string
}

// PayReceivable abona una cuenta por cobrar. Rechaza abonos que excedan el
// saldo; si hay cuenta bancaria, registra el ingreso en la misma transacción.
func (u *Usecase) PayReceivable(ctx context.Context, in PaymentInput) error {
	if !in.Amount.IsPositive() {
		return domain.ErrInvalidInput
	}
	return u.tx.Run(ctx, func(r TxRepos) error {
		ar, err := r.Receivables.GetForUpdate(in.AccountID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(ar.Outstanding()) {
			return domain.ErrOverpayment
		}
		ar.AmountPaid = ar.AmountPaid.Add(in.Amount)
		ar.Status = entity.AccountStatusFor(ar.AmountPaid, ar.Amount)
		ar.UpdatedAt = time.Now().UTC()
		if err := r.Receivables.Update(ar); err != nil {
			return err
		}
		if in.BankAccountID == "" {
			return nil
		}
		return u.applyBankMovement(r, bankMovementInput{
			AccountID: in.BankAccountID,
			CompanyID: ar.CompanyID,
			Direction: entity.MovementIn,
			Amount:    in.Amount,
			Concept:   in.Concept,
			Reference: ar.ID,
			UserID:    in.UserID,
		})
	})
}

// PayPayable abona una cuenta por pagar. Si el pago sale de un banco, valida
// fondos y registra el egreso en la misma transacción.
func (u *Usecase) PayPayable(ctx context.Context, in PaymentInput) error {
	if !in.Amount.IsPositive() {
		return domain.ErrInvalidInput
	}
	return u.tx.Run(ctx, func(r TxRepos) error {
		ap, err := r.Payables.GetForUpdate(in.AccountID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(ap.Outstanding()) {
			return domain.ErrOverpayment
		}
		ap.AmountPaid = ap.AmountPaid.Add(in.Amount)
		ap.Status = entity.AccountStatusFor(ap.AmountPaid, ap.Amount)
		ap.UpdatedAt = time.Now().UTC()
		if err := r.Payables.Update(ap); err != nil {
			return err
		}
		if in.BankAccountID == "" {
			return nil
		}
		return u.applyBankMovement(r, bankMovementInput{
			AccountID: in.BankAccountID,
			CompanyID: ap.CompanyID,
			Direction: entity.MovementOut,
			Amount:    in.Amount,
			Concept:   in.Concept,
			Reference: ap.ID,
			UserID:    in.UserID,
		})
	})
}

// BankAccountInput alta de cuenta bancaria.
type BankAccountInput struct {
	CompanyID      string
	Bank           string
	Number         string
	Type           string
	InitialBalance decimal.Decimal
	UserID         string
}

// CreateBankAccount crea la cuenta; un saldo inicial positivo queda asentado
// como primer movimiento IN para que el saldo siempre cuadre con el libro.
func (u *Usecase) CreateBankAccount(ctx context.Context, in BankAccountInput) (*entity.BankAccount, error) {
	if in.Bank == "" || in.Number == "" || in.InitialBalance.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.Type != entity.BankAccountSavings && in.Type != entity.BankAccountChecking {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	account := &entity.BankAccount{
		ID:        uuid.NewString(),
		CompanyID: in.CompanyID,
		Bank:      in.Bank,
		Number:    in.Number,
		Type:      in.Type,
		Balance:   decimal.Zero,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := u.tx.Run(ctx, func(r TxRepos) error {
		if err := r.BankAccounts.Create(account); err != nil {
			return err
		}
		if !in.InitialBalance.IsPositive() {
			return nil
		}
		return u.applyBankMovement(r, bankMovementInput{
			AccountID: account.ID,
			CompanyID: in.CompanyID,
			Direction: entity.MovementIn,
			Amount:    in.InitialBalance,
			Concept:   "saldo inicial",
			UserID:    in.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	account.Balance = in.InitialBalance
	return account, nil
}

// MovementInput depósito o retiro manual.
type MovementInput struct {
	CompanyID string
	AccountID string
	Direction string
	Amount    decimal.Decimal
	Concept   string
	UserID    string
}

// RegisterMovement asienta un depósito o retiro. Un retiro sin fondos
// suficientes se rechaza completo.
func (u *Usecase) RegisterMovement(ctx context.Context, in MovementInput) error {
	if !in.Amount.IsPositive() || in.Concept == "" {
		return domain.ErrInvalidInput
	}
	if in.Direction != entity.MovementIn && in.Direction != entity.MovementOut {
		return domain.ErrInvalidInput
	}
	return u.tx.Run(ctx, func(r TxRepos) error {
		return u.applyBankMovement(r, bankMovementInput{
			AccountID: in.AccountID,
			CompanyID: in.CompanyID,
			Direction: in.Direction,
			Amount:    in.Amount,
			Concept:   in.Concept,
			UserID:    in.UserID,
		})
	})
}

// TransferInput transferencia entre cuentas propias.
type TransferInput struct {
	CompanyID     string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Concept       string
	UserID        string
}

// Transfer mueve fondos entre dos cuentas propias: dos asientos (egreso e
// ingreso) comparten TransferID y se confirman o descartan juntos. Las filas
// se bloquean en orden de ID para evitar interbloqueos con la transferencia
// inversa.
func (u *Usecase) Transfer(ctx context.Context, in TransferInput) error {
	if !in.Amount.IsPositive() || in.FromAccountID == in.ToAccountID {
		return domain.ErrInvalidInput
	}
	transferID := uuid.NewString()
	return u.tx.Run(ctx, func(r TxRepos) error {
		first, second := in.FromAccountID, in.ToAccountID
		if second < first {
			first, second = second, first
		}
		if _, err := r.BankAccounts.GetForUpdate(first); err != nil {
			return err
		}
		if _, err := r.BankAccounts.GetForUpdate(second); err != nil {
			return err
		}
		out := bankMovementInput{
			AccountID:  in.FromAccountID,
			CompanyID:  in.CompanyID,
			Direction:  entity.MovementOut,
			Amount:     in.Amount,
			Concept:    in.Concept,
			TransferID: transferID,
			UserID:     in.UserID,
		}
		if err := u.applyBankMovement(r, out); err != nil {
			return err
		}
		inMove := out
		inMove.AccountID = in.ToAccountID
		inMove.Direction = entity.MovementIn
		return u.applyBankMovement(r, inMove)
	})
}

// ListReceivables devuelve las cuentas por cobrar de la empresa.
func (u *Usecase) ListReceivables(ctx context.Context, companyID string, limit, offset int) ([]*entity.AccountReceivable, error) {
	return u.receivables.ListByCompany(companyID, limit, offset)
}

// ListPayables devuelve las cuentas por pagar de la empresa.
func (u *Usecase) ListPayables(ctx context.Context, companyID string, limit, offset int) ([]*entity.AccountPayable, error) {
	return u.payables.ListByCompany(companyID, limit, offset)
}

// ListBankAccounts devuelve las cuentas bancarias con su saldo vigente.
func (u *Usecase) ListBankAccounts(ctx context.Context, companyID string) ([]*entity.BankAccount, error) {
	return u.accounts.List(companyID)
}

// ListBankMovements devuelve el libro de una cuenta, más reciente primero.
func (u *Usecase) ListBankMovements(ctx context.Context, accountID string, limit, offset int) ([]*entity.BankMovement, error) {
	if _, err := u.accounts.GetByID(accountID); err != nil {
		return nil, err
	}
	return u.movements.ListByAccount(accountID, limit, offset)
}

type bankMovementInput struct {
	AccountID  string
	CompanyID  string
	Direction  string
	Amount     decimal.Decimal
	Concept    string
	Reference  string
	TransferID string
	UserID     string
}

// applyBankMovement bloquea la cuenta, valida fondos en egresos, inserta el
// asiento y actualiza el saldo. Siempre dentro de la tx del caller.
func (u *Usecase) applyBankMovement(r TxRepos, in bankMovementInput) error {
	account, err := r.BankAccounts.GetForUpdate(in.AccountID)
	if err != nil {
		return err
	}
	if in.Direction == entity.MovementOut && account.Balance.LessThan(in.Amount) {
		return domain.ErrInsufficientFunds
	}
	mov := &entity.BankMovement{
		ID:          uuid.NewString(),
		CompanyID:   in.CompanyID,
		AccountID:   in.AccountID,
		Direction:   in.Direction,
		Amount:      in.Amount,
		Concept:     in.Concept,
		ReferenceID: in.Reference,
		TransferID:  in.TransferID,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   in.UserID,
	}
	if err := r.BankMovements.Create(mov); err != nil {
		return err
	}
	return r.BankAccounts.UpdateBalance(account.ID, account.Balance.Add(mov.SignedAmount()))
}
