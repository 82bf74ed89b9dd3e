package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/application/finance"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
)

// FinanceHandler maneja cuentas por cobrar/pagar y el libro de bancos.
type FinanceHandler struct {
	uc *finance.Usecase
}

func NewFinanceHandler(uc *finance.Usecase) *FinanceHandler {
	return &FinanceHandler{uc: uc}
}

// CreatePayable registra una deuda con proveedor.
// POST /api/finance/payables
func (h *FinanceHandler) CreatePayable(c *fiber.Ctx) error {
	var in dto.CreatePayableRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "monto inválido")
	}
	dueDate, err := time.Parse("2006-01-02", in.DueDate)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "due_date debe ser YYYY-MM-DD")
	}
	payable, err := h.uc.CreatePayable(c.Context(), finance.PayableInput{
		CompanyID:  GetCompanyID(c),
		SupplierID: in.SupplierID,
		Reference:  in.Reference,
		Amount:     amount,
		DueDate:    dueDate,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payableResponse(payable, time.Now().UTC()))
}

// ListReceivables lista las cuentas por cobrar de la empresa.
// GET /api/finance/receivables
func (h *FinanceHandler) ListReceivables(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	items, err := h.uc.ListReceivables(c.Context(), GetCompanyID(c), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	now := time.Now().UTC()
	out := make([]dto.AccountResponse, 0, len(items))
	for _, a := range items {
		out = append(out, receivableResponse(a, now))
	}
	return c.JSON(fiber.Map{"data": out, "meta": dto.ListMeta{Limit: limit, Offset: offset, Count: len(out)}})
}

// ListPayables lista las cuentas por pagar de la empresa.
// GET /api/finance/payables
func (h *FinanceHandler) ListPayables(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	items, err := h.uc.ListPayables(c.Context(), GetCompanyID(c), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	now := time.Now().UTC()
	out := make([]dto.AccountResponse, 0, len(items))
	for _, a := range items {
		out = append(out, payableResponse(a, now))
	}
	return c.JSON(fiber.Map{"data": out, "meta": dto.ListMeta{Limit: limit, Offset: offset, Count: len(out)}})
}

// PayReceivable abona una cuenta por cobrar.
// POST /api/finance/receivables/:id/payments
func (h *FinanceHandler) PayReceivable(c *fiber.Ctx) error {
	in, err := h.paymentInput(c)
	if err != nil {
		return err
	}
	if err := h.uc.PayReceivable(c.Context(), in); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PayPayable abona una cuenta por pagar.
// POST /api/finance/payables/:id/payments
func (h *FinanceHandler) PayPayable(c *fiber.Ctx) error {
	in, err := h.paymentInput(c)
	if err != nil {
		return err
	}
	if err := h.uc.PayPayable(c.Context(), in); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateBankAccount da de alta una cuenta bancaria.
// POST /api/finance/bank-accounts
func (h *FinanceHandler) CreateBankAccount(c *fiber.Ctx) error {
	var in dto.CreateBankAccountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	initial := decimal.Zero
	if in.InitialBalance != "" {
		var err error
		if initial, err = decimal.NewFromString(in.InitialBalance); err != nil {
			return respond(c, fiber.StatusBadRequest, "VALIDATION", "saldo inicial inválido")
		}
	}
	account, err := h.uc.CreateBankAccount(c.Context(), finance.BankAccountInput{
		CompanyID:      GetCompanyID(c),
		Bank:           in.Bank,
		Number:         in.Number,
		Type:           in.Type,
		InitialBalance: initial,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bankAccountResponse(account))
}

// ListBankAccounts lista las cuentas bancarias con su saldo vigente.
// GET /api/finance/bank-accounts
func (h *FinanceHandler) ListBankAccounts(c *fiber.Ctx) error {
	items, err := h.uc.ListBankAccounts(c.Context(), GetCompanyID(c))
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.BankAccountResponse, 0, len(items))
	for _, a := range items {
		out = append(out, bankAccountResponse(a))
	}
	return c.JSON(fiber.Map{"data": out})
}

// RegisterMovement asienta un depósito o retiro manual.
// POST /api/finance/bank-accounts/:id/movements
func (h *FinanceHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.BankMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "monto inválido")
	}
	err = h.uc.RegisterMovement(c.Context(), finance.MovementInput{
		CompanyID: GetCompanyID(c),
		AccountID: c.Params("id"),
		Direction: in.Direction,
		Amount:    amount,
		Concept:   in.Concept,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMovements devuelve el libro de la cuenta, más reciente primero.
// GET /api/finance/bank-accounts/:id/movements
func (h *FinanceHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	items, err := h.uc.ListBankMovements(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	type movement struct {
		ID          string    `json:"id"`
		Direction   string    `json:"direction"`
		Amount      string    `json:"amount"`
		Concept     string    `json:"concept"`
		ReferenceID string    `json:"reference_id,omitempty"`
		TransferID  string    `json:"transfer_id,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}
	out := make([]movement, 0, len(items))
	for _, m := range items {
		out = append(out, movement{
			ID:          m.ID,
			Direction:   m.Direction,
			Amount:      m.Amount.StringFixed(2),
			Concept:     m.Concept,
			ReferenceID: m.ReferenceID,
			TransferID:  m.TransferID,
			CreatedAt:   m.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out, "meta": dto.ListMeta{Limit: limit, Offset: offset, Count: len(out)}})
}

// Transfer mueve fondos entre dos cuentas propias.
// POST /api/finance/transfers
func (h *FinanceHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "monto inválido")
	}
	err = h.uc.Transfer(c.Context(), finance.TransferInput{
		CompanyID:     GetCompanyID(c),
		FromAccountID: in.FromAccountID,
		ToAccountID:   in.ToAccountID,
		Amount:        amount,
		Concept:       in.Concept,
		UserID:        GetUserID(c),
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FinanceHandler) paymentInput(c *fiber.Ctx) (finance.PaymentInput, error) {
	var in dto.RegisterPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return finance.PaymentInput{}, badBody(c)
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return finance.PaymentInput{}, respond(c, fiber.StatusBadRequest, "VALIDATION", "monto inválido")
	}
	return finance.PaymentInput{
		AccountID:     c.Params("id"),
		Amount:        amount,
		BankAccountID: in.BankAccountID,
		Concept:       in.Concept,
		UserID:        GetUserID(c),
	}, nil
}

func receivableResponse(a *entity.AccountReceivable, now time.Time) dto.AccountResponse {
	return dto.AccountResponse{
		ID:          a.ID,
		InvoiceID:   a.InvoiceID,
		ClientID:    a.ClientID,
		Amount:      a.Amount.StringFixed(2),
		AmountPaid:  a.AmountPaid.StringFixed(2),
		Outstanding: a.Outstanding().StringFixed(2),
		DueDate:     a.DueDate,
		Status:      a.Status,
		OverdueDays: entity.OverdueDays(a.DueDate, a.Status, now),
	}
}

func payableResponse(a *entity.AccountPayable, now time.Time) dto.AccountResponse {
	return dto.AccountResponse{
		ID:          a.ID,
		SupplierID:  a.SupplierID,
		Reference:   a.Reference,
		Amount:      a.Amount.StringFixed(2),
		AmountPaid:  a.AmountPaid.StringFixed(2),
		Outstanding: a.Outstanding().StringFixed(2),
		DueDate:     a.DueDate,
		Status:      a.Status,
		OverdueDays: entity.OverdueDays(a.DueDate, a.Status, now),
	}
}

func bankAccountResponse(a *entity.BankAccount) dto.BankAccountResponse {
	return dto.BankAccountResponse{
		ID:      a.ID,
		Bank:    a.Bank,
		Number:  a.Number,
		Type:    a.Type,
		Balance: a.Balance.StringFixed(2),
	}
}
