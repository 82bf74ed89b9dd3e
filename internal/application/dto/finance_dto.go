package dto

import "time"

// CreatePayableRequest registro de una deuda con proveedor.
type CreatePayableRequest struct {
	SupplierID string `json:"supplier_id"`
	Reference  string `json:"reference"`
	Amount     string `json:"amount"`
	DueDate    string `json:"due_date"` // YYYY-MM-DD
}

// RegisterPaymentRequest abono a una cuenta por cobrar o pagar. Si
// BankAccountID viene, el abono genera además el movimiento bancario.
type RegisterPaymentRequest struct {
	Amount        string `json:"amount"`
	BankAccountID string `json:"bank_account_id,omitempty"`
	Concept       string `json:"concept,omitempty"`
}

// AccountResponse cuenta por cobrar/pagar con su saldo.
type AccountResponse struct {
	ID          string    `json:"id"`
	InvoiceID   string    `json:"invoice_id,omitempty"`
	ClientID    string    `json:"client_id,omitempty"`
	SupplierID  string    `json:"supplier_id,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Amount      string    `json:"amount"`
	AmountPaid  string    `json:"amount_paid"`
	Outstanding string    `json:"outstanding"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
	OverdueDays int       `json:"overdue_days"`
}

// CreateBankAccountRequest alta de cuenta bancaria.
type CreateBankAccountRequest struct {
	Bank           string `json:"bank"`
	Number         string `json:"number"`
	Type           string `json:"type"` // SAVINGS | CHECKING
	InitialBalance string `json:"initial_balance,omitempty"`
}

// BankMovementRequest depósito o retiro manual.
type BankMovementRequest struct {
	Direction string `json:"direction"` // IN | OUT
	Amount    string `json:"amount"`
	Concept   string `json:"concept"`
}

// TransferRequest transferencia entre cuentas propias.
type TransferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Concept       string `json:"concept"`
}

// BankAccountResponse cuenta bancaria con saldo vigente.
type BankAccountResponse struct {
	ID      string `json:"id"`
	Bank    string `json:"bank"`
	Number  string `json:"number"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

// DashboardResponse resumen financiero del día.
type DashboardResponse struct {
	Date               string         `json:"date"`
	DailySalesTotal    string         `json:"daily_sales_total"`
	InvoicesByStatus   map[string]int `json:"invoices_by_status"`
	OverdueReceivables int            `json:"overdue_receivables"`
	OverduePayables    int            `json:"overdue_payables"`
	LowStockProducts   int            `json:"low_stock_products"`
	BankBalances       []BankAccountResponse `json:"bank_balances"`
}
