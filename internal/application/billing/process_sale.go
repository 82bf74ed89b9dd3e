package billing

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/application/inventory"
	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
	sridom "github.com/dvillacis/puntoventa-api/internal/domain/sri"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
	"github.com/dvillacis/puntoventa-api/pkg/sri"
)

// SRIParams parámetros del emisor para la clave de acceso.
type SRIParams struct {
	Environment  string // "1" pruebas, "2" producción
	EmissionType string // "1" normal
}

// SaleProcessor es el procesador de ventas: valida el carrito, congela
// precios, numera, descuenta stock, crea la factura PENDIENTE y, a crédito,
// la cuenta por cobrar. Todo dentro de una sola transacción; el envío al SRI
// arranca después del commit y nunca bloquea la venta.
type SaleProcessor struct {
	tx        SaleTxRunner
	clients   repository.ClientRepository
	taxRates  repository.TaxRateRepository
	discounts repository.DiscountRepository
	payments  repository.PaymentMethodRepository
	inventory *inventory.Usecase
	submitter Submitter
	params    SRIParams
	log       *logger.Logger
}

func NewSaleProcessor(
	tx SaleTxRunner,
	clients repository.ClientRepository,
	taxRates repository.TaxRateRepository,
	discounts repository.DiscountRepository,
	payments repository.PaymentMethodRepository,
	inv *inventory.Usecase,
	submitter Submitter,
	params SRIParams,
	log *logger.Logger,
) *SaleProcessor {
	return &SaleProcessor{
		tx:        tx,
		clients:   clients,
		taxRates:  taxRates,
		discounts: discounts,
		payments:  payments,
		inventory: inv,
		submitter: submitter,
		params:    params,
		log:       log,
	}
}

// resolvedLine línea validada contra catálogos, lista para congelar precios.
type resolvedLine struct {
	productID       string
	quantity        decimal.Decimal
	taxRateID       string
	taxPercent      decimal.Decimal
	discountID      string
	discountPercent decimal.Decimal
}

// ProcessSale ejecuta la venta completa. La factura resultante queda en
// PENDIENTE; el estado SRI avanza en segundo plano.
func (s *SaleProcessor) ProcessSale(ctx context.Context, companyID, userID string, req dto.CreateSaleRequest) (*entity.Invoice, error) {
	resolved, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	numericCode, err := randomNumericCode()
	if err != nil {
		return nil, err
	}

	invoiceID := uuid.NewString()
	issueDate := time.Now()
	var invoice *entity.Invoice

	err = s.tx.RunSale(ctx, func(r SaleTxRepos) error {
		company, err := r.Companies.GetByID(companyID)
		if err != nil {
			return err
		}
		seq, err := r.Companies.NextSequential(companyID)
		if err != nil {
			return err
		}
		sequential := fmt.Sprintf("%09d", seq)

		// Precios y stock se leen con la fila bloqueada: el precio que se
		// congela es el vigente al momento exacto de la venta. El lock se
		// mantiene hasta el commit, así la deducción posterior ve lo mismo.
		inputs := make([]PricingInput, 0, len(resolved))
		for _, line := range resolved {
			p, err := r.Products.GetForUpdate(line.productID)
			if err != nil {
				return err
			}
			inputs = append(inputs, PricingInput{
				ProductID:       line.productID,
				Quantity:        line.quantity,
				UnitPrice:       p.Price,
				TaxRateID:       line.taxRateID,
				TaxPercent:      line.taxPercent,
				DiscountID:      line.discountID,
				DiscountPercent: line.discountPercent,
			})
		}
		priced, totals := ComputeTotals(inputs)

		accessKey, err := sri.GenerateAccessKey(sri.AccessKeyParams{
			IssueDate:    issueDate,
			DocType:      sri.DocTypeFactura,
			RUC:          company.RUC,
			Environment:  s.params.Environment,
			Series:       company.Series(),
			Sequential:   sequential,
			NumericCode:  numericCode,
			EmissionType: s.params.EmissionType,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		invoice = &entity.Invoice{
			ID:              invoiceID,
			CompanyID:       companyID,
			ClientID:        req.ClientID,
			PaymentMethodID: req.PaymentMethodID,
			SaleType:        req.SaleType,
			CreditDays:      req.CreditDays,
			Estab:           company.Estab,
			PtoEmi:          company.PtoEmi,
			Sequential:      sequential,
			IssueDate:       issueDate,
			SubtotalExempt:  totals.SubtotalExempt,
			SubtotalTaxed:   totals.SubtotalTaxed,
			DiscountTotal:   totals.DiscountTotal,
			TaxTotal:        totals.TaxTotal,
			GrandTotal:      totals.GrandTotal,
			SriStatus:       sridom.StatusPending,
			AccessKey:       accessKey,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := r.Invoices.Create(invoice); err != nil {
			return err
		}

		invRepos := inventory.TxRepos{Products: r.Products, Movements: r.Movements}
		for _, line := range priced {
			if err := r.Invoices.CreateLine(&entity.InvoiceLine{
				ID:              uuid.NewString(),
				InvoiceID:       invoiceID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice,
				TaxRateID:       line.TaxRateID,
				TaxPercent:      line.TaxPercent,
				DiscountID:      line.DiscountID,
				DiscountPercent: line.DiscountPercent,
				Subtotal:        line.Subtotal,
				DiscountAmount:  line.DiscountAmount,
				TaxableBase:     line.TaxableBase,
				TaxAmount:       line.TaxAmount,
			}); err != nil {
				return err
			}
			if err := s.inventory.DeductForSaleInTx(invRepos, inventory.MovementInput{
				CompanyID:   companyID,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				Detail:      "venta " + invoice.Number(),
				ReferenceID: invoiceID,
				UserID:      userID,
			}); err != nil {
				return err
			}
		}

		if req.SaleType == entity.SaleCredit {
			return r.Receivables.Create(&entity.AccountReceivable{
				ID:         uuid.NewString(),
				CompanyID:  companyID,
				InvoiceID:  invoiceID,
				ClientID:   req.ClientID,
				Amount:     totals.GrandTotal,
				AmountPaid: decimal.Zero,
				DueDate:    issueDate.AddDate(0, 0, req.CreditDays),
				Status:     entity.AccountPending,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", invoice.ID).
		Str("number", invoice.Number()).
		Str("access_key", invoice.AccessKey).
		Str("grand_total", invoice.GrandTotal.String()).
		Msg("venta registrada")

	s.submitter.ProcessAsync(invoice.ID)
	return invoice, nil
}

// validate resuelve el carrito contra los catálogos antes de abrir la
// transacción: lo que no pasa aquí jamás toca la base.
func (s *SaleProcessor) validate(ctx context.Context, req dto.CreateSaleRequest) ([]resolvedLine, error) {
	if len(req.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	switch req.SaleType {
	case entity.SaleCash:
		// sin condiciones extra
	case entity.SaleCredit:
		if req.CreditDays <= 0 {
			return nil, domain.ErrInvalidCredit
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.clients.GetByID(req.ClientID); err != nil {
		return nil, err
	}
	method, err := s.payments.GetByID(req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if !method.Active {
		return nil, domain.ErrInvalidInput
	}

	resolved := make([]resolvedLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil || !qty.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		if line.TaxRateID == "" {
			return nil, domain.ErrMissingTaxRate
		}
		rate, err := s.taxRates.GetByID(line.TaxRateID)
		if err != nil {
			return nil, domain.ErrMissingTaxRate
		}
		if !rate.Active {
			return nil, domain.ErrMissingTaxRate
		}
		rl := resolvedLine{
			productID:  line.ProductID,
			quantity:   qty,
			taxRateID:  rate.ID,
			taxPercent: rate.Percent,
		}
		if line.DiscountID != "" {
			d, err := s.discounts.GetByID(line.DiscountID)
			if err != nil {
				return nil, err
			}
			if !d.Active {
				return nil, domain.ErrInvalidInput
			}
			rl.discountID = d.ID
			rl.discountPercent = d.Percent
		}
		resolved = append(resolved, rl)
	}
	return resolved, nil
}

// randomNumericCode genera el código numérico de 8 dígitos de la clave de
// acceso con aleatoriedad criptográfica.
func randomNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08d", n.Int64()), nil
}
