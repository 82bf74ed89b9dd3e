package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dvillacis/puntoventa-api/internal/application/analytics"
	"github.com/dvillacis/puntoventa-api/internal/application/auth"
	"github.com/dvillacis/puntoventa-api/internal/application/billing"
	"github.com/dvillacis/puntoventa-api/internal/application/certificates"
	"github.com/dvillacis/puntoventa-api/internal/application/finance"
	"github.com/dvillacis/puntoventa-api/internal/application/inventory"
	"github.com/dvillacis/puntoventa-api/internal/application/products"
	infracrypto "github.com/dvillacis/puntoventa-api/internal/infrastructure/crypto"
	infrapdf "github.com/dvillacis/puntoventa-api/internal/infrastructure/pdf"
	"github.com/dvillacis/puntoventa-api/internal/infrastructure/postgres"
	infrasri "github.com/dvillacis/puntoventa-api/internal/infrastructure/sri"
	"github.com/dvillacis/puntoventa-api/internal/infrastructure/sri/signer"
	httpRouter "github.com/dvillacis/puntoventa-api/internal/interfaces/http"
	"github.com/dvillacis/puntoventa-api/pkg/config"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sri_ambiente", cfg.SRI.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	sriLogRepo := postgres.NewSriLogRepository(pool)
	taxRateRepo := postgres.NewTaxRateRepository(pool)
	discountRepo := postgres.NewDiscountRepository(pool)
	paymentMethodRepo := postgres.NewPaymentMethodRepository(pool)
	receivableRepo := postgres.NewReceivableRepository(pool)
	payableRepo := postgres.NewPayableRepository(pool)
	bankAccountRepo := postgres.NewBankAccountRepository(pool)
	bankMovementRepo := postgres.NewBankMovementRepository(pool)
	certificateRepo := postgres.NewCertificateRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)

	txRunner := postgres.NewTxRunner(pool)
	financeTxRunner := postgres.NewFinanceTxRunner(pool)

	inventoryUC := inventory.NewUsecase(txRunner, productRepo, movementRepo, log)
	productUC := products.NewUsecase(productRepo, inventoryUC, log)
	financeUC := finance.NewUsecase(financeTxRunner, receivableRepo, payableRepo, bankAccountRepo, bankMovementRepo, log)
	analyticsUC := analytics.NewUsecase(analyticsRepo, bankAccountRepo, log)
	authUC := auth.NewUsecase(userRepo, cfg.JWT, log)

	// Bóveda de certificados: el .p12 y su clave viven cifrados con la llave
	// maestra del servidor.
	cipher, err := infracrypto.NewAESCipher(cfg.Vault.MasterKeyHex)
	if err != nil {
		log.Fatal().Err(err).Msg("llave maestra de la bóveda")
	}
	vault := certificates.NewVault(certificateRepo, cipher, log)

	// Ciclo SRI: XML → firma XAdES-BES → recepción → autorización.
	xmlBuilder := infrasri.NewXMLBuilderService(cfg.SRI.Environment, cfg.SRI.EmissionType)
	signerSvc := signer.NewDigitalSignatureService()

	// Cliente SOAP SRI. La configuración normaliza SRI_ENV a dev/test/prod;
	// solo en "dev" el orquestador simula la autorización sin web service.
	var sriClient billing.SRIClient
	if cfg.SRI.AppEnv != "dev" {
		sriClient = infrasri.NewSOAPClient(cfg.SRI.Environment)
	}

	orchestrator := billing.NewOrchestrator(billing.OrchestratorDeps{
		Invoices:  invoiceRepo,
		Logs:      sriLogRepo,
		Companies: companyRepo,
		Clients:   clientRepo,
		Payments:  paymentMethodRepo,
		TaxRates:  taxRateRepo,
		Products:  productRepo,
		Builder:   xmlBuilder,
		Signer:    signerSvc,
		Keys:      vault,
		Client:    sriClient,
		AppEnv:    cfg.SRI.AppEnv,
		Logger:    log,
	})

	saleProcessor := billing.NewSaleProcessor(
		txRunner, clientRepo, taxRateRepo, discountRepo, paymentMethodRepo,
		inventoryUC, orchestrator,
		billing.SRIParams{Environment: cfg.SRI.Environment, EmissionType: cfg.SRI.EmissionType},
		log,
	)

	rideGenerator := infrapdf.NewRIDEGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PuntoVenta API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ProductUC:     productUC,
		InventoryUC:   inventoryUC,
		FinanceUC:     financeUC,
		AnalyticsUC:   analyticsUC,
		Vault:         vault,
		SaleProcessor: saleProcessor,
		Orchestrator:  orchestrator,
		RIDE:          rideGenerator,
		Clients:       clientRepo,
		Suppliers:     supplierRepo,
		Invoices:      invoiceRepo,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
