package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dvillacis/puntoventa-api/internal/application/analytics"
	"github.com/dvillacis/puntoventa-api/internal/application/auth"
	"github.com/dvillacis/puntoventa-api/internal/application/billing"
	"github.com/dvillacis/puntoventa-api/internal/application/certificates"
	"github.com/dvillacis/puntoventa-api/internal/application/finance"
	"github.com/dvillacis/puntoventa-api/internal/application/inventory"
	"github.com/dvillacis/puntoventa-api/internal/application/products"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.Usecase
	ProductUC   *products.Usecase
	InventoryUC *inventory.Usecase
	FinanceUC   *finance.Usecase
	AnalyticsUC *analytics.Usecase
	Vault       *certificates.Vault

	SaleProcessor *billing.SaleProcessor
	Orchestrator  *billing.Orchestrator
	RIDE          billing.RIDEGenerator

	Clients   repository.ClientRepository
	Suppliers repository.SupplierRepository
	Invoices  repository.InvoiceRepository

	JWTSecret string
}

// Router registra las rutas de la API. Tres niveles de acceso: público (login),
// autenticado (catálogos y consultas) y por rol (ventas, finanzas, admin).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Alta de usuarios: solo admin
	protected.Post("/auth/register", RequireRole(RoleAdmin), authHandler.Register)

	// Productos y kardex
	productHandler := NewProductHandler(deps.ProductUC, deps.InventoryUC)
	prods := protected.Group("/products")
	prods.Post("/", RequireRole(RoleAdmin), productHandler.Create)
	prods.Get("/", productHandler.List)
	prods.Get("/:id", productHandler.GetByID)
	prods.Put("/:id", RequireRole(RoleAdmin), productHandler.Update)
	prods.Delete("/:id", RequireRole(RoleAdmin), productHandler.Discontinue)
	prods.Post("/:id/reactivate", RequireRole(RoleAdmin), productHandler.Reactivate)
	prods.Post("/:id/restock", RequireRole(RoleAdmin, RoleCajero), productHandler.Restock)
	prods.Post("/:id/adjust", RequireRole(RoleAdmin), productHandler.Adjust)
	prods.Get("/:id/kardex", productHandler.Kardex)

	// Clientes y proveedores
	clientHandler := NewClientHandler(deps.Clients, deps.Suppliers)
	protected.Post("/clients", clientHandler.CreateClient)
	protected.Get("/clients", clientHandler.ListClients)
	protected.Get("/clients/:id", clientHandler.GetClient)
	protected.Post("/suppliers", clientHandler.CreateSupplier)
	protected.Get("/suppliers", clientHandler.ListSuppliers)

	// Ventas y ciclo SRI
	saleHandler := NewSaleHandler(deps.SaleProcessor, deps.Orchestrator, deps.RIDE, deps.Invoices)
	protected.Post("/sales", RequireRole(RoleAdmin, RoleCajero), saleHandler.Create)
	invoices := protected.Group("/invoices")
	invoices.Get("/", saleHandler.List)
	invoices.Get("/:id", saleHandler.GetByID)
	invoices.Get("/:id/status", saleHandler.Status)
	invoices.Get("/:id/xml", saleHandler.XML)
	invoices.Get("/:id/ride", saleHandler.RIDE)
	invoices.Get("/:id/history", saleHandler.History)
	invoices.Post("/:id/check-authorization", RequireRole(RoleAdmin, RoleContador), saleHandler.CheckAuthorization)
	invoices.Post("/:id/resubmit", RequireRole(RoleAdmin, RoleContador), saleHandler.Resubmit)
	invoices.Post("/:id/annul", RequireRole(RoleAdmin, RoleContador), saleHandler.Annul)

	// Finanzas: cartera y bancos
	financeHandler := NewFinanceHandler(deps.FinanceUC)
	fin := protected.Group("/finance", RequireRole(RoleAdmin, RoleContador))
	fin.Get("/receivables", financeHandler.ListReceivables)
	fin.Post("/receivables/:id/payments", financeHandler.PayReceivable)
	fin.Post("/payables", financeHandler.CreatePayable)
	fin.Get("/payables", financeHandler.ListPayables)
	fin.Post("/payables/:id/payments", financeHandler.PayPayable)
	fin.Post("/bank-accounts", financeHandler.CreateBankAccount)
	fin.Get("/bank-accounts", financeHandler.ListBankAccounts)
	fin.Post("/bank-accounts/:id/movements", financeHandler.RegisterMovement)
	fin.Get("/bank-accounts/:id/movements", financeHandler.ListMovements)
	fin.Post("/transfers", financeHandler.Transfer)

	// Bóveda de certificados: solo admin
	certHandler := NewCertificateHandler(deps.Vault)
	certs := protected.Group("/certificates", RequireRole(RoleAdmin))
	certs.Post("/", certHandler.Store)
	certs.Get("/", certHandler.List)
	certs.Post("/:id/activate", certHandler.Activate)
	certs.Post("/:id/deactivate", certHandler.Deactivate)

	// Tablero
	dashboardHandler := NewDashboardHandler(deps.AnalyticsUC)
	dash := protected.Group("/dashboard", RequireRole(RoleAdmin, RoleContador))
	dash.Get("/", dashboardHandler.Summary)
	dash.Get("/low-stock", dashboardHandler.LowStock)
}
