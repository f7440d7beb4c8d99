// Package server wires the services into a Fiber app. All state lives on App;
// handlers receive what they need explicitly.
package server

import (
	"strings"
	"time"

	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/bill"
	"mandi-backend/internal/catalog"
	"mandi-backend/internal/crate"
	"mandi-backend/internal/expense"
	"mandi-backend/internal/financial"
	"mandi-backend/internal/httpx"
	"mandi-backend/internal/inventory"
	"mandi-backend/internal/purchase"
	"mandi-backend/internal/sales"
	"mandi-backend/internal/store"
	"mandi-backend/internal/supplier"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

// base64 of a 5MB bill plus form fields
const bodyLimit = 8 * 1024 * 1024

type Options struct {
	JWTSecret      string
	CORSOrigins    string
	RequestTimeout time.Duration
	Financial      financial.Settings
	// nil stores bills inline.
	Blobs bill.BlobStore
}

type App struct {
	Log       logrus.FieldLogger
	Auth      *auth.Service
	Audit     *audit.Service
	Vendors   *supplier.Service
	Catalog   *catalog.Service
	Purchases *purchase.Engine
	Crates    *crate.Ledger
	Inventory *inventory.Service
	Sales     *sales.Service
	Expenses  *expense.Service
	Bills     *bill.Service
	Financial *financial.Service

	opts Options
}

func New(s *store.Store, log logrus.FieldLogger, opts Options) *App {
	return &App{
		Log:       log,
		Auth:      auth.NewService(s, opts.JWTSecret),
		Audit:     audit.NewService(s, log),
		Vendors:   supplier.NewService(s),
		Catalog:   catalog.NewService(s),
		Purchases: purchase.NewEngine(s, log),
		Crates:    crate.NewLedger(s, log),
		Inventory: inventory.NewService(s),
		Sales:     sales.NewService(s, log),
		Expenses:  expense.NewService(s),
		Bills:     bill.NewService(s, opts.Blobs, log),
		Financial: financial.NewService(s, opts.Financial),
		opts:      opts,
	}
}

// Fiber builds the HTTP app with every route registered.
func (a *App) Fiber() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler(a.Log),
		BodyLimit:    bodyLimit,
	})

	origins := strings.Split(a.opts.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(httpx.RequestLogger(a.Log))
	if a.opts.RequestTimeout > 0 {
		app.Use(httpx.Timeout(a.opts.RequestTimeout))
	}

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-owner", auth.RegisterOwnerHandler(a.Auth))
	api.Post("/auth/login", auth.LoginHandler(a.Auth))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(a.opts.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler())

	// Vendors
	protected.Get("/vendors", supplier.ListVendorsHandler(a.Vendors))
	protected.Post("/vendors", supplier.CreateVendorHandler(a.Vendors, a.Audit))
	protected.Get("/vendors/:id", supplier.GetVendorHandler(a.Vendors))
	protected.Put("/vendors/:id", supplier.UpdateVendorHandler(a.Vendors, a.Audit))
	protected.Get("/vendors/:id/purchases", purchase.VendorPurchasesHandler(a.Purchases))
	protected.Get("/vendors/:id/details", financial.VendorDetailsHandler(a.Financial))
	protected.Get("/vendors/:id/bills", bill.VendorBillsHandler(a.Bills))

	// Catalog
	protected.Get("/vegetables", catalog.ListVegetablesHandler(a.Catalog))
	protected.Post("/vegetables", catalog.CreateVegetableHandler(a.Catalog, a.Audit))

	// Purchases & verification
	protected.Post("/purchases", purchase.CreatePurchaseHandler(a.Purchases, a.Audit))
	protected.Post("/purchases/batch", purchase.CreateBatchHandler(a.Purchases, a.Audit))
	protected.Get("/purchases", purchase.ListPurchasesHandler(a.Purchases))
	protected.Get("/purchases/pending", purchase.PendingPurchasesHandler(a.Purchases))
	protected.Get("/purchases/:id", purchase.GetPurchaseHandler(a.Purchases))
	protected.Post("/purchases/:id/verify", purchase.VerifyPurchaseHandler(a.Purchases, a.Audit))

	// Crates
	protected.Get("/crates", crate.CrateSummaryHandler(a.Crates))
	protected.Post("/purchases/:id/crate-returns", crate.ReturnCratesHandler(a.Crates, a.Audit))

	// Inventory
	protected.Get("/inventory", inventory.ListInventoryHandler(a.Inventory))
	protected.Post("/admin/reconcile", inventory.ReconcileHandler(a.Inventory, a.Audit, a.Log))

	// Sales & expenses
	protected.Get("/sales", sales.ListSalesHandler(a.Sales))
	protected.Post("/sales", sales.CreateSaleHandler(a.Sales, a.Audit))
	protected.Get("/expenses", expense.ListExpensesHandler(a.Expenses))
	protected.Post("/expenses", expense.CreateExpenseHandler(a.Expenses, a.Audit))

	// Bills
	protected.Post("/bills", bill.UploadBillHandler(a.Bills, a.Audit))
	protected.Get("/bills", bill.ListBillsHandler(a.Bills))
	protected.Get("/bills/:id/file", bill.DownloadBillHandler(a.Bills))

	// Reports
	protected.Get("/reports/financial", financial.FinancialReportHandler(a.Financial))
	protected.Get("/reports/financial/export", financial.ExportReportHandler(a.Financial))
	protected.Get("/dashboard", financial.DashboardHandler(a.Financial))

	// Audit
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(a.Audit))

	return app
}
