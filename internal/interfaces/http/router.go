package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/lot-ledger/internal/application/analytics"
	"github.com/jhoicas/lot-ledger/internal/application/ledger"
	"github.com/jhoicas/lot-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Registry    *ledger.LotRegistry
	Journal     *ledger.Journal
	Balance     *ledger.BalanceEngine
	Statement   *ledger.StatementUseCase
	DashboardUC *appanalytics.DashboardUseCase
	AuditLogUC  *usecase.AuditLogUseCase
	JWTSecret   string
	// WriteLimiter se aplica a las rutas que mutan estado; nil = sin límite.
	WriteLimiter fiber.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", IdentityMiddleware(deps.JWTSecret))

	limit := deps.WriteLimiter
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	// Con auth deshabilitada no hay roles que comprobar.
	adminOnly := func(c *fiber.Ctx) error { return c.Next() }
	if deps.JWTSecret != "" {
		adminOnly = RequireRole(RoleAdmin)
	}

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", limit, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", limit, productHandler.Update)
	products.Delete("/:id", limit, adminOnly, productHandler.Delete)

	// Lots
	lots := api.Group("/lots")
	lotHandler := NewLotHandler(deps.Registry, deps.Journal, deps.Balance, deps.Statement)
	lots.Post("/", limit, lotHandler.Create)
	lots.Get("/", lotHandler.List)
	lots.Get("/safety-stock", lotHandler.SafetyStock)
	lots.Get("/product/:productId", lotHandler.ListByProduct)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Get("/:id/balance", lotHandler.Balance)
	lots.Get("/:id/transactions", lotHandler.Transactions)
	lots.Get("/:id/statement", lotHandler.Statement)
	lots.Put("/:id", limit, lotHandler.Update)
	lots.Delete("/:id", limit, adminOnly, lotHandler.Delete)

	// Transactions
	txns := api.Group("/transactions")
	txnHandler := NewTransactionHandler(deps.Journal)
	txns.Post("/", limit, txnHandler.Append)
	txns.Get("/", txnHandler.List)
	txns.Get("/lot/:lotId", txnHandler.ListByLot)
	txns.Get("/:id", txnHandler.GetByID)

	// Dashboard
	dashboard := api.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
	dashboard.Get("/product-summary", dashboardHandler.GetProductSummary)
	dashboard.Get("/overview", dashboardHandler.GetOverview)
	dashboard.Get("/report", dashboardHandler.GetReport)

	// Activity log (admin)
	logs := api.Group("/logs", adminOnly)
	logHandler := NewLogHandler(deps.AuditLogUC)
	logs.Get("/", logHandler.List)
	logs.Get("/user/:userId", logHandler.ListByUser)
}
