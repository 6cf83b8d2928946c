// Package v1 provides the JSON API consumed by the invoicing dashboard.
package v1

import (
	"github.com/gin-gonic/gin"

	"invoicing/internal/app"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/infrastructure/http/v1/handlers"
	"invoicing/internal/infrastructure/http/v1/middleware"
	"invoicing/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Services are the domain services behind the handlers
	Services *app.Services

	// Ready is the storage readiness probe; nil means always ready
	Ready handlers.ReadinessCheck

	// Tables reports row counts for /api/check-tables
	Tables handlers.TableCounter

	// AllowedOrigins for CORS; empty allows every origin
	AllowedOrigins []string

	// Version and Storage are reported by /health/info
	Version string
	Storage string

	// Debug keeps gin in debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()
	healthHandler := handlers.NewHealthHandler(base, cfg.Ready, cfg.Tables, cfg.Version, cfg.Storage)

	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.API)
		api.GET("/check-tables", healthHandler.CheckTables)

		registerCounterpartyRoutes(api, base, cfg.Services)
		registerInvoiceRoutes(api, base, cfg.Services)
		registerReportRoutes(api, base, cfg.Services)
	}

	return router
}

// registerCounterpartyRoutes registers supplier and client endpoints.
func registerCounterpartyRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	suppliers := handlers.NewCounterpartyHandler(base, svc.Counterparties, counterparty.KindSupplier)
	RegisterCounterpartyRoutes(rg.Group("/suppliers"), suppliers)

	clients := handlers.NewCounterpartyHandler(base, svc.Counterparties, counterparty.KindClient)
	RegisterCounterpartyRoutes(rg.Group("/clients"), clients)
}

// registerInvoiceRoutes registers purchase and sale invoice endpoints.
func registerInvoiceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	invoices := rg.Group("/invoices")

	purchases := handlers.NewInvoiceHandler(base, svc.Invoices, invoice.TypePurchase)
	RegisterInvoiceRoutes(invoices.Group("/purchases"), purchases)

	sales := handlers.NewInvoiceHandler(base, svc.Invoices, invoice.TypeSale)
	RegisterInvoiceRoutes(invoices.Group("/sales"), sales)
}

// registerReportRoutes registers the dashboard and product catalog.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	reportHandler := handlers.NewReportsHandler(base, svc.Reports, svc.Catalog)

	rg.GET("/products", reportHandler.Products)
	rg.GET("/dashboard/stats", reportHandler.DashboardStats)
}
