package v1

import (
	"github.com/gin-gonic/gin"
)

// CounterpartyRouteHandler defines the interface for supplier and client handlers.
type CounterpartyRouteHandler interface {
	List(c *gin.Context)
	Options(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// InvoiceRouteHandler defines the interface for invoice handlers.
type InvoiceRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	UpdateHeader(c *gin.Context)
	ReplaceItems(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterCounterpartyRoutes registers standard CRUD routes for a counterparty kind.
//
// Usage:
//
//	handler := handlers.NewCounterpartyHandler(base, service, counterparty.KindSupplier)
//	RegisterCounterpartyRoutes(api.Group("/suppliers"), handler)
func RegisterCounterpartyRoutes(group *gin.RouterGroup, handler CounterpartyRouteHandler) {
	group.GET("", handler.List)
	group.GET("/list", handler.Options)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}

// RegisterInvoiceRoutes registers CRUD routes for an invoice type.
// Item changes go through PUT /:id/items so the ledger is reconciled.
//
// Usage:
//
//	handler := handlers.NewInvoiceHandler(base, service, invoice.TypePurchase)
//	RegisterInvoiceRoutes(api.Group("/invoices/purchases"), handler)
func RegisterInvoiceRoutes(group *gin.RouterGroup, handler InvoiceRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PATCH("/:id", handler.UpdateHeader)
	group.PUT("/:id/items", handler.ReplaceItems)
	group.DELETE("/:id", handler.Delete)
}
