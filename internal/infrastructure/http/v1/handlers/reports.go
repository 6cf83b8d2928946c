package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"invoicing/internal/domain/registers/stock"
	"invoicing/internal/domain/reports"
	"invoicing/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves the dashboard and the product catalog.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
	catalog *stock.CatalogService
	now     func() time.Time
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service, catalog *stock.CatalogService) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		catalog:     catalog,
		now:         time.Now,
	}
}

// DashboardStats handles GET /dashboard/stats.
func (h *ReportsHandler) DashboardStats(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context(), h.now())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}

// Products handles GET /products - the ledger with purchase history.
func (h *ReportsHandler) Products(c *gin.Context) {
	var q dto.ProductQuery
	if !h.BindQuery(c, &q) {
		return
	}

	entries, err := h.catalog.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCatalog(entries))
}
