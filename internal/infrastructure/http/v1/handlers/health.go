// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether the storage backend can serve requests.
type ReadinessCheck func(ctx context.Context) error

// TableCounter reports row counts per table.
type TableCounter interface {
	TableCounts(ctx context.Context) (map[string]int64, error)
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	*BaseHandler
	ready   ReadinessCheck
	tables  TableCounter
	version string
	storage string
}

// NewHealthHandler creates a new health handler.
// storage names the backend in /health/info.
func NewHealthHandler(base *BaseHandler, ready ReadinessCheck, tables TableCounter, version, storage string) *HealthHandler {
	return &HealthHandler{
		BaseHandler: base,
		ready:       ready,
		tables:      tables,
		version:     version,
		storage:     storage,
	}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"checks": map[string]string{
					"storage": "unhealthy: " + err.Error(),
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"storage": "healthy",
		},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":     "invoicing",
		"version": h.version,
		"storage": h.storage,
	})
}

// API is the health endpoint polled by the dashboard.
// GET /api/health
func (h *HealthHandler) API(c *gin.Context) {
	h.Success(c, "API is running")
}

// CheckTables reports row counts per table.
// GET /api/check-tables
func (h *HealthHandler) CheckTables(c *gin.Context) {
	counts, err := h.tables.TableCounts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	data := make(map[string]gin.H, len(counts))
	for table, n := range counts {
		data[table] = gin.H{"count": n}
	}
	h.OK(c, data)
}
