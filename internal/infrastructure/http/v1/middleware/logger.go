package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"invoicing/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status.
// It also makes log the logger of the request context.
// Probe paths under /health are logged at debug level.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"query", query,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Errorw("http request", fields...)
		case strings.HasPrefix(path, "/health"):
			l.Debugw("http request", fields...)
		default:
			l.Infow("http request", fields...)
		}
	}
}
