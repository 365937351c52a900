package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jefersonOS/barber-pro/pkg/logger"
)

// Logger logs one line per request: method, path, status, latency,
// request id. Bodies are never logged; they carry customer phones.
func Logger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		l.ZL.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(ContextRequestID)).
			Msg("request")
	}
}
