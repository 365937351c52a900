package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Headers carrying shared secrets for non-public callers.
const (
	HeaderCronSecret  = "x-cron-secret"
	HeaderAgentSecret = "x-internal-secret"
)

// SharedSecret gates an endpoint behind a constant-time header
// comparison. Used for the sweep trigger (external scheduler) and the
// agent gateway, which sit outside the staff JWT surface.
func SharedSecret(header, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
				Code:    http.StatusServiceUnavailable,
				Message: "endpoint not configured",
			})
			return
		}
		provided := c.GetHeader(header)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "unauthorized",
			})
			return
		}
		c.Next()
	}
}
