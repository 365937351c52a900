package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/pkg/auth"
)

// Context keys set by Authenticate.
const (
	ContextUserID = "user_id"
	ContextOrgID  = "org_id"
	ContextRole   = "role"
)

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate verifies the bearer token and scopes the request to the
// token's tenant.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing authorization header",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid authorization format",
			})
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid token",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextOrgID, claims.OrgID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates operations reserved for tenant admins, such as
// cancellation.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "admin role required",
			})
			return
		}
		c.Next()
	}
}

// OrgID returns the tenant id the request is authenticated for.
func OrgID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextOrgID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
