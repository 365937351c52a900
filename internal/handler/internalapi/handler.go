package internalapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jefersonOS/barber-pro/internal/handler"
	"github.com/jefersonOS/barber-pro/internal/middleware"
	"github.com/jefersonOS/barber-pro/internal/service/lifecycle"
)

// Handler exposes the sweep to an external scheduler. The worker runs
// the same sweep on its own cadence; both paths hit the identical
// idempotent operation, so overlap is harmless.
type Handler struct {
	lifecycle  *lifecycle.Service
	cronSecret string
}

func NewHandler(lc *lifecycle.Service, cronSecret string) *Handler {
	return &Handler{lifecycle: lc, cronSecret: cronSecret}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	internal := r.Group("/internal")
	internal.Use(middleware.SharedSecret(middleware.HeaderCronSecret, h.cronSecret))
	{
		internal.POST("/sweep-expired", h.SweepExpired)
	}
}

func (h *Handler) SweepExpired(c *gin.Context) {
	count, err := h.lifecycle.ExpireStaleHolds(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"expired": count}))
}
