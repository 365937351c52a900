package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jefersonOS/barber-pro/internal/handler"
	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/service/auth"
)

type Handler struct {
	auth *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{auth: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/auth")
	{
		group.POST("/login", h.Login)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid credentials payload"))
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}
