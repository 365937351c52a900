package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jefersonOS/barber-pro/internal/handler"
	"github.com/jefersonOS/barber-pro/internal/middleware"
	"github.com/jefersonOS/barber-pro/internal/service/catalog"
)

type Handler struct {
	catalog *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{catalog: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	group := r.Group("/catalog")
	group.Use(auth.Authenticate())
	{
		group.GET("/services", h.ListServices)
		group.GET("/professionals", h.ListProfessionals)
		group.GET("/units", h.ListUnits)
	}
}

func (h *Handler) ListServices(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}
	services, err := h.catalog.ListServices(c.Request.Context(), orgID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}

func (h *Handler) ListProfessionals(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}
	professionals, err := h.catalog.ListProfessionals(c.Request.Context(), orgID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(professionals))
}

func (h *Handler) ListUnits(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}
	units, err := h.catalog.ListUnits(c.Request.Context(), orgID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(units))
}
