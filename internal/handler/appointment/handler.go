package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/handler"
	"github.com/jefersonOS/barber-pro/internal/middleware"
	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/service/availability"
	"github.com/jefersonOS/barber-pro/internal/service/booking"
	"github.com/jefersonOS/barber-pro/internal/service/lifecycle"
)

type Handler struct {
	availability *availability.Service
	booking      *booking.Service
	lifecycle    *lifecycle.Service
}

func NewHandler(avail *availability.Service, book *booking.Service, lc *lifecycle.Service) *Handler {
	return &Handler{
		availability: avail,
		booking:      book,
		lifecycle:    lc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	appointments.Use(auth.Authenticate())
	{
		appointments.GET("/availability", h.GetAvailability)
		appointments.POST("/hold", h.CreateHold)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/cancel", auth.RequireAdmin(), h.CancelAppointment)
	}
}

func (h *Handler) GetAvailability(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}

	var req model.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	req.OrgID = orgID

	if !req.To.After(req.From) {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("to must be after from"))
		return
	}

	slots, err := h.availability.GetAvailableSlots(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) CreateHold(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}

	var req model.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	req.OrgID = orgID

	apt, err := h.booking.CreateHold(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.booking.Get(c.Request.Context(), orgID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}

	filters := &model.AppointmentFilters{}
	if id := c.Query("professional_id"); id != "" {
		professionalID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid professional ID"))
			return
		}
		filters.ProfessionalID = professionalID
	}
	if status := c.Query("status"); status != "" {
		s := model.AppointmentStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid status"))
			return
		}
		filters.Status = s
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from timestamp"))
			return
		}
		filters.StartDate = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to timestamp"))
			return
		}
		filters.EndDate = t
	}

	appointments, err := h.booking.List(c.Request.Context(), orgID, filters)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.lifecycle.Cancel(c.Request.Context(), orgID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}
