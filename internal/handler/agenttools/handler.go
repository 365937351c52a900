package agenttools

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jefersonOS/barber-pro/internal/agent"
	"github.com/jefersonOS/barber-pro/internal/handler"
	"github.com/jefersonOS/barber-pro/internal/middleware"
	"github.com/jefersonOS/barber-pro/internal/repository"
	"github.com/jefersonOS/barber-pro/pkg/phone"
)

// Handler is the gateway the conversational agent calls. The agent
// loop runs elsewhere; it authenticates with a shared secret and
// identifies the conversation by WhatsApp instance and remote JID.
type Handler struct {
	dispatcher  *agent.Dispatcher
	orgs        repository.OrganizationRepository
	agentSecret string
}

func NewHandler(d *agent.Dispatcher, orgs repository.OrganizationRepository, agentSecret string) *Handler {
	return &Handler{dispatcher: d, orgs: orgs, agentSecret: agentSecret}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	tools := r.Group("/agent")
	tools.Use(middleware.SharedSecret(middleware.HeaderAgentSecret, h.agentSecret))
	{
		tools.POST("/tools", h.ExecuteTool)
	}
}

type toolRequest struct {
	InstanceID string         `json:"instance_id" binding:"required"`
	RemoteJID  string         `json:"remote_jid" binding:"required"`
	Call       agent.ToolCall `json:"call" binding:"required"`
}

func (h *Handler) ExecuteTool(c *gin.Context) {
	var req toolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	org, err := h.orgs.GetByWhatsAppInstance(c.Request.Context(), req.InstanceID)
	if err != nil {
		c.Error(err)
		return
	}

	customerPhone := phone.FromRemoteJID(req.RemoteJID)
	if customerPhone == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid remote jid"))
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), &agent.Conversation{
		OrgID: org.ID,
		Phone: customerPhone,
	}, &req.Call)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
