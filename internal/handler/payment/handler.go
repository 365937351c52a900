package payment

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/jefersonOS/barber-pro/internal/handler"
	"github.com/jefersonOS/barber-pro/internal/middleware"
	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/service/payment"
	"github.com/jefersonOS/barber-pro/pkg/logger"
)

const maxWebhookBody = 1 << 20

type Handler struct {
	payments         *payment.Service
	webhookSecret    string
	webhookTolerance time.Duration
	logger           *logger.Logger
}

func NewHandler(payments *payment.Service, webhookSecret string, webhookTolerance time.Duration, l *logger.Logger) *Handler {
	if webhookTolerance <= 0 {
		webhookTolerance = 5 * time.Minute
	}
	return &Handler{
		payments:         payments,
		webhookSecret:    webhookSecret,
		webhookTolerance: webhookTolerance,
		logger:           l,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	payments := r.Group("/payments")
	{
		payments.POST("/checkout", auth.Authenticate(), h.CreateCheckout)
		// Signature verification is the auth on the webhook.
		payments.POST("/webhook/stripe", h.StripeWebhook)
	}
}

type createCheckoutRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
}

func (h *Handler) CreateCheckout(c *gin.Context) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing tenant scope"))
		return
	}

	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	url, err := h.payments.CreateCheckout(c.Request.Context(), orgID, req.AppointmentID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"checkout_url": url}))
}

// StripeWebhook consumes provider confirmations. It answers 200 even
// when there is nothing to do internally, so the provider stops
// redelivering; only a failure to persist warrants a retryable status.
func (h *Handler) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read body"))
		return
	}

	evt, err := webhook.ConstructEventWithTolerance(body,
		c.GetHeader("Stripe-Signature"), h.webhookSecret, h.webhookTolerance)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid signature"))
		return
	}

	if evt.Type != "checkout.session.completed" {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"ignored": string(evt.Type)}))
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		h.logger.Error(err, "invalid checkout session payload", "provider_event_id", evt.ID)
		c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"ignored": "malformed session"}))
		return
	}

	confirmation, err := h.parseConfirmation(evt.ID, &session)
	if err != nil {
		h.logger.Error(err, "unroutable checkout session", "provider_event_id", evt.ID, "session_id", session.ID)
		c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"ignored": "missing metadata"}))
		return
	}

	if err := h.payments.ConfirmPayment(c.Request.Context(), confirmation); err != nil {
		h.logger.Error(err, "payment confirmation failed", "provider_event_id", evt.ID)
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("confirmation failed"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"received": evt.ID}))
}

func (h *Handler) parseConfirmation(eventID string, session *stripe.CheckoutSession) (*model.PaymentConfirmation, error) {
	orgID, err := uuid.Parse(session.Metadata["org_id"])
	if err != nil {
		return nil, err
	}
	appointmentID, err := uuid.Parse(session.Metadata["appointment_id"])
	if err != nil {
		return nil, err
	}

	var intentID *string
	if session.PaymentIntent != nil {
		id := session.PaymentIntent.ID
		intentID = &id
	}

	return &model.PaymentConfirmation{
		ProviderEventID: eventID,
		OrgID:           orgID,
		AppointmentID:   appointmentID,
		SessionID:       session.ID,
		PaymentIntentID: intentID,
		AmountCents:     session.AmountTotal,
		Currency:        string(session.Currency),
		OccurredAt:      time.Now(),
	}, nil
}
