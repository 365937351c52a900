package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
	"github.com/jefersonOS/barber-pro/pkg/logger"
	"github.com/jefersonOS/barber-pro/pkg/metrics"
)

// CheckoutProvider creates hosted checkout sessions. Implemented by
// the Stripe client; faked in tests.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, params *SessionParams) (*Session, error)
}

type SessionParams struct {
	OrgID         uuid.UUID
	AppointmentID uuid.UUID
	CustomerPhone string
	ServiceName   string
	AmountCents   int64
	Currency      string
}

type Session struct {
	ID  string
	URL string
}

// Notifier sends a best-effort customer message. Failures are logged
// and swallowed.
type Notifier interface {
	SendText(ctx context.Context, instanceID, phone, text string) error
}

// Alerter delivers the staff reconciliation alert.
type Alerter interface {
	SendReconciliationAlert(to string, apt *model.Appointment, evt *model.PaymentConfirmation) error
}

type Service struct {
	appointments repository.AppointmentRepository
	payments     repository.PaymentRepository
	services     repository.ServiceRepository
	orgs         repository.OrganizationRepository
	outbox       repository.OutboxRepository
	provider     CheckoutProvider
	notifier     Notifier
	alerter      Alerter
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	payments repository.PaymentRepository,
	services repository.ServiceRepository,
	orgs repository.OrganizationRepository,
	outbox repository.OutboxRepository,
	provider CheckoutProvider,
	notifier Notifier,
	alerter Alerter,
	l *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		appointments: appointments,
		payments:     payments,
		services:     services,
		orgs:         orgs,
		outbox:       outbox,
		provider:     provider,
		notifier:     notifier,
		alerter:      alerter,
		logger:       l,
		metrics:      m,
		now:          time.Now,
	}
}

// CreateCheckout returns a hosted checkout URL for the appointment's
// deposit. The appointment must still carry a live hold and a positive
// deposit. When a pending session already exists it is reused instead
// of duplicated.
func (s *Service) CreateCheckout(ctx context.Context, orgID, appointmentID uuid.UUID) (string, error) {
	apt, err := s.appointments.Get(ctx, orgID, appointmentID)
	if err != nil {
		return "", err
	}

	switch apt.Status {
	case model.AppointmentStatusHold, model.AppointmentStatusPendingPayment:
	default:
		return "", apperrors.InvalidTransition(string(apt.Status), string(model.AppointmentStatusPendingPayment))
	}
	if apt.HoldExpiresAt == nil || !apt.HoldExpiresAt.After(s.now()) {
		return "", apperrors.HoldExpired()
	}
	if apt.DepositAmountCents <= 0 {
		return "", apperrors.BadRequest("appointment has no deposit to collect", nil)
	}

	if existing, err := s.payments.LatestPending(ctx, orgID, appointmentID); err == nil && existing.CheckoutURL != "" {
		return existing.CheckoutURL, nil
	} else if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	svc, err := s.services.Get(ctx, orgID, apt.ServiceID)
	if err != nil {
		return "", err
	}

	sess, err := s.provider.CreateSession(ctx, &SessionParams{
		OrgID:         orgID,
		AppointmentID: appointmentID,
		CustomerPhone: apt.CustomerPhone,
		ServiceName:   svc.Name,
		AmountCents:   apt.DepositAmountCents,
		Currency:      "brl",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	if err := s.payments.Create(ctx, &model.Payment{
		OrgID:             orgID,
		AppointmentID:     appointmentID,
		Provider:          "stripe",
		Status:            model.PaymentStatusPending,
		CheckoutSessionID: sess.ID,
		CheckoutURL:       sess.URL,
		AmountCents:       apt.DepositAmountCents,
		Currency:          "brl",
	}); err != nil {
		return "", err
	}

	// No-op when the appointment is already pending_payment.
	if _, err := s.appointments.TransitionStatus(ctx, orgID, appointmentID,
		[]model.AppointmentStatus{model.AppointmentStatusHold},
		model.AppointmentStatusPendingPayment, false); err != nil {
		return "", err
	}

	return sess.URL, nil
}

// ConfirmPayment applies one inbound provider confirmation. Safe to
// call with redelivered events: the provider event id is checked first
// and a duplicate returns without side effects.
func (s *Service) ConfirmPayment(ctx context.Context, evt *model.PaymentConfirmation) error {
	seen, err := s.payments.ExistsByProviderEvent(ctx, evt.ProviderEventID)
	if err != nil {
		return err
	}
	if seen {
		s.metrics.WebhookDuplicates.Inc()
		s.logger.Info("duplicate payment event ignored", "provider_event_id", evt.ProviderEventID)
		return nil
	}

	if err := s.recordPaid(ctx, evt); err != nil {
		return err
	}

	confirmed, err := s.appointments.TransitionStatus(ctx, evt.OrgID, evt.AppointmentID,
		[]model.AppointmentStatus{model.AppointmentStatusHold, model.AppointmentStatusPendingPayment},
		model.AppointmentStatusConfirmed, true)
	if err != nil {
		return err
	}

	if !confirmed {
		// The appointment left the confirmable set before the payment
		// posted (expired or canceled). The payment stays recorded as
		// paid and staff decide how to settle it; the appointment is
		// not resurrected.
		s.reconcile(ctx, evt)
		return nil
	}

	s.metrics.PaymentsConfirmed.Inc()
	apt, err := s.appointments.Get(ctx, evt.OrgID, evt.AppointmentID)
	if err != nil {
		s.logger.Error(err, "confirmed appointment fetch failed", "appointment_id", evt.AppointmentID.String())
		return nil
	}
	s.publishConfirmed(ctx, apt)
	s.notifyCustomer(ctx, apt)
	return nil
}

// recordPaid upserts the payment row: the session's own row when it
// exists, otherwise the most recent pending one, otherwise a fresh
// paid row so the money is never untracked.
func (s *Service) recordPaid(ctx context.Context, evt *model.PaymentConfirmation) error {
	p, err := s.payments.FindBySession(ctx, evt.OrgID, evt.AppointmentID, evt.SessionID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		p, err = s.payments.LatestPending(ctx, evt.OrgID, evt.AppointmentID)
	}
	if err == nil {
		return s.payments.MarkPaid(ctx, p.ID, evt.ProviderEventID, evt.PaymentIntentID)
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	eventID := evt.ProviderEventID
	return s.payments.Create(ctx, &model.Payment{
		OrgID:             evt.OrgID,
		AppointmentID:     evt.AppointmentID,
		Provider:          "stripe",
		Status:            model.PaymentStatusPaid,
		CheckoutSessionID: evt.SessionID,
		PaymentIntentID:   evt.PaymentIntentID,
		ProviderEventID:   &eventID,
		AmountCents:       evt.AmountCents,
		Currency:          evt.Currency,
	})
}

func (s *Service) reconcile(ctx context.Context, evt *model.PaymentConfirmation) {
	s.logger.Warn("payment posted for non-confirmable appointment",
		"appointment_id", evt.AppointmentID.String(),
		"provider_event_id", evt.ProviderEventID)

	apt, err := s.appointments.Get(ctx, evt.OrgID, evt.AppointmentID)
	if err != nil {
		s.logger.Error(err, "reconciliation appointment fetch failed", "appointment_id", evt.AppointmentID.String())
		return
	}
	org, err := s.orgs.Get(ctx, evt.OrgID)
	if err != nil {
		s.logger.Error(err, "reconciliation org fetch failed", "org_id", evt.OrgID.String())
		return
	}
	if org.AlertEmail == nil || *org.AlertEmail == "" {
		s.logger.Warn("no alert email configured for reconciliation", "org_id", evt.OrgID.String())
		return
	}
	if err := s.alerter.SendReconciliationAlert(*org.AlertEmail, apt, evt); err != nil {
		s.logger.Error(err, "reconciliation alert failed", "org_id", evt.OrgID.String())
	}
}

func (s *Service) publishConfirmed(ctx context.Context, apt *model.Appointment) {
	payload, err := json.Marshal(apt)
	if err != nil {
		s.logger.Error(err, "failed to marshal confirmation event")
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: model.EventPaymentConfirmed,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to enqueue confirmation event")
	}
}

func (s *Service) notifyCustomer(ctx context.Context, apt *model.Appointment) {
	if s.notifier == nil {
		return
	}
	org, err := s.orgs.Get(ctx, apt.OrgID)
	if err != nil || org.WhatsAppInstanceID == nil {
		return
	}
	text := fmt.Sprintf("Pagamento confirmado! Seu horário em %s está garantido.",
		apt.StartsAt.Format("02/01 15:04"))
	if err := s.notifier.SendText(ctx, *org.WhatsAppInstanceID, apt.CustomerPhone, text); err != nil {
		s.logger.Error(err, "customer notification failed", "appointment_id", apt.ID.String())
	}
}
