package booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
	"github.com/jefersonOS/barber-pro/pkg/logger"
	"github.com/jefersonOS/barber-pro/pkg/metrics"
	"github.com/jefersonOS/barber-pro/pkg/phone"
)

type Service struct {
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(appointments repository.AppointmentRepository, outbox repository.OutboxRepository, l *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		appointments: appointments,
		outbox:       outbox,
		logger:       l,
		metrics:      m,
	}
}

// CreateHold reserves a slot for a customer. The conflict check and
// the insert run inside a single stored procedure call, so two
// concurrent requests for the same interval can never both succeed.
// The row comes back with status hold, a ten minute expiry, and the
// deposit snapshot taken from the service's current price.
func (s *Service) CreateHold(ctx context.Context, req *model.CreateHoldRequest) (*model.Appointment, error) {
	normalized := phone.Normalize(req.Phone)
	if normalized == "" {
		return nil, apperrors.InvalidPhone(fmt.Errorf("no digits in %q", req.Phone))
	}

	apt, err := s.appointments.CreateHold(ctx, &repository.HoldParams{
		OrgID:          req.OrgID,
		Phone:          normalized,
		ServiceID:      req.ServiceID,
		ProfessionalID: req.ProfessionalID,
		UnitID:         req.UnitID,
		StartsAt:       req.StartsAt,
		CustomerName:   req.CustomerName,
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSlotUnavailable) {
			s.metrics.SlotConflicts.Inc()
			s.logger.Info("slot conflict",
				"org_id", req.OrgID.String(),
				"professional_id", req.ProfessionalID.String(),
				"starts_at", req.StartsAt)
		}
		return nil, err
	}

	s.metrics.HoldsCreated.Inc()
	s.publishEvent(ctx, model.EventHoldCreated, apt)
	return apt, nil
}

// Get returns a single appointment scoped to the tenant.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	return s.appointments.Get(ctx, orgID, id)
}

// List returns tenant appointments matching the filters, ascending by
// start time.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, orgID, filters)
}

// publishEvent appends an outbox row. Failures are logged only; the
// hold itself already committed and the customer must not see an error
// for a notification that can be retried.
func (s *Service) publishEvent(ctx context.Context, eventType string, apt *model.Appointment) {
	payload, err := json.Marshal(apt)
	if err != nil {
		s.logger.Error(err, "failed to marshal booking event", "event_type", eventType)
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to enqueue booking event", "event_type", eventType)
	}
}
