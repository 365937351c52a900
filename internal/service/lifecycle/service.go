package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
	"github.com/jefersonOS/barber-pro/pkg/logger"
	"github.com/jefersonOS/barber-pro/pkg/metrics"
)

// transitions is the full status machine. Every write path goes
// through TransitionStatus's conditional update, so a retried or
// delayed request can never clobber a state that has moved on.
var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusDraft:          {model.AppointmentStatusHold},
	model.AppointmentStatusHold:           {model.AppointmentStatusPendingPayment, model.AppointmentStatusConfirmed, model.AppointmentStatusExpired, model.AppointmentStatusCanceled},
	model.AppointmentStatusPendingPayment: {model.AppointmentStatusConfirmed, model.AppointmentStatusExpired, model.AppointmentStatusCanceled},
	model.AppointmentStatusConfirmed:      {model.AppointmentStatusCanceled, model.AppointmentStatusCompleted, model.AppointmentStatusNoShow},
}

// CancelableStatuses is the source set staff cancellation operates on.
var CancelableStatuses = []model.AppointmentStatus{
	model.AppointmentStatusHold,
	model.AppointmentStatusPendingPayment,
	model.AppointmentStatusConfirmed,
}

// CanTransition reports whether from -> to is a legal edge of the
// status machine.
func CanTransition(from, to model.AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Service struct {
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(appointments repository.AppointmentRepository, outbox repository.OutboxRepository, l *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		appointments: appointments,
		outbox:       outbox,
		logger:       l,
		metrics:      m,
		now:          time.Now,
	}
}

// Cancel moves an active appointment to canceled. Restricted to the
// cancelable source set; anything already terminal reports
// ErrInvalidTransition. Caller authorization (tenant admin) is
// enforced at the handler boundary.
func (s *Service) Cancel(ctx context.Context, orgID, appointmentID uuid.UUID) (*model.Appointment, error) {
	ok, err := s.appointments.TransitionStatus(ctx, orgID, appointmentID,
		CancelableStatuses, model.AppointmentStatusCanceled, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		apt, err := s.appointments.Get(ctx, orgID, appointmentID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.InvalidTransition(string(apt.Status), string(model.AppointmentStatusCanceled))
	}

	apt, err := s.appointments.Get(ctx, orgID, appointmentID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, model.EventAppointmentCancel, apt)
	return apt, nil
}

// ExpireStaleHolds sweeps holds and pending payments whose expiry has
// passed. Idempotent: a second run right after a successful one
// matches nothing. Cadence belongs to the caller (cron in the worker,
// or the authenticated internal endpoint).
func (s *Service) ExpireStaleHolds(ctx context.Context) (int64, error) {
	start := s.now()
	count, err := s.appointments.ExpireStaleHolds(ctx, start)
	if err != nil {
		return 0, err
	}
	s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	if count > 0 {
		s.metrics.HoldsExpired.Add(float64(count))
		s.logger.Info("expired stale holds", "count", count)
		s.publishSweepEvent(ctx, count, start)
	}
	return count, nil
}

func (s *Service) publishEvent(ctx context.Context, eventType string, apt *model.Appointment) {
	payload, err := json.Marshal(apt)
	if err != nil {
		s.logger.Error(err, "failed to marshal lifecycle event", "event_type", eventType)
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to enqueue lifecycle event", "event_type", eventType)
	}
}

func (s *Service) publishSweepEvent(ctx context.Context, count int64, sweptAt time.Time) {
	payload, err := json.Marshal(map[string]interface{}{
		"count":    count,
		"swept_at": sweptAt,
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal sweep event")
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentExpired,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to enqueue sweep event")
	}
}
