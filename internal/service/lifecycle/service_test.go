package lifecycle

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
	"github.com/jefersonOS/barber-pro/pkg/logger"
	"github.com/jefersonOS/barber-pro/pkg/metrics"
)

type fakeAppointmentRepo struct {
	current      *model.Appointment
	transitioned bool
	expired      int64
	gotFromSet   []model.AppointmentStatus
	gotTo        model.AppointmentStatus
	gotClear     bool
}

func (f *fakeAppointmentRepo) CreateHold(ctx context.Context, hold *repository.HoldParams) (*model.Appointment, error) {
	panic("not used")
}

func (f *fakeAppointmentRepo) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	return f.current, nil
}

func (f *fakeAppointmentRepo) List(ctx context.Context, orgID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) GetBlocking(ctx context.Context, orgID, professionalID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) TransitionStatus(ctx context.Context, orgID, id uuid.UUID, fromSet []model.AppointmentStatus, to model.AppointmentStatus, clearHoldExpiry bool) (bool, error) {
	f.gotFromSet = fromSet
	f.gotTo = to
	f.gotClear = clearHoldExpiry
	if f.transitioned {
		f.current.Status = to
	}
	return f.transitioned, nil
}

func (f *fakeAppointmentRepo) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	n := f.expired
	f.expired = 0
	return n, nil
}

type fakeOutbox struct {
	events []*model.OutboxEvent
}

func (f *fakeOutbox) Create(ctx context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) BeginTx(ctx context.Context) (*sql.Tx, error) { return nil, nil }

func (f *fakeOutbox) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error {
	return nil
}

func (f *fakeOutbox) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.AppointmentStatus
		want     bool
	}{
		{model.AppointmentStatusDraft, model.AppointmentStatusHold, true},
		{model.AppointmentStatusHold, model.AppointmentStatusPendingPayment, true},
		{model.AppointmentStatusHold, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusHold, model.AppointmentStatusExpired, true},
		{model.AppointmentStatusHold, model.AppointmentStatusCanceled, true},
		{model.AppointmentStatusPendingPayment, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusPendingPayment, model.AppointmentStatusExpired, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusNoShow, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCanceled, true},

		{model.AppointmentStatusExpired, model.AppointmentStatusConfirmed, false},
		{model.AppointmentStatusCanceled, model.AppointmentStatusHold, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusNoShow, false},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusHold, false},
		{model.AppointmentStatusDraft, model.AppointmentStatusConfirmed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCancel_ActiveAppointment(t *testing.T) {
	repo := &fakeAppointmentRepo{
		current:      &model.Appointment{Status: model.AppointmentStatusConfirmed},
		transitioned: true,
	}
	outbox := &fakeOutbox{}
	svc := NewService(repo, outbox, testLogger(), metrics.New("test"))

	apt, err := svc.Cancel(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCanceled, apt.Status)
	assert.Equal(t, CancelableStatuses, repo.gotFromSet)
	assert.True(t, repo.gotClear, "cancel clears the hold expiry")
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAppointmentCancel, outbox.events[0].EventType)
}

func TestCancel_TerminalAppointment(t *testing.T) {
	repo := &fakeAppointmentRepo{
		current:      &model.Appointment{Status: model.AppointmentStatusExpired},
		transitioned: false,
	}
	outbox := &fakeOutbox{}
	svc := NewService(repo, outbox, testLogger(), metrics.New("test"))

	_, err := svc.Cancel(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
	assert.Empty(t, outbox.events)
}

func TestExpireStaleHolds_Idempotent(t *testing.T) {
	repo := &fakeAppointmentRepo{expired: 2}
	outbox := &fakeOutbox{}
	svc := NewService(repo, outbox, testLogger(), metrics.New("test"))

	count, err := svc.ExpireStaleHolds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAppointmentExpired, outbox.events[0].EventType)

	// Immediately sweeping again matches nothing and stays quiet.
	count, err = svc.ExpireStaleHolds(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, outbox.events, 1)
}
