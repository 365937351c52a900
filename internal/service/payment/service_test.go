package payment

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

// Mock implementations

type fakeAppointmentRepo struct {
	apt          *model.Appointment
	transitioned bool
	gotFromSet   []model.AppointmentStatus
	gotTo        model.AppointmentStatus
	gotClear     bool
	calls        int
}

func (f *fakeAppointmentRepo) CreateHold(ctx context.Context, hold *repository.HoldParams) (*model.Appointment, error) {
	panic("not used")
}

func (f *fakeAppointmentRepo) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	if f.apt == nil {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return f.apt, nil
}

func (f *fakeAppointmentRepo) List(ctx context.Context, orgID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) GetBlocking(ctx context.Context, orgID, professionalID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) TransitionStatus(ctx context.Context, orgID, id uuid.UUID, fromSet []model.AppointmentStatus, to model.AppointmentStatus, clearHoldExpiry bool) (bool, error) {
	f.calls++
	f.gotFromSet = fromSet
	f.gotTo = to
	f.gotClear = clearHoldExpiry
	if f.transitioned {
		f.apt.Status = to
		if clearHoldExpiry {
			f.apt.HoldExpiresAt = nil
		}
	}
	return f.transitioned, nil
}

func (f *fakeAppointmentRepo) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakePaymentRepo struct {
	rows      []*model.Payment
	seenEvent string
	paid      []uuid.UUID
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	p.ID = uuid.New()
	f.rows = append(f.rows, p)
	return nil
}

func (f *fakePaymentRepo) ExistsByProviderEvent(ctx context.Context, providerEventID string) (bool, error) {
	return providerEventID == f.seenEvent, nil
}

func (f *fakePaymentRepo) LatestPending(ctx context.Context, orgID, appointmentID uuid.UUID) (*model.Payment, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].AppointmentID == appointmentID && f.rows[i].Status == model.PaymentStatusPending {
			return f.rows[i], nil
		}
	}
	return nil, apperrors.NotFound("payment", nil)
}

func (f *fakePaymentRepo) FindBySession(ctx context.Context, orgID, appointmentID uuid.UUID, sessionID string) (*model.Payment, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].AppointmentID == appointmentID && f.rows[i].CheckoutSessionID == sessionID {
			return f.rows[i], nil
		}
	}
	return nil, apperrors.NotFound("payment", nil)
}

func (f *fakePaymentRepo) MarkPaid(ctx context.Context, id uuid.UUID, providerEventID string, paymentIntentID *string) error {
	for _, p := range f.rows {
		if p.ID == id {
			p.Status = model.PaymentStatusPaid
			p.ProviderEventID = &providerEventID
			p.PaymentIntentID = paymentIntentID
			f.paid = append(f.paid, id)
			return nil
		}
	}
	return apperrors.NotFound("payment", nil)
}

type fakeServiceRepo struct{ svc *model.Service }

func (f *fakeServiceRepo) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Service, error) {
	return f.svc, nil
}

func (f *fakeServiceRepo) List(ctx context.Context, orgID uuid.UUID) ([]*model.Service, error) {
	return []*model.Service{f.svc}, nil
}

type fakeOrgRepo struct{ org *model.Organization }

func (f *fakeOrgRepo) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	return f.org, nil
}

func (f *fakeOrgRepo) GetByWhatsAppInstance(ctx context.Context, instanceID string) (*model.Organization, error) {
	return f.org, nil
}

type fakeOutbox struct{ events []*model.OutboxEvent }

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

type fakeProvider struct {
	sessions int
	err      error
}

func (f *fakeProvider) CreateSession(ctx context.Context, params *SessionParams) (*Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sessions++
	return &Session{ID: "cs_test_123", URL: "https://checkout.stripe.com/pay/cs_test_123"}, nil
}

type fakeNotifier struct{ texts []string }

func (f *fakeNotifier) SendText(ctx context.Context, instanceID, phone, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

type fakeAlerter struct{ alerts []string }

func (f *fakeAlerter) SendReconciliationAlert(to string, apt *model.Appointment, evt *model.PaymentConfirmation) error {
	f.alerts = append(f.alerts, to)
	return nil
}

type fixture struct {
	svc      *Service
	apts     *fakeAppointmentRepo
	payments *fakePaymentRepo
	provider *fakeProvider
	notifier *fakeNotifier
	alerter  *fakeAlerter
	outbox   *fakeOutbox
}

func newFixture(apt *model.Appointment, transitioned bool) *fixture {
	instance := "inst-1"
	email := "staff@barber.example"
	f := &fixture{
		apts:     &fakeAppointmentRepo{apt: apt, transitioned: transitioned},
		payments: &fakePaymentRepo{},
		provider: &fakeProvider{},
		notifier: &fakeNotifier{},
		alerter:  &fakeAlerter{},
		outbox:   &fakeOutbox{},
	}
	l := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	f.svc = NewService(
		f.apts,
		f.payments,
		&fakeServiceRepo{svc: &model.Service{Name: "Corte"}},
		&fakeOrgRepo{org: &model.Organization{WhatsAppInstanceID: &instance, AlertEmail: &email}},
		f.outbox,
		f.provider,
		f.notifier,
		f.alerter,
		l,
		metrics.New("test"),
	)
	return f
}

func liveHold() *model.Appointment {
	expiry := time.Now().Add(10 * time.Minute)
	return &model.Appointment{
		Base:               model.Base{ID: uuid.New()},
		OrgID:              uuid.New(),
		ServiceID:          uuid.New(),
		CustomerPhone:      "5511988887777",
		StartsAt:           time.Now().Add(24 * time.Hour),
		Status:             model.AppointmentStatusHold,
		HoldExpiresAt:      &expiry,
		DepositAmountCents: 2000,
	}
}

func TestCreateCheckout(t *testing.T) {
	t.Run("creates session and moves hold to pending_payment", func(t *testing.T) {
		apt := liveHold()
		f := newFixture(apt, true)

		url, err := f.svc.CreateCheckout(context.Background(), apt.OrgID, apt.ID)
		require.NoError(t, err)
		assert.Contains(t, url, "checkout.stripe.com")
		require.Len(t, f.payments.rows, 1)
		assert.Equal(t, model.PaymentStatusPending, f.payments.rows[0].Status)
		assert.Equal(t, int64(2000), f.payments.rows[0].AmountCents)
		assert.Equal(t, []model.AppointmentStatus{model.AppointmentStatusHold}, f.apts.gotFromSet)
		assert.Equal(t, model.AppointmentStatusPendingPayment, f.apts.gotTo)
		assert.False(t, f.apts.gotClear, "expiry keeps running until payment lands")
	})

	t.Run("reuses existing pending session", func(t *testing.T) {
		apt := liveHold()
		f := newFixture(apt, true)

		first, err := f.svc.CreateCheckout(context.Background(), apt.OrgID, apt.ID)
		require.NoError(t, err)
		second, err := f.svc.CreateCheckout(context.Background(), apt.OrgID, apt.ID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, f.provider.sessions, "only one provider session created")
		assert.Len(t, f.payments.rows, 1)
	})

	t.Run("rejects expired hold", func(t *testing.T) {
		apt := liveHold()
		past := time.Now().Add(-time.Minute)
		apt.HoldExpiresAt = &past
		f := newFixture(apt, false)

		_, err := f.svc.CreateCheckout(context.Background(), apt.OrgID, apt.ID)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrHoldExpired))
		assert.Empty(t, f.payments.rows)
	})

	t.Run("rejects non-hold status", func(t *testing.T) {
		apt := liveHold()
		apt.Status = model.AppointmentStatusCanceled
		f := newFixture(apt, false)

		_, err := f.svc.CreateCheckout(context.Background(), apt.OrgID, apt.ID)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
	})

	t.Run("rejects zero deposit", func(t *testing.T) {
		apt := liveHold()
		apt.DepositAmountCents = 0
		f := newFixture(apt, false)

		_, err := f.svc.CreateCheckout(context.Background(), apt.OrgID, apt.ID)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	})
}

func confirmation(apt *model.Appointment, eventID string) *model.PaymentConfirmation {
	return &model.PaymentConfirmation{
		ProviderEventID: eventID,
		OrgID:           apt.OrgID,
		AppointmentID:   apt.ID,
		SessionID:       "cs_test_123",
		AmountCents:     2000,
		Currency:        "brl",
	}
}

func TestConfirmPayment(t *testing.T) {
	t.Run("marks paid, confirms, notifies", func(t *testing.T) {
		apt := liveHold()
		apt.Status = model.AppointmentStatusPendingPayment
		f := newFixture(apt, true)
		f.payments.rows = []*model.Payment{{
			Base:              model.Base{ID: uuid.New()},
			OrgID:             apt.OrgID,
			AppointmentID:     apt.ID,
			Status:            model.PaymentStatusPending,
			CheckoutSessionID: "cs_test_123",
		}}

		err := f.svc.ConfirmPayment(context.Background(), confirmation(apt, "evt_1"))
		require.NoError(t, err)

		assert.Equal(t, model.PaymentStatusPaid, f.payments.rows[0].Status)
		assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
		assert.Nil(t, apt.HoldExpiresAt, "expiry cleared on confirmation")
		assert.True(t, f.apts.gotClear)
		require.Len(t, f.outbox.events, 1)
		assert.Equal(t, model.EventPaymentConfirmed, f.outbox.events[0].EventType)
		assert.Len(t, f.notifier.texts, 1)
		assert.Empty(t, f.alerter.alerts)
	})

	t.Run("duplicate event is a no-op", func(t *testing.T) {
		apt := liveHold()
		f := newFixture(apt, true)
		f.payments.seenEvent = "evt_dup"

		err := f.svc.ConfirmPayment(context.Background(), confirmation(apt, "evt_dup"))
		require.NoError(t, err)
		assert.Zero(t, f.apts.calls, "no transition attempted")
		assert.Empty(t, f.payments.paid)
		assert.Empty(t, f.outbox.events)
	})

	t.Run("payment after expiry records paid and alerts staff", func(t *testing.T) {
		apt := liveHold()
		apt.Status = model.AppointmentStatusExpired
		apt.HoldExpiresAt = nil
		f := newFixture(apt, false)
		f.payments.rows = []*model.Payment{{
			Base:              model.Base{ID: uuid.New()},
			OrgID:             apt.OrgID,
			AppointmentID:     apt.ID,
			Status:            model.PaymentStatusPending,
			CheckoutSessionID: "cs_test_123",
		}}

		err := f.svc.ConfirmPayment(context.Background(), confirmation(apt, "evt_late"))
		require.NoError(t, err)

		assert.Equal(t, model.PaymentStatusPaid, f.payments.rows[0].Status)
		assert.Equal(t, model.AppointmentStatusExpired, apt.Status, "appointment is not resurrected")
		require.Len(t, f.alerter.alerts, 1)
		assert.Equal(t, "staff@barber.example", f.alerter.alerts[0])
		assert.Empty(t, f.outbox.events)
		assert.Empty(t, f.notifier.texts)
	})

	t.Run("unknown session creates a paid row", func(t *testing.T) {
		apt := liveHold()
		f := newFixture(apt, true)

		err := f.svc.ConfirmPayment(context.Background(), confirmation(apt, "evt_orphan"))
		require.NoError(t, err)
		require.Len(t, f.payments.rows, 1)
		assert.Equal(t, model.PaymentStatusPaid, f.payments.rows[0].Status)
	})
}
