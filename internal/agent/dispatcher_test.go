package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefersonOS/barber-pro/internal/model"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
)

type fakeCatalog struct{ services []*model.Service }

func (f *fakeCatalog) ListServices(ctx context.Context, orgID uuid.UUID) ([]*model.Service, error) {
	return f.services, nil
}

func (f *fakeCatalog) ListUnits(ctx context.Context, orgID uuid.UUID) ([]*model.Unit, error) {
	return nil, nil
}

func (f *fakeCatalog) ListProfessionals(ctx context.Context, orgID uuid.UUID) ([]*model.Professional, error) {
	return nil, nil
}

type fakeAvailability struct{ gotReq *model.AvailabilityRequest }

func (f *fakeAvailability) GetAvailableSlots(ctx context.Context, req *model.AvailabilityRequest) ([]model.Slot, error) {
	f.gotReq = req
	return []model.Slot{}, nil
}

type fakeBooking struct {
	gotReq *model.CreateHoldRequest
	apt    *model.Appointment
}

func (f *fakeBooking) CreateHold(ctx context.Context, req *model.CreateHoldRequest) (*model.Appointment, error) {
	f.gotReq = req
	return f.apt, nil
}

func (f *fakeBooking) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	return f.apt, nil
}

type fakeLifecycle struct{ canceled []uuid.UUID }

func (f *fakeLifecycle) Cancel(ctx context.Context, orgID, appointmentID uuid.UUID) (*model.Appointment, error) {
	f.canceled = append(f.canceled, appointmentID)
	return &model.Appointment{Status: model.AppointmentStatusCanceled}, nil
}

type fakePayment struct{ url string }

func (f *fakePayment) CreateCheckout(ctx context.Context, orgID, appointmentID uuid.UUID) (string, error) {
	return f.url, nil
}

func newDispatcher(booking *fakeBooking, lc *fakeLifecycle) (*Dispatcher, *fakeAvailability) {
	avail := &fakeAvailability{}
	d := NewDispatcher(
		&fakeCatalog{services: []*model.Service{{Name: "Corte"}}},
		avail,
		booking,
		lc,
		&fakePayment{url: "https://checkout.stripe.com/pay/cs_1"},
	)
	return d, avail
}

func conv(phone string) *Conversation {
	return &Conversation{OrgID: uuid.New(), Phone: phone}
}

func args(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestDispatch_ListServices(t *testing.T) {
	d, _ := newDispatcher(&fakeBooking{}, &fakeLifecycle{})

	out, err := d.Dispatch(context.Background(), conv("5511988887777"), &ToolCall{Name: ToolListServices})
	require.NoError(t, err)
	services := out.([]*model.Service)
	require.Len(t, services, 1)
	assert.Equal(t, "Corte", services[0].Name)
}

func TestDispatch_GetAvailableSlots(t *testing.T) {
	d, avail := newDispatcher(&fakeBooking{}, &fakeLifecycle{})
	c := conv("5511988887777")

	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := d.Dispatch(context.Background(), c, &ToolCall{
		Name: ToolGetAvailableSlots,
		Arguments: args(t, GetAvailableSlotsArgs{
			ProfessionalID: uuid.New(),
			ServiceID:      uuid.New(),
			From:           from,
			To:             from.Add(2 * time.Hour),
		}),
	})
	require.NoError(t, err)
	require.NotNil(t, avail.gotReq)
	assert.Equal(t, c.OrgID, avail.gotReq.OrgID, "org comes from the conversation, never the arguments")
}

func TestDispatch_GetAvailableSlots_RejectsInvertedWindow(t *testing.T) {
	d, avail := newDispatcher(&fakeBooking{}, &fakeLifecycle{})

	from := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	_, err := d.Dispatch(context.Background(), conv("5511988887777"), &ToolCall{
		Name: ToolGetAvailableSlots,
		Arguments: args(t, GetAvailableSlotsArgs{
			ProfessionalID: uuid.New(),
			ServiceID:      uuid.New(),
			From:           from,
			To:             from.Add(-2 * time.Hour),
		}),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Nil(t, avail.gotReq, "inverted window must not reach the availability engine")
}

func TestDispatch_CreateHold_UsesConversationPhone(t *testing.T) {
	booking := &fakeBooking{apt: &model.Appointment{Status: model.AppointmentStatusHold}}
	d, _ := newDispatcher(booking, &fakeLifecycle{})
	c := conv("11 98888-7777")

	_, err := d.Dispatch(context.Background(), c, &ToolCall{
		Name: ToolCreateHold,
		Arguments: args(t, CreateHoldArgs{
			ServiceID:      uuid.New(),
			ProfessionalID: uuid.New(),
			StartsAt:       time.Now().Add(24 * time.Hour),
		}),
	})
	require.NoError(t, err)
	require.NotNil(t, booking.gotReq)
	assert.Equal(t, c.Phone, booking.gotReq.Phone)
	assert.Equal(t, c.OrgID, booking.gotReq.OrgID)
}

func TestDispatch_ValidatesArguments(t *testing.T) {
	d, _ := newDispatcher(&fakeBooking{}, &fakeLifecycle{})

	_, err := d.Dispatch(context.Background(), conv("5511988887777"), &ToolCall{
		Name:      ToolCreateHold,
		Arguments: json.RawMessage(`{"service_id": "` + uuid.New().String() + `"}`),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestDispatch_CancelOwnAppointmentOnly(t *testing.T) {
	aptID := uuid.New()

	t.Run("own appointment cancels", func(t *testing.T) {
		booking := &fakeBooking{apt: &model.Appointment{
			Base:          model.Base{ID: aptID},
			CustomerPhone: "5511988887777",
			Status:        model.AppointmentStatusConfirmed,
		}}
		lc := &fakeLifecycle{}
		d, _ := newDispatcher(booking, lc)

		_, err := d.Dispatch(context.Background(), conv("(11) 98888-7777"), &ToolCall{
			Name:      ToolCancelAppointment,
			Arguments: args(t, CancelAppointmentArgs{AppointmentID: aptID}),
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{aptID}, lc.canceled)
	})

	t.Run("someone else's appointment is forbidden", func(t *testing.T) {
		booking := &fakeBooking{apt: &model.Appointment{
			Base:          model.Base{ID: aptID},
			CustomerPhone: "5511900000000",
			Status:        model.AppointmentStatusConfirmed,
		}}
		lc := &fakeLifecycle{}
		d, _ := newDispatcher(booking, lc)

		_, err := d.Dispatch(context.Background(), conv("5511988887777"), &ToolCall{
			Name:      ToolCancelAppointment,
			Arguments: args(t, CancelAppointmentArgs{AppointmentID: aptID}),
		})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
		assert.Empty(t, lc.canceled)
	})
}

func TestDispatch_UnknownTool(t *testing.T) {
	d, _ := newDispatcher(&fakeBooking{}, &fakeLifecycle{})

	_, err := d.Dispatch(context.Background(), conv("5511988887777"), &ToolCall{Name: "drop_tables"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}
