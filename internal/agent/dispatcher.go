package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
	"github.com/jefersonOS/barber-pro/pkg/phone"
	"github.com/jefersonOS/barber-pro/pkg/validator"
)

// Tool names exposed to the conversational agent.
const (
	ToolListServices      = "list_services"
	ToolListUnits         = "list_units"
	ToolListProfessionals = "list_professionals"
	ToolGetAvailableSlots = "get_available_slots"
	ToolCreateHold        = "create_hold_appointment"
	ToolCreatePaymentLink = "create_payment_link"
	ToolCancelAppointment = "cancel_appointment"
)

// ToolCall is one structured invocation from the agent loop.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Conversation identifies who is talking: the tenant (resolved from
// the WhatsApp instance) and the customer's canonical phone.
type Conversation struct {
	OrgID uuid.UUID
	Phone string
}

type GetAvailableSlotsArgs struct {
	ProfessionalID uuid.UUID `json:"professional_id" validate:"required"`
	ServiceID      uuid.UUID `json:"service_id" validate:"required"`
	From           time.Time `json:"from" validate:"required"`
	To             time.Time `json:"to" validate:"required"`
}

type CreateHoldArgs struct {
	ServiceID      uuid.UUID  `json:"service_id" validate:"required"`
	ProfessionalID uuid.UUID  `json:"professional_id" validate:"required"`
	UnitID         *uuid.UUID `json:"unit_id,omitempty"`
	StartsAt       time.Time  `json:"starts_at" validate:"required"`
	CustomerName   *string    `json:"customer_name,omitempty"`
}

type CreatePaymentLinkArgs struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

type CancelAppointmentArgs struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

// Service surfaces the dispatcher needs. Satisfied by the concrete
// booking services.
type CatalogService interface {
	ListServices(ctx context.Context, orgID uuid.UUID) ([]*model.Service, error)
	ListUnits(ctx context.Context, orgID uuid.UUID) ([]*model.Unit, error)
	ListProfessionals(ctx context.Context, orgID uuid.UUID) ([]*model.Professional, error)
}

type AvailabilityService interface {
	GetAvailableSlots(ctx context.Context, req *model.AvailabilityRequest) ([]model.Slot, error)
}

type BookingService interface {
	CreateHold(ctx context.Context, req *model.CreateHoldRequest) (*model.Appointment, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error)
}

type LifecycleService interface {
	Cancel(ctx context.Context, orgID, appointmentID uuid.UUID) (*model.Appointment, error)
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, orgID, appointmentID uuid.UUID) (string, error)
}

// Dispatcher routes validated tool calls to the booking services. The
// language loop that decides WHICH tool to call lives outside this
// repo; everything that mutates state goes through here.
type Dispatcher struct {
	catalog      CatalogService
	availability AvailabilityService
	booking      BookingService
	lifecycle    LifecycleService
	payment      PaymentService
	validator    *validator.Validator
}

func NewDispatcher(
	cat CatalogService,
	avail AvailabilityService,
	book BookingService,
	lc LifecycleService,
	pay PaymentService,
) *Dispatcher {
	return &Dispatcher{
		catalog:      cat,
		availability: avail,
		booking:      book,
		lifecycle:    lc,
		payment:      pay,
		validator:    validator.New(),
	}
}

// Dispatch executes one tool call on behalf of a conversation.
func (d *Dispatcher) Dispatch(ctx context.Context, conv *Conversation, call *ToolCall) (interface{}, error) {
	switch call.Name {
	case ToolListServices:
		return d.catalog.ListServices(ctx, conv.OrgID)

	case ToolListUnits:
		return d.catalog.ListUnits(ctx, conv.OrgID)

	case ToolListProfessionals:
		return d.catalog.ListProfessionals(ctx, conv.OrgID)

	case ToolGetAvailableSlots:
		var args GetAvailableSlotsArgs
		if err := d.decode(call.Arguments, &args); err != nil {
			return nil, err
		}
		// Same constraint the HTTP surface enforces before dispatch.
		if !args.To.After(args.From) {
			return nil, apperrors.BadRequest("to must be after from", nil)
		}
		return d.availability.GetAvailableSlots(ctx, &model.AvailabilityRequest{
			OrgID:          conv.OrgID,
			ProfessionalID: args.ProfessionalID,
			ServiceID:      args.ServiceID,
			From:           args.From,
			To:             args.To,
		})

	case ToolCreateHold:
		var args CreateHoldArgs
		if err := d.decode(call.Arguments, &args); err != nil {
			return nil, err
		}
		return d.booking.CreateHold(ctx, &model.CreateHoldRequest{
			OrgID:          conv.OrgID,
			Phone:          conv.Phone,
			ServiceID:      args.ServiceID,
			ProfessionalID: args.ProfessionalID,
			UnitID:         args.UnitID,
			StartsAt:       args.StartsAt,
			CustomerName:   args.CustomerName,
		})

	case ToolCreatePaymentLink:
		var args CreatePaymentLinkArgs
		if err := d.decode(call.Arguments, &args); err != nil {
			return nil, err
		}
		if err := d.authorizeCustomer(ctx, conv, args.AppointmentID); err != nil {
			return nil, err
		}
		url, err := d.payment.CreateCheckout(ctx, conv.OrgID, args.AppointmentID)
		if err != nil {
			return nil, err
		}
		return map[string]string{"checkout_url": url}, nil

	case ToolCancelAppointment:
		var args CancelAppointmentArgs
		if err := d.decode(call.Arguments, &args); err != nil {
			return nil, err
		}
		// A customer may only cancel their own appointment; staff
		// cancellation goes through the authenticated API instead.
		if err := d.authorizeCustomer(ctx, conv, args.AppointmentID); err != nil {
			return nil, err
		}
		return d.lifecycle.Cancel(ctx, conv.OrgID, args.AppointmentID)

	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown tool %q", call.Name), nil)
	}
}

func (d *Dispatcher) decode(raw json.RawMessage, into interface{}) error {
	if err := json.Unmarshal(raw, into); err != nil {
		return apperrors.BadRequest("malformed tool arguments", err)
	}
	if err := d.validator.Validate(into); err != nil {
		return apperrors.BadRequest(err.Error(), err)
	}
	return nil
}

func (d *Dispatcher) authorizeCustomer(ctx context.Context, conv *Conversation, appointmentID uuid.UUID) error {
	apt, err := d.booking.Get(ctx, conv.OrgID, appointmentID)
	if err != nil {
		return err
	}
	if apt.CustomerPhone != phone.Normalize(conv.Phone) {
		return apperrors.Forbidden(fmt.Errorf("appointment belongs to another customer"))
	}
	return nil
}
