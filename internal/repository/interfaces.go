package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
)

// All repository interfaces in one file
type (
	OrganizationRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Organization, error)
		GetByWhatsAppInstance(ctx context.Context, instanceID string) (*model.Organization, error)
	}

	ServiceRepository interface {
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Service, error)
		List(ctx context.Context, orgID uuid.UUID) ([]*model.Service, error)
	}

	ProfessionalRepository interface {
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Professional, error)
		List(ctx context.Context, orgID uuid.UUID) ([]*model.Professional, error)
	}

	UnitRepository interface {
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Unit, error)
		List(ctx context.Context, orgID uuid.UUID) ([]*model.Unit, error)
	}

	// AppointmentRepository owns every write path of the appointment
	// table. Status and hold_expires_at are only ever mutated through
	// the conditional operations below.
	AppointmentRepository interface {
		// CreateHold runs the create_hold_appointment stored procedure:
		// conflict re-check and insert inside one serializable unit.
		CreateHold(ctx context.Context, hold *HoldParams) (*model.Appointment, error)
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, orgID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// GetBlocking returns appointments in {hold, pending_payment, confirmed}
		// for the professional whose interval intersects [from, to). Logical
		// hold expiry is the caller's concern.
		GetBlocking(ctx context.Context, orgID, professionalID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
		// TransitionStatus moves the row to status "to" only when its current
		// status is in fromSet, reporting whether a row transitioned.
		TransitionStatus(ctx context.Context, orgID, id uuid.UUID, fromSet []model.AppointmentStatus, to model.AppointmentStatus, clearHoldExpiry bool) (bool, error)
		// ExpireStaleHolds transitions every hold/pending_payment row with
		// hold_expires_at <= now to expired, returning the count.
		ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error)
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		ExistsByProviderEvent(ctx context.Context, providerEventID string) (bool, error)
		LatestPending(ctx context.Context, orgID, appointmentID uuid.UUID) (*model.Payment, error)
		FindBySession(ctx context.Context, orgID, appointmentID uuid.UUID, sessionID string) (*model.Payment, error)
		MarkPaid(ctx context.Context, id uuid.UUID, providerEventID string, paymentIntentID *string) error
	}

	UserRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		BeginTx(ctx context.Context) (*sql.Tx, error)
		UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

// HoldParams is the argument set of the create_hold_appointment
// procedure. Phone must already be in canonical digit form.
type HoldParams struct {
	OrgID          uuid.UUID
	Phone          string
	ServiceID      uuid.UUID
	ProfessionalID uuid.UUID
	UnitID         *uuid.UUID
	StartsAt       time.Time
	CustomerName   *string
}
