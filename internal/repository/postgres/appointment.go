package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
)

// Postgres error classes that signal a lost slot race: the procedure's
// explicit slot_unavailable raise, a serialization failure under
// SERIALIZABLE isolation, or the exclusion constraint on the bookings
// interval firing first.
const (
	pgSerializationFailure = "40001"
	pgExclusionViolation   = "23P01"
)

func (r *appointmentRepository) CreateHold(ctx context.Context, hold *repository.HoldParams) (*model.Appointment, error) {
	// Conflict re-check and insert happen inside the procedure, in one
	// atomic unit. Splitting them across round trips reintroduces the
	// check-then-insert race.
	query := `
		SELECT id, org_id, unit_id, professional_id, service_id,
			   customer_phone, customer_name, starts_at, ends_at,
			   status, hold_expires_at, deposit_amount_cents,
			   created_at, updated_at
		FROM create_hold_appointment($1, $2, $3, $4, $5, $6, $7)
	`

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query,
		hold.OrgID,
		hold.Phone,
		hold.ServiceID,
		hold.ProfessionalID,
		hold.UnitID,
		hold.StartsAt,
		hold.CustomerName,
	)
	if err != nil {
		return nil, mapHoldError(err)
	}
	return &apt, nil
}

func mapHoldError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case strings.Contains(pqErr.Message, "slot_unavailable"):
			return apperrors.SlotUnavailable(err)
		case pqErr.Code == pgSerializationFailure, pqErr.Code == pgExclusionViolation:
			return apperrors.SlotUnavailable(err)
		case strings.Contains(pqErr.Message, "service_not_found"):
			return apperrors.NotFound("service", err)
		case strings.Contains(pqErr.Message, "professional_not_found"):
			return apperrors.NotFound("professional", err)
		}
	}
	return fmt.Errorf("failed to create hold: %w", err)
}

func (r *appointmentRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, org_id, unit_id, professional_id, service_id,
			   customer_phone, customer_name, starts_at, ends_at,
			   status, hold_expires_at, deposit_amount_cents,
			   created_at, updated_at
		FROM appointments
		WHERE org_id = $1 AND id = $2
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, orgID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, org_id, unit_id, professional_id, service_id,
			   customer_phone, customer_name, starts_at, ends_at,
			   status, hold_expires_at, deposit_amount_cents,
			   created_at, updated_at
		FROM appointments
		WHERE org_id = $1
	`
	args := []interface{}{orgID}
	argCount := 2

	if filters != nil {
		if filters.ProfessionalID != uuid.Nil {
			query += fmt.Sprintf(" AND professional_id = $%d", argCount)
			args = append(args, filters.ProfessionalID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND starts_at >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND starts_at <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY starts_at ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) GetBlocking(ctx context.Context, orgID, professionalID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	// Half-open interval intersection with [from, to). Logical hold
	// expiry is filtered by the caller, not here, so the availability
	// engine stays the single owner of that rule.
	query := `
		SELECT id, org_id, unit_id, professional_id, service_id,
			   customer_phone, customer_name, starts_at, ends_at,
			   status, hold_expires_at, deposit_amount_cents,
			   created_at, updated_at
		FROM appointments
		WHERE org_id = $1
		AND professional_id = $2
		AND status IN ('hold', 'pending_payment', 'confirmed')
		AND starts_at < $4
		AND ends_at > $3
		ORDER BY starts_at ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, orgID, professionalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get blocking appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) TransitionStatus(ctx context.Context, orgID, id uuid.UUID, fromSet []model.AppointmentStatus, to model.AppointmentStatus, clearHoldExpiry bool) (bool, error) {
	if len(fromSet) == 0 {
		return false, fmt.Errorf("empty source status set")
	}

	from := make([]string, len(fromSet))
	for i, s := range fromSet {
		from[i] = string(s)
	}

	query := `
		UPDATE appointments
		SET status = $1,
			hold_expires_at = CASE WHEN $2 THEN NULL ELSE hold_expires_at END,
			updated_at = NOW()
		WHERE org_id = $3 AND id = $4 AND status = ANY($5)
	`
	result, err := r.db.ExecContext(ctx, query, to, clearHoldExpiry, orgID, id, pq.Array(from))
	if err != nil {
		return false, fmt.Errorf("failed to transition appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *appointmentRepository) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	// Conditional on the source status set, so a second sweep right
	// after a successful one matches nothing.
	query := `
		UPDATE appointments
		SET status = 'expired', updated_at = NOW()
		WHERE status IN ('hold', 'pending_payment')
		AND hold_expires_at IS NOT NULL
		AND hold_expires_at <= $1
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale holds: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
