package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusDraft          AppointmentStatus = "draft"
	AppointmentStatusHold           AppointmentStatus = "hold"
	AppointmentStatusPendingPayment AppointmentStatus = "pending_payment"
	AppointmentStatusConfirmed      AppointmentStatus = "confirmed"
	AppointmentStatusCanceled       AppointmentStatus = "canceled"
	AppointmentStatusExpired        AppointmentStatus = "expired"
	AppointmentStatusCompleted      AppointmentStatus = "completed"
	AppointmentStatusNoShow         AppointmentStatus = "no_show"
)

// Valid reports whether s is a member of the closed status enum.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusDraft, AppointmentStatusHold, AppointmentStatusPendingPayment,
		AppointmentStatusConfirmed, AppointmentStatusCanceled, AppointmentStatusExpired,
		AppointmentStatusCompleted, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further automated transition leaves s.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCanceled, AppointmentStatusExpired,
		AppointmentStatusCompleted, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Appointment is the central entity. Rows are never deleted, only
// transitioned, so the table doubles as the audit trail.
type Appointment struct {
	Base
	OrgID              uuid.UUID         `db:"org_id" json:"org_id"`
	UnitID             *uuid.UUID        `db:"unit_id" json:"unit_id,omitempty"`
	ProfessionalID     uuid.UUID         `db:"professional_id" json:"professional_id"`
	ServiceID          uuid.UUID         `db:"service_id" json:"service_id"`
	CustomerPhone      string            `db:"customer_phone" json:"customer_phone"`
	CustomerName       *string           `db:"customer_name" json:"customer_name,omitempty"`
	StartsAt           time.Time         `db:"starts_at" json:"starts_at"`
	EndsAt             time.Time         `db:"ends_at" json:"ends_at"`
	Status             AppointmentStatus `db:"status" json:"status"`
	HoldExpiresAt      *time.Time        `db:"hold_expires_at" json:"hold_expires_at,omitempty"`
	DepositAmountCents int64             `db:"deposit_amount_cents" json:"deposit_amount_cents"`
}

// Blocking reports whether the appointment occupies the calendar for
// overlap purposes at instant now. Hold expiry is logical: a stale hold
// stops blocking the moment its expiry passes, sweep or no sweep.
func (a *Appointment) Blocking(now time.Time) bool {
	switch a.Status {
	case AppointmentStatusConfirmed:
		return true
	case AppointmentStatusHold, AppointmentStatusPendingPayment:
		return a.HoldExpiresAt != nil && a.HoldExpiresAt.After(now)
	}
	return false
}

// Slot is a candidate bookable interval.
type Slot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// OrgID is populated from the authenticated tenant scope, never from
// the request body.
type CreateHoldRequest struct {
	OrgID          uuid.UUID  `json:"-"`
	Phone          string     `json:"phone" binding:"required,min=5"`
	ServiceID      uuid.UUID  `json:"service_id" binding:"required"`
	ProfessionalID uuid.UUID  `json:"professional_id" binding:"required"`
	UnitID         *uuid.UUID `json:"unit_id,omitempty"`
	StartsAt       time.Time  `json:"starts_at" binding:"required"`
	CustomerName   *string    `json:"customer_name,omitempty"`
}

type AvailabilityRequest struct {
	OrgID          uuid.UUID `json:"-"`
	ProfessionalID uuid.UUID `form:"professional_id" json:"professional_id" binding:"required"`
	ServiceID      uuid.UUID `form:"service_id" json:"service_id" binding:"required"`
	From           time.Time `form:"from" json:"from" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	To             time.Time `form:"to" json:"to" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
}

type AppointmentFilters struct {
	ProfessionalID uuid.UUID
	Status         AppointmentStatus
	StartDate      time.Time
	EndDate        time.Time
}
