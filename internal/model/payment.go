package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment is a provider-correlated deposit record. One appointment may
// accumulate several attempts; at most one is ever marked paid, and it
// must correspond to exactly one provider event.
type Payment struct {
	Base
	OrgID             uuid.UUID     `db:"org_id" json:"org_id"`
	AppointmentID     uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	Provider          string        `db:"provider" json:"provider"`
	Status            PaymentStatus `db:"status" json:"status"`
	CheckoutSessionID string        `db:"checkout_session_id" json:"checkout_session_id"`
	CheckoutURL       string        `db:"checkout_url" json:"checkout_url"`
	PaymentIntentID   *string       `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	ProviderEventID   *string       `db:"provider_event_id" json:"provider_event_id,omitempty"`
	AmountCents       int64         `db:"amount_cents" json:"amount_cents"`
	Currency          string        `db:"currency" json:"currency"`
}

// PaymentConfirmation carries one inbound provider confirmation event.
type PaymentConfirmation struct {
	ProviderEventID string
	OrgID           uuid.UUID
	AppointmentID   uuid.UUID
	SessionID       string
	PaymentIntentID *string
	AmountCents     int64
	Currency        string
	OccurredAt      time.Time
}
