package model

import (
	"github.com/google/uuid"
)

// Service is a bookable offering. Read-only input to availability and
// hold computation; owned by tenant configuration.
type Service struct {
	Base
	OrgID          uuid.UUID `db:"org_id" json:"org_id"`
	Name           string    `db:"name" json:"name"`
	DurationMin    int       `db:"duration_min" json:"duration_min"`
	PriceCents     int64     `db:"price_cents" json:"price_cents"`
	DepositPercent int       `db:"deposit_percent" json:"deposit_percent"`
}

// DepositCents computes the deposit snapshot taken at hold creation.
// Later price changes must not affect existing holds.
func (s *Service) DepositCents() int64 {
	return s.PriceCents * int64(s.DepositPercent) / 100
}
