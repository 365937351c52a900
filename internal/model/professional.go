package model

import (
	"github.com/google/uuid"
)

// Professional is the resource being scheduled.
type Professional struct {
	Base
	OrgID  uuid.UUID  `db:"org_id" json:"org_id"`
	Name   string     `db:"name" json:"name"`
	UserID *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Phone  *string    `db:"phone" json:"phone,omitempty"`
}
