package model

import (
	"github.com/google/uuid"
)

// Unit is a physical location of the organization.
type Unit struct {
	Base
	OrgID   uuid.UUID `db:"org_id" json:"org_id"`
	Name    string    `db:"name" json:"name"`
	Address *string   `db:"address" json:"address,omitempty"`
}
