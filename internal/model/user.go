package model

import (
	"github.com/google/uuid"
)

// Staff roles within an organization.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a staff identity able to sign in to the dashboard.
type User struct {
	Base
	OrgID        uuid.UUID `db:"org_id" json:"org_id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      *User  `json:"user"`
}
