package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleEmployee   = "employee"
)

// Account is an identity record. Passwords never leave the identity package.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Profile links an identity account to an organization. Its ID is the account ID.
// Superadmins have no organization.
type Profile struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID *uuid.UUID `json:"organization_id" db:"organization_id"`
	FullName       string     `json:"full_name" db:"full_name"`
	Email          string     `json:"email" db:"email"`
	Role           string     `json:"role" db:"role"`
	CanViewReal    bool       `json:"can_view_real" db:"can_view_real"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

func (p *Profile) IsSuperadmin() bool {
	return p.Role == RoleSuperadmin
}

// RealViewAllowed reports whether the member may see non-fiscal figures.
// Admins always can; employees only with the explicit grant.
func (p *Profile) RealViewAllowed() bool {
	switch p.Role {
	case RoleSuperadmin, RoleAdmin:
		return true
	default:
		return p.CanViewReal
	}
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}
