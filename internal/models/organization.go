package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrganizationActive   = "active"
	OrganizationInactive = "inactive"
)

// Organization is a tenant: every ledger row, member and booking belongs to exactly one.
type Organization struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Slug           string          `json:"slug" db:"slug"`
	PrimaryColor   string          `json:"primary_color" db:"primary_color"`
	SecondaryColor string          `json:"secondary_color" db:"secondary_color"`
	LogoKey        *string         `json:"-" db:"logo_key"`
	LogoURL        string          `json:"logo_url,omitempty" db:"-"`
	MonthlyFee     decimal.Decimal `json:"monthly_fee" db:"monthly_fee"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (o *Organization) IsActive() bool {
	return o.Status == OrganizationActive
}

// PublicOrganization is what the booking page exposes for a slug.
type PublicOrganization struct {
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	PrimaryColor   string     `json:"primary_color"`
	SecondaryColor string     `json:"secondary_color"`
	LogoURL        string     `json:"logo_url,omitempty"`
	Services       []*Service `json:"services"`
}
