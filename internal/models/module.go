package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ModuleFinance = "finance"
	ModuleTeam    = "team"
	ModuleBooking = "booking"
)

type Module struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Key         string    `json:"key" db:"key"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
}

type OrganizationModule struct {
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	ModuleID       uuid.UUID `json:"module_id" db:"module_id"`
	Key            string    `json:"key" db:"key"`
	EnabledAt      time.Time `json:"enabled_at" db:"enabled_at"`
}
