package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrganizationID  uuid.UUID       `json:"organization_id" db:"organization_id"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description" db:"description"`
	DurationMinutes int             `json:"duration_minutes" db:"duration_minutes"`
	Price           decimal.Decimal `json:"price" db:"price"`
	Currency        Currency        `json:"currency" db:"currency"`
	Active          bool            `json:"active" db:"active"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// WorkingHours is one opening window for a weekday (0 = Sunday). Times are "HH:MM".
type WorkingHours struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	OrganizationID uuid.UUID    `json:"organization_id" db:"organization_id"`
	Weekday        time.Weekday `json:"weekday" db:"weekday"`
	OpensAt        string       `json:"opens_at" db:"opens_at"`
	ClosesAt       string       `json:"closes_at" db:"closes_at"`
}

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

func ValidAppointmentStatus(status string) bool {
	switch status {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled, AppointmentCompleted:
		return true
	}
	return false
}

type Appointment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	ServiceID      uuid.UUID `json:"service_id" db:"service_id"`
	CustomerName   string    `json:"customer_name" db:"customer_name"`
	CustomerEmail  string    `json:"customer_email" db:"customer_email"`
	CustomerPhone  string    `json:"customer_phone" db:"customer_phone"`
	StartsAt       time.Time `json:"starts_at" db:"starts_at"`
	EndsAt         time.Time `json:"ends_at" db:"ends_at"`
	Status         string    `json:"status" db:"status"`
	Notes          string    `json:"notes" db:"notes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// BusyInterval is a half-open [Start, End) range returned by the busy_slots function.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
