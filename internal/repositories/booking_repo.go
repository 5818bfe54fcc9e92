package repositories

import (
	"context"
	"time"

	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Service, error)
	Update(ctx context.Context, service *models.Service) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
	List(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]*models.Service, error)
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type serviceRepo struct {
	db DB
}

func NewServiceRepo(db DB) ServiceRepository {
	return &serviceRepo{db: db}
}

const serviceColumns = `id, organization_id, name, description, duration_minutes, price, currency, active`

func scanService(row pgx.Row) (*models.Service, error) {
	s := &models.Service{}
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Description, &s.DurationMinutes, &s.Price, &s.Currency, &s.Active)
	if err != nil {
		return nil, translateError(err)
	}
	return s, nil
}

func (r *serviceRepo) Create(ctx context.Context, service *models.Service) error {
	query := `
		INSERT INTO services (id, organization_id, name, description, duration_minutes, price, currency, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, service.ID, service.OrganizationID, service.Name, service.Description,
		service.DurationMinutes, service.Price, service.Currency, service.Active)
	return translateError(err)
}

func (r *serviceRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE organization_id = $1 AND id = $2`
	return scanService(r.db.QueryRow(ctx, query, organizationID, id))
}

func (r *serviceRepo) Update(ctx context.Context, service *models.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, duration_minutes = $3, price = $4, currency = $5, active = $6
		WHERE organization_id = $7 AND id = $8
	`
	return execAffecting(ctx, r.db, query, service.Name, service.Description, service.DurationMinutes, service.Price,
		service.Currency, service.Active, service.OrganizationID, service.ID)
}

func (r *serviceRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return execAffecting(ctx, r.db, `DELETE FROM services WHERE organization_id = $1 AND id = $2`, organizationID, id)
}

func (r *serviceRepo) List(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE organization_id = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *serviceRepo) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return execDeleteAll(ctx, r.db, `DELETE FROM services WHERE organization_id = $1`, organizationID)
}

type WorkingHoursRepository interface {
	List(ctx context.Context, organizationID uuid.UUID) ([]*models.WorkingHours, error)
	Replace(ctx context.Context, organizationID uuid.UUID, hours []*models.WorkingHours) error
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type workingHoursRepo struct {
	db DB
}

func NewWorkingHoursRepo(db DB) WorkingHoursRepository {
	return &workingHoursRepo{db: db}
}

func (r *workingHoursRepo) List(ctx context.Context, organizationID uuid.UUID) ([]*models.WorkingHours, error) {
	query := `
		SELECT id, organization_id, weekday, opens_at, closes_at
		FROM working_hours
		WHERE organization_id = $1
		ORDER BY weekday, opens_at
	`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []*models.WorkingHours
	for rows.Next() {
		h := &models.WorkingHours{}
		if err := rows.Scan(&h.ID, &h.OrganizationID, &h.Weekday, &h.OpensAt, &h.ClosesAt); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

func (r *workingHoursRepo) Replace(ctx context.Context, organizationID uuid.UUID, hours []*models.WorkingHours) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM working_hours WHERE organization_id = $1`, organizationID); err != nil {
		return err
	}
	for _, h := range hours {
		query := `
			INSERT INTO working_hours (id, organization_id, weekday, opens_at, closes_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, query, h.ID, organizationID, int(h.Weekday), h.OpensAt, h.ClosesAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *workingHoursRepo) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return execDeleteAll(ctx, r.db, `DELETE FROM working_hours WHERE organization_id = $1`, organizationID)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]*models.Appointment, error)
	UpdateStatus(ctx context.Context, organizationID, id uuid.UUID, status string) error
	BusySlots(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]models.BusyInterval, error)
	CancelExpiredPending(ctx context.Context, organizationID uuid.UUID, before time.Time) (int64, error)
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type appointmentRepo struct {
	db DB
}

func NewAppointmentRepo(db DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

const appointmentColumns = `id, organization_id, service_id, customer_name, customer_email, customer_phone, starts_at, ends_at, status, notes, created_at`

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	a := &models.Appointment{}
	err := row.Scan(&a.ID, &a.OrganizationID, &a.ServiceID, &a.CustomerName, &a.CustomerEmail, &a.CustomerPhone,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return a, nil
}

func (r *appointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	query := `
		INSERT INTO appointments (id, organization_id, service_id, customer_name, customer_email, customer_phone, starts_at, ends_at, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.OrganizationID, a.ServiceID, a.CustomerName, a.CustomerEmail, a.CustomerPhone,
		a.StartsAt, a.EndsAt, a.Status, a.Notes)
	return translateError(err)
}

func (r *appointmentRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE organization_id = $1 AND id = $2`
	return scanAppointment(r.db.QueryRow(ctx, query, organizationID, id))
}

func (r *appointmentRepo) List(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]*models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE organization_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at
	`
	rows, err := r.db.Query(ctx, query, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, organizationID, id uuid.UUID, status string) error {
	query := `UPDATE appointments SET status = $1 WHERE organization_id = $2 AND id = $3`
	return execAffecting(ctx, r.db, query, status, organizationID, id)
}

// BusySlots calls the busy_slots database function, which returns the non-cancelled
// appointment intervals of an organization that intersect [from, to).
func (r *appointmentRepo) BusySlots(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]models.BusyInterval, error) {
	rows, err := r.db.Query(ctx, `SELECT starts_at, ends_at FROM busy_slots($1, $2, $3)`, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var busy []models.BusyInterval
	for rows.Next() {
		var b models.BusyInterval
		if err := rows.Scan(&b.Start, &b.End); err != nil {
			return nil, err
		}
		busy = append(busy, b)
	}
	return busy, rows.Err()
}

func (r *appointmentRepo) CancelExpiredPending(ctx context.Context, organizationID uuid.UUID, before time.Time) (int64, error) {
	query := `
		UPDATE appointments
		SET status = $1
		WHERE organization_id = $2 AND status = $3 AND starts_at < $4
	`
	tag, err := r.db.Exec(ctx, query, models.AppointmentCancelled, organizationID, models.AppointmentPending, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *appointmentRepo) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return execDeleteAll(ctx, r.db, `DELETE FROM appointments WHERE organization_id = $1`, organizationID)
}
