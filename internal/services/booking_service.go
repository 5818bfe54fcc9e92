package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"backoffice/internal/booking"
	"backoffice/internal/caching"
	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const bookingLockTTL = 10 * time.Second

type BookingService interface {
	ListServices(ctx context.Context, organizationID uuid.UUID) ([]*models.Service, error)
	CreateService(ctx context.Context, organizationID uuid.UUID, req *ServiceRequest) (*models.Service, error)
	UpdateService(ctx context.Context, organizationID, id uuid.UUID, req *ServiceRequest) (*models.Service, error)
	DeleteService(ctx context.Context, organizationID, id uuid.UUID) error

	ListHours(ctx context.Context, organizationID uuid.UUID) ([]*models.WorkingHours, error)
	ReplaceHours(ctx context.Context, organizationID uuid.UUID, hours []WorkingHoursRequest) ([]*models.WorkingHours, error)

	ListAppointments(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, organizationID, id uuid.UUID, status string) error
	ExpirePending(ctx context.Context, organizationID uuid.UUID, before time.Time) (int64, error)

	PublicPage(ctx context.Context, slug string) (*models.PublicOrganization, error)
	Availability(ctx context.Context, slug string, date string, serviceID uuid.UUID) ([]booking.Slot, error)
	Book(ctx context.Context, slug string, req *PublicAppointmentRequest) (*models.Appointment, error)
}

type bookingService struct {
	orgRepo         repositories.OrganizationRepository
	serviceRepo     repositories.ServiceRepository
	hoursRepo       repositories.WorkingHoursRepository
	appointmentRepo repositories.AppointmentRepository
	modules         ModuleService
	logos           storage.LogoStore
	cache           caching.CacheService
	locker          caching.Locker
	step            time.Duration
	loc             *time.Location
	now             func() time.Time
	logger          *logrus.Logger
}

func NewBookingService(
	orgRepo repositories.OrganizationRepository,
	serviceRepo repositories.ServiceRepository,
	hoursRepo repositories.WorkingHoursRepository,
	appointmentRepo repositories.AppointmentRepository,
	modules ModuleService,
	logos storage.LogoStore,
	cache caching.CacheService,
	locker caching.Locker,
	cfg config.BookingConfig,
) BookingService {
	return &bookingService{
		orgRepo:         orgRepo,
		serviceRepo:     serviceRepo,
		hoursRepo:       hoursRepo,
		appointmentRepo: appointmentRepo,
		modules:         modules,
		logos:           logos,
		cache:           cache,
		locker:          locker,
		step:            time.Duration(cfg.SlotMinutes) * time.Minute,
		loc:             cfg.Location(),
		now:             time.Now,
		logger:          config.GetLogger(),
	}
}

type ServiceRequest struct {
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=1000"`
	DurationMinutes int             `json:"duration_minutes" validate:"required"`
	Price           decimal.Decimal `json:"price"`
	Currency        models.Currency `json:"currency" validate:"required"`
	Active          *bool           `json:"active"`
}

type WorkingHoursRequest struct {
	Weekday  int    `json:"weekday"`
	OpensAt  string `json:"opens_at" validate:"required"`
	ClosesAt string `json:"closes_at" validate:"required"`
}

type PublicAppointmentRequest struct {
	ServiceID     uuid.UUID `json:"service_id" validate:"required"`
	StartsAt      time.Time `json:"starts_at" validate:"required"`
	CustomerName  string    `json:"customer_name" validate:"required,max=200"`
	CustomerEmail string    `json:"customer_email" validate:"required,email"`
	CustomerPhone string    `json:"customer_phone" validate:"max=40"`
	Notes         string    `json:"notes" validate:"max=1000"`
}

func (r *ServiceRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return common.Invalid("name is required")
	}
	if r.DurationMinutes <= 0 || r.DurationMinutes > 24*60 {
		return common.Invalid("duration must be between 1 and 1440 minutes")
	}
	if r.Price.IsNegative() {
		return common.Invalid("price must not be negative")
	}
	if !r.Currency.Valid() {
		return common.Invalid("currency must be ARS or USD")
	}
	return nil
}

func (s *bookingService) ListServices(ctx context.Context, organizationID uuid.UUID) ([]*models.Service, error) {
	services, err := s.serviceRepo.List(ctx, organizationID, false)
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []*models.Service{}
	}
	return services, nil
}

func (s *bookingService) CreateService(ctx context.Context, organizationID uuid.UUID, req *ServiceRequest) (*models.Service, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	service := &models.Service{
		ID:              uuid.New(),
		OrganizationID:  organizationID,
		Name:            req.Name,
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Currency:        req.Currency,
		Active:          req.Active == nil || *req.Active,
	}
	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, translate(err, "service")
	}
	s.invalidatePublicPage(ctx, organizationID)
	return service, nil
}

func (s *bookingService) UpdateService(ctx context.Context, organizationID, id uuid.UUID, req *ServiceRequest) (*models.Service, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	service, err := s.serviceRepo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, translate(err, "service")
	}
	service.Name = req.Name
	service.Description = strings.TrimSpace(req.Description)
	service.DurationMinutes = req.DurationMinutes
	service.Price = req.Price
	service.Currency = req.Currency
	if req.Active != nil {
		service.Active = *req.Active
	}
	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, translate(err, "service")
	}
	s.invalidatePublicPage(ctx, organizationID)
	return service, nil
}

func (s *bookingService) DeleteService(ctx context.Context, organizationID, id uuid.UUID) error {
	if err := s.serviceRepo.Delete(ctx, organizationID, id); err != nil {
		return translate(err, "service")
	}
	s.invalidatePublicPage(ctx, organizationID)
	return nil
}

func (s *bookingService) ListHours(ctx context.Context, organizationID uuid.UUID) ([]*models.WorkingHours, error) {
	hours, err := s.hoursRepo.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if hours == nil {
		hours = []*models.WorkingHours{}
	}
	return hours, nil
}

// ReplaceHours swaps the whole weekly schedule. Overlapping windows on one weekday are rejected.
func (s *bookingService) ReplaceHours(ctx context.Context, organizationID uuid.UUID, reqs []WorkingHoursRequest) ([]*models.WorkingHours, error) {
	type window struct{ opens, closes time.Duration }
	byDay := make(map[int][]window)

	hours := make([]*models.WorkingHours, 0, len(reqs))
	for _, req := range reqs {
		if req.Weekday < 0 || req.Weekday > 6 {
			return nil, common.Invalid("weekday must be between 0 (Sunday) and 6 (Saturday)")
		}
		opens, err := booking.ParseClock(req.OpensAt)
		if err != nil {
			return nil, common.Invalid("%s", err.Error())
		}
		closes, err := booking.ParseClock(req.ClosesAt)
		if err != nil {
			return nil, common.Invalid("%s", err.Error())
		}
		if closes <= opens {
			return nil, common.Invalid("closing time must be after opening time on weekday %d", req.Weekday)
		}
		for _, w := range byDay[req.Weekday] {
			if opens < w.closes && w.opens < closes {
				return nil, common.Invalid("overlapping windows on weekday %d", req.Weekday)
			}
		}
		byDay[req.Weekday] = append(byDay[req.Weekday], window{opens, closes})

		hours = append(hours, &models.WorkingHours{
			ID:             uuid.New(),
			OrganizationID: organizationID,
			Weekday:        time.Weekday(req.Weekday),
			OpensAt:        req.OpensAt,
			ClosesAt:       req.ClosesAt,
		})
	}

	if err := s.hoursRepo.Replace(ctx, organizationID, hours); err != nil {
		return nil, err
	}
	return hours, nil
}

func (s *bookingService) ListAppointments(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]*models.Appointment, error) {
	if err := common.ValidateDateRange(from, to); err != nil {
		return nil, common.Invalid("%s", err.Error())
	}
	appointments, err := s.appointmentRepo.List(ctx, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	if appointments == nil {
		appointments = []*models.Appointment{}
	}
	return appointments, nil
}

func (s *bookingService) UpdateAppointmentStatus(ctx context.Context, organizationID, id uuid.UUID, status string) error {
	if !models.ValidAppointmentStatus(status) {
		return common.Invalid("status must be pending, confirmed, cancelled or completed")
	}
	return translate(s.appointmentRepo.UpdateStatus(ctx, organizationID, id, status), "appointment")
}

// ExpirePending cancels pending appointments that started before the cutoff.
func (s *bookingService) ExpirePending(ctx context.Context, organizationID uuid.UUID, before time.Time) (int64, error) {
	return s.appointmentRepo.CancelExpiredPending(ctx, organizationID, before)
}

// bookableOrganization resolves a public slug. Inactive organizations and organizations
// without the booking module do not exist publicly.
func (s *bookingService) bookableOrganization(ctx context.Context, slug string) (*models.Organization, error) {
	org, err := s.orgRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, translate(err, "organization")
	}
	if !org.IsActive() {
		return nil, translate(repositories.ErrNotFound, "organization")
	}
	enabled, err := s.modules.IsEnabled(ctx, org.ID, models.ModuleBooking)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, translate(repositories.ErrNotFound, "organization")
	}
	return org, nil
}

func (s *bookingService) PublicPage(ctx context.Context, slug string) (*models.PublicOrganization, error) {
	page, err := s.cache.GetPublicOrganization(ctx, slug)
	if err != nil {
		s.logger.WithError(err).Warn("read public page cache")
	}
	if page != nil {
		return page, nil
	}

	org, err := s.bookableOrganization(ctx, slug)
	if err != nil {
		return nil, err
	}
	services, err := s.serviceRepo.List(ctx, org.ID, true)
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []*models.Service{}
	}

	page = &models.PublicOrganization{
		Name:           org.Name,
		Slug:           org.Slug,
		PrimaryColor:   org.PrimaryColor,
		SecondaryColor: org.SecondaryColor,
		Services:       services,
	}
	if org.LogoKey != nil {
		page.LogoURL = s.logos.PublicURL(*org.LogoKey)
	}
	if err := s.cache.SetPublicOrganization(ctx, page, publicPageTTL); err != nil {
		s.logger.WithError(err).Warn("write public page cache")
	}
	return page, nil
}

func (s *bookingService) activeService(ctx context.Context, organizationID, serviceID uuid.UUID) (*models.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, organizationID, serviceID)
	if err != nil {
		return nil, translate(err, "service")
	}
	if !service.Active {
		return nil, translate(repositories.ErrNotFound, "service")
	}
	return service, nil
}

// daySchedule loads the working hours and busy intervals of the day containing t.
func (s *bookingService) daySchedule(ctx context.Context, organizationID uuid.UUID, t time.Time) ([]*models.WorkingHours, []models.BusyInterval, error) {
	day := t.In(s.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	hours, err := s.hoursRepo.List(ctx, organizationID)
	if err != nil {
		return nil, nil, err
	}
	busy, err := s.appointmentRepo.BusySlots(ctx, organizationID, start, end)
	if err != nil {
		return nil, nil, err
	}
	return hours, busy, nil
}

func (s *bookingService) Availability(ctx context.Context, slug string, date string, serviceID uuid.UUID) ([]booking.Slot, error) {
	day, err := common.ParseDate(date, "date", s.loc)
	if err != nil {
		return nil, common.Invalid("%s", err.Error())
	}
	if day == nil {
		return nil, common.Invalid("date is required")
	}

	org, err := s.bookableOrganization(ctx, slug)
	if err != nil {
		return nil, err
	}
	service, err := s.activeService(ctx, org.ID, serviceID)
	if err != nil {
		return nil, err
	}
	hours, busy, err := s.daySchedule(ctx, org.ID, *day)
	if err != nil {
		return nil, err
	}

	slots := booking.Slots(*day, hours, busy, service.Duration(), s.step, s.now())
	if slots == nil {
		slots = []booking.Slot{}
	}
	return slots, nil
}

// Book re-checks availability right before inserting. A slot taken in the meantime is a
// conflict.
func (s *bookingService) Book(ctx context.Context, slug string, req *PublicAppointmentRequest) (*models.Appointment, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return nil, common.Invalid("name is required")
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return nil, common.Invalid("email is not valid")
	}

	org, err := s.bookableOrganization(ctx, slug)
	if err != nil {
		return nil, err
	}
	service, err := s.activeService(ctx, org.ID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	startsAt := req.StartsAt.In(s.loc)

	// The availability check and the insert run under one lock per organization.
	release, err := s.locker.Acquire(ctx, "booking:"+org.ID.String(), bookingLockTTL)
	if errors.Is(err, caching.ErrLockNotObtained) {
		return nil, fmt.Errorf("another booking is in progress, try again: %w", common.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WithError(err).WithField("organization_id", org.ID).Warn("release booking lock")
		}
	}()

	hours, busy, err := s.daySchedule(ctx, org.ID, startsAt)
	if err != nil {
		return nil, err
	}
	if !booking.Available(startsAt, hours, busy, service.Duration(), s.step, s.now()) {
		return nil, fmt.Errorf("the selected time is no longer available: %w", common.ErrConflict)
	}

	appointment := &models.Appointment{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		ServiceID:      service.ID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		StartsAt:       startsAt,
		EndsAt:         startsAt.Add(service.Duration()),
		Status:         models.AppointmentPending,
		Notes:          strings.TrimSpace(req.Notes),
	}
	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, translate(err, "appointment")
	}
	s.logger.WithFields(logrus.Fields{"organization_id": org.ID, "appointment_id": appointment.ID}).Info("appointment booked")
	return appointment, nil
}

func (s *bookingService) invalidatePublicPage(ctx context.Context, organizationID uuid.UUID) {
	org, err := s.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		s.logger.WithError(err).Warn("load organization for cache invalidation")
		return
	}
	if err := s.cache.InvalidatePublicOrganization(ctx, org.Slug); err != nil {
		s.logger.WithError(err).Warn("invalidate public page")
	}
}
