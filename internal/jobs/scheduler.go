package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"backoffice/internal/config"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	AppointmentExpiryJob = "appointment-expiry"
	CacheRefreshJob      = "organization-cache-refresh"

	defaultConcurrency = 5
)

type ActiveOrganizations interface {
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type AppointmentExpirer interface {
	ExpirePending(ctx context.Context, organizationID uuid.UUID, before time.Time) (int64, error)
}

type ListingRefresher interface {
	RefreshListing(ctx context.Context) error
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	scheduler    gocron.Scheduler
	orgs         ActiveOrganizations
	appointments AppointmentExpirer
	listing      ListingRefresher
	concurrency  int
	now          func() time.Time
	logger       *logrus.Logger

	mu   sync.RWMutex
	jobs map[string]gocron.Job
}

func NewScheduler(cfg config.SchedulerConfig, orgs ActiveOrganizations, appointments AppointmentExpirer, listing ListingRefresher) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	s := &Scheduler{
		scheduler:    scheduler,
		orgs:         orgs,
		appointments: appointments,
		listing:      listing,
		concurrency:  concurrency,
		now:          time.Now,
		logger:       config.GetLogger(),
		jobs:         make(map[string]gocron.Job),
	}

	if err := s.register(AppointmentExpiryJob, cfg.AppointmentSweepEvery, s.ExpireAppointments); err != nil {
		return nil, err
	}
	if err := s.register(CacheRefreshJob, cfg.CacheRefreshEvery, s.RefreshOrganizationCache); err != nil {
		return nil, err
	}

	s.logger.WithField("jobs", len(s.jobs)).Info("Registered background jobs")
	return s, nil
}

func (s *Scheduler) register(name string, every time.Duration, task func(context.Context) error) error {
	if every <= 0 {
		s.logger.WithField("job", name).Warn("Job disabled: non-positive interval")
		return nil
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if err := task(context.Background()); err != nil {
				config.LogError(s.logger, "jobs", name, "run job", nil, err)
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = job
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping background job scheduler")
	return s.scheduler.Shutdown()
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// ExpireAppointments cancels pending appointments whose start has passed,
// for every active organization, at most s.concurrency organizations at a time.
func (s *Scheduler) ExpireAppointments(ctx context.Context) error {
	ids, err := s.orgs.ListActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active organizations: %w", err)
	}

	now := s.now()
	semaphore := make(chan struct{}, s.concurrency)
	var (
		wg       sync.WaitGroup
		expired  atomic.Int64
		failures atomic.Int64
	)

	for _, id := range ids {
		wg.Add(1)
		go func(organizationID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			n, err := s.appointments.ExpirePending(ctx, organizationID, now)
			if err != nil {
				failures.Add(1)
				config.LogError(s.logger, "jobs", "ExpireAppointments", "expire pending appointments", organizationID.String(), err)
				return
			}
			expired.Add(n)
		}(id)
	}
	wg.Wait()

	s.logger.WithFields(logrus.Fields{
		"organizations": len(ids),
		"expired":       expired.Load(),
		"failures":      failures.Load(),
	}).Info("Completed appointment expiry sweep")

	if f := failures.Load(); f > 0 {
		return fmt.Errorf("appointment expiry failed for %d of %d organizations", f, len(ids))
	}
	return nil
}

func (s *Scheduler) RefreshOrganizationCache(ctx context.Context) error {
	if err := s.listing.RefreshListing(ctx); err != nil {
		return fmt.Errorf("refresh organization listing: %w", err)
	}
	s.logger.Debug("Refreshed organization listing cache")
	return nil
}
