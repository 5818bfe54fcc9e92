package deprovision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"backoffice/internal/caching"
	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("backoffice/deprovision")

const lockTTL = 5 * time.Minute

// ErrInProgress means another run holds the organization's lock.
var ErrInProgress = errors.New("deprovisioning already in progress")

type OrganizationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemberStore interface {
	TenantDeleter
	ListIDsByOrganization(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error)
}

// Stores are the tables a deprovisioning run touches.
type Stores struct {
	Organizations OrganizationStore
	Profiles      MemberStore
	Transactions  TenantDeleter
	Categories    TenantDeleter
	Payees        TenantDeleter
	Appointments  TenantDeleter
	Services      TenantDeleter
	WorkingHours  TenantDeleter
	Modules       TenantDeleter
}

type IdentityDeleter interface {
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type LogoRemover interface {
	Delete(ctx context.Context, key string) error
}

type CacheInvalidator interface {
	InvalidateOrganizations(ctx context.Context) error
	InvalidatePublicOrganization(ctx context.Context, slug string) error
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error
}

// Result reports a run. OrphanedIdentities lists identity accounts that outlived their
// organization because their deletion failed; they need manual cleanup.
type Result struct {
	Success            bool         `json:"success"`
	Message            string       `json:"message"`
	Steps              []StepResult `json:"steps,omitempty"`
	OrphanedIdentities []uuid.UUID  `json:"orphaned_identities,omitempty"`
	// Err is the failure cause. It matches common.ErrNotFound or common.ErrConflict when
	// the run was refused rather than broken.
	Err error `json:"-"`
}

type Deprovisioner struct {
	stores     Stores
	steps      []Step
	identities IdentityDeleter
	logos      LogoRemover
	cache      CacheInvalidator
	locker     caching.Locker
	logger     *logrus.Logger
}

func New(stores Stores, identities IdentityDeleter, logos LogoRemover, cache CacheInvalidator, locker caching.Locker) *Deprovisioner {
	return &Deprovisioner{
		stores:     stores,
		steps:      buildSteps(stores),
		identities: identities,
		logos:      logos,
		cache:      cache,
		locker:     locker,
		logger:     config.GetLogger(),
	}
}

// Deprovision deletes the organization's rows in dependency order, then the organization,
// then each member's identity account.
func (d *Deprovisioner) Deprovision(ctx context.Context, organizationID uuid.UUID) Result {
	ctx, span := tracer.Start(ctx, "deprovision.Deprovision")
	defer span.End()
	span.SetAttributes(attribute.String("organization.id", organizationID.String()))

	fail := func(stage string, err error, steps []StepResult) Result {
		markFailed(span, err)
		config.LogError(d.logger, "deprovision", "Deprovision", stage, organizationID.String(), err)
		return Result{Success: false, Message: err.Error(), Steps: steps, Err: err}
	}

	release, err := d.locker.Acquire(ctx, "deprovision:"+organizationID.String(), lockTTL)
	if err != nil {
		if errors.Is(err, caching.ErrLockNotObtained) {
			result := fail("obtain lock", ErrInProgress, nil)
			result.Err = fmt.Errorf("%w: %w", ErrInProgress, common.ErrConflict)
			return result
		}
		return fail("obtain lock", err, nil)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			d.logger.WithError(err).WithField("organization_id", organizationID).Warn("release deprovision lock")
		}
	}()

	org, err := d.stores.Organizations.GetByID(ctx, organizationID)
	if errors.Is(err, repositories.ErrNotFound) {
		return fail("load organization", fmt.Errorf("organization %w", common.ErrNotFound), nil)
	}
	if err != nil {
		return fail("load organization", fmt.Errorf("failed to load organization: %w", err), nil)
	}

	memberIDs, err := d.stores.Profiles.ListIDsByOrganization(ctx, organizationID)
	if err != nil {
		return fail("look up members", fmt.Errorf("failed to look up members: %w", err), nil)
	}

	steps, err := runSteps(ctx, organizationID, d.steps)
	if err != nil {
		return fail("delete rows", err, steps)
	}

	// The organization is gone; the cleanup tail must finish even if the caller goes away.
	tailCtx := context.WithoutCancel(ctx)
	orphaned := d.deleteIdentities(tailCtx, organizationID, memberIDs)
	d.removeLogo(tailCtx, org)
	d.invalidateCaches(tailCtx, org)

	msg := fmt.Sprintf("organization %q deleted", org.Name)
	if len(orphaned) > 0 {
		msg += fmt.Sprintf("; %d identity account(s) could not be deleted", len(orphaned))
		span.SetAttributes(attribute.Int("identities.orphaned", len(orphaned)))
	}
	d.logger.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"members":         len(memberIDs),
		"orphaned":        len(orphaned),
	}).Info("organization deprovisioned")

	return Result{Success: true, Message: msg, Steps: steps, OrphanedIdentities: orphaned}
}

// deleteIdentities deletes every member account concurrently and returns the ones that failed.
func (d *Deprovisioner) deleteIdentities(ctx context.Context, organizationID uuid.UUID, memberIDs []uuid.UUID) []uuid.UUID {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		orphaned []uuid.UUID
	)
	for _, id := range memberIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if err := d.identities.DeleteAccount(ctx, id); err != nil {
				config.LogError(d.logger, "deprovision", "deleteIdentities", "orphaned identity account",
					map[string]string{"organization_id": organizationID.String(), "account_id": id.String()}, err)
				mu.Lock()
				orphaned = append(orphaned, id)
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	return orphaned
}

func (d *Deprovisioner) removeLogo(ctx context.Context, org *models.Organization) {
	if org.LogoKey == nil || *org.LogoKey == "" {
		return
	}
	if err := d.logos.Delete(ctx, *org.LogoKey); err != nil {
		d.logger.WithError(err).WithField("key", *org.LogoKey).Warn("remove organization logo")
	}
}

func (d *Deprovisioner) invalidateCaches(ctx context.Context, org *models.Organization) {
	if err := d.cache.InvalidateOrganizations(ctx); err != nil {
		d.logger.WithError(err).Warn("invalidate organization listing")
	}
	if err := d.cache.InvalidatePublicOrganization(ctx, org.Slug); err != nil {
		d.logger.WithError(err).Warn("invalidate public page")
	}
	if err := d.cache.InvalidateTenantCache(ctx, org.ID); err != nil {
		d.logger.WithError(err).Warn("invalidate tenant cache")
	}
}
