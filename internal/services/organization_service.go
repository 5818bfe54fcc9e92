package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"backoffice/internal/caching"
	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/deprovision"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	organizationListTTL = 30 * time.Minute
	publicPageTTL       = 10 * time.Minute
	organizationListCap = 1000
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	validate    = validator.New()
)

// AccountManager is the identity boundary the services provision members through.
type AccountManager interface {
	CreateAccount(ctx context.Context, email, password, fullName string) (*models.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type Deprovisioner interface {
	Deprovision(ctx context.Context, organizationID uuid.UUID) deprovision.Result
}

type OrganizationService interface {
	Provision(ctx context.Context, req *ProvisionOrganizationRequest) (*models.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	RefreshListing(ctx context.Context) error
	Update(ctx context.Context, id uuid.UUID, req *UpdateOrganizationRequest) (*models.Organization, error)
	UploadLogo(ctx context.Context, id uuid.UUID, filename, contentType string, r io.Reader, size int64) (*models.Organization, error)
	SetModules(ctx context.Context, id uuid.UUID, keys []string) error
	Deprovision(ctx context.Context, id uuid.UUID) deprovision.Result
}

type organizationService struct {
	orgRepo       repositories.OrganizationRepository
	profileRepo   repositories.ProfileRepository
	moduleRepo    repositories.ModuleRepository
	accounts      AccountManager
	logos         storage.LogoStore
	cache         caching.CacheService
	deprovisioner Deprovisioner
	logger        *logrus.Logger
}

func NewOrganizationService(
	orgRepo repositories.OrganizationRepository,
	profileRepo repositories.ProfileRepository,
	moduleRepo repositories.ModuleRepository,
	accounts AccountManager,
	logos storage.LogoStore,
	cache caching.CacheService,
	deprovisioner Deprovisioner,
) OrganizationService {
	return &organizationService{
		orgRepo:       orgRepo,
		profileRepo:   profileRepo,
		moduleRepo:    moduleRepo,
		accounts:      accounts,
		logos:         logos,
		cache:         cache,
		deprovisioner: deprovisioner,
		logger:        config.GetLogger(),
	}
}

type ProvisionOrganizationRequest struct {
	Name           string          `json:"name" validate:"required"`
	Slug           string          `json:"slug" validate:"required"`
	PrimaryColor   string          `json:"primary_color"`
	SecondaryColor string          `json:"secondary_color"`
	MonthlyFee     decimal.Decimal `json:"monthly_fee"`
	Modules        []string        `json:"modules"`
	AdminEmail     string          `json:"admin_email" validate:"required,email"`
	AdminPassword  string          `json:"admin_password" validate:"required,min=8"`
	AdminName      string          `json:"admin_name" validate:"required"`
}

type UpdateOrganizationRequest struct {
	Name           *string          `json:"name"`
	Slug           *string          `json:"slug"`
	PrimaryColor   *string          `json:"primary_color"`
	SecondaryColor *string          `json:"secondary_color"`
	MonthlyFee     *decimal.Decimal `json:"monthly_fee"`
	Status         *string          `json:"status"`
}

func validateOrganization(org *models.Organization) error {
	if strings.TrimSpace(org.Name) == "" {
		return common.Invalid("name is required")
	}
	if !slugPattern.MatchString(org.Slug) {
		return common.Invalid("slug %q must be lowercase letters, digits and single hyphens", org.Slug)
	}
	for _, color := range []string{org.PrimaryColor, org.SecondaryColor} {
		if err := validate.Var(color, "required,hexcolor"); err != nil {
			return common.Invalid("color %q must be a hex value like #1e40af", color)
		}
	}
	if org.MonthlyFee.IsNegative() {
		return common.Invalid("monthly fee must not be negative")
	}
	if org.Status != models.OrganizationActive && org.Status != models.OrganizationInactive {
		return common.Invalid("status must be active or inactive")
	}
	return nil
}

// normalizeModuleKeys rejects unknown keys and drops repeats, keeping first-seen order.
func normalizeModuleKeys(keys []string) ([]string, error) {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		switch key {
		case models.ModuleFinance, models.ModuleTeam, models.ModuleBooking:
		default:
			return nil, common.Invalid("unknown module %q", key)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Provision creates the admin identity, the organization, the admin profile and the module
// set. A failure after the identity exists undoes what was already created.
func (s *organizationService) Provision(ctx context.Context, req *ProvisionOrganizationRequest) (*models.Organization, error) {
	org := &models.Organization{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(req.Name),
		Slug:           strings.TrimSpace(req.Slug),
		PrimaryColor:   orDefault(req.PrimaryColor, "#1e40af"),
		SecondaryColor: orDefault(req.SecondaryColor, "#f59e0b"),
		MonthlyFee:     req.MonthlyFee,
		Status:         models.OrganizationActive,
	}
	if err := validateOrganization(org); err != nil {
		return nil, err
	}
	modules, err := normalizeModuleKeys(req.Modules)
	if err != nil {
		return nil, err
	}
	if _, err := s.orgRepo.GetBySlug(ctx, org.Slug); err == nil {
		return nil, common.Invalid("slug %q is already taken", org.Slug)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	account, err := s.accounts.CreateAccount(ctx, req.AdminEmail, req.AdminPassword, req.AdminName)
	if err != nil {
		return nil, err
	}

	var undo []func(context.Context) error
	undo = append(undo, func(ctx context.Context) error { return s.accounts.DeleteAccount(ctx, account.ID) })
	rollback := func(cause error) error {
		cleanupCtx := context.WithoutCancel(ctx)
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](cleanupCtx); err != nil {
				config.LogError(s.logger, "organizations", "Provision", "compensation step failed", org.Slug, err)
			}
		}
		return cause
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, rollback(translate(err, "organization"))
	}
	undo = append(undo, func(ctx context.Context) error { return s.orgRepo.Delete(ctx, org.ID) })

	profile := &models.Profile{
		ID:             account.ID,
		OrganizationID: &org.ID,
		FullName:       account.FullName,
		Email:          account.Email,
		Role:           models.RoleAdmin,
		CanViewReal:    true,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, rollback(translate(err, "profile"))
	}
	undo = append(undo, func(ctx context.Context) error { return s.profileRepo.Delete(ctx, org.ID, profile.ID) })

	if len(modules) > 0 {
		if err := s.moduleRepo.SetEnabled(ctx, org.ID, modules); err != nil {
			return nil, rollback(translate(err, "module"))
		}
	}

	s.invalidateListing(ctx)
	s.logger.WithFields(logrus.Fields{"organization_id": org.ID, "slug": org.Slug}).Info("organization provisioned")
	return org, nil
}

func (s *organizationService) withLogoURL(org *models.Organization) *models.Organization {
	if org.LogoKey != nil {
		org.LogoURL = s.logos.PublicURL(*org.LogoKey)
	}
	return org
}

func (s *organizationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "organization")
	}
	return s.withLogoURL(org), nil
}

func (s *organizationService) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	if slug == "" {
		return nil, common.Invalid("slug is required")
	}
	org, err := s.orgRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, translate(err, "organization")
	}
	return s.withLogoURL(org), nil
}

// List serves the superadmin listing from the cache and falls back to the database.
func (s *organizationService) List(ctx context.Context) ([]*models.Organization, error) {
	cached, err := s.cache.GetOrganizations(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("read organization listing cache")
	}
	if cached != nil {
		return cached, nil
	}
	return s.loadListing(ctx)
}

// RefreshListing rebuilds the cached listing from the database.
func (s *organizationService) RefreshListing(ctx context.Context) error {
	_, err := s.loadListing(ctx)
	return err
}

func (s *organizationService) loadListing(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := s.orgRepo.List(ctx, organizationListCap, 0)
	if err != nil {
		return nil, err
	}
	if orgs == nil {
		orgs = []*models.Organization{}
	}
	for _, org := range orgs {
		s.withLogoURL(org)
	}
	if err := s.cache.SetOrganizations(ctx, orgs, organizationListTTL); err != nil {
		s.logger.WithError(err).Warn("write organization listing cache")
	}
	return orgs, nil
}

func (s *organizationService) Update(ctx context.Context, id uuid.UUID, req *UpdateOrganizationRequest) (*models.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "organization")
	}
	oldSlug := org.Slug

	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		org.Slug = strings.TrimSpace(*req.Slug)
	}
	if req.PrimaryColor != nil {
		org.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		org.SecondaryColor = *req.SecondaryColor
	}
	if req.MonthlyFee != nil {
		org.MonthlyFee = *req.MonthlyFee
	}
	if req.Status != nil {
		org.Status = *req.Status
	}
	if err := validateOrganization(org); err != nil {
		return nil, err
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, translate(err, "organization")
	}
	s.invalidateListing(ctx)
	s.invalidatePublicPage(ctx, oldSlug)
	if org.Slug != oldSlug {
		s.invalidatePublicPage(ctx, org.Slug)
	}
	return s.withLogoURL(org), nil
}

// UploadLogo stores a new logo and removes the previous object.
func (s *organizationService) UploadLogo(ctx context.Context, id uuid.UUID, filename, contentType string, r io.Reader, size int64) (*models.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "organization")
	}

	key, err := s.logos.Upload(ctx, id, filename, contentType, r, size)
	if err != nil {
		return nil, err
	}
	if err := s.orgRepo.UpdateLogo(ctx, id, key); err != nil {
		if delErr := s.logos.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.WithError(delErr).WithField("key", key).Warn("remove unreferenced logo")
		}
		return nil, translate(err, "organization")
	}

	if org.LogoKey != nil && *org.LogoKey != key {
		if err := s.logos.Delete(ctx, *org.LogoKey); err != nil {
			s.logger.WithError(err).WithField("key", *org.LogoKey).Warn("remove previous logo")
		}
	}
	org.LogoKey = &key
	s.invalidateListing(ctx)
	s.invalidatePublicPage(ctx, org.Slug)
	return s.withLogoURL(org), nil
}

func (s *organizationService) SetModules(ctx context.Context, id uuid.UUID, keys []string) error {
	keys, err := normalizeModuleKeys(keys)
	if err != nil {
		return err
	}
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return translate(err, "organization")
	}
	if err := s.moduleRepo.SetEnabled(ctx, id, keys); err != nil {
		return translate(err, "module")
	}
	if err := s.cache.InvalidateTenantCache(ctx, id); err != nil {
		s.logger.WithError(err).Warn("invalidate tenant cache")
	}
	s.invalidatePublicPage(ctx, org.Slug)
	return nil
}

func (s *organizationService) Deprovision(ctx context.Context, id uuid.UUID) deprovision.Result {
	return s.deprovisioner.Deprovision(ctx, id)
}

func (s *organizationService) invalidateListing(ctx context.Context) {
	if err := s.cache.InvalidateOrganizations(ctx); err != nil {
		s.logger.WithError(err).Warn("invalidate organization listing")
	}
}

func (s *organizationService) invalidatePublicPage(ctx context.Context, slug string) {
	if err := s.cache.InvalidatePublicOrganization(ctx, slug); err != nil {
		s.logger.WithError(err).WithField("slug", slug).Warn("invalidate public page")
	}
}
