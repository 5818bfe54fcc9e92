package services

import (
	"context"
	"io"
	"time"

	"backoffice/internal/deprovision"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockOrganizationRepository) UpdateLogo(ctx context.Context, id uuid.UUID, logoKey string) error {
	return m.Called(ctx, id, logoKey).Error(0)
}

func (m *MockOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrganizationRepository) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return m.Called(ctx, organizationID, id).Error(0)
}

func (m *MockProfileRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*models.Profile, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) ListIDsByOrganization(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockProfileRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockModuleRepository struct {
	mock.Mock
}

func (m *MockModuleRepository) ListCatalog(ctx context.Context) ([]*models.Module, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Module), args.Error(1)
}

func (m *MockModuleRepository) ListEnabled(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationModule, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrganizationModule), args.Error(1)
}

func (m *MockModuleRepository) IsEnabled(ctx context.Context, organizationID uuid.UUID, key string) (bool, error) {
	args := m.Called(ctx, organizationID, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockModuleRepository) SetEnabled(ctx context.Context, organizationID uuid.UUID, keys []string) error {
	return m.Called(ctx, organizationID, keys).Error(0)
}

func (m *MockModuleRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return m.Called(ctx, organizationID, id).Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, organizationID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return m.Called(ctx, organizationID, id).Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, organizationID uuid.UUID) ([]*models.Category, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPayeeRepository struct {
	mock.Mock
}

func (m *MockPayeeRepository) Create(ctx context.Context, payee *models.Payee) error {
	return m.Called(ctx, payee).Error(0)
}

func (m *MockPayeeRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Payee, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payee), args.Error(1)
}

func (m *MockPayeeRepository) Update(ctx context.Context, payee *models.Payee) error {
	return m.Called(ctx, payee).Error(0)
}

func (m *MockPayeeRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return m.Called(ctx, organizationID, id).Error(0)
}

func (m *MockPayeeRepository) List(ctx context.Context, organizationID uuid.UUID) ([]*models.Payee, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payee), args.Error(1)
}

func (m *MockPayeeRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, service *models.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Service, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockServiceRepository) Update(ctx context.Context, service *models.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return m.Called(ctx, organizationID, id).Error(0)
}

func (m *MockServiceRepository) List(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]*models.Service, error) {
	args := m.Called(ctx, organizationID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}

func (m *MockServiceRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockWorkingHoursRepository struct {
	mock.Mock
}

func (m *MockWorkingHoursRepository) List(ctx context.Context, organizationID uuid.UUID) ([]*models.WorkingHours, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WorkingHours), args.Error(1)
}

func (m *MockWorkingHoursRepository) Replace(ctx context.Context, organizationID uuid.UUID, hours []*models.WorkingHours) error {
	return m.Called(ctx, organizationID, hours).Error(0)
}

func (m *MockWorkingHoursRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Appointment, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]*models.Appointment, error) {
	args := m.Called(ctx, organizationID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, organizationID, id uuid.UUID, status string) error {
	return m.Called(ctx, organizationID, id, status).Error(0)
}

func (m *MockAppointmentRepository) BusySlots(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]models.BusyInterval, error) {
	args := m.Called(ctx, organizationID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BusyInterval), args.Error(1)
}

func (m *MockAppointmentRepository) CancelExpiredPending(ctx context.Context, organizationID uuid.UUID, before time.Time) (int64, error) {
	args := m.Called(ctx, organizationID, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAppointmentRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetOrganizations(ctx context.Context) ([]*models.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Organization), args.Error(1)
}

func (m *MockCacheService) SetOrganizations(ctx context.Context, orgs []*models.Organization, ttl time.Duration) error {
	return m.Called(ctx, orgs, ttl).Error(0)
}

func (m *MockCacheService) InvalidateOrganizations(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheService) GetPublicOrganization(ctx context.Context, slug string) (*models.PublicOrganization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicOrganization), args.Error(1)
}

func (m *MockCacheService) SetPublicOrganization(ctx context.Context, page *models.PublicOrganization, ttl time.Duration) error {
	return m.Called(ctx, page, ttl).Error(0)
}

func (m *MockCacheService) InvalidatePublicOrganization(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func (m *MockCacheService) GetModules(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCacheService) SetModules(ctx context.Context, tenantID uuid.UUID, keys []string, ttl time.Duration) error {
	return m.Called(ctx, tenantID, keys, ttl).Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	return m.Called(ctx, tenantID).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockLogoStore struct {
	mock.Mock
}

func (m *MockLogoStore) Upload(ctx context.Context, organizationID uuid.UUID, filename, contentType string, r io.Reader, size int64) (string, error) {
	args := m.Called(ctx, organizationID, filename, contentType, r, size)
	return args.String(0), args.Error(1)
}

func (m *MockLogoStore) PublicURL(key string) string {
	return m.Called(key).String(0)
}

func (m *MockLogoStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockLogoStore) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockLogoStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockAccountManager struct {
	mock.Mock
}

func (m *MockAccountManager) CreateAccount(ctx context.Context, email, password, fullName string) (*models.Account, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountManager) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockDeprovisioner struct {
	mock.Mock
}

func (m *MockDeprovisioner) Deprovision(ctx context.Context, organizationID uuid.UUID) deprovision.Result {
	return m.Called(ctx, organizationID).Get(0).(deprovision.Result)
}

type MockModuleService struct {
	mock.Mock
}

func (m *MockModuleService) ListCatalog(ctx context.Context) ([]*models.Module, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Module), args.Error(1)
}

func (m *MockModuleService) ListEnabled(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationModule, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrganizationModule), args.Error(1)
}

func (m *MockModuleService) IsEnabled(ctx context.Context, organizationID uuid.UUID, key string) (bool, error) {
	args := m.Called(ctx, organizationID, key)
	return args.Bool(0), args.Error(1)
}

type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	args := m.Called(ctx, key, ttl)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		m.released++
		return nil
	}, nil
}
