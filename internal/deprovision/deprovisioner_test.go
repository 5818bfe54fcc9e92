package deprovision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backoffice/internal/caching"
	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// callLog records the order in which tables were emptied.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

type MockTenantDeleter struct {
	mock.Mock
	table string
	log   *callLog
}

func (m *MockTenantDeleter) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	m.log.add(m.table)
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockMemberStore struct {
	MockTenantDeleter
}

func (m *MockMemberStore) ListIDsByOrganization(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockOrganizationStore struct {
	mock.Mock
	log *callLog
}

func (m *MockOrganizationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.log.add("organizations")
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockIdentityDeleter struct {
	mock.Mock
}

func (m *MockIdentityDeleter) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLogoRemover struct {
	mock.Mock
}

func (m *MockLogoRemover) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) InvalidateOrganizations(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheInvalidator) InvalidatePublicOrganization(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func (m *MockCacheInvalidator) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	return m.Called(ctx, tenantID).Error(0)
}

type MockLocker struct {
	mock.Mock
	released bool
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	args := m.Called(ctx, key, ttl)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		m.released = true
		return nil
	}, nil
}

type DeprovisionerTestSuite struct {
	suite.Suite
	log        *callLog
	orgs       *MockOrganizationStore
	profiles   *MockMemberStore
	deleters   map[string]*MockTenantDeleter
	identities *MockIdentityDeleter
	logos      *MockLogoRemover
	cache      *MockCacheInvalidator
	locker     *MockLocker
	d          *Deprovisioner
	org        *models.Organization
	members    []uuid.UUID
	ctx        context.Context
}

func (suite *DeprovisionerTestSuite) SetupTest() {
	suite.log = &callLog{}
	suite.orgs = &MockOrganizationStore{log: suite.log}
	suite.profiles = &MockMemberStore{MockTenantDeleter{table: "profiles", log: suite.log}}
	suite.deleters = map[string]*MockTenantDeleter{}
	for _, table := range []string{"transactions", "categories", "payees", "appointments", "services", "working_hours", "organization_modules"} {
		suite.deleters[table] = &MockTenantDeleter{table: table, log: suite.log}
	}
	suite.identities = new(MockIdentityDeleter)
	suite.logos = new(MockLogoRemover)
	suite.cache = new(MockCacheInvalidator)
	suite.locker = new(MockLocker)

	suite.d = New(Stores{
		Organizations: suite.orgs,
		Profiles:      suite.profiles,
		Transactions:  suite.deleters["transactions"],
		Categories:    suite.deleters["categories"],
		Payees:        suite.deleters["payees"],
		Appointments:  suite.deleters["appointments"],
		Services:      suite.deleters["services"],
		WorkingHours:  suite.deleters["working_hours"],
		Modules:       suite.deleters["organization_modules"],
	}, suite.identities, suite.logos, suite.cache, suite.locker)

	logoKey := "logos/org/logo.png"
	suite.org = &models.Organization{ID: uuid.New(), Name: "Estudio Sur", Slug: "estudio-sur", LogoKey: &logoKey}
	suite.members = []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	suite.ctx = context.Background()
}

func TestDeprovisionerTestSuite(t *testing.T) {
	suite.Run(t, new(DeprovisionerTestSuite))
}

func (suite *DeprovisionerTestSuite) expectLock() {
	suite.locker.On("Acquire", mock.Anything, "deprovision:"+suite.org.ID.String(), lockTTL).Return(nil)
}

func (suite *DeprovisionerTestSuite) expectLookups() {
	suite.orgs.On("GetByID", mock.Anything, suite.org.ID).Return(suite.org, nil)
	suite.profiles.On("ListIDsByOrganization", mock.Anything, suite.org.ID).Return(suite.members, nil)
}

func (suite *DeprovisionerTestSuite) expectAllDeletes() {
	for _, d := range suite.deleters {
		d.On("DeleteByOrganization", mock.Anything, suite.org.ID).Return(int64(2), nil)
	}
	suite.profiles.On("DeleteByOrganization", mock.Anything, suite.org.ID).Return(int64(len(suite.members)), nil)
	suite.orgs.On("Delete", mock.Anything, suite.org.ID).Return(nil)
}

func (suite *DeprovisionerTestSuite) expectCacheInvalidation() {
	suite.cache.On("InvalidateOrganizations", mock.Anything).Return(nil)
	suite.cache.On("InvalidatePublicOrganization", mock.Anything, suite.org.Slug).Return(nil)
	suite.cache.On("InvalidateTenantCache", mock.Anything, suite.org.ID).Return(nil)
}

func (suite *DeprovisionerTestSuite) TestDeprovision_Success() {
	suite.expectLock()
	suite.expectLookups()
	suite.expectAllDeletes()
	suite.identities.On("DeleteAccount", mock.Anything, mock.Anything).Return(nil)
	suite.logos.On("Delete", mock.Anything, *suite.org.LogoKey).Return(nil)
	suite.expectCacheInvalidation()

	result := suite.d.Deprovision(suite.ctx, suite.org.ID)

	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), `organization "Estudio Sur" deleted`, result.Message)
	assert.Empty(suite.T(), result.OrphanedIdentities)
	assert.Len(suite.T(), result.Steps, 9)
	assert.Equal(suite.T(), []string{
		"transactions", "categories", "payees", "appointments", "services",
		"working_hours", "organization_modules", "profiles", "organizations",
	}, suite.log.calls)
	suite.identities.AssertNumberOfCalls(suite.T(), "DeleteAccount", len(suite.members))
	suite.cache.AssertExpectations(suite.T())
	suite.logos.AssertExpectations(suite.T())
	assert.True(suite.T(), suite.locker.released)
}

func (suite *DeprovisionerTestSuite) TestDeprovision_StepFailureKeepsOrganization() {
	suite.expectLock()
	suite.expectLookups()
	suite.deleters["transactions"].On("DeleteByOrganization", mock.Anything, suite.org.ID).Return(int64(12), nil)
	suite.deleters["categories"].On("DeleteByOrganization", mock.Anything, suite.org.ID).
		Return(int64(0), errors.New("permission denied for table categories"))

	result := suite.d.Deprovision(suite.ctx, suite.org.ID)

	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), "failed to delete categories: permission denied for table categories", result.Message)
	require.Len(suite.T(), result.Steps, 2)
	assert.Equal(suite.T(), int64(12), result.Steps[0].Deleted)
	assert.True(suite.T(), result.Steps[1].Failed())
	assert.Equal(suite.T(), []string{"transactions", "categories"}, suite.log.calls)
	suite.orgs.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
	suite.identities.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything)
	suite.cache.AssertNotCalled(suite.T(), "InvalidateOrganizations", mock.Anything)
	assert.True(suite.T(), suite.locker.released)
}

func (suite *DeprovisionerTestSuite) TestDeprovision_OrphanedIdentitiesAreReported() {
	suite.expectLock()
	suite.expectLookups()
	suite.expectAllDeletes()
	failing := suite.members[1]
	suite.identities.On("DeleteAccount", mock.Anything, failing).Return(errors.New("identity backend unavailable"))
	suite.identities.On("DeleteAccount", mock.Anything, mock.Anything).Return(nil)
	suite.logos.On("Delete", mock.Anything, mock.Anything).Return(errors.New("bucket gone"))
	suite.expectCacheInvalidation()

	result := suite.d.Deprovision(suite.ctx, suite.org.ID)

	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), []uuid.UUID{failing}, result.OrphanedIdentities)
	assert.Contains(suite.T(), result.Message, "1 identity account(s) could not be deleted")
}

func (suite *DeprovisionerTestSuite) TestDeprovision_MemberLookupFailureDeletesNothing() {
	suite.expectLock()
	suite.orgs.On("GetByID", mock.Anything, suite.org.ID).Return(suite.org, nil)
	suite.profiles.On("ListIDsByOrganization", mock.Anything, suite.org.ID).Return(nil, errors.New("timeout"))

	result := suite.d.Deprovision(suite.ctx, suite.org.ID)

	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), "failed to look up members: timeout", result.Message)
	assert.Empty(suite.T(), suite.log.calls)
}

func (suite *DeprovisionerTestSuite) TestDeprovision_LockHeld() {
	suite.locker.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(caching.ErrLockNotObtained)

	result := suite.d.Deprovision(suite.ctx, suite.org.ID)

	assert.False(suite.T(), result.Success)
	assert.Equal(suite.T(), "deprovisioning already in progress", result.Message)
	suite.orgs.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *DeprovisionerTestSuite) TestDeprovision_NoLogoSkipsStorage() {
	suite.org.LogoKey = nil
	suite.members = nil
	suite.expectLock()
	suite.expectLookups()
	suite.expectAllDeletes()
	suite.expectCacheInvalidation()

	result := suite.d.Deprovision(suite.ctx, suite.org.ID)

	assert.True(suite.T(), result.Success)
	suite.logos.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
	suite.identities.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything)
}

func (suite *DeprovisionerTestSuite) TestDeprovision_CallerCancellationDoesNotOrphanIdentities() {
	ctx, cancel := context.WithCancel(suite.ctx)
	defer cancel()

	suite.expectLock()
	suite.expectLookups()
	for _, d := range suite.deleters {
		d.On("DeleteByOrganization", mock.Anything, suite.org.ID).Return(int64(1), nil)
	}
	suite.profiles.On("DeleteByOrganization", mock.Anything, suite.org.ID).Return(int64(len(suite.members)), nil)
	suite.orgs.On("Delete", mock.Anything, suite.org.ID).Run(func(mock.Arguments) { cancel() }).Return(nil)

	live := mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil })
	dead := mock.MatchedBy(func(c context.Context) bool { return c.Err() != nil })
	suite.identities.On("DeleteAccount", live, mock.Anything).Return(nil)
	suite.identities.On("DeleteAccount", dead, mock.Anything).Return(context.Canceled)
	suite.logos.On("Delete", live, *suite.org.LogoKey).Return(nil)
	suite.cache.On("InvalidateOrganizations", live).Return(nil)
	suite.cache.On("InvalidatePublicOrganization", live, suite.org.Slug).Return(nil)
	suite.cache.On("InvalidateTenantCache", live, suite.org.ID).Return(nil)

	result := suite.d.Deprovision(ctx, suite.org.ID)

	assert.True(suite.T(), result.Success)
	assert.Empty(suite.T(), result.OrphanedIdentities)
	assert.Equal(suite.T(), `organization "Estudio Sur" deleted`, result.Message)
	suite.identities.AssertNumberOfCalls(suite.T(), "DeleteAccount", len(suite.members))
	suite.logos.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func (suite *DeprovisionerTestSuite) TestDeprovision_RefusalsAreClassified() {
	suite.locker.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(caching.ErrLockNotObtained).Once()

	held := suite.d.Deprovision(suite.ctx, suite.org.ID)

	assert.False(suite.T(), held.Success)
	assert.Equal(suite.T(), "deprovisioning already in progress", held.Message)
	assert.ErrorIs(suite.T(), held.Err, ErrInProgress)
	assert.ErrorIs(suite.T(), held.Err, common.ErrConflict)

	suite.expectLock()
	suite.orgs.On("GetByID", mock.Anything, suite.org.ID).Return(nil, repositories.ErrNotFound)

	missing := suite.d.Deprovision(suite.ctx, suite.org.ID)

	assert.False(suite.T(), missing.Success)
	assert.ErrorIs(suite.T(), missing.Err, common.ErrNotFound)
	suite.profiles.AssertNotCalled(suite.T(), "ListIDsByOrganization", mock.Anything, mock.Anything)
	assert.Empty(suite.T(), suite.log.calls)
}
