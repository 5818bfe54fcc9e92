package services

import (
	"context"
	"errors"
	"testing"

	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleService_IsEnabled(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("cache hit", func(t *testing.T) {
		repo := &MockModuleRepository{}
		cache := &MockCacheService{}
		cache.On("GetModules", ctx, orgID).Return([]string{models.ModuleFinance}, nil)
		svc := NewModuleService(repo, cache)

		enabled, err := svc.IsEnabled(ctx, orgID, models.ModuleFinance)
		require.NoError(t, err)
		assert.True(t, enabled)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache miss fills cache", func(t *testing.T) {
		repo := &MockModuleRepository{}
		cache := &MockCacheService{}
		cache.On("GetModules", ctx, orgID).Return(nil, nil)
		repo.On("ListEnabled", ctx, orgID).Return([]*models.OrganizationModule{{Key: models.ModuleTeam}}, nil)
		cache.On("SetModules", ctx, orgID, []string{models.ModuleTeam}, moduleCacheTTL).Return(nil)
		svc := NewModuleService(repo, cache)

		enabled, err := svc.IsEnabled(ctx, orgID, models.ModuleBooking)
		require.NoError(t, err)
		assert.False(t, enabled)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache unavailable asks the database", func(t *testing.T) {
		repo := &MockModuleRepository{}
		cache := &MockCacheService{}
		cache.On("GetModules", ctx, orgID).Return(nil, errors.New("redis down"))
		repo.On("IsEnabled", ctx, orgID, models.ModuleBooking).Return(true, nil)
		svc := NewModuleService(repo, cache)

		enabled, err := svc.IsEnabled(ctx, orgID, models.ModuleBooking)
		require.NoError(t, err)
		assert.True(t, enabled)
		repo.AssertExpectations(t)
	})

	t.Run("database error", func(t *testing.T) {
		repo := &MockModuleRepository{}
		cache := &MockCacheService{}
		cache.On("GetModules", ctx, orgID).Return(nil, nil)
		repo.On("ListEnabled", ctx, orgID).Return(nil, errors.New("db down"))
		svc := NewModuleService(repo, cache)

		_, err := svc.IsEnabled(ctx, orgID, models.ModuleBooking)
		assert.EqualError(t, err, "db down")
	})
}
