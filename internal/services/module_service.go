package services

import (
	"context"
	"slices"
	"time"

	"backoffice/internal/caching"
	"backoffice/internal/config"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const moduleCacheTTL = 10 * time.Minute

type ModuleService interface {
	ListCatalog(ctx context.Context) ([]*models.Module, error)
	ListEnabled(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationModule, error)
	IsEnabled(ctx context.Context, organizationID uuid.UUID, key string) (bool, error)
}

type moduleService struct {
	moduleRepo repositories.ModuleRepository
	cache      caching.CacheService
	logger     *logrus.Logger
}

func NewModuleService(moduleRepo repositories.ModuleRepository, cache caching.CacheService) ModuleService {
	return &moduleService{moduleRepo: moduleRepo, cache: cache, logger: config.GetLogger()}
}

func (s *moduleService) ListCatalog(ctx context.Context) ([]*models.Module, error) {
	return s.moduleRepo.ListCatalog(ctx)
}

func (s *moduleService) ListEnabled(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationModule, error) {
	enabled, err := s.moduleRepo.ListEnabled(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if enabled == nil {
		enabled = []*models.OrganizationModule{}
	}
	return enabled, nil
}

// IsEnabled answers from the per-organization module cache and fills it on a miss. With the
// cache unavailable it asks the database directly.
func (s *moduleService) IsEnabled(ctx context.Context, organizationID uuid.UUID, key string) (bool, error) {
	keys, err := s.cache.GetModules(ctx, organizationID)
	if err != nil {
		s.logger.WithError(err).Warn("read module cache")
		return s.moduleRepo.IsEnabled(ctx, organizationID, key)
	}
	if keys == nil {
		enabled, err := s.moduleRepo.ListEnabled(ctx, organizationID)
		if err != nil {
			return false, err
		}
		keys = make([]string, 0, len(enabled))
		for _, m := range enabled {
			keys = append(keys, m.Key)
		}
		if err := s.cache.SetModules(ctx, organizationID, keys, moduleCacheTTL); err != nil {
			s.logger.WithError(err).Warn("write module cache")
		}
	}
	return slices.Contains(keys, key), nil
}
