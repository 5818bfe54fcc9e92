package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "backoffice"

type CacheService interface {
	// Superadmin organization listing
	GetOrganizations(ctx context.Context) ([]*models.Organization, error)
	SetOrganizations(ctx context.Context, orgs []*models.Organization, ttl time.Duration) error
	InvalidateOrganizations(ctx context.Context) error

	// Public booking page
	GetPublicOrganization(ctx context.Context, slug string) (*models.PublicOrganization, error)
	SetPublicOrganization(ctx context.Context, page *models.PublicOrganization, ttl time.Duration) error
	InvalidatePublicOrganization(ctx context.Context, slug string) error

	// Enabled module keys per organization
	GetModules(ctx context.Context, tenantID uuid.UUID) ([]string, error)
	SetModules(ctx context.Context, tenantID uuid.UUID, keys []string, ttl time.Duration) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient builds the shared client used by the cache and the locker.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	addr := cfg.Addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		addr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	logger := config.GetLogger()
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.WithField("addr", addr).Warnf("redis ping failed on initialization: %v", err)
	} else {
		logger.WithField("addr", addr).Debug("redis connection established")
	}
	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func organizationsKey() string {
	return keyPrefix + ":organizations"
}

func publicOrganizationKey(slug string) string {
	return fmt.Sprintf("%s:public:%s", keyPrefix, slug)
}

func tenantKey(tenantID uuid.UUID, name string) string {
	return fmt.Sprintf("%s:tenant:%s:%s", keyPrefix, tenantID.String(), name)
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
}

// getJSON decodes key into dest. A miss reports false with no error.
func (r *redisCacheService) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetOrganizations(ctx context.Context) ([]*models.Organization, error) {
	var orgs []*models.Organization
	found, err := r.getJSON(ctx, organizationsKey(), &orgs)
	if err != nil || !found {
		return nil, err
	}
	return orgs, nil
}

func (r *redisCacheService) SetOrganizations(ctx context.Context, orgs []*models.Organization, ttl time.Duration) error {
	return r.setJSON(ctx, organizationsKey(), orgs, ttl)
}

func (r *redisCacheService) InvalidateOrganizations(ctx context.Context) error {
	return r.client.Del(ctx, organizationsKey()).Err()
}

func (r *redisCacheService) GetPublicOrganization(ctx context.Context, slug string) (*models.PublicOrganization, error) {
	var page models.PublicOrganization
	found, err := r.getJSON(ctx, publicOrganizationKey(slug), &page)
	if err != nil || !found {
		return nil, err
	}
	return &page, nil
}

func (r *redisCacheService) SetPublicOrganization(ctx context.Context, page *models.PublicOrganization, ttl time.Duration) error {
	return r.setJSON(ctx, publicOrganizationKey(page.Slug), page, ttl)
}

func (r *redisCacheService) InvalidatePublicOrganization(ctx context.Context, slug string) error {
	return r.client.Del(ctx, publicOrganizationKey(slug)).Err()
}

func (r *redisCacheService) GetModules(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	var keys []string
	found, err := r.getJSON(ctx, tenantKey(tenantID, "modules"), &keys)
	if err != nil || !found {
		return nil, err
	}
	return keys, nil
}

func (r *redisCacheService) SetModules(ctx context.Context, tenantID uuid.UUID, keys []string, ttl time.Duration) error {
	if keys == nil {
		keys = []string{}
	}
	return r.setJSON(ctx, tenantKey(tenantID, "modules"), keys, ttl)
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	pattern := tenantKey(tenantID, "*")
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := rateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
