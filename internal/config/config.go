package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Identity  IdentityConfig
	Scheduler SchedulerConfig
	Booking   BookingConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
}

type IdentityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
	// JWKSURL switches token verification to the managed identity backend's keys.
	JWKSURL string
}

type SchedulerConfig struct {
	Enabled               bool
	AppointmentSweepEvery time.Duration
	CacheRefreshEvery     time.Duration
	Concurrency           int
}

type BookingConfig struct {
	SlotMinutes int
	Timezone    string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the process environment, after merging an optional .env file.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	maxConns, err := getIntEnv("DATABASE_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getDurationEnv("IDENTITY_TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	sweepEvery, err := getDurationEnv("SCHEDULER_APPOINTMENT_SWEEP", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	refreshEvery, err := getDurationEnv("SCHEDULER_CACHE_REFRESH", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	concurrency, err := getIntEnv("SCHEDULER_CONCURRENCY", 5)
	if err != nil {
		return nil, err
	}
	slotMinutes, err := getIntEnv("BOOKING_SLOT_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	var origins []string
	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Host:           getEnv("HOST", "0.0.0.0"),
			AllowedOrigins: origins,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: int32(maxConns),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:        getBoolEnv("MINIO_USE_SSL", false),
			Bucket:        getEnv("MINIO_BUCKET", "organization-logos"),
			PublicBaseURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		Identity: IdentityConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  tokenTTL,
			Issuer:    getEnv("IDENTITY_ISSUER", "backoffice"),
			JWKSURL:   getEnv("IDENTITY_JWKS_URL", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:               getBoolEnv("SCHEDULER_ENABLED", true),
			AppointmentSweepEvery: sweepEvery,
			CacheRefreshEvery:     refreshEvery,
			Concurrency:           concurrency,
		},
		Booking: BookingConfig{
			SlotMinutes: slotMinutes,
			Timezone:    getEnv("BOOKING_TIMEZONE", "America/Argentina/Buenos_Aires"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Identity.JWTSecret == "" && c.Identity.JWKSURL == "" {
		return fmt.Errorf("JWT_SECRET is required when IDENTITY_JWKS_URL is not set")
	}
	if c.Booking.SlotMinutes <= 0 {
		return fmt.Errorf("BOOKING_SLOT_MINUTES must be positive")
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid BOOKING_TIMEZONE: %w", err)
	}
	if c.Scheduler.Concurrency <= 0 {
		c.Scheduler.Concurrency = 1
	}
	return nil
}

// Location returns the booking timezone. Load has already validated it.
func (c BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
