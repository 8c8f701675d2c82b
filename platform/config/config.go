// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetJWTRefreshSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq background scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// HighLevelConfig provides settings for the external CRM platform integration.
type HighLevelConfig interface {
	GetHighLevelBaseURL() string
	GetHighLevelClientID() string
	GetHighLevelClientSecret() string
	GetHighLevelRedirectURI() string
	GetHighLevelAppID() string
	GetHighLevelRateLimit() float64
	IsHighLevelEnabled() bool
}

// SyncConfig provides settings for the lead ingestion pipeline.
type SyncConfig interface {
	GetSyncInterval() time.Duration
	GetSyncPageSize() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	JWTAccessSecret       string
	JWTRefreshSecret      string
	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	HighLevelBaseURL      string
	HighLevelClientID     string
	HighLevelClientSecret string
	HighLevelRedirectURI  string
	HighLevelAppID        string
	HighLevelRateLimit    float64
	SyncInterval          time.Duration
	SyncPageSize          int
}

// Load reads configuration from environment variables (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
		AccessTokenTTL:        mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		RefreshTokenTTL:       mustDuration(getEnv("JWT_REFRESH_TTL", "720h")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "10"), 10),
		HighLevelBaseURL:      getEnv("HIGHLEVEL_BASE_URL", "https://services.leadconnectorhq.com"),
		HighLevelClientID:     getEnv("HIGHLEVEL_CLIENT_ID", ""),
		HighLevelClientSecret: getEnv("HIGHLEVEL_CLIENT_SECRET", ""),
		HighLevelRedirectURI:  getEnv("HIGHLEVEL_REDIRECT_URI", ""),
		HighLevelAppID:        getEnv("HIGHLEVEL_APP_ID", ""),
		HighLevelRateLimit:    mustFloat(getEnv("HIGHLEVEL_RATE_LIMIT", "10"), 10),
		SyncInterval:          mustDuration(getEnv("SYNC_INTERVAL", "15m")),
		SyncPageSize:          mustInt(getEnv("SYNC_PAGE_SIZE", "100"), 100),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.HighLevelClientID != "" && cfg.HighLevelClientSecret == "" {
		return nil, fmt.Errorf("HIGHLEVEL_CLIENT_SECRET is required when HIGHLEVEL_CLIENT_ID is set")
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetJWTRefreshSecret() string       { return c.JWTRefreshSecret }
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetHighLevelBaseURL() string      { return c.HighLevelBaseURL }
func (c *Config) GetHighLevelClientID() string     { return c.HighLevelClientID }
func (c *Config) GetHighLevelClientSecret() string { return c.HighLevelClientSecret }
func (c *Config) GetHighLevelRedirectURI() string  { return c.HighLevelRedirectURI }
func (c *Config) GetHighLevelAppID() string        { return c.HighLevelAppID }
func (c *Config) GetHighLevelRateLimit() float64   { return c.HighLevelRateLimit }

// IsHighLevelEnabled reports whether the CRM integration has credentials configured.
func (c *Config) IsHighLevelEnabled() bool {
	return c.HighLevelClientID != "" && c.HighLevelClientSecret != ""
}

func (c *Config) GetSyncInterval() time.Duration { return c.SyncInterval }
func (c *Config) GetSyncPageSize() int           { return c.SyncPageSize }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func mustFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
