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

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// CacheConfig provides settings for the redis-backed catalog cache.
type CacheConfig interface {
	GetRedisURL() string
	GetCatalogCacheTTL() time.Duration
	IsCacheEnabled() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// TelegramConfig provides settings for admin order notifications.
type TelegramConfig interface {
	GetTelegramBotToken() string
	GetTelegramAdminChatID() int64
	IsTelegramEnabled() bool
}

// WebAppConfig provides settings for the embedded storefront client.
type WebAppConfig interface {
	GetBackendBaseURL() string
	GetGatewayTimeout() time.Duration
	GetSearchDebounceWindow() time.Duration
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	CORSAllowAll bool
	CORSOrigins  []string

	RedisURL        string
	CatalogCacheTTL time.Duration

	AsynqQueueName   string
	AsynqConcurrency int

	TelegramBotToken    string
	TelegramAdminChatID int64

	BackendBaseURL       string
	GatewayTimeout       time.Duration
	SearchDebounceWindow time.Duration
}

// Load reads configuration from the environment, honoring a local .env file
// when present. Server processes require DATABASE_URL.
func Load() (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// LoadClient reads configuration for processes that never touch the database
// directly, such as the storefront harness and the notification worker.
func LoadClient() (*Config, error) {
	return fromEnv()
}

func fromEnv() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":5000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		CORSAllowAll: getEnvBool("CORS_ALLOW_ALL", true),
		CORSOrigins:  splitList(os.Getenv("CORS_ORIGINS")),

		RedisURL:        os.Getenv("REDIS_URL"),
		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 30*time.Second),

		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		BackendBaseURL:       getEnv("BACKEND_BASE_URL", "http://localhost:5000"),
		GatewayTimeout:       getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		SearchDebounceWindow: getEnvDuration("SEARCH_DEBOUNCE_WINDOW", 300*time.Millisecond),
	}

	if raw := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
		cfg.TelegramAdminChatID = chatID
	}

	return cfg, nil
}

// GetDatabaseURL returns the postgres connection string.
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// GetHTTPAddr returns the listen address for the API server.
func (c *Config) GetHTTPAddr() string { return c.HTTPAddr }

// GetCORSAllowAll reports whether any origin is accepted.
func (c *Config) GetCORSAllowAll() bool { return c.CORSAllowAll }

// GetCORSOrigins returns the allowed CORS origins.
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// GetRedisURL returns the redis connection string.
func (c *Config) GetRedisURL() string { return c.RedisURL }

// GetCatalogCacheTTL returns how long a cached catalog response stays valid.
func (c *Config) GetCatalogCacheTTL() time.Duration { return c.CatalogCacheTTL }

// IsCacheEnabled reports whether the catalog cache is configured.
func (c *Config) IsCacheEnabled() bool { return c.RedisURL != "" }

// GetAsynqQueueName returns the task queue name.
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }

// GetAsynqConcurrency returns the worker concurrency.
func (c *Config) GetAsynqConcurrency() int { return c.AsynqConcurrency }

// GetTelegramBotToken returns the bot token for admin notifications.
func (c *Config) GetTelegramBotToken() string { return c.TelegramBotToken }

// GetTelegramAdminChatID returns the chat that receives order notifications.
func (c *Config) GetTelegramAdminChatID() int64 { return c.TelegramAdminChatID }

// IsTelegramEnabled reports whether admin notifications are configured.
func (c *Config) IsTelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramAdminChatID != 0
}

// GetBackendBaseURL returns the shop backend base URL for the webapp gateway.
func (c *Config) GetBackendBaseURL() string { return c.BackendBaseURL }

// GetGatewayTimeout returns the per-request timeout for gateway calls.
func (c *Config) GetGatewayTimeout() time.Duration { return c.GatewayTimeout }

// GetSearchDebounceWindow returns the search quiescence window.
func (c *Config) GetSearchDebounceWindow() time.Duration { return c.SearchDebounceWindow }

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
