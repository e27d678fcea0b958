// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Season     SeasonConfig     `mapstructure:"season"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Janitor    JanitorConfig    `mapstructure:"janitor"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

// ProviderConfig holds external provider settings.
type ProviderConfig struct {
	TMDB     ProviderEndpoint `mapstructure:"tmdb"`
	Cinemeta ProviderEndpoint `mapstructure:"cinemeta"`
}

// ProviderEndpoint holds a single provider's configuration.
type ProviderEndpoint struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Priority int           `mapstructure:"priority"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retry    RetryConfig   `mapstructure:"retry"`
	CB       CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// CatalogConfig holds catalog aggregation settings.
type CatalogConfig struct {
	// Types is the fixed set of catalog types the multi-catalog
	// fan-out fetches.
	Types        []string `mapstructure:"types"`
	DefaultLimit int      `mapstructure:"default_limit"`
}

// PaginationConfig holds the drift thresholds for the load-more
// consistency check. Upstream catalogs are live APIs; drift below these
// thresholds is logged at debug level, above them at warn. The values
// are heuristics, so they are configuration rather than constants.
type PaginationConfig struct {
	DefaultLimit     int     `mapstructure:"default_limit"`
	MaxItemDrop      int     `mapstructure:"max_item_drop"`
	MaxItemDropRatio float64 `mapstructure:"max_item_drop_ratio"`
	MaxPageDrop      int     `mapstructure:"max_page_drop"`
	MaxPageDropRatio float64 `mapstructure:"max_page_drop_ratio"`
}

// SeasonConfig holds season/episode retrieval settings.
type SeasonConfig struct {
	// Timeout bounds each season fetch. Clamped to [MinTimeout, MaxTimeout].
	Timeout    time.Duration `mapstructure:"timeout"`
	MinTimeout time.Duration `mapstructure:"min_timeout"`
	MaxTimeout time.Duration `mapstructure:"max_timeout"`
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	// Path is the bbolt database file backing the key-value store.
	// Empty disables persistence (in-memory only).
	Path            string        `mapstructure:"path"`
	CatalogTTL      time.Duration `mapstructure:"catalog_ttl"`
	DetailTTL       time.Duration `mapstructure:"detail_ttl"`
	SearchTTL       time.Duration `mapstructure:"search_ttl"`
	CatalogCapacity int           `mapstructure:"catalog_capacity"`
	DetailCapacity  int           `mapstructure:"detail_capacity"`
	SearchCapacity  int           `mapstructure:"search_capacity"`
}

// JanitorConfig holds the background cache sweep settings.
type JanitorConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	OnStartup bool          `mapstructure:"on_startup"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	// Environment variable settings
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "media-catalog-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)

	// TMDB provider defaults
	v.SetDefault("provider.tmdb.base_url", "http://localhost:8081")
	v.SetDefault("provider.tmdb.api_key", "")
	v.SetDefault("provider.tmdb.priority", 1)
	v.SetDefault("provider.tmdb.timeout", "10s")
	v.SetDefault("provider.tmdb.retry.max_attempts", 3)
	v.SetDefault("provider.tmdb.retry.wait_time", "1s")
	v.SetDefault("provider.tmdb.retry.max_wait_time", "5s")
	v.SetDefault("provider.tmdb.circuit_breaker.max_requests", 3)
	v.SetDefault("provider.tmdb.circuit_breaker.interval", "60s")
	v.SetDefault("provider.tmdb.circuit_breaker.timeout", "30s")
	v.SetDefault("provider.tmdb.circuit_breaker.failure_ratio", 0.5)

	// Cinemeta provider defaults
	v.SetDefault("provider.cinemeta.base_url", "http://localhost:8082")
	v.SetDefault("provider.cinemeta.priority", 2)
	v.SetDefault("provider.cinemeta.timeout", "10s")
	v.SetDefault("provider.cinemeta.retry.max_attempts", 3)
	v.SetDefault("provider.cinemeta.retry.wait_time", "1s")
	v.SetDefault("provider.cinemeta.retry.max_wait_time", "5s")
	v.SetDefault("provider.cinemeta.circuit_breaker.max_requests", 3)
	v.SetDefault("provider.cinemeta.circuit_breaker.interval", "60s")
	v.SetDefault("provider.cinemeta.circuit_breaker.timeout", "30s")
	v.SetDefault("provider.cinemeta.circuit_breaker.failure_ratio", 0.5)

	// Catalog defaults
	v.SetDefault("catalog.types", []string{
		"popular_movies",
		"trending_movies",
		"top_rated_movies",
		"popular_series",
		"trending_series",
	})
	v.SetDefault("catalog.default_limit", 20)

	// Pagination defaults and drift thresholds
	v.SetDefault("pagination.default_limit", 20)
	v.SetDefault("pagination.max_item_drop", 50)
	v.SetDefault("pagination.max_item_drop_ratio", 0.05)
	v.SetDefault("pagination.max_page_drop", 2)
	v.SetDefault("pagination.max_page_drop_ratio", 0.10)

	// Season defaults
	v.SetDefault("season.timeout", "15s")
	v.SetDefault("season.min_timeout", "2s")
	v.SetDefault("season.max_timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.path", "media-catalog.db")
	v.SetDefault("cache.catalog_ttl", "15m")
	v.SetDefault("cache.detail_ttl", "1h")
	v.SetDefault("cache.search_ttl", "10m")
	v.SetDefault("cache.catalog_capacity", 100)
	v.SetDefault("cache.detail_capacity", 100)
	v.SetDefault("cache.search_capacity", 100)

	// Janitor defaults
	v.SetDefault("janitor.interval", "5m")
	v.SetDefault("janitor.on_startup", true)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}
