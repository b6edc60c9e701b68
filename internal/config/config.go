// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Server          ServerConfig
	Redis           RedisConfig
	ExchangeRateAPI ExchangeRateAPIConfig `mapstructure:"exchangerate_api"`
	NBP             NBPConfig             `mapstructure:"nbp"`
	Resolver        ResolverConfig
	Worker          WorkerConfig
	Cache           CacheConfig
	Export          ExportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for Asynq task queue (required).
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for rate cache and export store (required).
}

// ExchangeRateAPIConfig holds settings for the live rate provider
// (exchangerate-api.com v6). An empty APIKey switches the service to the
// built-in static fallback table.
type ExchangeRateAPIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// NBPConfig holds settings for the NBP historical rate provider.
type NBPConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	Timeout       int    `mapstructure:"timeout_sec"`
	RetryAttempts int    `mapstructure:"retry_attempts"`
	RetryWaitSec  int    `mapstructure:"retry_wait_sec"`
}

// ResolverConfig holds settings for historical rate resolution.
type ResolverConfig struct {
	// MaxFallbackDays bounds the backward walk over non-trading days.
	MaxFallbackDays int `mapstructure:"max_fallback_days"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	MaxRetry         int `mapstructure:"max_retry"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	// LiveTTLSec applies to live rate and symbol lookups. Historical
	// mid-rates are cached without expiry (published rates never change).
	LiveTTLSec int `mapstructure:"live_ttl_sec"`
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	// TTLSec is how long an export job record and its artifact are kept.
	TTLSec int `mapstructure:"ttl_sec"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Config search paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("CONVSVC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.serve_swagger", true)
	viper.SetDefault("server.serve_asynqmon", true)
	viper.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	viper.SetDefault("redis.cache_addr", "redis_cache:6381")
	viper.SetDefault("exchangerate_api.base_url", "https://v6.exchangerate-api.com/v6")
	viper.SetDefault("exchangerate_api.api_key", "")
	viper.SetDefault("exchangerate_api.timeout_sec", 5)
	viper.SetDefault("nbp.base_url", "https://api.nbp.pl/api/exchangerates")
	viper.SetDefault("nbp.timeout_sec", 5)
	viper.SetDefault("nbp.retry_attempts", 2)
	viper.SetDefault("nbp.retry_wait_sec", 2)
	viper.SetDefault("resolver.max_fallback_days", 30)
	viper.SetDefault("worker.concurrency", 1)
	viper.SetDefault("worker.max_retry", 3)
	viper.SetDefault("worker.timeout_sec", 120)
	viper.SetDefault("worker.check_interval_sec", 5)
	viper.SetDefault("cache.live_ttl_sec", 3600)
	viper.SetDefault("export.ttl_sec", 86400)

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set CONVSVC_REDIS_ASYNQ_ADDR)"))
	}
	if c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set CONVSVC_REDIS_CACHE_ADDR)"))
	}

	if c.ExchangeRateAPI.BaseURL == "" {
		errs = append(errs, fmt.Errorf("exchangerate_api.base_url is required"))
	}
	if c.ExchangeRateAPI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("exchangerate_api.timeout_sec must be positive, got %d", c.ExchangeRateAPI.Timeout))
	}

	if c.NBP.BaseURL == "" {
		errs = append(errs, fmt.Errorf("nbp.base_url is required"))
	}
	if c.NBP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("nbp.timeout_sec must be positive, got %d", c.NBP.Timeout))
	}
	if c.NBP.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("nbp.retry_attempts must be non-negative, got %d", c.NBP.RetryAttempts))
	}

	if c.Resolver.MaxFallbackDays <= 0 {
		errs = append(errs, fmt.Errorf("resolver.max_fallback_days must be positive, got %d", c.Resolver.MaxFallbackDays))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.MaxRetry < 0 {
		errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}
	if c.Worker.CheckIntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
	}

	if c.Cache.LiveTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.live_ttl_sec must be positive, got %d", c.Cache.LiveTTLSec))
	}
	if c.Export.TTLSec <= 0 {
		errs = append(errs, fmt.Errorf("export.ttl_sec must be positive, got %d", c.Export.TTLSec))
	}

	return errors.Join(errs...)
}
