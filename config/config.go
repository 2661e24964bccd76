package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nutricalc/backend/internal/pkg/logger"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Cache     CacheConfig
	History   HistoryConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// APIConfig points at the nutrition data service
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// CacheConfig holds lookup cache configuration
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// HistoryConfig selects where recent searches are kept
type HistoryConfig struct {
	Store      string `mapstructure:"store"` // "file" or "redis"
	Path       string `mapstructure:"path"`
	RedisURL   string `mapstructure:"redis_url"`
	RedisKey   string `mapstructure:"redis_key"`
	MaxEntries int    `mapstructure:"max_entries"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
	Burst int `mapstructure:"burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file, environment and defaults.
// An empty path searches the usual locations for config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nutricalc/")
	}

	// NUTRICALC_API_BASE_URL -> api.base_url
	v.SetEnvPrefix("NUTRICALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Nutrition service defaults
	v.SetDefault("api.base_url", "http://localhost:5000")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.requests_per_second", 10)
	v.SetDefault("api.burst", 10)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// History defaults
	v.SetDefault("history.store", "file")
	v.SetDefault("history.path", "data/history.json")
	v.SetDefault("history.redis_url", "")
	v.SetDefault("history.redis_key", "nutricalc:history")
	v.SetDefault("history.max_entries", 5)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	u, err := url.Parse(config.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url must be an http(s) URL (set NUTRICALC_API_BASE_URL), got: %q", config.API.BaseURL)
	}

	if config.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got: %s", config.API.Timeout)
	}

	switch config.History.Store {
	case "file":
		if config.History.Path == "" {
			return fmt.Errorf("history path is required when history store is 'file'")
		}
	case "redis":
		if config.History.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when history store is 'redis'")
		}
	default:
		return fmt.Errorf("history store must be 'file' or 'redis', got: %s", config.History.Store)
	}

	if config.History.MaxEntries <= 0 {
		return fmt.Errorf("history max entries must be positive, got: %d", config.History.MaxEntries)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	if _, err := logger.ParseLevel(config.Log.Level); err != nil {
		return err
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
