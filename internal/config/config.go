// Package config provides configuration management for the application
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMeetingsURL is the collection endpoint used when none is configured
const DefaultMeetingsURL = "http://localhost:8000/api/meetings/"

// Config is the top-level application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Source SourceConfig `yaml:"source"`
	Redis  RedisConfig  `yaml:"redis"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string `yaml:"port"`
	// SubscribeTimeout unmounts a view whose page never opens its event stream
	SubscribeTimeout time.Duration `yaml:"subscribe_timeout"`
}

// SourceConfig describes the meetings collection endpoint
type SourceConfig struct {
	URL string `yaml:"url"`
	// Timeout bounds a single collection request (0 means no timeout)
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig holds Redis/Valkey configuration for the view store
type RedisConfig struct {
	Enabled bool `yaml:"enabled"`
	// URI is prioritized if provided, otherwise individual connection parameters are used
	URI       string `yaml:"uri"`
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	// ViewTTL expires abandoned views (0 means no expiration)
	ViewTTL time.Duration `yaml:"view_ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	// File enables rotating file output in addition to stdout
	File string `yaml:"file"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             "3000",
			SubscribeTimeout: time.Minute,
		},
		Source: SourceConfig{
			URL:     DefaultMeetingsURL,
			Timeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:   false,
			Host:      "localhost",
			Port:      "6379",
			KeyPrefix: "meetingsview:",
			ViewTTL:   time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence (environment wins)
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides values for every environment variable that is set
func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.SubscribeTimeout = getEnvDuration("SSE_SUBSCRIBE_TIMEOUT", cfg.Server.SubscribeTimeout)

	cfg.Source.URL = getEnv("MEETINGS_URL", cfg.Source.URL)
	cfg.Source.Timeout = getEnvDuration("MEETINGS_TIMEOUT", cfg.Source.Timeout)

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.URI = getEnv("REDIS_URI", cfg.Redis.URI)
	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Username = getEnv("REDIS_USERNAME", cfg.Redis.Username)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix)
	cfg.Redis.ViewTTL = getEnvDuration("REDIS_VIEW_TTL", cfg.Redis.ViewTTL)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port must be set")
	}

	u, err := url.Parse(c.Source.URL)
	if err != nil {
		return fmt.Errorf("invalid meetings URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid meetings URL %q: scheme must be http or https", c.Source.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid meetings URL %q: missing host", c.Source.URL)
	}

	if c.Server.SubscribeTimeout <= 0 {
		return errors.New("subscribe timeout must be positive")
	}
	if c.Source.Timeout < 0 {
		return errors.New("meetings timeout cannot be negative")
	}
	if c.Redis.ViewTTL < 0 {
		return errors.New("redis view TTL cannot be negative")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool retrieves a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

// getEnvDuration accepts Go duration syntax ("30s", "2h")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
