// Package config handles application configuration. Values come from
// built-in defaults, then an optional YAML file, then environment
// variables. It provides a centralized Config struct used across the
// application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// defaultDBPassword is refused in production.
const defaultDBPassword = "changeme"

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Env  string `yaml:"env"` // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	// Valkey (Redis-compatible response cache). An empty host disables it.
	ValkeyHost     string `yaml:"valkey_host"`
	ValkeyPort     string `yaml:"valkey_port"`
	ValkeyPassword string `yaml:"valkey_password"`
	ValkeyDB       int    `yaml:"valkey_db"`

	// CacheTTL bounds how long a cached response lives between writes.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// WriteToken is the bearer token for post writes. Empty disables writes.
	WriteToken string `yaml:"write_token"`

	// SearchRateLimit is the number of search requests allowed per client
	// IP per minute. Zero disables the limit.
	SearchRateLimit int `yaml:"search_rate_limit"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Host: "0.0.0.0",
		Port: "8080",
		Env:  EnvDevelopment,

		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "folio",
		DBPassword: defaultDBPassword,
		DBName:     "folio",

		ValkeyHost: "localhost",
		ValkeyPort: "6379",

		CacheTTL:        5 * time.Minute,
		SearchRateLimit: 60,
	}
}

// Load builds the configuration. path names an optional YAML file whose
// ${VAR} references are expanded from the environment; an empty path skips
// it. Environment variables override file values. Returns an error if
// critical values are missing in production mode.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Env == EnvProduction && cfg.DBPassword == defaultDBPassword {
		return nil, errors.New("POSTGRES_PASSWORD must be set in production")
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Host = envOrDefault("APP_HOST", c.Host)
	c.Port = envOrDefault("APP_PORT", c.Port)
	c.Env = envOrDefault("APP_ENV", c.Env)

	c.DBHost = envOrDefault("POSTGRES_HOST", c.DBHost)
	c.DBPort = envOrDefault("POSTGRES_PORT", c.DBPort)
	c.DBUser = envOrDefault("POSTGRES_USER", c.DBUser)
	c.DBPassword = envOrDefault("POSTGRES_PASSWORD", c.DBPassword)
	c.DBName = envOrDefault("POSTGRES_DB", c.DBName)

	c.ValkeyHost = envOrDefault("VALKEY_HOST", c.ValkeyHost)
	c.ValkeyPort = envOrDefault("VALKEY_PORT", c.ValkeyPort)
	c.ValkeyPassword = envOrDefault("VALKEY_PASSWORD", c.ValkeyPassword)

	c.WriteToken = envOrDefault("FOLIO_WRITE_TOKEN", c.WriteToken)

	var err error
	if c.ValkeyDB, err = envInt("VALKEY_DB", c.ValkeyDB); err != nil {
		return err
	}
	if c.SearchRateLimit, err = envInt("SEARCH_RATE_LIMIT", c.SearchRateLimit); err != nil {
		return err
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.CacheTTL = ttl
	}
	return nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Env, validation.Required, validation.In(EnvDevelopment, EnvProduction, EnvTesting)),
		validation.Field(&c.DBHost, validation.Required),
		validation.Field(&c.DBPort, validation.Required, is.Port),
		validation.Field(&c.DBUser, validation.Required),
		validation.Field(&c.DBName, validation.Required),
		validation.Field(&c.ValkeyPort, validation.When(c.ValkeyHost != "", validation.Required, is.Port)),
		validation.Field(&c.ValkeyDB, validation.Min(0), validation.Max(15)),
		validation.Field(&c.CacheTTL, validation.Min(time.Second)),
		validation.Field(&c.SearchRateLimit, validation.Min(0)),
	)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == EnvDevelopment
}

// CacheEnabled reports whether a Valkey host is configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
