package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port                   int      `yaml:"port"`
	Timezone               string   `yaml:"timezone"`
	PageSize               int      `yaml:"page_size"`
	MaxPageSize            int      `yaml:"max_page_size"`
	CORSAllowedOrigins     []string `yaml:"cors_allowed_origins"`
	GuestRateLimitPerSec   float64  `yaml:"guest_rate_limit_per_sec"`
	GuestRateBurst         int      `yaml:"guest_rate_burst"`
	TrustedProxies         []string `yaml:"trusted_proxies"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`

	Location        *time.Location `yaml:"-"`
	ShutdownTimeout time.Duration  `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"` // silent, error, warn, info
}

// AuthConfig holds the bearer token settings.
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	Issuer        string `yaml:"issuer"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`

	TokenTTL time.Duration `yaml:"-"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	minSecretLength = 32
)

// Load reads the configuration from the given path, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SILANT_DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("SILANT_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("SILANT_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("SILANT_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SILANT_SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() error {
	if c.Server.Port <= 0 {
		c.Server.Port = 8000
	}
	if c.Server.Timezone == "" {
		c.Server.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return fmt.Errorf("server.timezone %q: %w", c.Server.Timezone, err)
	}
	c.Server.Location = loc

	if c.Server.PageSize <= 0 {
		c.Server.PageSize = 10
	}
	if c.Server.MaxPageSize < c.Server.PageSize {
		c.Server.MaxPageSize = 100
		if c.Server.MaxPageSize < c.Server.PageSize {
			c.Server.MaxPageSize = c.Server.PageSize
		}
	}
	if c.Server.GuestRateLimitPerSec <= 0 {
		c.Server.GuestRateLimitPerSec = 5
	}
	if c.Server.GuestRateBurst <= 0 {
		c.Server.GuestRateBurst = 10
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = 5
	}
	c.Server.ShutdownTimeout = time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.ConnMaxLifetimeMinutes <= 0 {
		c.Database.ConnMaxLifetimeMinutes = 5
	}
	if c.Database.LogLevel == "" {
		c.Database.LogLevel = "warn"
	}

	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "silant"
	}
	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = 24
	}
	c.Auth.TokenTTL = time.Duration(c.Auth.TokenTTLHours) * time.Hour

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	return nil
}

// Validate reports configuration that cannot be used to start the service.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: must be %q or %q", c.Database.Driver, DriverPostgres, DriverSQLite))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if len(c.Auth.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d bytes", minSecretLength))
	}
	return errors.Join(errs...)
}
