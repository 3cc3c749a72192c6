package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Backend selects the data service implementation
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendREST     Backend = "rest"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string   `env:"PORT" env-default:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
	Env         string   `env:"ENV" env-default:"development"`
	LogLevel    string   `env:"LOG_LEVEL" env-default:"info"`

	Backend  Backend `env:"BACKEND" env-default:"postgres"`
	Database DatabaseConfig
	REST     RESTConfig

	RateLimit RateLimitConfig
	Session   SessionConfig

	TracingEnabled bool `env:"TRACING_ENABLED" env-default:"false"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxConns        int32         `env:"DATABASE_MAX_CONNS" env-default:"10"`
	MinConns        int32         `env:"DATABASE_MIN_CONNS" env-default:"1"`
	MaxConnLifetime time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" env-default:"1h"`
	AutoMigrate     bool          `env:"DATABASE_AUTO_MIGRATE" env-default:"true"`
}

// RESTConfig holds settings of the hosted PostgREST data service
type RESTConfig struct {
	URL     string        `env:"SUPABASE_URL"`
	AnonKey string        `env:"SUPABASE_ANON_KEY"`
	Timeout time.Duration `env:"REST_TIMEOUT" env-default:"15s"`
}

// RateLimitConfig holds the per-session write throttle
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" env-default:"5"`
	Burst             int     `env:"RATE_LIMIT_BURST" env-default:"10"`
}

// SessionConfig holds session store settings
type SessionConfig struct {
	TTL time.Duration `env:"SESSION_TTL" env-default:"30m"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(string(cfg.Backend))))
	for i, origin := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(origin)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks required settings for the selected backend
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when BACKEND=postgres"))
		}
		if c.Database.MaxConns < 1 {
			errs = append(errs, errors.New("DATABASE_MAX_CONNS must be at least 1"))
		}
		if c.Database.MinConns > c.Database.MaxConns {
			errs = append(errs, errors.New("DATABASE_MIN_CONNS must not exceed DATABASE_MAX_CONNS"))
		}
	case BackendREST:
		if c.REST.URL == "" {
			errs = append(errs, errors.New("SUPABASE_URL is required when BACKEND=rest"))
		}
		if c.REST.AnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_ANON_KEY is required when BACKEND=rest"))
		}
	default:
		errs = append(errs, fmt.Errorf("BACKEND must be %q or %q, got %q", BackendPostgres, BackendREST, c.Backend))
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
	}
	if c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
