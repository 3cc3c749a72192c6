package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PostgresDefaults(t *testing.T) {
	t.Setenv("BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/bizdesk")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.False(t, cfg.TracingEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_RESTBackend(t *testing.T) {
	t.Setenv("BACKEND", " REST ")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendREST, cfg.Backend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Second, cfg.REST.Timeout)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Backend:   BackendPostgres,
			Database:  DatabaseConfig{URL: "postgres://x", MaxConns: 5, MinConns: 1},
			RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
			Session:   SessionConfig{TTL: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database url", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"min above max", func(c *Config) { c.Database.MinConns = 9 }, "DATABASE_MIN_CONNS"},
		{"rest without key", func(c *Config) { c.Backend = BackendREST; c.REST.URL = "https://x" }, "SUPABASE_ANON_KEY"},
		{"unknown backend", func(c *Config) { c.Backend = "mysql" }, "BACKEND"},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, "RATE_LIMIT_RPS"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "SESSION_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
