package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_TTL_HOURS", "12")
	t.Setenv("SALT_ROUND", "not-a-number")
	t.Setenv("ADMIN_EMAILS", "a@x.com, ,B@x.com")
	t.Setenv("BLOB_DRIVER", "http")
	t.Setenv("BLOB_API_URL", "")

	cfg := LoadConfig()
	assert.Same(t, cfg, AppConfig)
	assert.Equal(t, "8081", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 12, cfg.JWTTTLHours)
	assert.Equal(t, 10, cfg.SaltRound)
	assert.Equal(t, []string{"a@x.com", "B@x.com"}, cfg.AdminEmails)
	assert.Equal(t, "local", cfg.BlobDriver, "http without an API url falls back to local")
}

func TestIsAdminEmail(t *testing.T) {
	cfg := &Config{AdminEmails: []string{"Root@Example.com"}}
	assert.True(t, cfg.IsAdminEmail(" root@example.com "))
	assert.False(t, cfg.IsAdminEmail("user@example.com"))

	var none *Config
	assert.False(t, none.IsProduction())
}
