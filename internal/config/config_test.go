package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.NotEmpty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.DatabaseURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "2500")
	t.Setenv("ALLOWED_ORIGINS", "http://example.com")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 2500*time.Millisecond, cfg.RateLimitWindow)
	assert.Equal(t, "http://example.com", cfg.AllowedOrigins)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")

	cfg := Load()

	assert.Equal(t, 10, cfg.RateLimitMax)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:            "8080",
			DatabaseURL:     "postgres://localhost/test",
			AllowedOrigins:  "http://localhost:5173",
			Environment:     "development",
			RateLimitMax:    10,
			RateLimitWindow: 10 * time.Second,
		}
	}

	t.Run("valid_development", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("rejects_non_positive_rate_limit", func(t *testing.T) {
		cfg := base()
		cfg.RateLimitMax = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects_non_positive_window", func(t *testing.T) {
		cfg := base()
		cfg.RateLimitWindow = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("production_requires_explicit_origins", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		cfg.AllowedOrigins = "*"
		assert.Error(t, cfg.Validate())

		cfg.AllowedOrigins = ""
		assert.Error(t, cfg.Validate())

		cfg.AllowedOrigins = "https://chat.example.com"
		assert.NoError(t, cfg.Validate())
	})
}

func TestEnvironmentHelpers(t *testing.T) {
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.True(t, (&Config{Environment: "prod"}).IsProduction())
	assert.False(t, (&Config{Environment: "development"}).IsProduction())

	assert.True(t, (&Config{Environment: "development"}).IsDevelopment())
	assert.True(t, (&Config{Environment: ""}).IsDevelopment())
	assert.False(t, (&Config{Environment: "production"}).IsDevelopment())
}
