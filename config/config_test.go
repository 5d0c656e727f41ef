package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "noop", cfg.SMSProvider)
}

func TestLoad_overrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("BASE_URL", "https://seminars.example.com/")
	t.Setenv("TOKEN_EXPIRY", "30m")
	t.Setenv("NOTIFY_WORKERS", "8")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, "https://seminars.example.com", cfg.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, 8, cfg.NotifyWorkers)
	assert.False(t, cfg.CookieSecure)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret in production", map[string]string{"JWT_SECRET": ""}},
		{"unknown store driver", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"bad duration", map[string]string{"REQUEST_TIMEOUT": "soon"}},
		{"bad worker count", map[string]string{"NOTIFY_WORKERS": "-1"}},
		{"bad bool", map[string]string{"COOKIE_SECURE": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "production")
			t.Setenv("JWT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_developmentFallbackSecret(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.False(t, cfg.CookieSecure)
	assert.True(t, cfg.IsDevelopment())
}
