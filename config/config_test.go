package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "ecommerce", cfg.AnalyticsChannel)
	assert.Equal(t, "ko-KR", cfg.Locale)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.IsProduction())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("AWS_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.AWSEnabled)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	_, err := Parse()
	assert.ErrorContains(t, err, "parse env")

	t.Setenv("SESSION_TTL", "0s")
	_, err = Parse()
	assert.ErrorContains(t, err, "SESSION_TTL")

	t.Setenv("SESSION_TTL", "1m")
	t.Setenv("RATE_LIMIT_BURST", "0")
	_, err = Parse()
	assert.ErrorContains(t, err, "RATE_LIMIT_BURST")
}
