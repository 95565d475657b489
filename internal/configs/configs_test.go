package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("MEDIA_SIGNING_SECRET", "")
	t.Setenv("RECONNECT_GRACE", "")
	t.Setenv("REAPER_INTERVAL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, DefaultReconnectGrace, cfg.ReconnectGrace)
	assert.Equal(t, DefaultReaperInterval, cfg.ReaperInterval)

	// missing secret in development falls back to a generated one
	assert.True(t, cfg.InsecureFallback)
	assert.NotEmpty(t, cfg.MediaSigningSecret)
}

func TestLoadConfigRequiresSecretInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "")
	t.Setenv("MEDIA_SIGNING_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MEDIA_SIGNING_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.InsecureFallback)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MEDIA_SIGNING_SECRET", "s3cret")

	for _, port := range []string{"not-a-port", "80", "70000"} {
		t.Setenv("PORT", port)

		_, err := LoadConfig()
		assert.Error(t, err, "port %q should be rejected", port)
	}
}

func TestLoadConfigParsesDurations(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MEDIA_SIGNING_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("RECONNECT_GRACE", "90s")
	t.Setenv("REAPER_INTERVAL", "5s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.ReconnectGrace)
	assert.Equal(t, 5*time.Second, cfg.ReaperInterval)
}

func TestLoadConfigRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MEDIA_SIGNING_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("REAPER_INTERVAL", "")
	t.Setenv("RECONNECT_GRACE", "-10s")

	_, err := LoadConfig()
	assert.Error(t, err)
}
