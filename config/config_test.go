package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "AusIMM Annual Conference 2024", cfg.ConferenceName)
	assert.False(t, cfg.UseFirebase())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("API_BASE_URL", "https://conf.example.com/api")
	t.Setenv("SUBMIT_TIMEOUT", "5s")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "/etc/key.json")
	t.Setenv("FIREBASE_DATABASE_URL", "https://example.firebaseio.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://conf.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.SubmitTimeout)
	assert.True(t, cfg.UseFirebase())

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("HTTP_TIMEOUT", "0s")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := Config{LogLevel: "loud"}.Logger()
	assert.Error(t, err)
}
