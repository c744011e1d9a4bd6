package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "https://graph.instagram.com/v21.0", cfg.GraphBaseURL)
	assert.False(t, cfg.MockMode)
	assert.Equal(t, 500*time.Millisecond, cfg.MockDelay)
	assert.Equal(t, 6*time.Second, cfg.MinRequestInterval)
	assert.Equal(t, 10, cfg.RequestsPerMinute)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 30*time.Second, cfg.RateLimitDelay)
	assert.Equal(t, 5*time.Second, cfg.SettleDelay)
	assert.Equal(t, 10, cfg.SweepBatchSize)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MOCK_MODE", "true")
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("MIN_REQUEST_INTERVAL", "250ms")
	t.Setenv("GRAPH_BASE_URL", "http://localhost:8088/v21.0")

	cfg := LoadConfig()

	assert.True(t, cfg.MockMode)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.MinRequestInterval)
	assert.Equal(t, "http://localhost:8088/v21.0", cfg.GraphBaseURL)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "lots")
	t.Setenv("MOCK_MODE", "definitely")
	t.Setenv("SETTLE_DELAY", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.False(t, cfg.MockMode)
	assert.Equal(t, 5*time.Second, cfg.SettleDelay)
}
