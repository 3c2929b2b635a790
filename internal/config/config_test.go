package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("ALERT_POLL_INTERVAL", "")
	t.Setenv("CHAT_RATE_LIMIT", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://a1.gpsguard.eu/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.AlertPollInterval)
	assert.Equal(t, 5*time.Minute, cfg.InsightCacheTTL)
	assert.Equal(t, 10, cfg.ChatRateLimit)
	assert.Equal(t, 60, cfg.ChatRateWindow)
	assert.False(t, cfg.AlertsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "http://localhost:9000/api/v1/")
	t.Setenv("TRIP_FETCH_CONCURRENCY", "3")
	t.Setenv("INSIGHT_CACHE_TTL", "10m")
	t.Setenv("ALERT_POLL_INTERVAL", "45")
	t.Setenv("MQTT_BROKER", "tcp://localhost:1883")
	t.Setenv("ALERT_GROUP", "G1")
	t.Setenv("CHAT_RATE_LIMIT", "4")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://localhost:9000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 3, cfg.TripFetchConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.InsightCacheTTL)
	assert.Equal(t, 45*time.Second, cfg.AlertPollInterval)
	assert.Equal(t, 4, cfg.ChatRateLimit)
	assert.True(t, cfg.AlertsEnabled())
}

func TestGetEnvInt_Invalid(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	assert.Equal(t, 0, getEnvInt("REDIS_DB", 0))
}
