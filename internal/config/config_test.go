package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, DefaultFeedPrimaryURL, cfg.FeedPrimaryURL)
	assert.Equal(t, DefaultFeedFallbackURL, cfg.FeedFallbackURL)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 30*time.Minute, cfg.StaleAfter)
	assert.Equal(t, 60, cfg.WaitShortMaxMinutes)
	assert.Equal(t, 120, cfg.WaitModerateMaxMinutes)
	assert.Empty(t, cfg.HospitalMetadataFile)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "ae-waiting-times", cfg.KafkaSnapshotTopic)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, 6*time.Hour, cfg.RedisSnapshotTTL)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("FEED_PRIMARY_URL", "http://localhost:8081/primary.json")
	t.Setenv("FEED_FALLBACK_URL", "http://localhost:8081/fallback.json")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("STALE_AFTER", "45m")
	t.Setenv("WAIT_SHORT_MAX_MINUTES", "30")
	t.Setenv("WAIT_MODERATE_MAX_MINUTES", "90")
	t.Setenv("HOSPITAL_METADATA_FILE", "/etc/ae/hospitals.yaml")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "custom-topic")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_SNAPSHOT_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/primary.json", cfg.FeedPrimaryURL)
	assert.Equal(t, "http://localhost:8081/fallback.json", cfg.FeedFallbackURL)
	assert.Equal(t, 3*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 45*time.Minute, cfg.StaleAfter)
	assert.Equal(t, 30, cfg.WaitShortMaxMinutes)
	assert.Equal(t, 90, cfg.WaitModerateMaxMinutes)
	assert.Equal(t, "/etc/ae/hospitals.yaml", cfg.HospitalMetadataFile)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-topic", cfg.KafkaSnapshotTopic)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "secret", cfg.RedisPassword)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.RedisSnapshotTTL)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"FEED_TIMEOUT", "bad"},
		{"FEED_TIMEOUT", "0s"},
		{"REFRESH_INTERVAL", "-5s"},
		{"STALE_AFTER", "soon"},
		{"MAPBOX_TIMEOUT", "bad"},
		{"REDIS_SNAPSHOT_TTL", "0"},
		{"REDIS_DB", "-1"},
		{"WAIT_SHORT_MAX_MINUTES", "abc"},
		{"WAIT_MODERATE_MAX_MINUTES", "-10"},
		{"FEED_PRIMARY_URL", "ftp://example.com/feed.json"},
		{"FEED_FALLBACK_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoad_ThresholdOrder(t *testing.T) {
	t.Setenv("WAIT_SHORT_MAX_MINUTES", "120")
	t.Setenv("WAIT_MODERATE_MAX_MINUTES", "120")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WAIT_SHORT_MAX_MINUTES")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
