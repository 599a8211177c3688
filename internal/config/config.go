package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	DefaultFeedPrimaryURL  = "https://www.ha.org.hk/opendata/aed/aedwtdata-en.json"
	DefaultFeedFallbackURL = "https://www.ha.org.hk/opendata/aed/aedwtdata2-en.json"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream feed.
	FeedPrimaryURL  string
	FeedFallbackURL string
	FeedTimeout     time.Duration
	RefreshInterval time.Duration
	StaleAfter      time.Duration

	// Wait-status bands, in minutes.
	WaitShortMaxMinutes    int
	WaitModerateMaxMinutes int

	// Optional YAML table replacing the built-in hospital directory.
	HospitalMetadataFile string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Snapshot publishing; disabled when no brokers are set.
	KafkaBrokers       []string
	KafkaSnapshotTopic string

	// Last-good snapshot mirror; disabled when no address is set.
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisSnapshotTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parsePositiveDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	staleAfter, err := parsePositiveDuration("STALE_AFTER", "30m")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	redisTTL, err := parsePositiveDuration("REDIS_SNAPSHOT_TTL", "6h")
	if err != nil {
		return nil, err
	}

	shortMax, err := parseNonNegativeInt("WAIT_SHORT_MAX_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	moderateMax, err := parseNonNegativeInt("WAIT_MODERATE_MAX_MINUTES", 120)
	if err != nil {
		return nil, err
	}
	redisDB, err := parseNonNegativeInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FeedPrimaryURL:  sharedcfg.EnvOrDefault("FEED_PRIMARY_URL", DefaultFeedPrimaryURL),
		FeedFallbackURL: sharedcfg.EnvOrDefault("FEED_FALLBACK_URL", DefaultFeedFallbackURL),
		FeedTimeout:     feedTimeout,
		RefreshInterval: refreshInterval,
		StaleAfter:      staleAfter,

		WaitShortMaxMinutes:    shortMax,
		WaitModerateMaxMinutes: moderateMax,

		HospitalMetadataFile: os.Getenv("HOSPITAL_METADATA_FILE"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaBrokers:       brokers,
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "ae-waiting-times"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		RedisSnapshotTTL: redisTTL,
	}

	if !isHTTPURL(cfg.FeedPrimaryURL) {
		return nil, errors.New("invalid FEED_PRIMARY_URL")
	}
	if !isHTTPURL(cfg.FeedFallbackURL) {
		return nil, errors.New("invalid FEED_FALLBACK_URL")
	}
	if cfg.WaitShortMaxMinutes >= cfg.WaitModerateMaxMinutes {
		return nil, errors.New("WAIT_SHORT_MAX_MINUTES must be less than WAIT_MODERATE_MAX_MINUTES")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether snapshots are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// RedisEnabled reports whether snapshots are mirrored to Redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func parsePositiveDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return d, nil
}

func parseNonNegativeInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
