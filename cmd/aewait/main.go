// Command aewait polls the Hospital Authority A&E waiting-time feed and
// serves the normalized, sortable snapshot over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/ae-wait-service/internal/adapter/feed"
	"github.com/couchcryptid/ae-wait-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/ae-wait-service/internal/adapter/kafka"
	"github.com/couchcryptid/ae-wait-service/internal/adapter/mapbox"
	redisadapter "github.com/couchcryptid/ae-wait-service/internal/adapter/redis"
	"github.com/couchcryptid/ae-wait-service/internal/config"
	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"github.com/couchcryptid/ae-wait-service/internal/hospital"
	"github.com/couchcryptid/ae-wait-service/internal/observability"
	"github.com/couchcryptid/ae-wait-service/internal/poller"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	directory, err := loadDirectory(cfg)
	if err != nil {
		logger.Error("failed to load hospital directory", "error", err)
		os.Exit(1)
	}
	logger.Info("hospital directory loaded", "hospitals", directory.Len())

	thresholds := domain.WaitThresholds{
		ShortMaxExclusive:    cfg.WaitShortMaxMinutes,
		ModerateMaxExclusive: cfg.WaitModerateMaxMinutes,
	}
	normalizer := domain.NewNormalizer(directory, thresholds)
	client := feed.NewClient(normalizer, cfg.FeedTimeout, logger, metrics)
	fetcher := feed.NewFetcher(client, cfg.FeedPrimaryURL, cfg.FeedFallbackURL, logger, metrics)

	opts := []poller.Option{}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		mb := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		opts = append(opts, poller.WithGeocoder(mapbox.NewCachedGeocoder(mb, cfg.MapboxCacheSize, metrics)))
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var closers []func() error
	var storeReady httpadapter.ReadinessChecks

	if cfg.KafkaEnabled() {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		opts = append(opts, poller.WithSinks(publisher))
		closers = append(closers, publisher.Close)
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic)
	}

	if cfg.RedisEnabled() {
		store := redisadapter.NewSnapshotStore(redisadapter.NewClient(cfg), cfg.RedisSnapshotTTL, logger)
		opts = append(opts, poller.WithSinks(store), poller.WithRestore(store))
		closers = append(closers, store.Close)
		storeReady = append(storeReady, store)
		logger.Info("redis snapshot store enabled", "addr", cfg.RedisAddr, "ttl", cfg.RedisSnapshotTTL)
	}

	p := poller.New(fetcher, cfg.RefreshInterval, cfg.StaleAfter, logger, metrics, opts...)

	ready := append(httpadapter.ReadinessChecks{p}, storeReady...)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, ready, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadDirectory(cfg *config.Config) (*hospital.Directory, error) {
	if cfg.HospitalMetadataFile != "" {
		return hospital.LoadFile(cfg.HospitalMetadataFile)
	}
	return hospital.Default()
}
