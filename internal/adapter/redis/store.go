// Package redis keeps the last good snapshot in Redis so a restarted
// service can answer immediately instead of waiting for the first fetch.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/config"
	"github.com/couchcryptid/ae-wait-service/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// SnapshotKey is where the latest snapshot is stored.
const SnapshotKey = "ae-wait:snapshot:latest"

// NewClient creates a go-redis client from configuration. It does not dial.
func NewClient(cfg *config.Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// SnapshotStore saves and restores the latest snapshot as JSON.
type SnapshotStore struct {
	client *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSnapshotStore wraps a client. Saved snapshots expire after ttl.
func NewSnapshotStore(client *goredis.Client, ttl time.Duration, logger *slog.Logger) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (s *SnapshotStore) Name() string { return "redis" }

// PublishSnapshot overwrites the stored snapshot.
func (s *SnapshotStore) PublishSnapshot(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}
	if err := s.client.Set(ctx, SnapshotKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot. ok is false when none exists.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) (snap domain.Snapshot, ok bool, err error) {
	data, err := s.client.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.Hospitals) == 0 {
		return domain.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// CheckReadiness pings Redis.
func (s *SnapshotStore) CheckReadiness(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SnapshotStore) Close() error {
	return s.client.Close()
}
