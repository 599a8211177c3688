package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/config"
	"github.com/couchcryptid/ae-wait-service/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableStore(t *testing.T) *SnapshotStore {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotStore(client, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSnapshotStore_UnreachableErrors(t *testing.T) {
	store := unreachableStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadSnapshot(ctx)
	require.Error(t, err)
	assert.False(t, ok)

	err = store.PublishSnapshot(ctx, domain.NewSnapshot([]domain.HospitalWaitingTime{{HospitalName: "Queen Mary Hospital"}}, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store snapshot")

	assert.Error(t, store.CheckReadiness(ctx))
	assert.Equal(t, "redis", store.Name())
}

func TestNewClient(t *testing.T) {
	cfg := &config.Config{RedisAddr: "redis:6379", RedisPassword: "secret", RedisDB: 2}
	client := NewClient(cfg)
	t.Cleanup(func() { _ = client.Close() })

	opts := client.Options()
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
}
