package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestIsSourceDataStale(t *testing.T) {
	now := time.Date(2026, 2, 23, 12, 0, 0, 0, hongKongTime)

	tests := []struct {
		name      string
		timestamp string
		want      bool
	}{
		{"older than threshold", "2026-02-23T11:20:00+08:00", true},
		{"within threshold", "2026-02-23T11:40:00+08:00", false},
		{"exactly at threshold", "2026-02-23T11:30:00+08:00", false},
		{"one second past threshold", "2026-02-23T11:29:59+08:00", true},
		{"utc offset", "2026-02-23T03:00:00Z", true},
		{"blank", "", false},
		{"whitespace", "   ", false},
		{"invalid", "not-a-date", false},
		{"future", "2026-02-23T12:30:00+08:00", false},
		{"feed format stale", "23/2/2026 11:15am", true},
		{"feed format fresh", "23/2/2026 11:45am", false},
		{"no offset read as hong kong time", "2026-02-23T11:45:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSourceDataStale(tt.timestamp, DefaultStaleAfter, now))
		})
	}
}

func TestIsSourceDataStale_CustomThreshold(t *testing.T) {
	now := time.Date(2026, 2, 23, 12, 0, 0, 0, hongKongTime)

	assert.False(t, IsSourceDataStale("2026-02-23T11:00:00+08:00", 90*time.Minute, now))
	assert.True(t, IsSourceDataStale("2026-02-23T11:00:00+08:00", 45*time.Minute, now))
}

func TestIsSourceDataStaleNow(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2026, 2, 23, 4, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	assert.True(t, IsSourceDataStaleNow("2026-02-23T11:20:00+08:00", DefaultStaleAfter))
	assert.False(t, IsSourceDataStaleNow("2026-02-23T11:40:00+08:00", DefaultStaleAfter))
}

func TestParseSourceTimestamp(t *testing.T) {
	t.Run("feed pm format", func(t *testing.T) {
		got, ok := ParseSourceTimestamp("3/10/2026 3:45pm")
		assert.True(t, ok)
		assert.True(t, got.Equal(time.Date(2026, 10, 3, 15, 45, 0, 0, hongKongTime)))
	})

	t.Run("date only is utc midnight", func(t *testing.T) {
		got, ok := ParseSourceTimestamp("2026-02-23")
		assert.True(t, ok)
		assert.True(t, got.Equal(time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, ok := ParseSourceTimestamp("yesterday")
		assert.False(t, ok)
	})
}

func TestSetClock(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	assert.Equal(t, fixed, clock.Now())

	SetClock(nil)
	assert.True(t, time.Since(clock.Now()) < time.Second)
}
