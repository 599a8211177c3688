//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"github.com/couchcryptid/ae-wait-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Queen Mary Hospital", domain.GeocodeRegion)
	require.NoError(t, err)

	assert.InDelta(t, 22.27, result.Lat, 0.1, "lat should be on Hong Kong Island")
	assert.InDelta(t, 114.13, result.Lon, 0.1, "lon should be on Hong Kong Island")
	assert.NotEmpty(t, result.FormattedAddress)
}

func TestSmoke_ForwardGeocode_Unknown(t *testing.T) {
	c := smokeClient(t)

	// Fuzzy matching may still return something; only the absence of an error matters.
	_, err := c.ForwardGeocode(context.Background(), "XYZNONEXISTENT99", domain.GeocodeRegion)
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.ForwardGeocode(context.Background(), "Tuen Mun Hospital", domain.GeocodeRegion)
	require.NoError(t, err)

	r2, err := cached.ForwardGeocode(context.Background(), "Tuen Mun Hospital", domain.GeocodeRegion)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
