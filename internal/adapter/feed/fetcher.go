package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"github.com/couchcryptid/ae-wait-service/internal/observability"
)

// ErrFeedUnavailable is the single error returned when every endpoint
// failed. Individual causes are logged, not returned.
var ErrFeedUnavailable = errors.New("unable to fetch A&E waiting-time data")

// Endpoint names used in logs and metric labels.
const (
	EndpointPrimary  = "primary"
	EndpointFallback = "fallback"
)

// EndpointFetcher performs one endpoint attempt.
type EndpointFetcher interface {
	FetchEndpoint(ctx context.Context, url string) ([]domain.HospitalWaitingTime, error)
}

type endpoint struct {
	name string
	url  string
}

// Fetcher tries the primary endpoint, then the fallback, once each.
type Fetcher struct {
	client    EndpointFetcher
	endpoints []endpoint
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewFetcher creates a Fetcher over the two endpoint URLs.
func NewFetcher(client EndpointFetcher, primaryURL, fallbackURL string, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		client: client,
		endpoints: []endpoint{
			{name: EndpointPrimary, url: primaryURL},
			{name: EndpointFallback, url: fallbackURL},
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchWaitingTimes returns the first endpoint's normalized records, or
// ErrFeedUnavailable when both attempts fail. No retries beyond the two
// endpoints are made.
func (f *Fetcher) FetchWaitingTimes(ctx context.Context) ([]domain.HospitalWaitingTime, error) {
	for _, ep := range f.endpoints {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		records, err := f.client.FetchEndpoint(ctx, ep.url)
		f.metrics.FetchDuration.WithLabelValues(ep.name).Observe(time.Since(start).Seconds())

		if err != nil {
			f.metrics.FetchAttempts.WithLabelValues(ep.name, "error").Inc()
			f.logger.Warn("feed endpoint failed",
				"endpoint", ep.name,
				"url", ep.url,
				"error", err,
			)
			continue
		}

		f.metrics.FetchAttempts.WithLabelValues(ep.name, "success").Inc()
		f.logger.Debug("feed endpoint succeeded",
			"endpoint", ep.name,
			"hospital_count", len(records),
		)
		return records, nil
	}

	f.metrics.IngestionFailures.Inc()
	return nil, ErrFeedUnavailable
}
