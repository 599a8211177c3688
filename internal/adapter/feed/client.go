// Package feed fetches Hospital Authority A&E waiting-time JSON.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"github.com/couchcryptid/ae-wait-service/internal/observability"
)

// maxBodyBytes bounds a feed response. The real payload is a few KB.
const maxBodyBytes = 4 << 20

// Client performs single-endpoint attempts: one GET under its own timeout,
// decoded and normalized.
type Client struct {
	httpClient *http.Client
	normalizer *domain.Normalizer
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a feed client. Each attempt is bounded by timeout.
func NewClient(normalizer *domain.Normalizer, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{},
		normalizer: normalizer,
		timeout:    timeout,
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchEndpoint fetches and normalizes one endpoint. Any transport error,
// timeout, non-2xx status, unrecognised body or empty batch is an error.
func (c *Client) FetchEndpoint(ctx context.Context, url string) ([]domain.HospitalWaitingTime, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	batch, err := domain.DecodePayload(body)
	if err != nil {
		return nil, err
	}

	records, err := c.normalizer.NormalizeBatch(batch)
	if dropped := len(batch.Records) - len(records); dropped > 0 {
		c.metrics.RecordsDropped.Add(float64(dropped))
		c.logger.Debug("dropped feed records without hospital name",
			"url", url,
			"dropped", dropped,
			"shape", batch.Shape.String(),
		)
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// StatusError reports a non-2xx feed response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}
