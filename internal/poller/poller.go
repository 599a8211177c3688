// Package poller keeps the current A&E snapshot fresh: it refreshes on a
// fixed interval, on demand, and restores the last good snapshot on start.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"github.com/couchcryptid/ae-wait-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrRefreshInProgress is returned when Refresh is called while another
// refresh has not settled. Refreshes never overlap.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Fetcher produces a normalized batch from the feed.
type Fetcher interface {
	FetchWaitingTimes(ctx context.Context) ([]domain.HospitalWaitingTime, error)
}

// Sink receives every successful snapshot.
type Sink interface {
	Name() string
	PublishSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// SnapshotLoader restores a previously published snapshot.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (domain.Snapshot, bool, error)
}

// State is what readers see: the last good snapshot plus the outcome of
// the most recent attempt.
type State struct {
	Snapshot     domain.Snapshot
	HasSnapshot  bool
	SourceStale  bool
	RefreshError string
	Refreshing   bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithGeocoder enables coordinate enrichment for hospitals the directory
// does not locate.
func WithGeocoder(g domain.Geocoder) Option {
	return func(p *Poller) { p.geocoder = g }
}

// WithSinks adds snapshot sinks. Sink failures are logged and counted but
// never fail the refresh.
func WithSinks(sinks ...Sink) Option {
	return func(p *Poller) { p.sinks = append(p.sinks, sinks...) }
}

// WithRestore sets where Run looks for a snapshot before the first fetch.
func WithRestore(l SnapshotLoader) Option {
	return func(p *Poller) { p.restore = l }
}

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// Poller owns the current snapshot.
type Poller struct {
	fetcher    Fetcher
	interval   time.Duration
	staleAfter time.Duration
	geocoder   domain.Geocoder
	sinks      []Sink
	restore    SnapshotLoader
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	refreshing atomic.Bool

	mu         sync.RWMutex
	snapshot   *domain.Snapshot
	refreshErr string
}

// New creates a Poller that refreshes every interval and reports the source
// stale once its update time is older than staleAfter.
func New(fetcher Fetcher, interval, staleAfter time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Poller {
	p := &Poller{
		fetcher:    fetcher,
		interval:   interval,
		staleAfter: staleAfter,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run restores a stored snapshot if one exists, then refreshes immediately
// and again interval after each refresh settles, until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval.String())
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	p.restoreSnapshot(ctx)

	for {
		// Failures are recorded on the poller state; the loop keeps going.
		_, _ = p.Refresh(ctx)

		timer := p.clock.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		case <-timer.Chan():
		}
	}
}

// Refresh fetches, enriches and installs a new snapshot. On failure the
// previous snapshot is kept and the error is recorded for readers.
func (p *Poller) Refresh(ctx context.Context) (domain.Snapshot, error) {
	if !p.refreshing.CompareAndSwap(false, true) {
		return domain.Snapshot{}, ErrRefreshInProgress
	}
	defer p.refreshing.Store(false)

	start := p.clock.Now()
	records, err := p.fetcher.FetchWaitingTimes(ctx)
	if err != nil {
		p.mu.Lock()
		p.refreshErr = err.Error()
		hasSnapshot := p.snapshot != nil
		p.mu.Unlock()

		p.logger.Error("refresh failed",
			"error", err,
			"serving_last_good", hasSnapshot,
		)
		return domain.Snapshot{}, err
	}

	records = domain.EnrichWithGeocoding(ctx, records, p.geocoder, p.logger)
	snap := domain.NewSnapshot(records, p.clock.Now())
	p.install(snap)

	p.logger.Info("snapshot refreshed",
		"snapshot_id", snap.ID.String(),
		"hospital_count", len(snap.Hospitals),
		"update_time", snap.UpdateTime,
		"has_unknown_wait", snap.HasUnknownWait(),
		"duration", p.clock.Since(start).String(),
	)

	p.publish(ctx, snap)
	return snap, nil
}

// Current returns the state at this instant. Staleness is evaluated now,
// not when the snapshot was fetched.
func (p *Poller) Current() State {
	p.mu.RLock()
	snap := p.snapshot
	refreshErr := p.refreshErr
	p.mu.RUnlock()

	state := State{
		RefreshError: refreshErr,
		Refreshing:   p.refreshing.Load(),
	}
	if snap != nil {
		state.Snapshot = *snap
		state.HasSnapshot = true
		state.SourceStale = snap.IsStale(p.staleAfter, p.clock.Now())
	}
	return state
}

// CheckReadiness reports ready once any snapshot, fetched or restored, is held.
func (p *Poller) CheckReadiness(_ context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return errors.New("no A&E snapshot available yet")
	}
	return nil
}

func (p *Poller) install(snap domain.Snapshot) {
	p.mu.Lock()
	p.snapshot = &snap
	p.refreshErr = ""
	p.mu.Unlock()

	p.metrics.HospitalsInService.Set(float64(len(snap.Hospitals)))
	p.metrics.LastSuccess.Set(float64(snap.FetchedAt.Unix()))
	if snap.IsStale(p.staleAfter, p.clock.Now()) {
		p.metrics.SourceStale.Set(1)
	} else {
		p.metrics.SourceStale.Set(0)
	}
}

func (p *Poller) publish(ctx context.Context, snap domain.Snapshot) {
	for _, sink := range p.sinks {
		if err := sink.PublishSnapshot(ctx, snap); err != nil {
			p.metrics.PublishErrors.WithLabelValues(sink.Name()).Inc()
			p.logger.Warn("publish snapshot failed",
				"sink", sink.Name(),
				"snapshot_id", snap.ID.String(),
				"error", err,
			)
		}
	}
}

func (p *Poller) restoreSnapshot(ctx context.Context) {
	if p.restore == nil {
		return
	}
	snap, ok, err := p.restore.LoadSnapshot(ctx)
	if err != nil {
		p.logger.Warn("restore snapshot failed", "error", err)
		return
	}
	if !ok {
		return
	}

	p.mu.Lock()
	if p.snapshot != nil {
		p.mu.Unlock()
		return
	}
	p.snapshot = &snap
	p.mu.Unlock()

	p.metrics.HospitalsInService.Set(float64(len(snap.Hospitals)))
	p.logger.Info("snapshot restored",
		"snapshot_id", snap.ID.String(),
		"fetched_at", snap.FetchedAt,
		"hospital_count", len(snap.Hospitals),
	)
}
