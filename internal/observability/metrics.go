package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ae_wait"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Feed ingestion metrics.
	FetchAttempts      *prometheus.CounterVec   // labels: endpoint={primary,fallback}, outcome={success,error}
	FetchDuration      *prometheus.HistogramVec // labels: endpoint
	IngestionFailures  prometheus.Counter
	RecordsDropped     prometheus.Counter
	HospitalsInService prometheus.Gauge
	LastSuccess        prometheus.Gauge
	SourceStale        prometheus.Gauge
	PollerRunning      prometheus.Gauge

	// Snapshot sink metrics.
	PublishErrors *prometheus.CounterVec // labels: sink={kafka,redis}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method=forward, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method=forward, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method=forward
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FetchAttempts,
		m.FetchDuration,
		m.IngestionFailures,
		m.RecordsDropped,
		m.HospitalsInService,
		m.LastSuccess,
		m.SourceStale,
		m.PollerRunning,
		m.PublishErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_attempts_total",
			Help:      "Feed endpoint attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a single feed endpoint attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		IngestionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_failures_total",
			Help:      "Refresh cycles where every endpoint failed.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Feed records discarded for lacking a hospital name.",
		}),
		HospitalsInService: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_hospitals",
			Help:      "Number of hospitals in the current snapshot.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
		SourceStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_stale",
			Help:      "1 when the source update time is older than the stale threshold.",
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poller_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_publish_errors_total",
			Help:      "Snapshot sink failures by sink.",
		}, []string{"sink"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}
