package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tri_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for dataset
// loading and dashboard rendering.
type Metrics struct {
	// Dataset loading.
	DatasetLoads        *prometheus.CounterVec   // labels: variant, outcome={success,transient,malformed}
	DatasetLoadDuration *prometheus.HistogramVec // labels: variant
	RowsLoaded          *prometheus.CounterVec   // labels: variant
	UnitErrors          *prometheus.CounterVec   // labels: variant
	JoinUnmatched       *prometheus.CounterVec   // labels: table={industry,toxicity,facility}
	DatasetCache        *prometheus.CounterVec   // labels: result={hit,miss}
	DatasetCacheEntries prometheus.Gauge

	// Upstream fetches.
	FetchRequests *prometheus.CounterVec   // labels: scheme={http,file}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: scheme

	// Rendering.
	PivotFailures *prometheus.CounterVec // labels: reason={unknown_dimension,incompatible_dimensions,empty}

	// Summary export.
	SummariesPublished prometheus.Counter
	PublishErrors      prometheus.Counter
	PublishEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.RowsLoaded,
		m.UnitErrors,
		m.JoinUnmatched,
		m.DatasetCache,
		m.DatasetCacheEntries,
		m.FetchRequests,
		m.FetchDuration,
		m.PivotFailures,
		m.SummariesPublished,
		m.PublishErrors,
		m.PublishEnabled,
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
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by variant and outcome.",
		}, []string{"variant", "outcome"}),
		DatasetLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a full fetch, parse and join of one dataset.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"variant"}),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Emission records loaded by variant.",
		}, []string{"variant"}),
		UnitErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_errors_total",
			Help:      "Records with an unrecognized unit of measure.",
		}, []string{"variant"}),
		JoinUnmatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_unmatched_total",
			Help:      "Records whose reference key found no match, by reference table.",
		}, []string{"table"}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		DatasetCacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_cache_entries",
			Help:      "Datasets currently held in the in-memory cache.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Source fetches by scheme and outcome.",
		}, []string{"scheme", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Source fetch duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"scheme"}),
		PivotFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pivot_failures_total",
			Help:      "Pivot requests that produced no table, by reason.",
		}, []string{"reason"}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_published_total",
			Help:      "County summaries written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed county summary publishes.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_enabled",
			Help:      "1 when county summaries are published to Kafka, 0 otherwise.",
		}),
	}
}
