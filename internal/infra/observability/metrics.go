package observability

import (
	"time"

	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the plan view service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	refreshesTotal  *prometheus.CounterVec
	rowsBuilt       prometheus.Counter
	coercions       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planview_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planview_external_errors_total",
				Help: "Total errors from the plan backend.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planview_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planview_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		refreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planview_refreshes_total",
				Help: "Total plan view refresh cycles.",
			},
			[]string{"status"},
		),
		rowsBuilt: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planview_display_rows_total",
				Help: "Total display rows built across refresh cycles.",
			},
		),
		coercions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planview_coercion_anomalies_total",
				Help: "Total non-numeric financial fields coerced to zero.",
			},
			[]string{"field"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRefresh increments the refresh counter with a status label.
func (m *Metrics) IncrRefresh(status string) {
	m.refreshesTotal.WithLabelValues(status).Inc()
}

// AddRowsBuilt records the number of display rows produced by a
// refresh cycle.
func (m *Metrics) AddRowsBuilt(n int) {
	m.rowsBuilt.Add(float64(n))
}

// IncrCoercionAnomaly counts a non-numeric financial field that was
// coerced to zero.
func (m *Metrics) IncrCoercionAnomaly(field string) {
	m.coercions.WithLabelValues(field).Inc()
}

// GetOpsSnapshot returns a snapshot of operational metrics suitable
// for the GET /v1/metrics/ops endpoint.
func (m *Metrics) GetOpsSnapshot() *domain.OpsMetrics {
	// Prometheus counters expose cumulative values.
	refreshOK := getCounterValue(m.refreshesTotal, "success")
	refreshErr := getCounterValue(m.refreshesTotal, "degraded")
	total := refreshOK + refreshErr

	cacheHits := getCounterValue(m.cacheHits, "viewmodel")
	cacheMisses := getCounterValue(m.cacheMisses, "viewmodel")

	errorRate := float64(0)
	if total > 0 {
		errorRate = refreshErr / total
	}
	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	rows := float64(0)
	pb := &dto.Metric{}
	if err := m.rowsBuilt.Write(pb); err == nil && pb.Counter != nil && pb.Counter.Value != nil {
		rows = *pb.Counter.Value
	}

	return &domain.OpsMetrics{
		TotalRefreshes: int64(total),
		ErrorRate:      errorRate,
		CacheHitRate:   cacheHitRate,
		RowsBuilt:      int64(rows),
		Period:         "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	pb := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(pb); err != nil {
		return 0
	}
	if pb.Counter != nil && pb.Counter.Value != nil {
		return *pb.Counter.Value
	}
	return 0
}
