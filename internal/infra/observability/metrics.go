package observability

import (
	"time"

	"github.com/boddenberg/reports-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Request status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds all Prometheus metrics for the reports BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
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
				Name:    "reports_request_duration_seconds",
				Help:    "Duration of report operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_upstream_errors_total",
				Help: "Total failed calls to upstream services.",
			},
			[]string{"upstream"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_requests_total",
				Help: "Total report operations by outcome.",
			},
			[]string{"operation", "status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(upstream string) {
	m.upstreamErrors.WithLabelValues(upstream).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRequest increments the request counter for an operation outcome.
func (m *Metrics) IncrRequest(operation, status string) {
	m.requestsTotal.WithLabelValues(operation, status).Inc()
}

// Snapshot summarizes the report counters for GET /internal/metrics/reports.
// Prometheus counters are cumulative, so the period is always "all_time".
func (m *Metrics) Snapshot() *domain.ReportMetrics {
	byOperation := make(map[string]int64)
	var total, failed float64
	for _, s := range collectCounters(m.requestsTotal) {
		total += s.value
		byOperation[s.labels["operation"]] += int64(s.value)
		if s.labels["status"] == StatusError {
			failed += s.value
		}
	}

	upstreamErrors := make(map[string]int64)
	for _, s := range collectCounters(m.upstreamErrors) {
		upstreamErrors[s.labels["upstream"]] += int64(s.value)
	}

	var hits, misses float64
	for _, s := range collectCounters(m.cacheHits) {
		hits += s.value
	}
	for _, s := range collectCounters(m.cacheMisses) {
		misses += s.value
	}

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if total > 0 {
		errorRate = failed / total
	}
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.ReportMetrics{
		TotalRequests:  int64(total),
		FailedRequests: int64(failed),
		ErrorRate:      errorRate,
		CacheHitRate:   cacheHitRate,
		ByOperation:    byOperation,
		UpstreamErrors: upstreamErrors,
		Period:         "all_time",
	}
}

type counterSample struct {
	labels map[string]string
	value  float64
}

// collectCounters reads every child of a CounterVec through the client_model DTO.
func collectCounters(cv *prometheus.CounterVec) []counterSample {
	ch := make(chan prometheus.Metric)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var samples []counterSample
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil || m.Counter == nil {
			continue
		}
		labels := make(map[string]string, len(m.Label))
		for _, lp := range m.Label {
			labels[lp.GetName()] = lp.GetValue()
		}
		samples = append(samples, counterSample{labels: labels, value: m.Counter.GetValue()})
	}
	return samples
}
