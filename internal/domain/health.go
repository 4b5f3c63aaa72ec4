package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual upstream as seen
// through its circuit breaker.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Breaker     string `json:"breaker,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// ReportMetrics is returned by GET /internal/metrics/reports.
type ReportMetrics struct {
	TotalRequests  int64            `json:"totalRequests"`
	FailedRequests int64            `json:"failedRequests"`
	ErrorRate      float64          `json:"errorRate"`
	CacheHitRate   float64          `json:"cacheHitRate"`
	ByOperation    map[string]int64 `json:"byOperation"`
	UpstreamErrors map[string]int64 `json:"upstreamErrors"`
	Period         string           `json:"period"`
}
