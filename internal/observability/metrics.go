package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus collectors exported on /metrics.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	tokensIssued    *prometheus.CounterVec
	tokenChecks     *prometheus.CounterVec
	userLookups     *prometheus.CounterVec
}

// NewMetrics creates collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Failed HTTP requests by route, method and error code.",
		}, []string{"path", "method", "code"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Signed tokens issued by purpose.",
		}, []string{"purpose"}),
		tokenChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_verifications_total",
			Help: "Token verifications by purpose and outcome.",
		}, []string{"purpose", "result"}),
		userLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_user_lookups_total",
			Help: "User resolutions by source (cache or db).",
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.errors,
		m.tokensIssued,
		m.tokenChecks,
		m.userLookups,
	)
	return m
}

// Registry exposes the registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordTokenIssued counts a newly signed token.
func (m *Metrics) RecordTokenIssued(purpose string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(purpose).Inc()
}

// RecordTokenVerification counts a verification outcome ("ok" or a failure reason).
func (m *Metrics) RecordTokenVerification(purpose, result string) {
	if m == nil {
		return
	}
	m.tokenChecks.WithLabelValues(purpose, result).Inc()
}

// RecordUserLookup counts where a resolved user came from.
func (m *Metrics) RecordUserLookup(source string) {
	if m == nil {
		return
	}
	m.userLookups.WithLabelValues(source).Inc()
}
