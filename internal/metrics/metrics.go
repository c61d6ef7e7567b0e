package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Feed Key Metrics
	KeysIssuedTotal       *prometheus.CounterVec
	KeyGenerationDuration prometheus.Histogram
	KeyAuthTotal          *prometheus.CounterVec
	KeysRevokedTotal      prometheus.Counter

	// Feed Metrics
	FeedsRenderedTotal *prometheus.CounterVec

	// Authentication Metrics
	AuthLoginTotal  *prometheus.CounterVec
	AuthLogoutTotal prometheus.Counter

	// Bookkeeping Metrics
	BookkeepingErrorsTotal prometheus.Counter

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag.
// If enabled=true, returns Prometheus-based Metrics.
// If enabled=false, returns NoopMetrics (zero overhead).
// Uses sync.Once to ensure Prometheus metrics are only registered once.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		KeysIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_keys_issued_total",
				Help: "Total number of feed key issuance calls",
			},
			[]string{"result"}, // created, existing, error
		),
		KeyGenerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "feed_key_generation_duration_seconds",
				Help:    "Time taken to generate and persist a new feed key",
				Buckets: prometheus.DefBuckets,
			},
		),
		KeyAuthTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_key_auth_total",
				Help: "Total number of feed key authentication attempts",
			},
			[]string{"result"}, // success, unknown
		),
		KeysRevokedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "feed_keys_revoked_total",
				Help: "Total number of feed keys revoked by users",
			},
		),
		FeedsRenderedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feeds_rendered_total",
				Help: "Total number of feeds rendered",
			},
			[]string{"format"}, // rss, atom
		),
		AuthLoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"}, // success, failure
		),
		AuthLogoutTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_logout_total",
				Help: "Total number of logouts",
			},
		),
		BookkeepingErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "feed_key_bookkeeping_errors_total",
				Help: "Total number of failed usage-metadata updates after a granted authentication",
			},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
	}
}

// RecordKeyIssued records a key issuance call and its outcome
func (m *Metrics) RecordKeyIssued(result string, generationTime time.Duration) {
	m.KeysIssuedTotal.WithLabelValues(result).Inc()
	if result == "created" {
		m.KeyGenerationDuration.Observe(generationTime.Seconds())
	}
}

// RecordKeyAuth records a feed key authentication attempt
func (m *Metrics) RecordKeyAuth(result string) {
	m.KeyAuthTotal.WithLabelValues(result).Inc()
}

// RecordKeyRevoked records user-initiated key revocations
func (m *Metrics) RecordKeyRevoked(count int64) {
	m.KeysRevokedTotal.Add(float64(count))
}

// RecordFeedRendered records a rendered feed
func (m *Metrics) RecordFeedRendered(format string) {
	m.FeedsRenderedTotal.WithLabelValues(format).Inc()
}

// RecordLogin records a login attempt
func (m *Metrics) RecordLogin(success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.AuthLoginTotal.WithLabelValues(result).Inc()
}

// RecordLogout records a logout
func (m *Metrics) RecordLogout() {
	m.AuthLogoutTotal.Inc()
}

// RecordBookkeepingError records a failed usage-metadata update
func (m *Metrics) RecordBookkeepingError() {
	m.BookkeepingErrorsTotal.Inc()
}
