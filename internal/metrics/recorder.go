package metrics

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Feed key lifecycle
	RecordKeyIssued(result string, generationTime time.Duration)
	RecordKeyAuth(result string)
	RecordKeyRevoked(count int64)

	// Feed rendering
	RecordFeedRendered(format string)

	// Authentication
	RecordLogin(success bool)
	RecordLogout()

	// Bookkeeping failures after a granted authentication
	RecordBookkeepingError()
}
