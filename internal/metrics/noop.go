package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder.
// All methods are empty and do nothing, providing zero overhead when metrics are disabled.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordKeyIssued(result string, generationTime time.Duration) {}
func (n *NoopMetrics) RecordKeyAuth(result string)                                {}
func (n *NoopMetrics) RecordKeyRevoked(count int64)                               {}
func (n *NoopMetrics) RecordFeedRendered(format string)                           {}
func (n *NoopMetrics) RecordLogin(success bool)                                   {}
func (n *NoopMetrics) RecordLogout()                                              {}
func (n *NoopMetrics) RecordBookkeepingError()                                    {}
