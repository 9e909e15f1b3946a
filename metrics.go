package kaio

import (
	"sync/atomic"
	"time"
)

// WaitBuckets defines the harvest-wait histogram buckets in nanoseconds.
// Buckets cover from 1us to 10s with logarithmic spacing.
var WaitBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numWaitBuckets = 8

// Metrics tracks submission and harvest statistics for an IOContext. All
// counters are atomic; a single Metrics may be shared by several contexts.
type Metrics struct {
	// Submission counters
	SubmitCalls    atomic.Uint64 // io_submit invocations
	Submitted      atomic.Uint64 // descriptors the kernel accepted
	PartialSubmits atomic.Uint64 // calls where accepted < batch size
	SubmitErrors   atomic.Uint64

	// Harvest counters
	HarvestCalls  atomic.Uint64 // io_getevents invocations
	Completions   atomic.Uint64 // events delivered
	HarvestErrors atomic.Uint64

	// Cancellation counters
	Cancels      atomic.Uint64 // io_cancel calls that succeeded
	CancelErrors atomic.Uint64 // io_cancel calls the kernel refused

	// Harvest wait tracking
	WaitTotalNs atomic.Uint64 // cumulative time blocked in io_getevents

	// Wait histogram; bucket[i] counts waits <= WaitBuckets[i], with the
	// last bucket absorbing everything longer
	waitBuckets [numWaitBuckets]atomic.Uint64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveHarvestWait records time spent blocked in a harvest call.
func (m *Metrics) ObserveHarvestWait(d time.Duration) {
	ns := uint64(d.Nanoseconds())
	m.WaitTotalNs.Add(ns)
	for i, limit := range WaitBuckets {
		if ns <= limit {
			m.waitBuckets[i].Add(1)
			return
		}
	}
	m.waitBuckets[numWaitBuckets-1].Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	SubmitCalls    uint64
	Submitted      uint64
	PartialSubmits uint64
	SubmitErrors   uint64

	HarvestCalls  uint64
	Completions   uint64
	HarvestErrors uint64

	Cancels      uint64
	CancelErrors uint64

	WaitTotalNs uint64
	WaitBuckets [numWaitBuckets]uint64
}

// Snapshot returns a consistent-enough copy for reporting. Counters are read
// individually, so a snapshot taken during heavy traffic may straddle
// updates; sums are still monotonic.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		SubmitCalls:    m.SubmitCalls.Load(),
		Submitted:      m.Submitted.Load(),
		PartialSubmits: m.PartialSubmits.Load(),
		SubmitErrors:   m.SubmitErrors.Load(),
		HarvestCalls:   m.HarvestCalls.Load(),
		Completions:    m.Completions.Load(),
		HarvestErrors:  m.HarvestErrors.Load(),
		Cancels:        m.Cancels.Load(),
		CancelErrors:   m.CancelErrors.Load(),
		WaitTotalNs:    m.WaitTotalNs.Load(),
	}
	for i := range s.WaitBuckets {
		s.WaitBuckets[i] = m.waitBuckets[i].Load()
	}
	return s
}

// InFlightDelta returns submitted minus completed, an estimate of requests
// currently inside the kernel. It can be transiently negative when a
// snapshot straddles a harvest.
func (s MetricsSnapshot) InFlightDelta() int64 {
	return int64(s.Submitted) - int64(s.Completions)
}
