package kaio

import (
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.SubmitCalls.Add(2)
	m.Submitted.Add(10)
	m.PartialSubmits.Add(1)
	m.HarvestCalls.Add(3)
	m.Completions.Add(8)
	m.Cancels.Add(1)

	s := m.Snapshot()
	if s.SubmitCalls != 2 || s.Submitted != 10 || s.PartialSubmits != 1 {
		t.Errorf("submit counters = %d/%d/%d, want 2/10/1", s.SubmitCalls, s.Submitted, s.PartialSubmits)
	}
	if s.HarvestCalls != 3 || s.Completions != 8 {
		t.Errorf("harvest counters = %d/%d, want 3/8", s.HarvestCalls, s.Completions)
	}
	if s.Cancels != 1 {
		t.Errorf("Cancels = %d, want 1", s.Cancels)
	}
	if s.InFlightDelta() != 2 {
		t.Errorf("InFlightDelta = %d, want 2", s.InFlightDelta())
	}
}

func TestObserveHarvestWait(t *testing.T) {
	m := NewMetrics()

	m.ObserveHarvestWait(500 * time.Nanosecond) // <= 1us bucket
	m.ObserveHarvestWait(5 * time.Millisecond)  // <= 10ms bucket
	m.ObserveHarvestWait(30 * time.Second)      // beyond the last bucket

	s := m.Snapshot()
	if s.WaitBuckets[0] != 1 {
		t.Errorf("1us bucket = %d, want 1", s.WaitBuckets[0])
	}
	if s.WaitBuckets[4] != 1 {
		t.Errorf("10ms bucket = %d, want 1", s.WaitBuckets[4])
	}
	if s.WaitBuckets[numWaitBuckets-1] != 1 {
		t.Errorf("last bucket = %d, want 1 (overflow observation)", s.WaitBuckets[numWaitBuckets-1])
	}

	wantTotal := uint64(500 + 5_000_000 + 30_000_000_000)
	if s.WaitTotalNs != wantTotal {
		t.Errorf("WaitTotalNs = %d, want %d", s.WaitTotalNs, wantTotal)
	}
}
