package metrics

import (
	"testing"
	"time"
)

func TestCountersAndSnapshot(t *testing.T) {
	m := New()
	m.RequestsTotal.Add(3)
	m.RequestsAssessment.Add(2)
	m.RequestsFirstAid.Add(1)
	m.FallbacksServed.Add(1)
	m.ContextsAnonymized.Add(3)

	snap := m.TakeSnapshot()
	if snap.RequestsTotal != 3 || snap.RequestsAssessment != 2 || snap.RequestsFirstAid != 1 {
		t.Errorf("request counters = %+v", snap)
	}
	if snap.FallbacksServed != 1 || snap.ContextsAnonymized != 3 {
		t.Errorf("outcome counters = %+v", snap)
	}
	if snap.UptimeSeconds < 0 {
		t.Errorf("uptime = %f", snap.UptimeSeconds)
	}
}

func TestCacheCountersPerNamespace(t *testing.T) {
	m := New()
	m.CacheHit("assessment")
	m.CacheHit("assessment")
	m.CacheMiss("first_aid")
	m.CacheHit("unknown") // dropped, not grown

	snap := m.TakeSnapshot()
	if snap.CacheHits["assessment"] != 2 {
		t.Errorf("assessment hits = %d", snap.CacheHits["assessment"])
	}
	if snap.CacheMisses["first_aid"] != 1 {
		t.Errorf("first_aid misses = %d", snap.CacheMisses["first_aid"])
	}
	if snap.CacheHits["first_aid"] != 0 || snap.CacheMisses["assessment"] != 0 {
		t.Errorf("untouched counters nonzero: %+v", snap)
	}
	if _, ok := snap.CacheHits["unknown"]; ok {
		t.Error("unknown namespace leaked into snapshot")
	}
}

func TestProviderLatency(t *testing.T) {
	m := New()
	m.RecordProviderLatency(100 * time.Millisecond)
	m.RecordProviderLatency(300 * time.Millisecond)

	lat := m.TakeSnapshot().ProviderLatency
	if lat.Count != 2 {
		t.Fatalf("count = %d", lat.Count)
	}
	if lat.MinMs != 100 || lat.MaxMs != 300 {
		t.Errorf("min/max = %f/%f", lat.MinMs, lat.MaxMs)
	}
	if lat.AvgMs != 200 {
		t.Errorf("avg = %f", lat.AvgMs)
	}
}

func TestEmptyLatencySnapshot(t *testing.T) {
	lat := New().TakeSnapshot().ProviderLatency
	if lat.Count != 0 || lat.AvgMs != 0 {
		t.Errorf("latency = %+v", lat)
	}
}
