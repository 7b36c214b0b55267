// Package metrics provides lightweight, lock-minimal runtime counters for
// the guidance pipeline.
//
// Counters use sync/atomic so the request path incurs no mutex contention.
// Latency statistics use a single mutex per dimension; they are updated at
// most once per request. Snapshot() renders everything for the /status
// endpoint.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache namespaces tracked per-dimension. Pre-populating the maps in New()
// lets Snapshot iterate a fixed set without racing on map writes.
var knownNamespaces = []string{"assessment", "first_aid"}

// Metrics holds all runtime counters for a running service instance.
// Use New(); the zero value has nil namespace maps.
type Metrics struct {
	// Request counters
	RequestsTotal      atomic.Int64
	RequestsAssessment atomic.Int64
	RequestsFirstAid   atomic.Int64

	// Pipeline outcome counters
	FallbacksServed    atomic.Int64 // responses answered from the knowledge base
	ValidationFailures atomic.Int64 // responses rejected by the safety gate
	ProviderFailures   atomic.Int64 // individual provider call errors
	ServiceErrors      atomic.Int64 // fallback disabled and providers exhausted

	// Anonymizer counters
	ContextsAnonymized atomic.Int64

	// Cache counters per namespace.
	// Maps are written only in New(); concurrent reads are safe without a lock.
	cacheHits   map[string]*atomic.Int64
	cacheMisses map[string]*atomic.Int64

	// Provider latency (mutex-guarded: accumulates floats)
	providerMu   sync.Mutex
	providerStat latencyStats

	startTime time.Time
}

type latencyStats struct {
	count int64
	sum   float64
	min   float64
	max   float64
}

func (s *latencyStats) record(d time.Duration) {
	ms := float64(d.Milliseconds())
	if s.count == 0 || ms < s.min {
		s.min = ms
	}
	if ms > s.max {
		s.max = ms
	}
	s.count++
	s.sum += ms
}

// New returns a Metrics with the start time recorded and per-namespace
// cache counters pre-populated.
func New() *Metrics {
	m := &Metrics{
		startTime:   time.Now(),
		cacheHits:   make(map[string]*atomic.Int64, len(knownNamespaces)),
		cacheMisses: make(map[string]*atomic.Int64, len(knownNamespaces)),
	}
	for _, ns := range knownNamespaces {
		m.cacheHits[ns] = &atomic.Int64{}
		m.cacheMisses[ns] = &atomic.Int64{}
	}
	return m
}

// CacheHit records a cache hit for the namespace. Unknown namespaces are
// dropped rather than grown to keep Snapshot race-free.
func (m *Metrics) CacheHit(namespace string) {
	if c, ok := m.cacheHits[namespace]; ok {
		c.Add(1)
	}
}

// CacheMiss records a cache miss for the namespace.
func (m *Metrics) CacheMiss(namespace string) {
	if c, ok := m.cacheMisses[namespace]; ok {
		c.Add(1)
	}
}

// RecordProviderLatency records one successful provider round trip.
func (m *Metrics) RecordProviderLatency(d time.Duration) {
	m.providerMu.Lock()
	m.providerStat.record(d)
	m.providerMu.Unlock()
}

// LatencySnapshot summarizes one latency dimension in milliseconds.
type LatencySnapshot struct {
	Count int64   `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
}

// Snapshot is a point-in-time copy of all counters, shaped for JSON.
type Snapshot struct {
	UptimeSeconds      float64          `json:"uptime_seconds"`
	RequestsTotal      int64            `json:"requests_total"`
	RequestsAssessment int64            `json:"requests_assessment"`
	RequestsFirstAid   int64            `json:"requests_first_aid"`
	FallbacksServed    int64            `json:"fallbacks_served"`
	ValidationFailures int64            `json:"validation_failures"`
	ProviderFailures   int64            `json:"provider_failures"`
	ServiceErrors      int64            `json:"service_errors"`
	ContextsAnonymized int64            `json:"contexts_anonymized"`
	CacheHits          map[string]int64 `json:"cache_hits"`
	CacheMisses        map[string]int64 `json:"cache_misses"`
	ProviderLatency    LatencySnapshot  `json:"provider_latency"`
}

// TakeSnapshot returns a consistent-enough copy for status reporting.
// Individual counters are read atomically; cross-counter consistency is
// not needed for operator dashboards.
func (m *Metrics) TakeSnapshot() Snapshot {
	snap := Snapshot{
		UptimeSeconds:      time.Since(m.startTime).Seconds(),
		RequestsTotal:      m.RequestsTotal.Load(),
		RequestsAssessment: m.RequestsAssessment.Load(),
		RequestsFirstAid:   m.RequestsFirstAid.Load(),
		FallbacksServed:    m.FallbacksServed.Load(),
		ValidationFailures: m.ValidationFailures.Load(),
		ProviderFailures:   m.ProviderFailures.Load(),
		ServiceErrors:      m.ServiceErrors.Load(),
		ContextsAnonymized: m.ContextsAnonymized.Load(),
		CacheHits:          make(map[string]int64, len(m.cacheHits)),
		CacheMisses:        make(map[string]int64, len(m.cacheMisses)),
	}
	for ns, c := range m.cacheHits {
		snap.CacheHits[ns] = c.Load()
	}
	for ns, c := range m.cacheMisses {
		snap.CacheMisses[ns] = c.Load()
	}

	m.providerMu.Lock()
	st := m.providerStat
	m.providerMu.Unlock()
	snap.ProviderLatency = LatencySnapshot{
		Count: st.count,
		MinMs: st.min,
		MaxMs: st.max,
	}
	if st.count > 0 {
		snap.ProviderLatency.AvgMs = st.sum / float64(st.count)
	}
	return snap
}
