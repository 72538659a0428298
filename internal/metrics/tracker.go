// Package metrics provides cache operation metrics collection and publishing.
package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mwhitt/parkcache/internal/types"
)

const (
	defaultLatencyBufferSize = 10000
)

// Tracker accumulates operation counters and latencies in memory. All
// counter updates are atomic; latencies go into a fixed circular buffer so
// recording stays O(1) with no allocations.
type Tracker struct {
	memoryHits   atomic.Int64
	memoryMisses atomic.Int64
	redisHits    atomic.Int64
	redisMisses  atomic.Int64

	fetches     atomic.Int64
	fetchErrors atomic.Int64

	getCount             atomic.Int64
	setCount             atomic.Int64
	deleteCount          atomic.Int64
	invalidatedByPattern atomic.Int64

	errorCount atomic.Int64

	latencyMu     sync.RWMutex
	latencyBuffer []time.Duration
	latencyIndex  int
	latencyCount  int

	totalBytesWritten atomic.Int64

	cbStateChanges atomic.Int64
}

func NewTracker() *Tracker {
	return &Tracker{
		latencyBuffer: make([]time.Duration, defaultLatencyBufferSize),
	}
}

func (t *Tracker) RecordHit(tier string, key string, latency time.Duration) {
	switch tier {
	case "memory":
		t.memoryHits.Add(1)
	case "redis":
		t.redisHits.Add(1)
	}
	t.getCount.Add(1)
	t.recordLatency(latency)
}

func (t *Tracker) RecordMiss(tier string, key string, latency time.Duration) {
	switch tier {
	case "memory":
		t.memoryMisses.Add(1)
	case "redis":
		t.redisMisses.Add(1)
	}
	t.getCount.Add(1)
	t.recordLatency(latency)
}

// RecordFetch records a fallback invocation on a full miss.
func (t *Tracker) RecordFetch(key string, latency time.Duration, err error) {
	t.fetches.Add(1)
	if err != nil {
		t.fetchErrors.Add(1)
	}
	t.recordLatency(latency)
}

func (t *Tracker) RecordSet(tier string, key string, size int, latency time.Duration) {
	t.setCount.Add(1)
	t.totalBytesWritten.Add(int64(size))
	t.recordLatency(latency)
}

// RecordDelete records a delete operation.
func (t *Tracker) RecordDelete(tier string, key string, latency time.Duration) {
	t.deleteCount.Add(1)
	t.recordLatency(latency)
}

// RecordInvalidatePattern records a bulk invalidation. A negative removed
// count means the number of removed entries is unknown.
func (t *Tracker) RecordInvalidatePattern(pattern string, removed int) {
	t.deleteCount.Add(1)
	if removed > 0 {
		t.invalidatedByPattern.Add(int64(removed))
	}
}

// RecordError records an error.
func (t *Tracker) RecordError(tier string, operation string, err error) {
	t.errorCount.Add(1)
}

// RecordCircuitStateChange records circuit breaker state transitions.
func (t *Tracker) RecordCircuitStateChange(from, to string) {
	t.cbStateChanges.Add(1)
}

// recordLatency adds a latency measurement to the circular buffer.
func (t *Tracker) recordLatency(latency time.Duration) {
	t.latencyMu.Lock()
	t.latencyBuffer[t.latencyIndex] = latency
	t.latencyIndex = (t.latencyIndex + 1) % len(t.latencyBuffer)
	if t.latencyCount < len(t.latencyBuffer) {
		t.latencyCount++
	}
	t.latencyMu.Unlock()
}

// Snapshot returns the current metrics snapshot.
func (t *Tracker) Snapshot() types.MetricsSnapshot {
	// RLock so concurrent snapshots don't serialize.
	t.latencyMu.RLock()
	count := t.latencyCount
	latencyCopy := make([]time.Duration, count)
	// Copy from the circular buffer in insertion order.
	if count > 0 {
		if count < len(t.latencyBuffer) {
			copy(latencyCopy, t.latencyBuffer[:count])
		} else {
			firstPart := len(t.latencyBuffer) - t.latencyIndex
			copy(latencyCopy[:firstPart], t.latencyBuffer[t.latencyIndex:])
			copy(latencyCopy[firstPart:], t.latencyBuffer[:t.latencyIndex])
		}
	}
	t.latencyMu.RUnlock()

	snapshot := types.MetricsSnapshot{
		Timestamp:    time.Now(),
		MemoryHits:   t.memoryHits.Load(),
		MemoryMisses: t.memoryMisses.Load(),
		RedisHits:    t.redisHits.Load(),
		RedisMisses:  t.redisMisses.Load(),
		Fetches:      t.fetches.Load(),
		FetchErrors:  t.fetchErrors.Load(),
		GetCount:     t.getCount.Load(),
		SetCount:     t.setCount.Load(),
		DeleteCount:  t.deleteCount.Load(),
		ErrorCount:   t.errorCount.Load(),
	}

	if len(latencyCopy) > 0 {
		snapshot.AvgLatencyMs = float64(avgDuration(latencyCopy).Milliseconds())
		snapshot.P50LatencyMs = float64(percentile(latencyCopy, 50).Milliseconds())
		snapshot.P95LatencyMs = float64(percentile(latencyCopy, 95).Milliseconds())
		snapshot.P99LatencyMs = float64(percentile(latencyCopy, 99).Milliseconds())
	}

	return snapshot
}

// Reset clears all metrics.
func (t *Tracker) Reset() {
	t.memoryHits.Store(0)
	t.memoryMisses.Store(0)
	t.redisHits.Store(0)
	t.redisMisses.Store(0)
	t.fetches.Store(0)
	t.fetchErrors.Store(0)
	t.getCount.Store(0)
	t.setCount.Store(0)
	t.deleteCount.Store(0)
	t.invalidatedByPattern.Store(0)
	t.errorCount.Store(0)
	t.totalBytesWritten.Store(0)
	t.cbStateChanges.Store(0)

	t.latencyMu.Lock()
	t.latencyIndex = 0
	t.latencyCount = 0
	t.latencyMu.Unlock()
}

func avgDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

func percentile(durations []time.Duration, p int) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	slices.Sort(sorted)

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}

var _ types.MetricsRecorder = (*Tracker)(nil)
