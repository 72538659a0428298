package metrics

import (
	"time"

	"github.com/mwhitt/parkcache/internal/types"
)

// PublishingTracker wraps a Tracker and forwards each recorded operation to
// a Publisher with per-operation tags, so counters stay queryable locally
// while the same stream lands in the metrics backend.
type PublishingTracker struct {
	tracker   *Tracker
	publisher types.Publisher
}

// NewPublishingTracker creates a tracker that also publishes each operation.
func NewPublishingTracker(tracker *Tracker, publisher types.Publisher) *PublishingTracker {
	if tracker == nil {
		tracker = NewTracker()
	}
	if publisher == nil {
		publisher = NewNoOpPublisher()
	}
	return &PublishingTracker{
		tracker:   tracker,
		publisher: publisher,
	}
}

func (p *PublishingTracker) RecordHit(tier string, key string, latency time.Duration) {
	p.tracker.RecordHit(tier, key, latency)
	p.publisher.Incr("cache.get", TierTag(tier), StatusTag("hit"))
	p.publisher.Timing("cache.get.latency", latency, TierTag(tier))
}

func (p *PublishingTracker) RecordMiss(tier string, key string, latency time.Duration) {
	p.tracker.RecordMiss(tier, key, latency)
	p.publisher.Incr("cache.get", TierTag(tier), StatusTag("miss"))
	p.publisher.Timing("cache.get.latency", latency, TierTag(tier))
}

func (p *PublishingTracker) RecordFetch(key string, latency time.Duration, err error) {
	p.tracker.RecordFetch(key, latency, err)
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.publisher.Incr("cache.fetch", StatusTag(status))
	p.publisher.Timing("cache.fetch.latency", latency, StatusTag(status))
}

func (p *PublishingTracker) RecordSet(tier string, key string, size int, latency time.Duration) {
	p.tracker.RecordSet(tier, key, size, latency)
	p.publisher.Incr("cache.set", TierTag(tier))
	p.publisher.Histogram("cache.set.size_bytes", float64(size), TierTag(tier))
	p.publisher.Timing("cache.set.latency", latency, TierTag(tier))
}

func (p *PublishingTracker) RecordDelete(tier string, key string, latency time.Duration) {
	p.tracker.RecordDelete(tier, key, latency)
	p.publisher.Incr("cache.delete", TierTag(tier))
}

func (p *PublishingTracker) RecordInvalidatePattern(pattern string, removed int) {
	p.tracker.RecordInvalidatePattern(pattern, removed)
	p.publisher.Incr("cache.invalidate_pattern", PatternTag(pattern))
	if removed >= 0 {
		p.publisher.Count("cache.invalidate_pattern.removed", int64(removed), PatternTag(pattern))
	}
}

func (p *PublishingTracker) RecordError(tier string, operation string, err error) {
	p.tracker.RecordError(tier, operation, err)
	p.publisher.Incr("cache.error", TierTag(tier), OperationTag(operation))
}

func (p *PublishingTracker) RecordCircuitStateChange(from, to string) {
	p.tracker.RecordCircuitStateChange(from, to)
	p.publisher.Incr("cache.circuit_state_change", CircuitStateTag(to))
	p.publisher.Event(
		"Circuit breaker state change",
		"Redis circuit moved from "+from+" to "+to,
		alertTypeForState(to),
		CircuitStateTag(to),
	)
}

// Snapshot returns the underlying tracker's snapshot.
func (p *PublishingTracker) Snapshot() types.MetricsSnapshot {
	return p.tracker.Snapshot()
}

func alertTypeForState(state string) string {
	if state == "open" {
		return "error"
	}
	return "info"
}

var _ types.MetricsRecorder = (*PublishingTracker)(nil)
