package parkcache

import (
	"github.com/mwhitt/parkcache/internal/types"
)

type (
	// CacheOptions contains per-operation options.
	CacheOptions = types.CacheOptions
	// CacheEntry represents a cached value with metadata.
	CacheEntry = types.CacheEntry
	// MemoryTierStats holds counters for the in-process tier.
	MemoryTierStats = types.MemoryTierStats
	// Serializer provides serialization and deserialization operations.
	Serializer = types.Serializer
	// MetricsRecorder provides operations for recording cache metrics.
	MetricsRecorder = types.MetricsRecorder
	// Logger provides logging operations.
	Logger = types.Logger
	// Publisher sends metrics to an external system such as a StatsD agent.
	Publisher = types.Publisher
	// PublisherHealthMetrics is the batch of gauges published on each interval.
	PublisherHealthMetrics = types.PublisherHealthMetrics
)

// DefaultOptions returns a default CacheOptions configuration:
// both tiers enabled, no TTL override, synchronous writes.
func DefaultOptions() *CacheOptions {
	return types.DefaultOptions()
}
