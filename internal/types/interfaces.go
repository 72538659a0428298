package types

import (
	"context"
	"time"
)

type TierInfo interface {
	Name() string
	IsAvailable() bool
}

type TierReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Contains(ctx context.Context, key string) (bool, error)
}

type TierWriter interface {
	Set(ctx context.Context, key string, value []byte, opts *CacheOptions) error
	Delete(ctx context.Context, key string) error
}

type TierClearer interface {
	Clear(ctx context.Context) error
	ClearByPattern(ctx context.Context, pattern string) error
}

type TierCloser interface {
	Close() error
}

type MemoryStatsProvider interface {
	Stats() MemoryTierStats
	EntryCount() int
	Size() int64
	MaxSize() int64
	HitRatio() float64
}

type RedisStatsProvider interface {
	PendingWrites() int
	DroppedWrites() int64
}

// MemoryTier is the local in-process cache layer.
type MemoryTier interface {
	TierInfo
	TierReader
	TierWriter
	TierClearer
	TierCloser
	MemoryStatsProvider
}

// RedisTier is the remote key-value cache layer.
type RedisTier interface {
	TierInfo
	TierReader
	TierWriter
	TierClearer
	TierCloser
	RedisStatsProvider
}

type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

type MetricsRecorder interface {
	RecordHit(tier string, key string, latency time.Duration)
	RecordMiss(tier string, key string, latency time.Duration)
	RecordFetch(key string, latency time.Duration, err error)
	RecordSet(tier string, key string, size int, latency time.Duration)
	RecordDelete(tier string, key string, latency time.Duration)
	RecordInvalidatePattern(pattern string, removed int)
	RecordError(tier string, operation string, err error)
	RecordCircuitStateChange(from, to string)
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Publisher sends metrics to an external system such as a StatsD agent.
type Publisher interface {
	Gauge(name string, value float64, tags ...string)
	Incr(name string, tags ...string)
	Count(name string, value int64, tags ...string)
	Histogram(name string, value float64, tags ...string)
	Timing(name string, duration time.Duration, tags ...string)
	Event(title, text, alertType string, tags ...string)
	PublishHealthMetrics(metrics *PublisherHealthMetrics)
	Close() error
}

// PublisherHealthMetrics is the batch of gauges published on each
// health-metrics interval.
type PublisherHealthMetrics struct {
	MemoryUsedBytes       int64
	MemoryLimitBytes      int64
	MemoryUsagePercentage float64
	TotalEntries          int64
	HitRatio              float64
	AverageLatencyMs      float64
	RedisConnected        bool
}
