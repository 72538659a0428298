package parkcache

import (
	"context"

	"github.com/mwhitt/parkcache/internal/cache"
)

// FetchFunc produces a value on a full cache miss.
type FetchFunc = cache.FetchFunc

// Cache is the two-tier cache coordinator surface.
type Cache interface {
	// Get retrieves a value without invoking any fetch fallback.
	// Returns ErrCacheMiss when no enabled tier holds the key.
	Get(ctx context.Context, key string, dest any, opts ...Option) error

	// GetOrFetch retrieves a value, invoking fetch on a full miss and
	// filling both enabled tiers with the result. Concurrent misses for
	// the same key share a single fetch invocation.
	GetOrFetch(ctx context.Context, key string, dest any, fetch FetchFunc, opts ...Option) error

	// Set stores a value in the enabled tiers.
	Set(ctx context.Context, key string, value any, opts ...Option) error

	// Contains reports whether any enabled tier holds the key.
	Contains(ctx context.Context, key string, opts ...Option) (bool, error)

	// Invalidate removes a key from both tiers.
	Invalidate(ctx context.Context, key string) error

	// InvalidatePattern removes all keys matching the glob from both tiers.
	InvalidatePattern(ctx context.Context, pattern string) error

	// Clear removes all entries from both tiers.
	Clear(ctx context.Context) error

	// Health returns a per-tier health report.
	Health(ctx context.Context) (*HealthReport, error)

	IsHealthy(ctx context.Context) bool
	IsRedisAvailable() bool
	IsMemoryAvailable() bool

	// Metrics returns a point-in-time snapshot of operation counters.
	Metrics() MetricsSnapshot

	Close() error
}
