// Package types provides shared types for the parkcache library.
// This package breaks import cycles between pkg/parkcache and internal/cache.
package types

import "time"

// CacheOptions controls which tiers an operation touches and how long the
// resulting entry lives. The zero TTL means each tier applies its own default.
type CacheOptions struct {
	TTL           time.Duration
	UseMemory     bool
	UseRedis      bool
	FireAndForget bool
}

// DefaultOptions returns options with both tiers enabled and no TTL override.
func DefaultOptions() *CacheOptions {
	return &CacheOptions{
		UseMemory: true,
		UseRedis:  true,
	}
}

// Tiers returns a short label of the enabled tiers, used for metrics tags.
func (o *CacheOptions) Tiers() string {
	switch {
	case o.UseMemory && o.UseRedis:
		return "memory+redis"
	case o.UseMemory:
		return "memory"
	case o.UseRedis:
		return "redis"
	default:
		return "none"
	}
}

// CacheEntry represents a cached value with metadata.
type CacheEntry struct {
	Key       string
	Value     []byte
	TTL       time.Duration
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the entry has passed its expiry time.
// Entries without an expiry time never expire.
func (e *CacheEntry) IsExpired() bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(e.ExpiresAt)
}

// MemoryTierStats holds counters for the in-process tier.
type MemoryTierStats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
}
