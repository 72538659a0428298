package cache

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/allegro/bigcache/v3"

	"github.com/mwhitt/parkcache/internal/config"
	"github.com/mwhitt/parkcache/internal/types"
)

// MemoryTier implements the in-process cache tier using BigCache.
type MemoryTier struct {
	cache  *bigcache.BigCache
	config config.MemoryConfig
	logger *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64

	closed atomic.Bool
}

// NewMemoryTier creates the memory tier with the given configuration.
func NewMemoryTier(cfg config.MemoryConfig, logger *slog.Logger) (*MemoryTier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mt := &MemoryTier{
		config: cfg,
		logger: logger.With("component", "memory-tier"),
	}

	bcConfig := bigcache.Config{
		Shards:             cfg.Shards,
		LifeWindow:         cfg.DefaultTTL,
		CleanWindow:        cfg.CleanupInterval,
		MaxEntriesInWindow: 1000 * 10 * 60, // Estimated entries in LifeWindow
		MaxEntrySize:       cfg.MaxEntrySize,
		HardMaxCacheSize:   cfg.MaxSizeMB,
		Verbose:            false,
		Logger:             &bigcacheLogger{logger: logger},
		OnRemoveWithReason: func(key string, entry []byte, reason bigcache.RemoveReason) {
			if reason == bigcache.NoSpace || reason == bigcache.Expired {
				mt.evictions.Add(1)
			}
		},
	}

	bc, err := bigcache.New(context.Background(), bcConfig)
	if err != nil {
		return nil, err
	}

	mt.cache = bc
	return mt, nil
}

// Name returns the tier name.
func (c *MemoryTier) Name() string {
	return "memory"
}

// IsAvailable returns true if the tier is not closed.
func (c *MemoryTier) IsAvailable() bool {
	return !c.closed.Load()
}

// Get retrieves a value from the memory tier.
func (c *MemoryTier) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, types.ErrClosed
	}

	data, err := c.cache.Get(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			c.misses.Add(1)
			return nil, types.ErrCacheMiss
		}
		return nil, types.NewCacheError("Get", key, "memory", err)
	}

	c.hits.Add(1)
	return data, nil
}

// Set stores a value in the memory tier. Entries expire on the tier-wide
// LifeWindow; per-entry TTLs apply only to the Redis tier.
func (c *MemoryTier) Set(ctx context.Context, key string, value []byte, opts *types.CacheOptions) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	if err := c.cache.Set(key, value); err != nil {
		return types.NewCacheError("Set", key, "memory", err)
	}

	c.sets.Add(1)
	return nil
}

// Delete removes a value from the memory tier.
func (c *MemoryTier) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	if err := c.cache.Delete(key); err != nil {
		if err != bigcache.ErrEntryNotFound {
			return types.NewCacheError("Delete", key, "memory", err)
		}
	}

	c.deletes.Add(1)
	return nil
}

// Contains checks if a key exists in the memory tier.
func (c *MemoryTier) Contains(ctx context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, types.ErrClosed
	}

	_, err := c.cache.Get(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Clear removes all entries from the memory tier.
func (c *MemoryTier) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	return c.cache.Reset()
}

// ClearByPattern removes entries whose key matches the wildcard pattern.
// The pattern is evaluated client-side: each * matches any substring.
func (c *MemoryTier) ClearByPattern(ctx context.Context, pattern string) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	var keysToDelete []string

	iter := c.cache.Iterator()
	for iter.SetNext() {
		entry, err := iter.Value()
		if err != nil {
			continue
		}

		if matchPattern(entry.Key(), pattern) {
			keysToDelete = append(keysToDelete, entry.Key())
		}
	}

	for _, key := range keysToDelete {
		_ = c.cache.Delete(key)
	}

	c.logger.Debug("Cleared entries by pattern",
		"pattern", pattern,
		"deleted", len(keysToDelete),
	)

	return nil
}

// Close closes the memory tier and releases resources.
func (c *MemoryTier) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.cache.Close()
}

// Stats returns memory tier counters.
func (c *MemoryTier) Stats() types.MemoryTierStats {
	return types.MemoryTierStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Evictions: c.evictions.Load(),
	}
}

// EntryCount returns the number of entries in the memory tier.
func (c *MemoryTier) EntryCount() int {
	return c.cache.Len()
}

// Size returns the current size of the memory tier in bytes.
func (c *MemoryTier) Size() int64 {
	return int64(c.cache.Capacity())
}

// MaxSize returns the maximum size of the memory tier in bytes.
func (c *MemoryTier) MaxSize() int64 {
	return int64(c.config.MaxSizeMB) * 1024 * 1024
}

// HitRatio returns the tier hit ratio.
func (c *MemoryTier) HitRatio() float64 {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// matchPattern reports whether key matches a glob where each * matches any
// substring. This is the memory-tier dialect; the Redis tier interprets the
// same pattern string with its own MATCH syntax.
func matchPattern(key, pattern string) bool {
	if pattern == "*" {
		return true
	}

	parts := strings.Split(pattern, "*")

	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	rest := key[len(parts[0]):]

	if len(parts) == 1 {
		return rest == ""
	}

	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}

	return strings.HasSuffix(rest, parts[len(parts)-1])
}

type bigcacheLogger struct {
	logger *slog.Logger
}

func (l *bigcacheLogger) Printf(format string, args ...any) {
	l.logger.Debug("bigcache: "+format, args...)
}

var _ types.MemoryTier = (*MemoryTier)(nil)
