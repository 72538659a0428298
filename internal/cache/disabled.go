package cache

import (
	"context"

	"github.com/mwhitt/parkcache/internal/types"
)

// DisabledMemoryTier is a no-op memory tier used when the memory cache is
// disabled by configuration.
type DisabledMemoryTier struct{}

func NewDisabledMemoryTier() *DisabledMemoryTier {
	return &DisabledMemoryTier{}
}

func (c *DisabledMemoryTier) Name() string { return "memory-disabled" }

func (c *DisabledMemoryTier) IsAvailable() bool { return false }

func (c *DisabledMemoryTier) Close() error { return nil }

func (c *DisabledMemoryTier) EntryCount() int { return 0 }

func (c *DisabledMemoryTier) Size() int64 { return 0 }

func (c *DisabledMemoryTier) MaxSize() int64 { return 0 }

func (c *DisabledMemoryTier) HitRatio() float64 { return 0 }

func (c *DisabledMemoryTier) Stats() types.MemoryTierStats { return types.MemoryTierStats{} }

func (c *DisabledMemoryTier) Clear(ctx context.Context) error { return nil }

func (c *DisabledMemoryTier) ClearByPattern(ctx context.Context, pattern string) error { return nil }

func (c *DisabledMemoryTier) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, types.ErrCacheMiss
}

func (c *DisabledMemoryTier) Set(ctx context.Context, key string, value []byte, opts *types.CacheOptions) error {
	return nil
}

func (c *DisabledMemoryTier) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *DisabledMemoryTier) Contains(ctx context.Context, key string) (bool, error) {
	return false, nil
}

// DisabledRedisTier is a no-op Redis tier used when the remote cache is
// disabled or unreachable at construction.
type DisabledRedisTier struct{}

func NewDisabledRedisTier() *DisabledRedisTier {
	return &DisabledRedisTier{}
}

func (c *DisabledRedisTier) Name() string { return "redis-disabled" }

func (c *DisabledRedisTier) IsAvailable() bool { return false }

func (c *DisabledRedisTier) Close() error { return nil }

func (c *DisabledRedisTier) PendingWrites() int { return 0 }

func (c *DisabledRedisTier) DroppedWrites() int64 { return 0 }

func (c *DisabledRedisTier) Clear(ctx context.Context) error { return nil }

func (c *DisabledRedisTier) ClearByPattern(ctx context.Context, pattern string) error { return nil }

func (c *DisabledRedisTier) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, types.ErrRedisUnavailable
}

func (c *DisabledRedisTier) Set(ctx context.Context, key string, value []byte, opts *types.CacheOptions) error {
	return nil
}

func (c *DisabledRedisTier) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *DisabledRedisTier) Contains(ctx context.Context, key string) (bool, error) {
	return false, nil
}

var _ types.MemoryTier = (*DisabledMemoryTier)(nil)
var _ types.RedisTier = (*DisabledRedisTier)(nil)
