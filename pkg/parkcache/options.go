package parkcache

import (
	"time"

	"github.com/mwhitt/parkcache/internal/types"
)

type (
	Option             = types.Option
	CoordinatorOptions = types.CoordinatorOptions
)

func ApplyOptions(opts ...Option) *CacheOptions {
	return types.ApplyOptions(opts...)
}

// WithTTL overrides the TTL for this operation. The TTL applies to the
// Redis tier; memory entries expire on the tier-wide window.
func WithTTL(ttl time.Duration) Option {
	return func(o *CacheOptions) {
		o.TTL = ttl
	}
}

// WithoutMemory skips the in-process tier for this operation. Use for data
// that must stay consistent across instances.
func WithoutMemory() Option {
	return func(o *CacheOptions) {
		o.UseMemory = false
	}
}

// WithoutRedis skips the Redis tier for this operation.
func WithoutRedis() Option {
	return func(o *CacheOptions) {
		o.UseRedis = false
	}
}

// WithFireAndForget queues the Redis write instead of blocking on it.
// Queued writes may be dropped under load.
func WithFireAndForget() Option {
	return func(o *CacheOptions) {
		o.FireAndForget = true
	}
}

// CoordinatorOption configures the coordinator at construction time.
type CoordinatorOption func(*CoordinatorOptions)

func WithLogger(logger Logger) CoordinatorOption {
	return func(o *CoordinatorOptions) {
		o.Logger = logger
	}
}

func WithMetrics(metrics MetricsRecorder) CoordinatorOption {
	return func(o *CoordinatorOptions) {
		o.Metrics = metrics
	}
}

func WithSerializer(serializer Serializer) CoordinatorOption {
	return func(o *CoordinatorOptions) {
		o.Serializer = serializer
	}
}

func WithRedisAddress(addr string) CoordinatorOption {
	return func(o *CoordinatorOptions) {
		o.RedisAddress = addr
	}
}

func WithRedisPassword(password string) CoordinatorOption {
	return func(o *CoordinatorOptions) {
		o.RedisPassword = types.NewSecretString(password)
	}
}

func WithRedisDB(db int) CoordinatorOption {
	return func(o *CoordinatorOptions) {
		o.RedisDB = db
	}
}

// WithRedisDisabled turns off the Redis tier entirely.
func WithRedisDisabled() CoordinatorOption {
	return func(o *CoordinatorOptions) {
		o.DisableRedis = true
	}
}

// WithResilienceDisabled turns off the circuit breaker and retry around Redis.
func WithResilienceDisabled() CoordinatorOption {
	return func(o *CoordinatorOptions) {
		o.DisableResilience = true
	}
}
