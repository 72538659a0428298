package parkcache

import (
	"github.com/mwhitt/parkcache/internal/types"
)

// CacheError represents a cache operation error.
type CacheError = types.CacheError

var (
	// ErrCacheMiss indicates that a requested key was not found in the cache.
	ErrCacheMiss = types.ErrCacheMiss
	// ErrRedisUnavailable indicates that the Redis server is not available.
	ErrRedisUnavailable = types.ErrRedisUnavailable
	// ErrCircuitOpen indicates that the circuit breaker is open.
	ErrCircuitOpen = types.ErrCircuitOpen
	// ErrClosed indicates that the cache has been closed.
	ErrClosed = types.ErrClosed
	// ErrWriteQueueFull indicates that the async write queue is full.
	ErrWriteQueueFull = types.ErrWriteQueueFull
	// ErrInvalidKey indicates that a cache key is invalid.
	ErrInvalidKey = types.ErrInvalidKey
	// ErrNilFetch indicates that GetOrFetch was called without a fetch function.
	ErrNilFetch = types.ErrNilFetch
	// ErrShutdownTimeout indicates that background operations did not finish
	// before the close timeout.
	ErrShutdownTimeout = types.ErrShutdownTimeout
)

// NewCacheError creates a new cache error with operation, key, tier, and underlying error.
func NewCacheError(op, key, tier string, err error) *CacheError {
	return types.NewCacheError(op, key, tier, err)
}

// IsCacheMiss returns true if the error is a cache miss.
func IsCacheMiss(err error) bool {
	return types.IsCacheMiss(err)
}

// IsRedisUnavailable returns true if the error indicates Redis is unavailable.
func IsRedisUnavailable(err error) bool {
	return types.IsRedisUnavailable(err)
}

// IsCircuitOpen returns true if the error indicates the circuit breaker is open.
func IsCircuitOpen(err error) bool {
	return types.IsCircuitOpen(err)
}

// IsInvalidKey returns true if the error indicates an invalid cache key.
func IsInvalidKey(err error) bool {
	return types.IsInvalidKey(err)
}

// IsRetryable returns true if the error can be retried.
func IsRetryable(err error) bool {
	return types.IsRetryable(err)
}
