package types

import (
	"errors"
	"fmt"
)

var (
	ErrCacheMiss        = errors.New("parkcache: key not found")
	ErrRedisUnavailable = errors.New("parkcache: redis unavailable")
	ErrCircuitOpen      = errors.New("parkcache: circuit breaker open")
	ErrClosed           = errors.New("parkcache: coordinator closed")
	ErrWriteQueueFull   = errors.New("parkcache: write queue full")
	ErrInvalidKey       = errors.New("parkcache: invalid key")
	ErrNilFetch         = errors.New("parkcache: fetch function is nil")
	ErrShutdownTimeout  = errors.New("parkcache: shutdown timeout waiting for background operations")
)

// CacheError carries the operation, key, and tier an error originated from.
type CacheError struct {
	Op   string
	Key  string
	Tier string
	Err  error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("parkcache %s on %s [%s]: %v", e.Op, e.Tier, e.Key, e.Err)
	}
	return fmt.Sprintf("parkcache %s on %s: %v", e.Op, e.Tier, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func NewCacheError(op, key, tier string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Key:  key,
		Tier: tier,
		Err:  err,
	}
}

func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func IsRedisUnavailable(err error) bool {
	return errors.Is(err, ErrRedisUnavailable)
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// IsRetryable reports whether an operation that produced err is worth
// retrying. Misses, closed coordinators, and invalid keys are terminal;
// network and timeout errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if IsCacheMiss(err) {
		return false
	}

	if IsCircuitOpen(err) {
		return false
	}

	if errors.Is(err, ErrClosed) {
		return false
	}

	if errors.Is(err, ErrInvalidKey) {
		return false
	}

	return true
}
