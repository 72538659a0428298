package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/mwhitt/parkcache/internal/config"
	"github.com/mwhitt/parkcache/internal/types"
)

// Retry implements exponential backoff with optional jitter.
type Retry struct {
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	multiplier     float64
	jitter         bool
}

// NewRetry creates a retry policy from configuration.
func NewRetry(cfg config.RetryConfig) *Retry {
	r := &Retry{
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		multiplier:     cfg.Multiplier,
		jitter:         cfg.Jitter,
	}

	if r.maxAttempts <= 0 {
		r.maxAttempts = 3
	}
	if r.initialBackoff <= 0 {
		r.initialBackoff = 100 * time.Millisecond
	}
	if r.maxBackoff <= 0 {
		r.maxBackoff = 2 * time.Second
	}
	if r.multiplier <= 0 {
		r.multiplier = 2.0
	}

	return r
}

// Do runs fn up to maxAttempts times, backing off between attempts.
// Non-retryable errors (misses, open circuit, closed coordinator) return
// immediately.
func (r *Retry) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !types.IsRetryable(err) {
			return err
		}

		if attempt == r.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}

	return lastErr
}

// backoff computes the delay before the given 1-based attempt's retry.
func (r *Retry) backoff(attempt int) time.Duration {
	d := float64(r.initialBackoff) * math.Pow(r.multiplier, float64(attempt-1))
	if d > float64(r.maxBackoff) {
		d = float64(r.maxBackoff)
	}

	if r.jitter {
		// Full jitter: anywhere between half and the full backoff.
		d = d/2 + rand.Float64()*d/2
	}

	return time.Duration(d)
}
