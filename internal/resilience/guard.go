package resilience

import (
	"context"

	"github.com/mwhitt/parkcache/internal/config"
)

// Guard combines retry and circuit breaking around an operation.
//
// Retry wraps the breaker so each attempt counts toward circuit state
// individually; the breaker can then fast-fail remaining attempts once the
// downstream Redis is known unhealthy.
type Guard struct {
	breaker *CircuitBreaker
	retry   *Retry
}

// NewGuard creates a guard from configuration. Disabled patterns are simply
// not applied.
func NewGuard(cfg *config.Config) *Guard {
	g := &Guard{}

	if cfg.CircuitBreaker.Enabled {
		g.breaker = NewCircuitBreaker(cfg.CircuitBreaker)
	}
	if cfg.Retry.Enabled {
		g.retry = NewRetry(cfg.Retry)
	}

	return g
}

// Do runs fn through the configured patterns.
func (g *Guard) Do(ctx context.Context, fn func(context.Context) error) error {
	attempt := func(ctx context.Context) error {
		if g.breaker == nil {
			return fn(ctx)
		}
		return g.breaker.Execute(func() error {
			return fn(ctx)
		})
	}

	if g.retry == nil {
		return attempt(ctx)
	}
	return g.retry.Do(ctx, attempt)
}

// IsCircuitOpen returns true if the circuit breaker is open.
func (g *Guard) IsCircuitOpen() bool {
	return g.breaker != nil && g.breaker.IsOpen()
}

// CircuitState returns the current circuit state. Without a breaker the
// circuit is always closed.
func (g *Guard) CircuitState() State {
	if g.breaker == nil {
		return StateClosed
	}
	return g.breaker.State()
}

// SetOnCircuitStateChange sets a callback for circuit state changes.
func (g *Guard) SetOnCircuitStateChange(fn func(from, to State)) {
	if g.breaker != nil {
		g.breaker.SetOnStateChange(fn)
	}
}
