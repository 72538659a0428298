// Package resilience provides the circuit breaker and retry patterns that
// guard Redis round trips.
package resilience

import (
	"sync"
	"time"

	"github.com/mwhitt/parkcache/internal/config"
	"github.com/mwhitt/parkcache/internal/types"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows all requests through.
	StateClosed State = iota
	// StateOpen rejects all requests until the open duration elapses.
	StateOpen
	// StateHalfOpen allows a limited number of probe requests through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker trips after consecutive failures and recovers through a
// half-open probe phase.
type CircuitBreaker struct {
	mu sync.Mutex

	state            State
	failures         int
	successes        int
	halfOpenInFlight int
	openedAt         time.Time

	failureThreshold    int
	successThreshold    int
	openDuration        time.Duration
	halfOpenMaxRequests int

	onStateChange func(from, to State)
}

// NewCircuitBreaker creates a circuit breaker from configuration.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:               StateClosed,
		failureThreshold:    cfg.FailureThreshold,
		successThreshold:    cfg.SuccessThreshold,
		openDuration:        cfg.OpenDuration,
		halfOpenMaxRequests: cfg.HalfOpenMaxRequests,
	}

	if cb.failureThreshold <= 0 {
		cb.failureThreshold = 5
	}
	if cb.successThreshold <= 0 {
		cb.successThreshold = 2
	}
	if cb.openDuration <= 0 {
		cb.openDuration = 30 * time.Second
	}
	if cb.halfOpenMaxRequests <= 0 {
		cb.halfOpenMaxRequests = 1
	}

	return cb
}

// Execute runs fn if the circuit allows it. A rejected call returns
// types.ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.acquire() {
		return types.ErrCircuitOpen
	}

	err := fn()
	cb.record(err)
	return err
}

// acquire reports whether a request may proceed, transitioning from open to
// half-open when the open duration has elapsed.
func (cb *CircuitBreaker) acquire() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if time.Since(cb.openedAt) < cb.openDuration {
			return false
		}
		cb.transition(StateHalfOpen)
		cb.halfOpenInFlight = 1
		return true

	case StateHalfOpen:
		if cb.halfOpenInFlight >= cb.halfOpenMaxRequests {
			return false
		}
		cb.halfOpenInFlight++
		return true
	}

	return false
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.halfOpenInFlight--
	}

	if err == nil {
		cb.recordSuccessLocked()
		return
	}

	// Misses and validation errors say nothing about Redis health.
	if !types.IsRetryable(err) {
		return
	}

	cb.recordFailureLocked()
}

func (cb *CircuitBreaker) recordSuccessLocked() {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.transition(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) recordFailureLocked() {
	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.transition(StateOpen)
	}
}

// transition moves to a new state, resetting counters. Caller holds mu.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}

	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenInFlight = 0
	if to == StateOpen {
		cb.openedAt = time.Now()
	}

	if cb.onStateChange != nil {
		// Invoked without the lock to avoid deadlocking callbacks that
		// query the breaker.
		go cb.onStateChange(from, to)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// IsOpen returns true if the circuit is open.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// SetOnStateChange registers a callback for state transitions.
func (cb *CircuitBreaker) SetOnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}
