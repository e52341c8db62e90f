package infra

import (
	"log/slog"
	"sync"
	"time"
)

// State is the breaker position. CLOSED passes traffic, OPEN rejects
// it, HALF_OPEN lets probes through after the cooldown.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker guards the venue: when placements fail in a streak the
// breaker trips, and further slices fail fast instead of dragging every
// dispatch goroutine through a venue timeout. Safe for concurrent use
// by the dispatch goroutines of one tick.
type CircuitBreaker struct {
	name string
	mu   sync.RWMutex

	state     State
	failures  int // consecutive failures while CLOSED
	successes int // consecutive successes while HALF_OPEN
	trippedAt time.Time

	maxFailures       int
	recoverySuccesses int
	cooldown          time.Duration
}

// CircuitBreakerConfig holds configuration for creating a circuit breaker.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
}

// DefaultCircuitBreakerConfig returns the venue-dispatch defaults:
// trip after 5 straight failures, re-close after 2 probe successes,
// 30s cooldown before probing.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// NewCircuitBreaker creates a breaker in the CLOSED position.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:              cfg.Name,
		state:             StateClosed,
		maxFailures:       cfg.FailureThreshold,
		recoverySuccesses: cfg.SuccessThreshold,
		cooldown:          cfg.Timeout,
	}
}

// Allow reports whether a venue call may proceed. While OPEN it also
// performs the cooldown check and flips to HALF_OPEN when due.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if time.Since(cb.trippedAt) > cb.cooldown {
			cb.state = StateHalfOpen
			cb.successes = 0
			slog.Info("BREAKER_PROBING", "breaker", cb.name)
			return true
		}
		return false

	case StateHalfOpen:
		return true

	default:
		return false
	}
}

// RecordSuccess feeds a successful venue call back into the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0

	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.recoverySuccesses {
			cb.state = StateClosed
			cb.failures = 0
			cb.successes = 0
			slog.Info("BREAKER_RECOVERED", "breaker", cb.name)
		}
	}
}

// RecordFailure feeds a failed venue call back into the breaker.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.trippedAt = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.maxFailures {
			cb.state = StateOpen
			slog.Warn("BREAKER_TRIPPED",
				"breaker", cb.name, "failures", cb.failures)
		}

	case StateHalfOpen:
		// A failed probe re-opens immediately.
		cb.state = StateOpen
		cb.successes = 0
		slog.Warn("BREAKER_PROBE_FAILED", "breaker", cb.name)
	}
}

// GetState returns the current position (for monitoring).
func (cb *CircuitBreaker) GetState() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forces the breaker back to CLOSED (testing/admin).
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	slog.Info("BREAKER_RESET", "breaker", cb.name)
}
