// Package circuitbreaker stops calling a failing upstream for a cool-down
// period after repeated failures.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrOpenState is returned when the circuit breaker is open
	ErrOpenState = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when the half-open probe budget is spent
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the string representation of the state
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

// Config holds circuit breaker configuration
type Config struct {
	// Name identifies the protected upstream in state-change callbacks
	Name string

	// MaxFailures is the number of consecutive failures before opening
	MaxFailures uint

	// Timeout is how long the circuit stays open before probing
	Timeout time.Duration

	// MaxHalfOpenRequests is the number of probes allowed while half-open
	MaxHalfOpenRequests uint

	// IsSuccessful decides whether an error counts against the upstream.
	// Caller mistakes such as a 404 should not open the circuit.
	IsSuccessful func(error) bool

	// OnStateChange is called with the lock released after each transition
	OnStateChange func(name string, from, to State)

	// Now overrides the clock in tests
	Now func() time.Time
}

// DefaultConfig returns sensible defaults for circuit breaker
func DefaultConfig() Config {
	return Config{
		MaxFailures:         5,
		Timeout:             60 * time.Second,
		MaxHalfOpenRequests: 1,
	}
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	mu               sync.Mutex
	state            State
	failures         uint
	successes        uint
	halfOpenRequests uint
	lastStateChange  time.Time
	cfg              Config
}

type transition struct {
	from, to State
}

// New creates a new circuit breaker
func New(cfg Config) *CircuitBreaker {
	if cfg.IsSuccessful == nil {
		cfg.IsSuccessful = func(err error) bool { return err == nil }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxHalfOpenRequests == 0 {
		cfg.MaxHalfOpenRequests = 1
	}

	return &CircuitBreaker{
		state:           StateClosed,
		lastStateChange: cfg.Now(),
		cfg:             cfg,
	}
}

// Execute runs fn unless the circuit is open. The error from fn is returned
// unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn()
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()

	var changed *transition
	var err error

	switch cb.state {
	case StateOpen:
		if cb.cfg.Now().Sub(cb.lastStateChange) < cb.cfg.Timeout {
			err = ErrOpenState
			break
		}
		changed = cb.setState(StateHalfOpen)
		cb.halfOpenRequests++

	case StateHalfOpen:
		if cb.halfOpenRequests >= cb.cfg.MaxHalfOpenRequests {
			err = ErrTooManyRequests
			break
		}
		cb.halfOpenRequests++
	}

	cb.mu.Unlock()
	cb.notify(changed)
	return err
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()

	var changed *transition
	if cb.cfg.IsSuccessful(err) {
		changed = cb.onSuccess()
	} else {
		changed = cb.onFailure()
	}

	cb.mu.Unlock()
	cb.notify(changed)
}

func (cb *CircuitBreaker) onSuccess() *transition {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.MaxHalfOpenRequests {
			return cb.setState(StateClosed)
		}
	}
	return nil
}

func (cb *CircuitBreaker) onFailure() *transition {
	cb.failures++

	switch cb.state {
	case StateClosed:
		if cb.failures >= cb.cfg.MaxFailures {
			return cb.setState(StateOpen)
		}
	case StateHalfOpen:
		return cb.setState(StateOpen)
	}
	return nil
}

// setState must be called with mu held
func (cb *CircuitBreaker) setState(state State) *transition {
	from := cb.state
	cb.state = state
	cb.lastStateChange = cb.cfg.Now()
	cb.successes = 0
	cb.halfOpenRequests = 0
	if state == StateClosed {
		cb.failures = 0
	}

	if from == state {
		return nil
	}
	return &transition{from: from, to: state}
}

func (cb *CircuitBreaker) notify(t *transition) {
	if t != nil && cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, t.from, t.to)
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current failure count
func (cb *CircuitBreaker) Failures() uint {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset forces the circuit closed
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	changed := cb.setState(StateClosed)
	cb.mu.Unlock()
	cb.notify(changed)
}
