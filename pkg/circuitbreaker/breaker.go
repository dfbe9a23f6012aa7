// Package circuitbreaker adapts gobreaker to the storage layer: a typed
// Execute helper, a nil-safe disabled mode and stable sentinel errors.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned without calling through while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when the half-open probe limit is reached.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

type (
	Config struct {
		Name    string
		Enabled bool

		// MaxRequests caps calls let through while half-open. Zero means one.
		MaxRequests uint

		// Interval clears the closed-state counters. Zero never clears them.
		Interval time.Duration

		// Timeout is how long the breaker stays open. Zero means 60s.
		Timeout time.Duration

		// FailureThreshold is the run of consecutive failures that opens the breaker.
		FailureThreshold uint

		// IsSuccessful decides which errors count as failures. Nil counts every error.
		IsSuccessful func(err error) bool

		// OnStateChange observes transitions, e.g. "closed" -> "open".
		OnStateChange func(name, from, to string)
	}

	// CircuitBreaker is nil when disabled; every method tolerates that.
	CircuitBreaker[T any] struct {
		cb *gobreaker.CircuitBreaker[T]
	}
)

func New[T any](cfg Config) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	threshold := uint32(max(cfg.FailureThreshold, 1))

	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  uint32(cfg.MaxRequests),
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}

	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, from.String(), to.String())
		}
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func (c *CircuitBreaker[T]) Name() string {
	if c == nil {
		return ""
	}

	return c.cb.Name()
}

// State is "closed", "half-open" or "open". A disabled breaker is always closed.
func (c *CircuitBreaker[T]) State() string {
	if c == nil {
		return gobreaker.StateClosed.String()
	}

	return c.cb.State().String()
}

// Execute calls fn through the breaker, or directly when cb is nil.
// gobreaker's state errors are translated to this package's sentinels.
func Execute[T any](cb *CircuitBreaker[T], fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		var zero T
		return zero, ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		var zero T
		return zero, ErrTooManyRequests
	}

	return result, err
}
