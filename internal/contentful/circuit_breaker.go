package contentful

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for circuit breaker behavior
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// DefaultBreakerConfig returns defaults for delivery API calls
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests: 3,                // Allow 3 requests in half-open state
		Interval:    10 * time.Second, // Reset failure count every 10 seconds
		Timeout:     30 * time.Second, // Stay open for 30 seconds before trying half-open
	}
}

// breaker guards calls to the delivery API. Only failures that say
// something about the API itself count against it.
type breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

func newBreaker[T any](name string, config BreakerConfig, onChange func(name string, from, to gobreaker.State)) *breaker[T] {
	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("contentful_%s", name),
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful:  countsAsSuccess,
		OnStateChange: onChange,
	}

	return &breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func (b *breaker[T]) Execute(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return b.cb.Execute(func() (T, error) {
		return fn(ctx)
	})
}

func (b *breaker[T]) Status() string {
	switch b.cb.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Temporary()
	}
	return false
}
