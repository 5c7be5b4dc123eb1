package redis

import (
	"time"

	"github.com/pior/redis/resp"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards the execution of commands.
// *gobreaker.CircuitBreaker[resp.Value] implements it.
type CircuitBreaker interface {
	Execute(req func() (resp.Value, error)) (resp.Value, error)
	State() gobreaker.State
}

// CircuitBreakerState is the state of a circuit breaker.
type CircuitBreakerState = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

var _ CircuitBreaker = (*gobreaker.CircuitBreaker[resp.Value])(nil)

// NewCircuitBreakerConfig returns a function that creates a circuit breaker
// for a server. This is a helper for common use cases.
//
// The circuit opens when at least 60% of 3 or more requests failed within
// interval. Error replies are answers from a healthy server and count as
// successes.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) CircuitBreaker {
	return func(serverAddr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: isBreakerSuccess,
		}
		return gobreaker.NewCircuitBreaker[resp.Value](settings)
	}
}

// isBreakerSuccess reports whether err leaves the server healthy.
func isBreakerSuccess(err error) bool {
	return !resp.ShouldCloseConnection(err)
}
