// Package ratelimiter provides per-model request limiters that fail fast
// instead of waiting.
package ratelimiter

import (
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiters.
// Implementations can be local (in-memory) or distributed.
type Limiter interface {
	// Allow consumes one request if capacity is available.
	Allow() bool

	// RetryAfter returns how long until the next request would be allowed,
	// without consuming anything.
	RetryAfter() time.Duration
}

// Local is an in-memory token bucket refilled continuously over a minute.
type Local struct {
	limiter *rate.Limiter
}

var _ Limiter = (*Local)(nil)

// New returns a limiter allowing requestsPerMinute requests per minute with a
// burst of the same size. A non-positive value means unlimited.
func New(requestsPerMinute int) *Local {
	if requestsPerMinute <= 0 {
		return &Local{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &Local{limiter: rate.NewLimiter(rate.Every(every), requestsPerMinute)}
}

func (l *Local) Allow() bool {
	return l.limiter.Allow()
}

func (l *Local) RetryAfter() time.Duration {
	r := l.limiter.Reserve()
	defer r.Cancel()
	if !r.OK() {
		return 0
	}
	return r.Delay()
}
