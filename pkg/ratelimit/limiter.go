// Package ratelimit spaces outbound calls by a minimum interval.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between consecutive permitted calls.
// A single Limiter is meant to be shared by every caller that draws from the
// same upstream budget.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a Limiter that admits one call per interval. A non-positive
// interval disables limiting.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// FromSeconds builds a Limiter from a fractional number of seconds.
func FromSeconds(seconds float64) *Limiter {
	return New(time.Duration(seconds * float64(time.Second)))
}

// Wait blocks until the next call is permitted or ctx is done. The reservation
// and the bookkeeping of the last permitted call happen atomically inside the
// underlying token bucket.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
