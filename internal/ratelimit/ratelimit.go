package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles interpreter steps.
type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative stepsPerSecond for no throttling.
func New(stepsPerSecond float64) *Limiter {
	if stepsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}

	// Burst 1: at most one step per interval.
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(stepsPerSecond), 1)}
}

// Wait blocks until the next step may run or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
