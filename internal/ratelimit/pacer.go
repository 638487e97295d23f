// Package ratelimit paces the scroll-and-collect loop so the browser is not
// driven faster than the page can render new content.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer throttles loop iterations using a token bucket.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer allowing iterationsPerSecond with the given burst.
func NewPacer(iterationsPerSecond float64, burst int) *Pacer {
	if iterationsPerSecond <= 0 {
		iterationsPerSecond = 0.5
	}
	if burst <= 0 {
		burst = 1
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(iterationsPerSecond), burst)}
}

// Wait blocks until the next iteration may proceed or the context ends.
func (p *Pacer) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return p.limiter.Wait(ctx)
}

// Allow reports whether an iteration may proceed immediately.
func (p *Pacer) Allow() bool {
	return p.limiter.Allow()
}
