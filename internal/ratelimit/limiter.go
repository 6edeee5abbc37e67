// Package ratelimit implements the shared request throttle.
//
// Unlike a per-domain limiter, one token bucket is shared by every
// destination the harvester touches: the rate budget bounds aggregate
// load for the whole run, not load against any single host.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/athenaworks/orgharvest/internal/metrics"
)

// Limiter spaces outbound requests by a fixed minimum interval.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter that releases one request per interval.
// A non-positive interval disables throttling.
func New(interval time.Duration) *Limiter {
	r := rate.Inf
	if interval > 0 {
		r = rate.Every(interval)
	}
	return &Limiter{
		limiter: rate.NewLimiter(r, 1),
	}
}

// Wait blocks until the next request slot opens, respecting the context.
// The token is consumed regardless of whether the request that follows
// succeeds, so failed attempts still count against the budget.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(waited)
	}
	return nil
}
