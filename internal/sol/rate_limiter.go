package sol

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound RPC calls so a burst of quote/ingest
// activity cannot exceed the configured provider's rate limit.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter allowing requestsPerSecond
// sustained requests with a burst of the same size.
func NewRateLimiter(requestsPerSecond int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// Wait blocks until the limiter allows the request or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// Allow returns true if a request is allowed right now without waiting.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// SetRate updates the limiter's steady-state rate and burst together.
func (rl *RateLimiter) SetRate(requestsPerSecond int) {
	rl.limiter.SetLimit(rate.Limit(requestsPerSecond))
	rl.limiter.SetBurst(requestsPerSecond)
}

// GetRate returns the current rate limit.
func (rl *RateLimiter) GetRate() int {
	return int(rl.limiter.Limit())
}

// WaitWithTimeout waits for a token, bounded by timeout.
func (rl *RateLimiter) WaitWithTimeout(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return rl.Wait(ctx)
}
