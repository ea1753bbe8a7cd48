package backend

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures client-side throttling toward the backend API.
type RateLimiterConfig struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// RateLimiter throttles outgoing backend requests and honors Retry-After
// pauses reported by the backend.
type RateLimiter struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
	hits        int64
}

// RateLimiterStatus is a point-in-time view of the limiter.
type RateLimiterStatus struct {
	PausedUntil   time.Time
	RateLimitHits int64
}

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.RequestsPerSecond <= 0 {
		config = DefaultRateLimiterConfig()
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// Allow blocks until a request may be sent, honoring an active Retry-After
// pause first. It returns early if the context ends.
func (r *RateLimiter) Allow(ctx context.Context) error {
	r.mu.Lock()
	pause := time.Until(r.pausedUntil)
	r.mu.Unlock()

	if pause > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitHit pauses the limiter for the backend's Retry-After window.
func (r *RateLimiter) RecordRateLimitHit(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hits++
	until := time.Now().Add(retryAfter)
	if until.After(r.pausedUntil) {
		r.pausedUntil = until
	}
}

// Status returns the current limiter status.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RateLimiterStatus{
		PausedUntil:   r.pausedUntil,
		RateLimitHits: r.hits,
	}
}

// Reset clears any active pause and hit counts.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pausedUntil = time.Time{}
	r.hits = 0
}
