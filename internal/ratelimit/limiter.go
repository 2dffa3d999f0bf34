// Package ratelimit throttles public form submissions per client.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result is the outcome of a single check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	window  time.Duration
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter allows requests per window for each key, with bursts up to
// requests. Non-positive values are raised to one.
func NewLimiter(requests int, window time.Duration) *Limiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		window:  window,
		now:     time.Now,
	}
}

// Allow consumes a token for key if one is available.
func (l *Limiter) Allow(key string) Result {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.pruneLocked(now)
	l.mu.Unlock()

	reservation := b.limiter.ReserveN(now, 1)
	allowed := reservation.OK() && reservation.DelayFrom(now) == 0

	var retryAfter time.Duration
	if !allowed {
		if reservation.OK() {
			retryAfter = reservation.DelayFrom(now)
			reservation.CancelAt(now)
		}
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
	}

	return Result{
		Allowed:    allowed,
		Limit:      l.burst,
		Remaining:  max(int(b.limiter.TokensAt(now)), 0),
		RetryAfter: retryAfter,
	}
}

// pruneLocked drops buckets idle for longer than a window and already full.
func (l *Limiter) pruneLocked(now time.Time) {
	if len(l.buckets) < 1024 {
		return
	}
	cutoff := now.Add(-l.window)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) && b.limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.buckets, key)
		}
	}
}
