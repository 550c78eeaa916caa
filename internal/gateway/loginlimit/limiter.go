// Package loginlimit provides the per-client-IP fixed-window rate limiter
// guarding the login endpoint.
package loginlimit

import (
	"sync"
	"time"
)

// Limiter is a fixed-window bucket limiter keyed by client IP.
// Each bucket holds capacity tokens and regains the full capacity once per
// window; the refill is computed lazily on consume, there is no timer
// goroutine. Buckets idle longer than the TTL are removed by Sweep so the
// map does not grow without bound.
//
// Limiter instances are injected, not process-global, so tests can build
// independent ones with their own clocks.
type Limiter struct {
	capacity int
	window   time.Duration
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens      int
	windowStart time.Time
	lastSeen    time.Time
}

// New creates a limiter. clock is injectable for deterministic testing;
// pass time.Now in production.
func New(capacity int, window, ttl time.Duration, clock func() time.Time) *Limiter {
	return &Limiter{
		capacity: capacity,
		window:   window,
		ttl:      ttl,
		now:      clock,
		buckets:  make(map[string]*bucket),
	}
}

// Allow consumes one token for key, creating the bucket on first use.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, windowStart: now}
		l.buckets[key] = b
	}

	// Whole-window refill: the bucket returns to full capacity at fixed
	// intervals from its creation, not gradually.
	if elapsed := now.Sub(b.windowStart); elapsed >= l.window {
		b.tokens = l.capacity
		b.windowStart = b.windowStart.Add(elapsed - elapsed%l.window)
	}
	b.lastSeen = now

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Sweep evicts buckets that have not been touched within the TTL.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.buckets, key)
		}
	}
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
