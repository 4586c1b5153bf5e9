// Package ratelimit implements a per-client sliding window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits at most limit requests per key within window. Expired
// timestamps are pruned before every check, and a rejected request is not
// recorded.
type Limiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// Option applies a configuration option to the Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New constructs a Limiter. Non-positive values are treated as 1.
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		requests: make(map[string][]time.Time),
		limit:    max(limit, 1),
		window:   max(window, time.Nanosecond),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a request for key and reports whether it is admitted.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := prune(l.requests[key], now.Add(-l.window))
	if len(valid) >= l.limit {
		l.requests[key] = valid
		return false
	}
	l.requests[key] = append(valid, now)
	return true
}

// Sweep drops keys whose requests have all left the window and returns the
// number of keys still tracked.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, times := range l.requests {
		valid := prune(times, cutoff)
		if len(valid) == 0 {
			delete(l.requests, key)
			continue
		}
		l.requests[key] = valid
	}
	return len(l.requests)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// order, so the survivors are a suffix.
func prune(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}
