// package ratelimit implements per-client admission control over a sliding window.
//
// Each client gets an independent bucket of request timestamps; a request is
// admitted only when fewer than the configured limit fall inside the trailing
// window. The limiter is an injectable instance rather than a process-wide
// singleton so tests can drive it with a fake clock.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultWindow is the trailing window used when none is configured.
const DefaultWindow = 24 * time.Hour

// Limiter tracks request timestamps per client and admits or denies requests
// against a fixed count within a sliding window.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string][]time.Time
}

// Option configures a [Limiter].
type Option func(*Limiter)

// WithClock overrides the limiter's time source, for testing.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithWindow overrides the trailing window duration.
func WithWindow(window time.Duration) Option {
	return func(l *Limiter) {
		l.window = window
	}
}

// New creates a [Limiter] admitting at most limit requests per client within
// the trailing window (24h by default).
func New(limit int, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  DefaultWindow,
		now:     time.Now,
		windows: make(map[string][]time.Time),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Allow records and admits a request for clientID if the client has remaining
// quota, pruning entries older than the window first.
//
// The prune, check, and append run under one lock, so two concurrent requests
// cannot both take the last slot.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.windows[clientID][:0]
	for _, ts := range l.windows[clientID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.windows[clientID] = kept

	if len(kept) >= l.limit {
		return false
	}

	l.windows[clientID] = append(kept, now)
	return true
}

// Limit returns the configured per-client request limit, so denial messages
// can report it.
func (l *Limiter) Limit() int {
	return l.limit
}

// Count returns the number of in-window requests currently recorded for
// clientID without admitting anything.
func (l *Limiter) Count(clientID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	n := 0
	for _, ts := range l.windows[clientID] {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}
