// Package ratelimit implements a fixed-window request counter keyed by
// sender identity. Each key owns at most one bucket; the bucket is replaced
// wholesale once its window elapses, so a burst straddling a window boundary
// may observe up to twice the nominal rate. That is an accepted property of
// tumbling windows, not something this package tries to smooth out.
package ratelimit

import (
	"sync"
	"time"
)

// defaultPruneThreshold is the bucket population at which expired buckets
// are swept before serving the next check.
const defaultPruneThreshold = 1000

type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter counts accepted requests per key inside a tumbling window.
// The zero value is not usable; construct with New.
type Limiter struct {
	mu             sync.Mutex
	buckets        map[string]*bucket
	window         time.Duration
	maxRequests    int
	pruneThreshold int

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Limiter allowing maxRequests per window per key.
func New(window time.Duration, maxRequests int) *Limiter {
	return &Limiter{
		buckets:        make(map[string]*bucket),
		window:         window,
		maxRequests:    maxRequests,
		pruneThreshold: defaultPruneThreshold,
		now:            time.Now,
	}
}

// Check records one request attempt for key. It returns true when the
// request is accepted and counted, false when the key is over its quota for
// the current window. Rejected requests do not mutate the bucket.
//
// The whole call runs under a single mutex: two concurrent callers for the
// same key can never both observe count < max and both increment past max.
func (l *Limiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)

	current, ok := l.buckets[key]
	if !ok || now.Sub(current.windowStart) >= l.window {
		l.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}

	if current.count >= l.maxRequests {
		return false
	}

	current.count++
	return true
}

// pruneLocked evicts every bucket whose window has already expired, but only
// once the population reaches the threshold. Runs synchronously inside Check
// with the lock held; it never touches an active bucket.
func (l *Limiter) pruneLocked(now time.Time) {
	if len(l.buckets) < l.pruneThreshold {
		return
	}

	for key, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, key)
		}
	}
}

// Len returns the current bucket population.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
