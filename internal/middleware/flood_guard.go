package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Maximum number of limiters to keep in memory
	maxLimiters = 10000
	// Time after which an inactive limiter is removed
	cleanupInterval = 5 * time.Minute
	// Limiter is considered inactive if not used for this duration
	limiterTTL = 15 * time.Minute
)

// limiterEntry wraps a rate.Limiter with last access time
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// FloodGuard provides coarse per-IP token-bucket limiting for the HTTP
// surface as a whole. It protects against floods only; the per-sender
// message quota is enforced by the ingestion pipeline's fixed-window
// limiter, so defaults here should stay generous.
type FloodGuard struct {
	limiters map[string]*limiterEntry
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	stopCh   chan struct{}
}

// NewFloodGuard creates a flood guard with automatic cleanup.
// requestsPerSecond: maximum average rate of requests per IP
// burst: maximum burst size (token bucket capacity)
func NewFloodGuard(requestsPerSecond float64, burst int) *FloodGuard {
	fg := &FloodGuard{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		stopCh:   make(chan struct{}),
	}

	go fg.cleanupLoop()

	return fg
}

// cleanupLoop periodically removes inactive limiters to prevent memory leaks
func (fg *FloodGuard) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fg.stopCh:
			return
		case <-ticker.C:
			fg.cleanup()
		}
	}
}

// cleanup removes limiters that haven't been used recently
func (fg *FloodGuard) cleanup() {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	now := time.Now()
	for key, entry := range fg.limiters {
		if now.Sub(entry.lastAccess) > limiterTTL {
			delete(fg.limiters, key)
		}
	}

	// Hard cap as a backstop: evict oldest entries until under the limit.
	for len(fg.limiters) > maxLimiters {
		var oldestKey string
		var oldestTime time.Time
		first := true
		for k, e := range fg.limiters {
			if first || e.lastAccess.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.lastAccess
				first = false
			}
		}
		delete(fg.limiters, oldestKey)
	}
}

// Stop stops the cleanup goroutine
func (fg *FloodGuard) Stop() {
	close(fg.stopCh)
}

// getLimiter returns the rate limiter for a given key (usually IP address)
// Creates a new limiter if one doesn't exist and updates last access time
func (fg *FloodGuard) getLimiter(key string) *rate.Limiter {
	fg.mu.RLock()
	entry, exists := fg.limiters[key]
	fg.mu.RUnlock()

	if exists {
		fg.mu.Lock()
		entry.lastAccess = time.Now()
		fg.mu.Unlock()
		return entry.limiter
	}

	fg.mu.Lock()
	defer fg.mu.Unlock()

	// Double-check after acquiring write lock
	entry, exists = fg.limiters[key]
	if exists {
		entry.lastAccess = time.Now()
		return entry.limiter
	}

	entry = &limiterEntry{
		limiter:    rate.NewLimiter(fg.rate, fg.burst),
		lastAccess: time.Now(),
	}
	fg.limiters[key] = entry
	return entry.limiter
}

// Middleware returns a chi-compatible middleware function
func (fg *FloodGuard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := fg.getLimiter(r.RemoteAddr)

			if !limiter.Allow() {
				http.Error(w, `{"error":"rate_limit_exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
