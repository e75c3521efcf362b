package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	mu  sync.Mutex
	t   time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(window time.Duration, max int) (*Limiter, *fakeClock) {
	l := New(window, max)
	clock := newFakeClock()
	l.now = clock.Now
	return l, clock
}

func TestLimiter_AllowsUpToMaxWithinWindow(t *testing.T) {
	l, _ := newTestLimiter(10*time.Second, 3)

	assert.True(t, l.Check("1.2.3.4:alice"))
	assert.True(t, l.Check("1.2.3.4:alice"))
	assert.True(t, l.Check("1.2.3.4:alice"))
	assert.False(t, l.Check("1.2.3.4:alice"), "fourth request in the same window must be rejected")
}

func TestLimiter_WindowExpiryResetsCount(t *testing.T) {
	l, clock := newTestLimiter(10*time.Second, 3)

	for i := 0; i < 3; i++ {
		require.True(t, l.Check("key"))
	}
	require.False(t, l.Check("key"))

	clock.Advance(10 * time.Second)

	assert.True(t, l.Check("key"), "first request after window expiry starts a fresh bucket")

	// Fresh bucket counts from 1 again.
	assert.True(t, l.Check("key"))
	assert.True(t, l.Check("key"))
	assert.False(t, l.Check("key"))
}

func TestLimiter_RejectionDoesNotMutateBucket(t *testing.T) {
	l, clock := newTestLimiter(10*time.Second, 1)

	require.True(t, l.Check("key"))

	// Hammer the limiter while rejected; the window must still expire on
	// schedule, unaffected by rejected attempts.
	for i := 0; i < 50; i++ {
		require.False(t, l.Check("key"))
	}

	clock.Advance(10 * time.Second)
	assert.True(t, l.Check("key"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(10*time.Second, 1)

	assert.True(t, l.Check("1.2.3.4:alice"))
	assert.False(t, l.Check("1.2.3.4:alice"))

	// Different username and different origin each get their own bucket.
	assert.True(t, l.Check("1.2.3.4:bob"))
	assert.True(t, l.Check("5.6.7.8:alice"))
}

func TestLimiter_BoundaryBurstAllowsDoubleRate(t *testing.T) {
	// A fixed window permits up to 2*max requests inside a rolling window
	// interval when the burst straddles the boundary. Preserved on purpose.
	l, clock := newTestLimiter(10*time.Second, 3)

	clock.Advance(9 * time.Second)
	for i := 0; i < 3; i++ {
		require.True(t, l.Check("key"))
	}

	clock.Advance(time.Second)
	accepted := 0
	for i := 0; i < 3; i++ {
		if l.Check("key") {
			accepted++
		}
	}
	assert.Equal(t, 3, accepted, "new window accepts a full quota right after the boundary")
}

func TestLimiter_PruneEvictsOnlyExpiredBuckets(t *testing.T) {
	l, clock := newTestLimiter(10*time.Second, 5)
	l.pruneThreshold = 100

	for i := 0; i < 100; i++ {
		require.True(t, l.Check(fmt.Sprintf("stale-%d", i)))
	}
	require.Equal(t, 100, l.Len())

	clock.Advance(10 * time.Second)

	// One fresh key; the check that creates it triggers the sweep first.
	require.True(t, l.Check("fresh"))
	assert.Equal(t, 1, l.Len(), "all expired buckets swept, fresh bucket kept")
}

func TestLimiter_NoPruneBelowThreshold(t *testing.T) {
	l, clock := newTestLimiter(10*time.Second, 5)
	l.pruneThreshold = 1000

	for i := 0; i < 10; i++ {
		require.True(t, l.Check(fmt.Sprintf("key-%d", i)))
	}
	clock.Advance(10 * time.Second)
	require.True(t, l.Check("another"))

	// Below the threshold, expired buckets linger until replaced.
	assert.Equal(t, 11, l.Len())
}

func TestLimiter_ConcurrentSameKeyNoOvercount(t *testing.T) {
	const max = 3
	const attempts = 50

	l, _ := newTestLimiter(10*time.Second, max)

	var wg sync.WaitGroup
	results := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Check("shared-key")
		}()
	}
	wg.Wait()
	close(results)

	accepted := 0
	for ok := range results {
		if ok {
			accepted++
		}
	}

	assert.Equal(t, max, accepted, "exactly max accepts under concurrent same-key load")
}

func TestLimiter_ConcurrentDistinctKeysAllAccepted(t *testing.T) {
	l, _ := newTestLimiter(10*time.Second, 1)

	var wg sync.WaitGroup
	results := make(chan bool, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- l.Check(fmt.Sprintf("key-%d", n))
		}(i)
	}
	wg.Wait()
	close(results)

	for ok := range results {
		require.True(t, ok)
	}
	assert.Equal(t, 100, l.Len())
}
