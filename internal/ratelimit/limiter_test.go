package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter(t *testing.T) {
	t.Run("Allows Up To Limit", func(t *testing.T) {
		clock := newFakeClock()
		limiter := New(3, WithClock(clock.Now))

		for i := 0; i < 3; i++ {
			if !limiter.Allow("client-a") {
				t.Fatalf("request %d should be admitted", i+1)
			}
		}

		if limiter.Allow("client-a") {
			t.Error("request over the limit should be denied")
		}
	})

	t.Run("Buckets Are Per Client", func(t *testing.T) {
		clock := newFakeClock()
		limiter := New(1, WithClock(clock.Now))

		if !limiter.Allow("client-a") {
			t.Fatal("first request for client-a should be admitted")
		}
		if !limiter.Allow("client-b") {
			t.Error("client-b should have its own bucket")
		}
		if limiter.Allow("client-a") {
			t.Error("client-a should be over its limit")
		}
	})

	t.Run("Prunes Entries Older Than Window", func(t *testing.T) {
		clock := newFakeClock()
		limiter := New(1, WithClock(clock.Now))

		if !limiter.Allow("client-a") {
			t.Fatal("first request should be admitted")
		}
		if limiter.Allow("client-a") {
			t.Fatal("second request inside window should be denied")
		}

		// One second past the window: the earlier request no longer counts.
		clock.Advance(24*time.Hour + time.Second)

		if !limiter.Allow("client-a") {
			t.Error("request after window rollover should be admitted")
		}
	})

	t.Run("Entry At Window Edge Still Counts", func(t *testing.T) {
		clock := newFakeClock()
		limiter := New(1, WithClock(clock.Now))

		limiter.Allow("client-a")
		clock.Advance(23 * time.Hour)

		if limiter.Allow("client-a") {
			t.Error("request inside window should be denied")
		}
	})

	t.Run("Limit Accessor", func(t *testing.T) {
		limiter := New(10)
		if limiter.Limit() != 10 {
			t.Errorf("expected limit 10, got %d", limiter.Limit())
		}
	})

	t.Run("Count", func(t *testing.T) {
		clock := newFakeClock()
		limiter := New(5, WithClock(clock.Now))

		limiter.Allow("client-a")
		limiter.Allow("client-a")

		if got := limiter.Count("client-a"); got != 2 {
			t.Errorf("expected count 2, got %d", got)
		}

		clock.Advance(25 * time.Hour)
		if got := limiter.Count("client-a"); got != 0 {
			t.Errorf("expected count 0 after window, got %d", got)
		}
	})

	t.Run("Concurrent Requests Cannot Exceed Limit", func(t *testing.T) {
		clock := newFakeClock()
		limiter := New(5, WithClock(clock.Now))

		var wg sync.WaitGroup
		var mu sync.Mutex
		admitted := 0

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("client-a") {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if admitted != 5 {
			t.Errorf("expected exactly 5 admissions, got %d", admitted)
		}
	})

	t.Run("Custom Window", func(t *testing.T) {
		clock := newFakeClock()
		limiter := New(1, WithClock(clock.Now), WithWindow(time.Minute))

		limiter.Allow("client-a")
		clock.Advance(61 * time.Second)

		if !limiter.Allow("client-a") {
			t.Error("request after custom window should be admitted")
		}
	})
}
