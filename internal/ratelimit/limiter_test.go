package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLimiterWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	limiter := New(NewMemoryStore(), Config{Max: 15, Window: time.Minute, Now: clock.Now})

	for i := 1; i <= 15; i++ {
		d, err := limiter.Check(ctx, "openai-api")
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !d.Allowed || d.Count != i {
			t.Fatalf("check %d: allowed=%v count=%d", i, d.Allowed, d.Count)
		}
	}

	clock.Advance(20 * time.Second)
	d, err := limiter.Check(ctx, "openai-api")
	if err != nil {
		t.Fatalf("check 16: %v", err)
	}
	if d.Allowed {
		t.Fatal("16th check in window should be rejected")
	}
	if d.RetryAfterSeconds() != 40 {
		t.Fatalf("expected retry after 40s, got %d", d.RetryAfterSeconds())
	}
	if d.Count != 15 {
		t.Fatalf("rejection must not mutate count, got %d", d.Count)
	}

	other, _ := limiter.Check(ctx, "gemini-api")
	if !other.Allowed || other.Count != 1 {
		t.Fatalf("keys must be independent: %+v", other)
	}

	clock.Advance(41 * time.Second)
	d, _ = limiter.Check(ctx, "openai-api")
	if !d.Allowed || d.Count != 1 {
		t.Fatalf("window should reset after expiry: %+v", d)
	}
}

func TestDailyLimiter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	daily := NewDaily(NewMemoryStore(), 0, clock.Now)

	for i := 0; i < DefaultDailyLimit; i++ {
		d, err := daily.Check(ctx)
		if err != nil || !d.Allowed {
			t.Fatalf("check %d: allowed=%v err=%v", i+1, d.Allowed, err)
		}
	}

	clock.Advance(6 * time.Hour)
	d, err := daily.Check(ctx)
	if err != nil {
		t.Fatalf("check 1501: %v", err)
	}
	if d.Allowed {
		t.Fatal("1501st check should be rejected")
	}
	if d.RetryAfter != 18*time.Hour {
		t.Fatalf("expected 18h retry, got %s", d.RetryAfter)
	}

	usage, err := daily.Usage(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage.Used != DefaultDailyLimit || usage.Remaining != 0 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
}

func TestRetryAfterSecondsRoundsUp(t *testing.T) {
	t.Parallel()

	cases := map[time.Duration]int{
		0:                       0,
		1500 * time.Millisecond: 2,
		3 * time.Second:         3,
		time.Millisecond:        1,
	}
	for in, want := range cases {
		if got := (Decision{RetryAfter: in}).RetryAfterSeconds(); got != want {
			t.Fatalf("RetryAfterSeconds(%s) = %d, want %d", in, got, want)
		}
	}
}

func TestMemoryStoreConcurrentTake(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter := New(NewMemoryStore(), Config{Max: 15, Window: time.Minute})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Check(ctx, "deepseek-api")
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 15 {
		t.Fatalf("expected exactly 15 admissions, got %d", allowed)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _, _ = store.Take(ctx, "a", 5, time.Minute, now)
	_, _, _ = store.Take(ctx, "b", 5, time.Hour, now)

	if removed := store.Sweep(now.Add(2 * time.Minute)); removed != 1 {
		t.Fatalf("expected one expired window, got %d", removed)
	}
	if _, ok, _ := store.Peek(ctx, "a"); ok {
		t.Fatal("expired window should be gone")
	}
	if _, ok, _ := store.Peek(ctx, "b"); !ok {
		t.Fatal("live window should stay")
	}
}
