package loginlimit

import (
	"testing"
	"time"
)

// fakeClock steps time manually so refill and eviction are deterministic.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestLimiter(capacity int, window, ttl time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	return New(capacity, window, ttl, clock.Now), clock
}

func TestAllowConsumesCapacityThenDenies(t *testing.T) {
	limiter, _ := newTestLimiter(5, time.Minute, 10*time.Minute)

	for i := 0; i < 5; i++ {
		if !limiter.Allow("1.2.3.4") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("attempt 6 should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute, 10*time.Minute)

	if !limiter.Allow("1.2.3.4") {
		t.Fatal("first key should be allowed")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("first key should now be exhausted")
	}
	if !limiter.Allow("5.6.7.8") {
		t.Fatal("second key should have its own bucket")
	}
}

func TestWholeWindowRefill(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute, 10*time.Minute)

	limiter.Allow("1.2.3.4")
	limiter.Allow("1.2.3.4")
	if limiter.Allow("1.2.3.4") {
		t.Fatal("bucket should be exhausted")
	}

	// Just before the window boundary nothing refills.
	clock.Advance(59 * time.Second)
	if limiter.Allow("1.2.3.4") {
		t.Fatal("no refill before the window elapses")
	}

	// Crossing the boundary restores the full capacity at once.
	clock.Advance(2 * time.Second)
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("expected refill after the window elapsed")
	}
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("refill should restore the whole capacity, not one token")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("capacity should be exhausted again")
	}
}

func TestRefillSkipsMissedWindows(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute, time.Hour)

	limiter.Allow("1.2.3.4")
	clock.Advance(10*time.Minute + 30*time.Second)

	if !limiter.Allow("1.2.3.4") {
		t.Fatal("expected refill after several idle windows")
	}
	// The next boundary is aligned to the original start, 30s away.
	clock.Advance(29 * time.Second)
	if limiter.Allow("1.2.3.4") {
		t.Fatal("no refill before the aligned boundary")
	}
	clock.Advance(2 * time.Second)
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("expected refill at the aligned boundary")
	}
}

func TestSweepEvictsIdleBuckets(t *testing.T) {
	limiter, clock := newTestLimiter(5, time.Minute, 10*time.Minute)

	limiter.Allow("1.2.3.4")
	limiter.Allow("5.6.7.8")
	if got := limiter.Len(); got != 2 {
		t.Fatalf("expected 2 buckets, got %d", got)
	}

	clock.Advance(5 * time.Minute)
	limiter.Allow("5.6.7.8")
	clock.Advance(6 * time.Minute)
	limiter.Sweep()

	// Only the bucket idle past the TTL disappears.
	if got := limiter.Len(); got != 1 {
		t.Fatalf("expected 1 bucket after sweep, got %d", got)
	}
}

func TestEvictionForgetsExhaustion(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Hour, time.Minute)

	limiter.Allow("1.2.3.4")
	if limiter.Allow("1.2.3.4") {
		t.Fatal("bucket should be exhausted")
	}

	clock.Advance(2 * time.Minute)
	limiter.Sweep()

	if !limiter.Allow("1.2.3.4") {
		t.Fatal("a swept key should start over with full capacity")
	}
}
