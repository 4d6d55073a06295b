package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/study-zen/internal/service"
)

// manualClock is a settable time source.
type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(t *testing.T, rate, capacity float64) (*service.TokenBucket, *manualClock) {
	t.Helper()
	clock := &manualClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	tb := service.NewTokenBucket(rate, capacity)
	tb.SetClock(clock.Now)
	t.Cleanup(tb.Stop)
	return tb, clock
}

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb, _ := newTestBucket(t, 1, 3)

	for i := 0; i < 3; i++ {
		if !tb.Allow("login:10.0.0.1") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}
	if tb.Allow("login:10.0.0.1") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	tb, clock := newTestBucket(t, 0.5, 1)

	if !tb.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	clock.Advance(time.Second)
	if tb.Allow("k") {
		t.Fatal("half a token is not enough")
	}
	clock.Advance(time.Second)
	if !tb.Allow("k") {
		t.Fatal("expected refill after two seconds")
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb, _ := newTestBucket(t, 1, 1)

	if !tb.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if tb.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !tb.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	tb, clock := newTestBucket(t, 0, 2)

	tb.Allow("k")
	tb.Allow("k")
	clock.Advance(time.Hour)
	if tb.Allow("k") {
		t.Fatal("third request should be denied (no refill)")
	}
}

func TestTokenBucket_SweepRemovesIdleBuckets(t *testing.T) {
	tb, clock := newTestBucket(t, 1, 1)

	tb.Allow("old")
	clock.Advance(11 * time.Minute)
	tb.Allow("fresh")

	if remaining := tb.Sweep(); remaining != 1 {
		t.Fatalf("expected 1 bucket after sweep, got %d", remaining)
	}
}
