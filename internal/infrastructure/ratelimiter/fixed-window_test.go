package ratelimiter

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewFixedWindowRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("1.2.3.4"); !ok {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}

	ok, retryAfter := rl.Allow("1.2.3.4")
	if ok {
		t.Fatalf("request over the limit allowed")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("retryAfter = %v", retryAfter)
	}
}

func TestSourcesAreIndependent(t *testing.T) {
	t.Parallel()

	rl := NewFixedWindowRateLimiter(1, time.Minute)
	defer rl.Close()

	rl.Allow("a")
	if ok, _ := rl.Allow("a"); ok {
		t.Fatalf("second request from a allowed")
	}
	if ok, _ := rl.Allow("b"); !ok {
		t.Fatalf("first request from b denied")
	}
}

func TestWindowResets(t *testing.T) {
	t.Parallel()

	rl := NewFixedWindowRateLimiter(1, 50*time.Millisecond)
	defer rl.Close()

	rl.Allow("a")
	if ok, _ := rl.Allow("a"); ok {
		t.Fatalf("limit not enforced")
	}

	time.Sleep(60 * time.Millisecond)

	if ok, _ := rl.Allow("a"); !ok {
		t.Fatalf("request denied after window reset")
	}
}
