package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter counts requests per source within fixed wall-clock
// windows. Counters reset when their window ends; a background sweep drops
// idle sources.
type FixedWindowRateLimiter struct {
	mu     sync.Mutex
	counts map[string]*windowCount

	limit       int
	window      time.Duration
	cleanupTick *time.Ticker
	done        chan struct{}
}

type windowCount struct {
	count   int
	resetAt time.Time
}

func NewFixedWindowRateLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		counts:      make(map[string]*windowCount),
		limit:       limit,
		window:      window,
		cleanupTick: time.NewTicker(window),
		done:        make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *FixedWindowRateLimiter) Allow(source string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	wc, ok := rl.counts[source]
	if !ok || !now.Before(wc.resetAt) {
		rl.counts[source] = &windowCount{
			count:   1,
			resetAt: now.Truncate(rl.window).Add(rl.window),
		}
		return true, 0
	}

	if wc.count >= rl.limit {
		return false, wc.resetAt.Sub(now)
	}

	wc.count++
	return true, 0
}

func (rl *FixedWindowRateLimiter) startCleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

func (rl *FixedWindowRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for source, wc := range rl.counts {
		if now.After(wc.resetAt) {
			delete(rl.counts, source)
		}
	}
}

func (rl *FixedWindowRateLimiter) Close() {
	close(rl.done)
	rl.cleanupTick.Stop()
}
