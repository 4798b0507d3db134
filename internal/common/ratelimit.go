package common

import (
	"sync"
	"time"
)

type rateRecord struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window per-key counter. Windows are not sliding:
// a burst straddling a window boundary may admit up to 2x the limit inside
// a contiguous window span. Keys are never evicted; memory is bounded by
// the number of distinct keys seen over the process lifetime.
type RateLimiter struct {
	mu      sync.Mutex
	records map[string]*rateRecord
	limit   int
	window  time.Duration

	now func() time.Time // overridable for tests
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		records: make(map[string]*rateRecord),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow reports whether the caller identified by key may proceed and
// counts the request against the current window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	rec, ok := rl.records[key]
	if !ok || now.After(rec.resetAt) {
		rl.records[key] = &rateRecord{count: 1, resetAt: now.Add(rl.window)}
		return true
	}

	if rec.count >= rl.limit {
		return false
	}

	rec.count++
	return true
}

// Reset drops all counters. Called on shutdown so a fresh process starts clean.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.records = make(map[string]*rateRecord)
}
