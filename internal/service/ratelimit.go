package service

import (
	"sync"
	"time"
)

// RateLimiterConfig defines a sliding window limit.
type RateLimiterConfig struct {
	// Window is the trailing interval requests are counted over.
	Window time.Duration
	// Limit is the maximum number of requests allowed inside the window.
	Limit int
}

// RateLimiter enforces a per-caller sliding window limit. All state lives in
// process memory behind a mutex; the limiter is the sole mutator of its
// windows.
type RateLimiter struct {
	config RateLimiterConfig

	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given window configuration.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		config:  config,
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// NewRequestRateLimiter creates the request-level limiter (5 requests per 5s).
func NewRequestRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{Window: 5 * time.Second, Limit: 5})
}

// NewLLMRateLimiter creates the limiter for LLM-assisted calls (30 per 60s).
func NewLLMRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{Window: time.Minute, Limit: 30})
}

// Allow records an attempt from the caller and reports whether it is within
// the limit. Entries older than the window are pruned before the check, and
// the current attempt is recorded even when the caller is rejected, so a
// caller who keeps hammering while blocked never cools down faster than the
// window.
func (rl *RateLimiter) Allow(callerID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.config.Window)

	window := rl.windows[callerID]
	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	rl.windows[callerID] = kept

	return len(kept) <= rl.config.Limit
}
