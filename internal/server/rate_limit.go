package server

import (
	"sync"
	"time"
)

const rateWindow = time.Minute

// JobRateLimiter caps how many label jobs a single client address may
// submit per minute. A burst of print/preview/calibrate messages past the
// cap gets error responses until the sliding window drains.
type JobRateLimiter struct {
	mu        sync.Mutex
	submitted map[string][]time.Time
	maxPerWin int
}

// NewJobRateLimiter creates a limiter allowing maxPerMinute jobs per client.
func NewJobRateLimiter(maxPerMinute int) *JobRateLimiter {
	return &JobRateLimiter{
		submitted: make(map[string][]time.Time),
		maxPerWin: maxPerMinute,
	}
}

// Allow records a submission attempt and reports whether the client is
// still under its per-minute cap.
func (rl *JobRateLimiter) Allow(clientAddr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateWindow)

	// Prune in place; forget clients whose whole window has drained so
	// the map does not grow with every address ever seen.
	kept := rl.submitted[clientAddr][:0]
	for _, t := range rl.submitted[clientAddr] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(rl.submitted, clientAddr)
	}

	if len(kept) >= rl.maxPerWin {
		rl.submitted[clientAddr] = kept
		return false
	}

	rl.submitted[clientAddr] = append(kept, now)
	return true
}
