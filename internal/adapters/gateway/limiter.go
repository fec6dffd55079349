package gateway

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dkeye/voicegate/internal/domain"
)

// RateLimiter caps outbound voice state frames per guild over a sliding window.
type RateLimiter struct {
	mu       sync.Mutex
	clock    clock.Clock
	history  map[domain.GuildID][]time.Time
	limit    int
	interval time.Duration
}

// NewRateLimiter allows limit frames per interval; limit <= 0 disables it.
func NewRateLimiter(limit int, interval time.Duration, clk clock.Clock) *RateLimiter {
	if clk == nil {
		clk = clock.New()
	}
	return &RateLimiter{
		clock:    clk,
		history:  make(map[domain.GuildID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *RateLimiter) Allow(guild domain.GuildID) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[guild]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[guild] = fresh
		return false
	}

	rl.history[guild] = append(fresh, now)
	return true
}
