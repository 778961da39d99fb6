package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vcalderon2009/note-taker/internal/infrastructure/metrics"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/responses"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// RateLimiter enforces a per-user sliding window on message submission.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	history   map[string][]time.Time
	lastSweep time.Time
}

// NewRateLimiter allows limit requests per user per window. A limit of zero
// disables enforcement.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		history: make(map[string][]time.Time),
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		if !rl.allow(UserID(c), time.Now()) {
			metrics.RateLimitedTotal.Inc()
			responses.HandleNewError(c, platformerrors.ErrorTypeRateLimited,
				"rate limit exceeded, slow down", "rate-limit")
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(userID string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window)

	// Evict users whose windows have fully drained, once per window, so the
	// map does not grow with user cardinality.
	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweepLocked(cutoff)
		rl.lastSweep = now
	}

	recent := rl.history[userID][:0]
	for _, t := range rl.history[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.limit {
		rl.history[userID] = recent
		return false
	}

	rl.history[userID] = append(recent, now)
	return true
}

func (rl *RateLimiter) sweepLocked(cutoff time.Time) {
	for user, stamps := range rl.history {
		keep := stamps[:0]
		for _, t := range stamps {
			if t.After(cutoff) {
				keep = append(keep, t)
			}
		}
		if len(keep) == 0 {
			delete(rl.history, user)
		} else {
			rl.history[user] = keep
		}
	}
}
