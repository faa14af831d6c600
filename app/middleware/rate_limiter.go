package middleware

import (
	"sync"
	"time"

	"github.com/lemurdu20/LeMuRobot/utils"
)

// maxTrackedUsers bounds the limiter's memory. When exceeded, stale entries
// are swept before new ones are admitted.
const maxTrackedUsers = 10000

// CommandRateLimiter caps how many commands a single user may issue inside a
// sliding window. Commands over the cap are dropped, not queued.
type CommandRateLimiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
	max     int
	window  time.Duration

	now func() time.Time
}

// NewCommandRateLimiter builds a limiter with the default per-user budget.
func NewCommandRateLimiter() *CommandRateLimiter {
	return &CommandRateLimiter{
		history: make(map[string][]time.Time),
		max:     utils.RateLimitMaxCommands,
		window:  utils.RateLimitWindow,
		now:     time.Now,
	}
}

// Allow reports whether the user may run one more command now, and records
// the attempt when allowed.
func (l *CommandRateLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.history[userID][:0]
	for _, t := range l.history[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.history[userID] = recent
		RecordRateLimited()
		return false
	}

	if len(l.history) >= maxTrackedUsers {
		l.sweepLocked(cutoff)
	}

	l.history[userID] = append(recent, now)
	return true
}

// sweepLocked drops users whose every recorded command is outside the window.
func (l *CommandRateLimiter) sweepLocked(cutoff time.Time) {
	for userID, times := range l.history {
		stale := true
		for _, t := range times {
			if t.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.history, userID)
		}
	}
}
