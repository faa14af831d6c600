package middleware

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lemurdu20/LeMuRobot/utils"
)

func TestCommandRateLimiter(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	newLimiter := func(now *time.Time) *CommandRateLimiter {
		l := NewCommandRateLimiter()
		l.now = func() time.Time { return *now }
		return l
	}

	t.Run("allows up to the cap then drops", func(t *testing.T) {
		now := base
		l := newLimiter(&now)

		for i := 0; i < utils.RateLimitMaxCommands; i++ {
			assert.True(t, l.Allow("u1"), "command %d should pass", i+1)
		}
		assert.False(t, l.Allow("u1"))
	})

	t.Run("window slides", func(t *testing.T) {
		now := base
		l := newLimiter(&now)

		for i := 0; i < utils.RateLimitMaxCommands; i++ {
			assert.True(t, l.Allow("u1"))
		}
		assert.False(t, l.Allow("u1"))

		now = base.Add(utils.RateLimitWindow + time.Second)
		assert.True(t, l.Allow("u1"))
	})

	t.Run("users are limited independently", func(t *testing.T) {
		now := base
		l := newLimiter(&now)

		for i := 0; i < utils.RateLimitMaxCommands; i++ {
			assert.True(t, l.Allow("u1"))
		}
		assert.False(t, l.Allow("u1"))
		assert.True(t, l.Allow("u2"))
	})

	t.Run("stale users are swept when the map fills", func(t *testing.T) {
		now := base
		l := newLimiter(&now)

		for i := 0; i < maxTrackedUsers; i++ {
			l.Allow(fmt.Sprintf("u%d", i))
		}
		assert.Len(t, l.history, maxTrackedUsers)

		now = base.Add(utils.RateLimitWindow + time.Second)
		assert.True(t, l.Allow("fresh"))
		assert.Len(t, l.history, 1)
	})
}
