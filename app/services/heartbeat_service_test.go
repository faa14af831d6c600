package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatWriter(t *testing.T) {
	t.Run("beats immediately on start", func(t *testing.T) {
		h := NewHeartbeatWriter(t.TempDir(), nil)

		stop := h.Start(context.Background())
		defer stop()

		require.Eventually(t, func() bool {
			_, err := os.Stat(h.Path())
			return err == nil
		}, time.Second, 10*time.Millisecond)

		raw, err := os.ReadFile(h.Path())
		require.NoError(t, err)
		assert.NotEmpty(t, raw)
	})

	t.Run("age tracks file modification time", func(t *testing.T) {
		h := NewHeartbeatWriter(t.TempDir(), nil)
		h.beat()

		age, err := HeartbeatAge(h.Path(), time.Now().Add(45*time.Second))
		require.NoError(t, err)
		assert.InDelta(t, 45.0, age.Seconds(), 5.0)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := HeartbeatAge("/nonexistent/.heartbeat", time.Now())
		assert.Error(t, err)
	})
}
