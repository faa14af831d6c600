package router

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemurdu20/LeMuRobot/utils"
)

func newTestRouter(t *testing.T, heartbeatPath string) *FiberRouter {
	t.Helper()
	r := NewFiberRouter(heartbeatPath, nil).(*FiberRouter)
	r.SetupRoutes()
	return r
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy while heartbeat is fresh", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), utils.HeartbeatFileName)
		require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

		r := newTestRouter(t, path)
		resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unhealthy when heartbeat is stale", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), utils.HeartbeatFileName)
		require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

		r := newTestRouter(t, path)
		r.now = func() time.Time { return time.Now().Add(utils.HeartbeatMaxAge + time.Minute) }

		resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})

	t.Run("unhealthy when heartbeat file is missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), utils.HeartbeatFileName)

		r := newTestRouter(t, path)
		resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), utils.HeartbeatFileName)
	r := newTestRouter(t, path)

	resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
