package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lemurdu20/LeMuRobot/utils"
)

// HeartbeatWriter periodically touches a file so external monitors and the
// health endpoint can tell a hung process from a live one.
type HeartbeatWriter struct {
	path     string
	interval time.Duration
	logger   *log.Logger

	now func() time.Time
}

// NewHeartbeatWriter builds a writer targeting dataDir.
func NewHeartbeatWriter(dataDir string, logger *log.Logger) *HeartbeatWriter {
	if logger == nil {
		logger = log.Default()
	}
	return &HeartbeatWriter{
		path:     filepath.Join(dataDir, utils.HeartbeatFileName),
		interval: utils.HeartbeatInterval,
		logger:   logger,
		now:      time.Now,
	}
}

// Path returns the heartbeat file location.
func (h *HeartbeatWriter) Path() string {
	return h.path
}

// Start begins beating immediately and returns a stop func.
func (h *HeartbeatWriter) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		h.beat()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.beat()
			}
		}
	}()

	return cancel
}

func (h *HeartbeatWriter) beat() {
	payload := fmt.Sprintf("%d\n", h.now().UnixMilli())
	if err := os.WriteFile(h.path, []byte(payload), 0o644); err != nil {
		h.logger.Printf("heartbeat: failed to write %s: %v", h.path, err)
	}
}

// HeartbeatAge returns how long ago the heartbeat file at path was written.
func HeartbeatAge(path string, now time.Time) (time.Duration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return now.Sub(info.ModTime()), nil
}
