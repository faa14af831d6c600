// Package router provides the HTTP surface of the bot: health and metrics.
package router

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lemurdu20/LeMuRobot/app/middleware"
	"github.com/lemurdu20/LeMuRobot/app/services"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// Router interface for the HTTP sidecar
type Router interface {
	SetupRoutes()
	Start(address string) error
	Shutdown() error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app           *fiber.App
	heartbeatPath string
	logger        *log.Logger

	now func() time.Time
}

// NewFiberRouter creates the health and metrics server. heartbeatPath is the
// file the heartbeat writer touches; the health check fails when it goes
// stale.
func NewFiberRouter(heartbeatPath string, logger *log.Logger) Router {
	if logger == nil {
		logger = log.Default()
	}
	app := fiber.New(fiber.Config{
		AppName:      "LeMuRobot",
		ServerHeader: "LeMuRobot",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:           app,
		heartbeatPath: heartbeatPath,
		logger:        logger,
		now:           time.Now,
	}
}

// SetupRoutes configures all HTTP routes
func (r *FiberRouter) SetupRoutes() {
	r.app.Use(recover.New())
	r.app.Use(middleware.Metrics())

	r.app.Get("/health", r.healthCheck)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// healthCheck reports healthy only while the heartbeat file is fresh.
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	age, err := services.HeartbeatAge(r.heartbeatPath, r.now())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "heartbeat file missing",
		})
	}
	if age > utils.HeartbeatMaxAge {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":        "unhealthy",
			"heartbeat_age": age.String(),
		})
	}
	return c.JSON(fiber.Map{
		"status":        "healthy",
		"heartbeat_age": age.String(),
	})
}

// Start begins listening on the given address
func (r *FiberRouter) Start(address string) error {
	r.logger.Printf("health server listening on %s", address)
	return r.app.Listen(address)
}

// Shutdown gracefully stops the server
func (r *FiberRouter) Shutdown() error {
	return r.app.Shutdown()
}

// GetApp exposes the underlying Fiber app, mainly for tests
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}
