package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Slash commands partitioned by command name and outcome
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of slash commands processed",
		},
		[]string{"command", "outcome"},
	)

	// Confirmation button clicks partitioned by outcome
	confirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_confirmations_total",
			Help: "Total number of confirmation button clicks processed",
		},
		[]string{"outcome"},
	)

	// Campaigns ended partitioned by action and origin
	campaignsEndedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_campaigns_ended_total",
			Help: "Total number of campaigns ended",
		},
		[]string{"action", "origin"},
	)

	// Commands dropped by the per-user rate limiter
	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_commands_rate_limited_total",
			Help: "Total number of commands dropped by the rate limiter",
		},
	)

	// Guilds currently holding an active campaign, refreshed on each
	// scheduler tick
	activeCampaigns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_active_campaigns",
			Help: "Number of guilds with an active campaign",
		},
	)
)

// RecordCommand counts one processed slash command.
func RecordCommand(command, outcome string) {
	commandsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordConfirmation counts one processed confirmation click.
func RecordConfirmation(outcome string) {
	confirmationsTotal.WithLabelValues(outcome).Inc()
}

// RecordCampaignEnded counts one ended campaign. Origin is "manual" or
// "automatic".
func RecordCampaignEnded(action string, automatic bool) {
	origin := "manual"
	if automatic {
		origin = "automatic"
	}
	campaignsEndedTotal.WithLabelValues(action, origin).Inc()
}

// SetActiveCampaigns publishes the current count of guilds with a campaign.
func SetActiveCampaigns(n int) {
	activeCampaigns.Set(float64(n))
}

// RecordRateLimited counts one dropped command.
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(c.Response().StatusCode()),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
