// Package telemetry provides application-level observability for the service.
//
// All metrics are registered against the default Prometheus registry and are
// served by the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<TV_TELEMETRY_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is deliberately not mounted on the Gin
// router so it never shares a port (or middleware) with the API surface.
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/tools/:id)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP request counters and latency histograms, labelled by route template.
//
// Example PromQL:
//   - Request rate:  rate(http_requests_total[5m])
//   - Error rate:    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m]))
//   - p99 per route: histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Catalog metrics.
//
// ToolSubmissionsTotal counts new tool submissions (every one enters the
// moderation queue). ModerationDecisionsTotal counts owner decisions with
// label {decision} in {"approved", "rejected"}; comparing the two rates shows
// queue backlog growth.
//
// Example PromQL:
//   - Queue growth:     rate(tool_submissions_total[1d]) - sum(rate(tool_moderation_decisions_total[1d]))
//   - Rejection ratio:  rate(tool_moderation_decisions_total{decision="rejected"}[7d])
var (
	ToolSubmissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tool_submissions_total",
			Help: "Total number of tools submitted to the moderation queue.",
		},
	)

	ModerationDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_moderation_decisions_total",
			Help: "Total number of moderation decisions, by decision (approved or rejected).",
		},
		[]string{"decision"},
	)
)

// Authentication metrics.
//
// LoginAttemptsTotal has label {result} in {"success", "failure"} and counts
// first-factor (password) checks. TwoFactorChallengesTotal has label {outcome}
// in {"issued", "verified", "rejected"}; a rising rejected rate with flat
// verified is the signature of code guessing.
var (
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of password login attempts, by result.",
		},
		[]string{"result"},
	)

	TwoFactorChallengesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "two_factor_challenges_total",
			Help: "Total number of two-factor code events, by outcome (issued, verified, rejected).",
		},
		[]string{"outcome"},
	)
)

// Catalog cache metrics. A hit ratio well under ~0.8 during steady browsing
// suggests the TTL is too short or mutations are clearing the cache too often.
var (
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total number of catalog listing cache hits.",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total number of catalog listing cache misses.",
		},
	)
)

// LoginCodesSweptTotal counts rows deleted by the login-code sweeper job. A
// stalled counter while logins continue means the sweeper has stopped and the
// login_codes table is growing unbounded.
var LoginCodesSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "login_codes_swept_total",
		Help: "Total number of stale login codes deleted by the background sweeper.",
	},
)

// DBOpenConnections tracks the number of open connections currently held by
// the sql.DB pool. It is sampled every 30 seconds by StartDBStatsCollector
// rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and updates the
// DBOpenConnections gauge. The goroutine exits when the database becomes
// unreachable, which happens when the application shuts down and closes the
// pool. Call once, immediately after the database connection succeeds.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
