package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/toolvault/toolvault/internal/telemetry"
)

// MetricsMiddleware records http_requests_total and
// http_request_duration_seconds for every request that passes through the
// router.
//
// The path label is set from c.FullPath(), the matched route template
// (e.g. /api/v1/tools/:id) rather than the raw URL, so user-supplied path
// segments cannot inflate label cardinality. Requests that match no route use
// the literal "<no-route>".
//
// Register AFTER gin.Recovery() and RequestIDMiddleware so the status set by
// error handlers is captured correctly.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
