// audit.go provides the middleware end of activity recording. Handlers stage
// an event describing what they did; this middleware records it only when the
// response succeeded, so the trail never claims an action that was rejected.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/toolvault/toolvault/internal/audit"
)

// auditEventKey is the gin.Context key under which handlers stage their event.
const auditEventKey = "audit_event"

// StageAuditEvent stores the event describing the current request's action.
// Called by handlers after their mutation succeeds at the store level; the
// middleware attaches the caller identity and records it after the response.
func StageAuditEvent(c *gin.Context, ev audit.Event) {
	c.Set(auditEventKey, ev)
}

// AuditMiddleware records staged events to the activity trail. Recording is
// fire-and-forget: a trail outage never fails the request that produced the
// event.
func AuditMiddleware(recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		val, exists := c.Get(auditEventKey)
		if !exists {
			return
		}
		ev, ok := val.(audit.Event)
		if !ok {
			return
		}

		if ev.UserID == nil {
			if id, exists := c.Get(ContextUserIDKey); exists {
				if idStr, ok := id.(string); ok && idStr != "" {
					ev.UserID = &idStr
				}
			}
		}
		if ev.UserAgent == nil {
			if ua := c.Request.UserAgent(); ua != "" {
				ev.UserAgent = &ua
			}
		}

		recorder.Record(ev)
	}
}
