// rbac.go implements role-based authorization middleware.
//
// Authorization is checked at request time against the profile loaded by
// AuthMiddleware rather than being embedded in the JWT. When an owner demotes
// someone, the change takes effect on their next request without invalidating
// or reissuing tokens.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/toolvault/toolvault/internal/policy"
)

// RequireOwner rejects requests from non-owner profiles. Owner-only surfaces
// are the moderation queue, approve/reject, category deletion, and the admin
// activity and stats endpoints.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := CurrentProfile(c)
		if profile == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			return
		}

		if !policy.CanModerate(profile) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Owner role required",
			})
			return
		}

		c.Next()
	}
}
