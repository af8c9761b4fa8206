// Package middleware provides Gin HTTP middleware for authentication,
// authorization, rate limiting, security headers, and activity recording.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RateLimit → Auth → RBAC → Audit → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attempts before any DB
// work. Auth populates the profile in the request context; RBAC reads from it.
// Activity recording runs after the handler so only the outcome the client
// actually saw is recorded.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/toolvault/toolvault/internal/auth"
	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// AuthMiddleware validates the Bearer JWT and loads the caller's profile into
// the request context. Sessions are the only credential: there are no API keys
// in this service, every caller is a person with a dashboard login.
func AuthMiddleware(profileRepo *repositories.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		claims, err := auth.ValidateJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		// The profile is loaded per request rather than trusted from the
		// token, so a role change or account deletion takes effect on the
		// next request without waiting for the token to expire.
		profile, err := profileRepo.GetProfileByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load profile",
			})
			return
		}
		if profile == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Account not found",
			})
			return
		}

		c.Set(ContextUserKey, profile)
		c.Set(ContextUserIDKey, profile.ID)

		c.Next()
	}
}

// CurrentProfile returns the authenticated profile from the request context,
// or nil when the request did not pass AuthMiddleware.
func CurrentProfile(c *gin.Context) *models.Profile {
	val, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	profile, ok := val.(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}
