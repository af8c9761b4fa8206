package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/toolvault/toolvault/internal/db/models"
)

func newRBACRouter(profile *models.Profile) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if profile != nil {
			c.Set(ContextUserKey, profile)
			c.Set(ContextUserIDKey, profile.ID)
		}
		c.Next()
	})
	r.Use(RequireOwner())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRequireOwner_AllowsOwner(t *testing.T) {
	r := newRBACRouter(&models.Profile{ID: "u1", Role: models.RoleOwner})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireOwner_RejectsEveryOtherRole(t *testing.T) {
	for _, role := range models.AllRoles() {
		if role == models.RoleOwner {
			continue
		}
		t.Run(string(role), func(t *testing.T) {
			r := newRBACRouter(&models.Profile{ID: "u1", Role: role})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

			if w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", w.Code)
			}
		})
	}
}

func TestRequireOwner_RejectsUnauthenticated(t *testing.T) {
	r := newRBACRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
