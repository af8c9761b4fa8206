// profile.go implements the caller-scoped profile endpoints and the role
// metadata listing. There is no admin user CRUD here; account provisioning is
// owner bootstrap plus the external account lifecycle.
package accounts

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/audit"
	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
	"github.com/toolvault/toolvault/internal/middleware"
)

// ProfileHandlers holds the profile and role endpoints.
type ProfileHandlers struct {
	profiles *repositories.ProfileRepository
}

// NewProfileHandlers creates handlers backed by the profile repository.
func NewProfileHandlers(profiles *repositories.ProfileRepository) *ProfileHandlers {
	return &ProfileHandlers{profiles: profiles}
}

// GetMe handles GET /api/v1/profiles/me.
func (h *ProfileHandlers) GetMe(c *gin.Context) {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type updateMeRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

// UpdateMe handles PUT /api/v1/profiles/me. Only the display name is mutable;
// email and role are managed outside this surface.
func (h *ProfileHandlers) UpdateMe(c *gin.Context) {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name is required"})
		return
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name cannot be empty"})
		return
	}

	if err := h.profiles.UpdateFullName(c.Request.Context(), profile.ID, fullName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	profile.FullName = fullName
	c.JSON(http.StatusOK, profile)
}

type twoFactorRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetTwoFactor handles PUT /api/v1/profiles/me/two-factor. The change takes
// effect at the caller's next login; the current session is untouched.
func (h *ProfileHandlers) SetTwoFactor(c *gin.Context) {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req twoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled is required"})
		return
	}

	if err := h.profiles.SetTwoFactorEnabled(c.Request.Context(), profile.ID, *req.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update two-factor setting"})
		return
	}

	action := models.ActionEnable2FA
	if !*req.Enabled {
		action = models.ActionDisable2FA
	}
	middleware.StageAuditEvent(c, audit.Event{
		Action:       action,
		ResourceType: models.ResourceProfile,
		ResourceID:   &profile.ID,
	})

	profile.TwoFactorEnabled = *req.Enabled
	c.JSON(http.StatusOK, profile)
}

// ListRoles handles GET /api/v1/roles. Role metadata is static, so the
// response is assembled from the in-process table, no database round-trip.
func (h *ProfileHandlers) ListRoles(c *gin.Context) {
	roles := models.AllRoles()
	out := make([]gin.H, 0, len(roles))
	for _, r := range roles {
		meta := r.Meta()
		out = append(out, gin.H{
			"role":  r,
			"label": meta.Label,
			"icon":  meta.Icon,
			"color": meta.Color,
		})
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}
