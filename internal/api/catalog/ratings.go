// ratings.go implements the per-user tool rating endpoints. One rating per
// (tool, user); re-rating overwrites, deleting removes.
package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
	"github.com/toolvault/toolvault/internal/middleware"
	"github.com/toolvault/toolvault/internal/policy"
	"github.com/toolvault/toolvault/internal/validation"
)

// RatingHandlers holds the rating endpoints.
type RatingHandlers struct {
	ratings *repositories.RatingRepository
	tools   *repositories.ToolRepository
}

// NewRatingHandlers creates handlers backed by the rating and tool repositories.
func NewRatingHandlers(ratings *repositories.RatingRepository, tools *repositories.ToolRepository) *RatingHandlers {
	return &RatingHandlers{ratings: ratings, tools: tools}
}

type rateRequest struct {
	Rating int `json:"rating" binding:"required"`
}

// Rate handles PUT /api/v1/tools/:id/rating, setting or replacing the
// caller's rating. The response carries the tool's updated aggregate so the
// dashboard can refresh the average without a second request.
func (h *RatingHandlers) Rate(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}
	if err := validation.ValidateRating(req.Rating); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tool, ok := h.visibleTool(c, actor)
	if !ok {
		return
	}

	rating := &models.ToolRating{ToolID: tool.ID, UserID: actor.ID, Rating: req.Rating}
	if err := h.ratings.UpsertRating(c.Request.Context(), rating); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
		return
	}

	aggregate, err := h.tools.GetToolAggregate(c.Request.Context(), tool.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tool statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": rating, "stats": aggregate})
}

// Unrate handles DELETE /api/v1/tools/:id/rating. Removing a rating that does
// not exist is a no-op, not an error.
func (h *RatingHandlers) Unrate(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	tool, ok := h.visibleTool(c, actor)
	if !ok {
		return
	}

	if err := h.ratings.DeleteRating(c.Request.Context(), tool.ID, actor.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove rating"})
		return
	}

	aggregate, err := h.tools.GetToolAggregate(c.Request.Context(), tool.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tool statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": aggregate})
}

func (h *RatingHandlers) visibleTool(c *gin.Context, actor *models.Profile) (*models.Tool, bool) {
	tool, err := h.tools.GetToolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tool"})
		return nil, false
	}
	if tool == nil || !policy.CanView(tool, actor) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tool not found"})
		return nil, false
	}
	return tool, true
}
