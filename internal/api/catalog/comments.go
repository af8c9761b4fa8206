// comments.go implements the tool comment endpoints. Authors edit their own
// comments; owners may delete any comment but never rewrite one.
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

// CommentHandlers holds the comment endpoints.
type CommentHandlers struct {
	comments *repositories.CommentRepository
	tools    *repositories.ToolRepository
}

// NewCommentHandlers creates handlers backed by the comment and tool
// repositories.
func NewCommentHandlers(comments *repositories.CommentRepository, tools *repositories.ToolRepository) *CommentHandlers {
	return &CommentHandlers{comments: comments, tools: tools}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// List handles GET /api/v1/tools/:id/comments, oldest first, with author
// names joined in.
func (h *CommentHandlers) List(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	tool, ok := h.visibleTool(c, actor)
	if !ok {
		return
	}

	comments, err := h.comments.ListComments(c.Request.Context(), tool.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// Create handles POST /api/v1/tools/:id/comments.
func (h *CommentHandlers) Create(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	tool, ok := h.visibleTool(c, actor)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	content, err := validation.NormalizeComment(req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := &models.ToolComment{
		ToolID:  tool.ID,
		UserID:  actor.ID,
		Content: content,
	}
	if err := h.comments.CreateComment(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	comment.AuthorName = actor.FullName
	c.JSON(http.StatusCreated, comment)
}

// Update handles PUT /api/v1/comments/:id. Author-only: owners moderate by
// deletion, they do not put words in someone's mouth.
func (h *CommentHandlers) Update(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	comment, ok := h.loadComment(c)
	if !ok {
		return
	}
	if comment.UserID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit a comment"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	content, err := validation.NormalizeComment(req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.comments.UpdateComment(c.Request.Context(), comment.ID, content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	comment.Content = content
	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /api/v1/comments/:id. Allowed for the author and,
// as moderation, for owners.
func (h *CommentHandlers) Delete(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	comment, ok := h.loadComment(c)
	if !ok {
		return
	}
	if !policy.CanEditComment(comment, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), comment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

func (h *CommentHandlers) loadComment(c *gin.Context) (*models.ToolComment, bool) {
	comment, err := h.comments.GetCommentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query comment"})
		return nil, false
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}
	return comment, true
}

func (h *CommentHandlers) visibleTool(c *gin.Context, actor *models.Profile) (*models.Tool, bool) {
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
