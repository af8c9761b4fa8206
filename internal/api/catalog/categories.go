// Package catalog implements the dashboard's tool-catalog HTTP handlers:
// categories, tool submission and moderation, ratings, and comments. Read
// traffic on the tool listing is served from an in-process TTL cache that any
// catalog mutation invalidates wholesale.
package catalog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/audit"
	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
	"github.com/toolvault/toolvault/internal/middleware"
	"github.com/toolvault/toolvault/internal/policy"
	"github.com/toolvault/toolvault/internal/validation"
)

var errEmptyName = errors.New("name cannot be empty")

// CategoryHandlers holds the category CRUD endpoints.
type CategoryHandlers struct {
	categories *repositories.CategoryRepository
}

// NewCategoryHandlers creates handlers backed by the category repository.
func NewCategoryHandlers(categories *repositories.CategoryRepository) *CategoryHandlers {
	return &CategoryHandlers{categories: categories}
}

// List handles GET /api/v1/categories.
func (h *CategoryHandlers) List(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type categoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Color       string  `json:"color" binding:"required"`
}

func (req *categoryRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errEmptyName
	}
	return validation.ValidateHexColor(req.Color)
}

// Create handles POST /api/v1/categories. Any authenticated user may create
// a category.
func (h *CategoryHandlers) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and color are required"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if err := h.categories.CreateCategory(c.Request.Context(), category); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	middleware.StageAuditEvent(c, audit.Event{
		Action:       models.ActionCreateCategory,
		ResourceType: models.ResourceCategory,
		ResourceID:   &category.ID,
		Details:      map[string]interface{}{"name": category.Name},
	})
	c.JSON(http.StatusCreated, category)
}

// Update handles PUT /api/v1/categories/:id.
func (h *CategoryHandlers) Update(c *gin.Context) {
	id := c.Param("id")

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and color are required"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categories.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query category"})
		return
	}
	if category == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	category.Name = req.Name
	category.Description = req.Description
	category.Color = req.Color
	if err := h.categories.UpdateCategory(c.Request.Context(), category); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	middleware.StageAuditEvent(c, audit.Event{
		Action:       models.ActionUpdateCategory,
		ResourceType: models.ResourceCategory,
		ResourceID:   &category.ID,
		Details:      map[string]interface{}{"name": category.Name},
	})
	c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /api/v1/categories/:id. Owner-only; tools referencing
// the category survive with a null category.
func (h *CategoryHandlers) Delete(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	if !policy.CanDeleteCategory(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Owner role required"})
		return
	}

	id := c.Param("id")
	category, err := h.categories.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query category"})
		return
	}
	if category == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	if err := h.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	middleware.StageAuditEvent(c, audit.Event{
		Action:       models.ActionDeleteCategory,
		ResourceType: models.ResourceCategory,
		ResourceID:   &id,
		Details:      map[string]interface{}{"name": category.Name},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
