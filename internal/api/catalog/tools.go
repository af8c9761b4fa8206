// tools.go implements tool submission, listing, editing, deletion, and the
// owner moderation endpoints. Every new tool enters the queue as pending;
// status changes only through Approve and Reject.
package catalog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/audit"
	"github.com/toolvault/toolvault/internal/cache"
	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
	"github.com/toolvault/toolvault/internal/middleware"
	"github.com/toolvault/toolvault/internal/policy"
	"github.com/toolvault/toolvault/internal/telemetry"
)

// listKey identifies one cached page of the tool listing. Visibility depends
// on who is asking, so the actor is part of the key.
type listKey struct {
	actorID string
	isOwner bool
	page    int
	perPage int
}

// listPage is one cached listing response.
type listPage struct {
	Tools []*models.Tool
	Total int
}

// ToolHandlers holds the tool CRUD and moderation endpoints.
type ToolHandlers struct {
	tools    *repositories.ToolRepository
	recorder *audit.Recorder

	listCache *cache.Cache[listKey, listPage]
	cacheTTL  time.Duration
}

// NewToolHandlers creates handlers backed by the tool repository. recorder is
// used directly (not via middleware) where the write must be durable before
// the response, such as the deleted-tool name snapshot.
func NewToolHandlers(tools *repositories.ToolRepository, recorder *audit.Recorder, cacheTTL time.Duration) *ToolHandlers {
	return &ToolHandlers{
		tools:     tools,
		recorder:  recorder,
		listCache: cache.New[listKey, listPage](),
		cacheTTL:  cacheTTL,
	}
}

// parsePagination reads page/per_page query params with the usual clamps.
func parsePagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

// List handles GET /api/v1/tools. Approved tools are visible to everyone;
// pending and rejected only to their creator and to owners. Pages are served
// from the TTL cache when fresh.
func (h *ToolHandlers) List(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	page, perPage := parsePagination(c)
	key := listKey{actorID: actor.ID, isOwner: actor.IsOwner(), page: page, perPage: perPage}

	if cached, ok := h.listCache.Get(key); ok {
		telemetry.CacheHitsTotal.Inc()
		c.JSON(http.StatusOK, gin.H{
			"tools": cached.Tools,
			"total": cached.Total, "page": page, "per_page": perPage,
		})
		return
	}
	telemetry.CacheMissesTotal.Inc()

	tools, total, err := h.tools.ListVisibleTools(c.Request.Context(), actor.ID, actor.IsOwner(), perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tools"})
		return
	}

	h.listCache.Set(key, listPage{Tools: tools, Total: total}, h.cacheTTL)
	c.JSON(http.StatusOK, gin.H{
		"tools": tools,
		"total": total, "page": page, "per_page": perPage,
	})
}

// ListPending handles GET /api/v1/admin/tools/pending, the moderation queue.
// Owner-only at the routing layer.
func (h *ToolHandlers) ListPending(c *gin.Context) {
	tools, err := h.tools.ListPendingTools(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending tools"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

// Get handles GET /api/v1/tools/:id, returning the tool together with its
// rating/comment aggregate.
func (h *ToolHandlers) Get(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	tool, ok := h.loadVisibleTool(c, actor)
	if !ok {
		return
	}

	aggregate, err := h.tools.GetToolAggregate(c.Request.Context(), tool.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tool statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": tool, "stats": aggregate})
}

type toolRequest struct {
	Name             string        `json:"name" binding:"required"`
	Description      string        `json:"description" binding:"required"`
	CategoryID       *string       `json:"category_id"`
	WebsiteURL       *string       `json:"website_url"`
	DocumentationURL *string       `json:"documentation_url"`
	VideoURL         *string       `json:"video_url"`
	Difficulty       string        `json:"difficulty_level" binding:"required"`
	Pricing          string        `json:"pricing_model" binding:"required"`
	Tags             []string      `json:"tags"`
	Roles            []models.Role `json:"roles"`
}

func (req *toolRequest) validate() (models.DifficultyLevel, models.PricingModel, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "", "", "name cannot be empty"
	}
	difficulty := models.DifficultyLevel(req.Difficulty)
	if !difficulty.IsValid() {
		return "", "", "invalid difficulty_level"
	}
	pricing := models.PricingModel(req.Pricing)
	if !pricing.IsValid() {
		return "", "", "invalid pricing_model"
	}
	for _, r := range req.Roles {
		if !r.IsValid() {
			return "", "", "invalid role: " + string(r)
		}
	}
	return difficulty, pricing, ""
}

// Create handles POST /api/v1/tools. New tools always start pending,
// regardless of who submits them; owners go through their own queue too.
func (h *ToolHandlers) Create(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req toolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, description, difficulty_level, and pricing_model are required"})
		return
	}
	difficulty, pricing, problem := req.validate()
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	tool := &models.Tool{
		Name:             req.Name,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		WebsiteURL:       req.WebsiteURL,
		DocumentationURL: req.DocumentationURL,
		VideoURL:         req.VideoURL,
		Difficulty:       difficulty,
		Pricing:          pricing,
		Tags:             req.Tags,
		Status:           models.ToolStatusPending,
		CreatedBy:        actor.ID,
		Roles:            req.Roles,
	}
	if err := h.tools.CreateTool(c.Request.Context(), tool); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tool"})
		return
	}

	h.listCache.InvalidateAll()
	telemetry.ToolSubmissionsTotal.Inc()
	middleware.StageAuditEvent(c, audit.Event{
		Action:       models.ActionCreateTool,
		ResourceType: models.ResourceTool,
		ResourceID:   &tool.ID,
		Details:      map[string]interface{}{"name": tool.Name},
	})
	c.JSON(http.StatusCreated, tool)
}

// Update handles PUT /api/v1/tools/:id. Editable by the creator and by
// owners. Status is untouched: editing an approved tool does not send it back
// through moderation.
func (h *ToolHandlers) Update(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	tool, ok := h.loadVisibleTool(c, actor)
	if !ok {
		return
	}
	if !policy.CanEdit(tool, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	var req toolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, description, difficulty_level, and pricing_model are required"})
		return
	}
	difficulty, pricing, problem := req.validate()
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	tool.Name = req.Name
	tool.Description = req.Description
	tool.CategoryID = req.CategoryID
	tool.WebsiteURL = req.WebsiteURL
	tool.DocumentationURL = req.DocumentationURL
	tool.VideoURL = req.VideoURL
	tool.Difficulty = difficulty
	tool.Pricing = pricing
	tool.Tags = req.Tags
	tool.Roles = req.Roles
	if err := h.tools.UpdateTool(c.Request.Context(), tool); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tool"})
		return
	}

	h.listCache.InvalidateAll()
	middleware.StageAuditEvent(c, audit.Event{
		Action:       models.ActionUpdateTool,
		ResourceType: models.ResourceTool,
		ResourceID:   &tool.ID,
		Details:      map[string]interface{}{"name": tool.Name},
	})
	c.JSON(http.StatusOK, tool)
}

// Delete handles DELETE /api/v1/tools/:id. The audit entry is written
// synchronously before the row disappears, with the tool's name snapshotted
// into the details: once the cascade runs, the log is the only record.
func (h *ToolHandlers) Delete(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	tool, ok := h.loadVisibleTool(c, actor)
	if !ok {
		return
	}
	if !policy.CanDelete(tool, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	userAgent := c.Request.UserAgent()
	if err := h.recorder.RecordSync(c.Request.Context(), audit.Event{
		UserID:       &actor.ID,
		Action:       models.ActionDeleteTool,
		ResourceType: models.ResourceTool,
		ResourceID:   &tool.ID,
		Details:      map[string]interface{}{"name": tool.Name, "status": tool.Status},
		UserAgent:    &userAgent,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record deletion"})
		return
	}

	if err := h.tools.DeleteTool(c.Request.Context(), tool.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tool"})
		return
	}

	h.listCache.InvalidateAll()
	c.JSON(http.StatusOK, gin.H{"message": "Tool deleted"})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

const defaultRejectionReason = "no reason given"

// Approve handles POST /api/v1/admin/tools/:id/approve. Owner-only at the
// routing layer. Approving clears any earlier rejection reason; re-approving
// an approved tool is a harmless no-op.
func (h *ToolHandlers) Approve(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}

	if err := h.tools.SetToolStatus(c.Request.Context(), tool.ID, models.ToolStatusApproved, actor.ID, nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve tool"})
		return
	}

	h.listCache.InvalidateAll()
	telemetry.ModerationDecisionsTotal.WithLabelValues("approved").Inc()
	middleware.StageAuditEvent(c, audit.Event{
		Action:       models.ActionApproveTool,
		ResourceType: models.ResourceTool,
		ResourceID:   &tool.ID,
		Details:      map[string]interface{}{"name": tool.Name},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Tool approved"})
}

// Reject handles POST /api/v1/admin/tools/:id/reject. The reason is optional;
// a missing or blank one is stored as "no reason given" so the submitter
// always sees something.
func (h *ToolHandlers) Reject(c *gin.Context) {
	actor := middleware.CurrentProfile(c)
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}

	var req rejectRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = defaultRejectionReason
	}

	if err := h.tools.SetToolStatus(c.Request.Context(), tool.ID, models.ToolStatusRejected, actor.ID, &reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject tool"})
		return
	}

	h.listCache.InvalidateAll()
	telemetry.ModerationDecisionsTotal.WithLabelValues("rejected").Inc()
	middleware.StageAuditEvent(c, audit.Event{
		Action:       models.ActionRejectTool,
		ResourceType: models.ResourceTool,
		ResourceID:   &tool.ID,
		Details:      map[string]interface{}{"name": tool.Name, "reason": reason},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Tool rejected"})
}

// loadTool fetches the tool named by the :id param, handling the not-found
// and error responses. Used by moderation endpoints, which see every tool.
func (h *ToolHandlers) loadTool(c *gin.Context) (*models.Tool, bool) {
	tool, err := h.tools.GetToolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tool"})
		return nil, false
	}
	if tool == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tool not found"})
		return nil, false
	}
	return tool, true
}

// loadVisibleTool is loadTool plus the visibility check. A tool the actor may
// not see is reported as 404, not 403, so hidden submissions stay hidden.
func (h *ToolHandlers) loadVisibleTool(c *gin.Context, actor *models.Profile) (*models.Tool, bool) {
	tool, ok := h.loadTool(c)
	if !ok {
		return nil, false
	}
	if !policy.CanView(tool, actor) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tool not found"})
		return nil, false
	}
	return tool, true
}
