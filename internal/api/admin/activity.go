// Package admin implements the owner-only surface: the activity log listing
// and the dashboard statistics. Routes in this package sit behind the owner
// requirement at the routing layer.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
)

// ActivityHandlers serves the audit trail listing.
type ActivityHandlers struct {
	logs *repositories.AuditRepository
}

// NewActivityHandlers creates handlers backed by the audit repository.
func NewActivityHandlers(logs *repositories.AuditRepository) *ActivityHandlers {
	return &ActivityHandlers{logs: logs}
}

// ListActivity handles GET /api/v1/admin/activity. Filters: user_id, action,
// resource_type, start_date, end_date (RFC 3339), plus page/per_page.
func (h *ActivityHandlers) ListActivity(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if perPage < 1 {
		perPage = 50
	}
	if perPage > 200 {
		perPage = 200
	}

	entries, total, err := h.logs.ListActivityLogs(c.Request.Context(), filters, perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total, "page": page, "per_page": perPage,
	})
}

func parseFilters(c *gin.Context) (repositories.AuditFilters, error) {
	var filters repositories.AuditFilters

	if v := c.Query("user_id"); v != "" {
		filters.UserID = &v
	}
	if v := c.Query("action"); v != "" {
		action := models.Action(v)
		if !action.IsValid() {
			return filters, errInvalid("action", v)
		}
		filters.Action = &action
	}
	if v := c.Query("resource_type"); v != "" {
		rt := models.ResourceType(v)
		if !rt.IsValid() {
			return filters, errInvalid("resource_type", v)
		}
		filters.ResourceType = &rt
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, errInvalid("start_date", v)
		}
		filters.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, errInvalid("end_date", v)
		}
		filters.EndDate = &t
	}
	return filters, nil
}

type filterError struct{ field, value string }

func (e filterError) Error() string { return "invalid " + e.field + ": " + e.value }

func errInvalid(field, value string) error { return filterError{field: field, value: value} }
