// stats.go implements the owner dashboard statistics endpoint.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// StatsHandler serves aggregated dashboard statistics.
type StatsHandler struct {
	db *sqlx.DB
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(database *sqlx.DB) *StatsHandler {
	return &StatsHandler{db: database}
}

// DashboardStats is the response for the owner dashboard.
type DashboardStats struct {
	Tools      ToolStats           `json:"tools"`
	Categories int64               `json:"categories"`
	Profiles   int64               `json:"profiles"`
	Ratings    int64               `json:"ratings"`
	Comments   int64               `json:"comments"`
	ByCategory []CategoryToolCount `json:"by_category"`
}

// ToolStats breaks the catalog down by moderation status.
type ToolStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// CategoryToolCount is the approved-tool count for a single category.
type CategoryToolCount struct {
	Category string `db:"category" json:"category"`
	Count    int64  `db:"count" json:"count"`
}

// GetDashboardStats returns dashboard statistics. Core counts come back in a
// single database round-trip; the per-category breakdown is a second query.
func (h *StatsHandler) GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	query := `
		SELECT
			(SELECT COUNT(*) FROM ai_tools) AS tool_count,
			(SELECT COUNT(*) FROM ai_tools WHERE status = 'pending') AS pending_count,
			(SELECT COUNT(*) FROM ai_tools WHERE status = 'approved') AS approved_count,
			(SELECT COUNT(*) FROM ai_tools WHERE status = 'rejected') AS rejected_count,
			(SELECT COUNT(*) FROM categories) AS category_count,
			(SELECT COUNT(*) FROM profiles) AS profile_count,
			(SELECT COUNT(*) FROM tool_ratings) AS rating_count,
			(SELECT COUNT(*) FROM tool_comments) AS comment_count
	`

	var stats DashboardStats
	err := h.db.QueryRowContext(ctx, query).Scan(
		&stats.Tools.Total,
		&stats.Tools.Pending,
		&stats.Tools.Approved,
		&stats.Tools.Rejected,
		&stats.Categories,
		&stats.Profiles,
		&stats.Ratings,
		&stats.Comments,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard statistics"})
		return
	}

	// Top categories by approved tools. Uncategorised tools are excluded.
	stats.ByCategory = []CategoryToolCount{}
	_ = h.db.SelectContext(ctx, &stats.ByCategory, `
		SELECT c.name AS category, COUNT(*) AS count
		FROM ai_tools t
		JOIN categories c ON c.id = t.category_id
		WHERE t.status = 'approved'
		GROUP BY c.name
		ORDER BY count DESC
		LIMIT 8
	`)

	c.JSON(http.StatusOK, stats)
}
