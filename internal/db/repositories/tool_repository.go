// tool_repository.go implements ToolRepository, covering the tool approval
// lifecycle, role tagging, visibility-filtered listing, and aggregate stats.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/toolvault/toolvault/internal/db/models"
)

// ToolRepository handles tool database operations.
type ToolRepository struct {
	db *sql.DB
}

// NewToolRepository creates a new ToolRepository.
func NewToolRepository(db *sql.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

// toolSelect is the shared SELECT for tool reads. Role tags are aggregated in
// SQL so a tool always arrives with its full role set in one round-trip.
const toolSelect = `
	SELECT t.id, t.name, t.description, t.category_id, t.website_url,
	       t.documentation_url, t.video_url, t.difficulty_level, t.pricing_model,
	       t.tags, t.status, t.approved_by, t.approved_at, t.rejection_reason,
	       t.created_by, t.created_at, t.updated_at,
	       COALESCE(array_agg(tr.role) FILTER (WHERE tr.role IS NOT NULL), '{}') AS roles
	FROM ai_tools t
	LEFT JOIN ai_tool_roles tr ON tr.tool_id = t.id
`

func scanTool(row interface{ Scan(...interface{}) error }) (*models.Tool, error) {
	t := &models.Tool{}
	var tags, roles pq.StringArray

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.CategoryID,
		&t.WebsiteURL,
		&t.DocumentationURL,
		&t.VideoURL,
		&t.Difficulty,
		&t.Pricing,
		&tags,
		&t.Status,
		&t.ApprovedBy,
		&t.ApprovedAt,
		&t.RejectionReason,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
		&roles,
	)
	if err != nil {
		return nil, err
	}

	t.Tags = []string(tags)
	t.Roles = make([]models.Role, 0, len(roles))
	for _, r := range roles {
		t.Roles = append(t.Roles, models.Role(r))
	}
	return t, nil
}

// CreateTool inserts a new tool with status pending and its role tags, all in
// one transaction. The caller sets CreatedBy to the acting user's own ID.
func (r *ToolRepository) CreateTool(ctx context.Context, t *models.Tool) error {
	t.ID = uuid.New().String()
	t.Status = models.ToolStatusPending
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO ai_tools (id, name, description, category_id, website_url,
			documentation_url, video_url, difficulty_level, pricing_model, tags,
			status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = tx.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.CategoryID, t.WebsiteURL,
		t.DocumentationURL, t.VideoURL, t.Difficulty, t.Pricing, pq.Array(t.Tags),
		t.Status, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertRoleTags(ctx, tx, t.ID, t.Roles); err != nil {
		return err
	}

	return tx.Commit()
}

// GetToolByID retrieves a tool with its role tags. Returns (nil, nil) when absent.
func (r *ToolRepository) GetToolByID(ctx context.Context, id string) (*models.Tool, error) {
	query := toolSelect + ` WHERE t.id = $1 GROUP BY t.id`

	t, err := scanTool(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListVisibleTools retrieves tools the actor may see, newest first. The WHERE
// clause is the SQL mirror of policy.CanView: approved tools, the actor's own
// submissions, or everything when the actor is an owner.
func (r *ToolRepository) ListVisibleTools(ctx context.Context, actorID string, actorIsOwner bool, limit, offset int) ([]*models.Tool, int, error) {
	where := ` WHERE (t.status = 'approved' OR t.created_by = $1 OR $2)`

	var total int
	countQuery := `SELECT COUNT(*) FROM ai_tools t` + where
	if err := r.db.QueryRowContext(ctx, countQuery, actorID, actorIsOwner).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := toolSelect + where + `
		GROUP BY t.id
		ORDER BY t.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, actorID, actorIsOwner, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tools := make([]*models.Tool, 0)
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, 0, err
		}
		tools = append(tools, t)
	}

	return tools, total, rows.Err()
}

// ListPendingTools retrieves all tools awaiting moderation, oldest first, for
// the owner's review queue.
func (r *ToolRepository) ListPendingTools(ctx context.Context) ([]*models.Tool, error) {
	query := toolSelect + `
		WHERE t.status = 'pending'
		GROUP BY t.id
		ORDER BY t.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tools := make([]*models.Tool, 0)
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}

	return tools, rows.Err()
}

// UpdateTool updates a tool's editable fields and replaces its role tags
// wholesale. Status and the moderation columns are deliberately untouched:
// editing an approved tool does not revert it to pending.
func (r *ToolRepository) UpdateTool(ctx context.Context, t *models.Tool) error {
	t.UpdatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE ai_tools
		SET name = $2, description = $3, category_id = $4, website_url = $5,
		    documentation_url = $6, video_url = $7, difficulty_level = $8,
		    pricing_model = $9, tags = $10, updated_at = $11
		WHERE id = $1
	`

	_, err = tx.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.CategoryID, t.WebsiteURL,
		t.DocumentationURL, t.VideoURL, t.Difficulty, t.Pricing,
		pq.Array(t.Tags), t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	// Delete-then-insert makes role assignment idempotent; no merge logic.
	if _, err := tx.ExecContext(ctx, `DELETE FROM ai_tool_roles WHERE tool_id = $1`, t.ID); err != nil {
		return err
	}
	if err := insertRoleTags(ctx, tx, t.ID, t.Roles); err != nil {
		return err
	}

	return tx.Commit()
}

// SetToolStatus records a moderation decision. Approval clears any prior
// rejection reason; rejection stores the given reason. Both stamp the deciding
// moderator and decision time together, so the three columns only ever change
// as a unit with the status.
func (r *ToolRepository) SetToolStatus(ctx context.Context, toolID string, status models.ToolStatus, moderatorID string, rejectionReason *string) error {
	if status != models.ToolStatusApproved && status != models.ToolStatusRejected {
		return fmt.Errorf("invalid moderation status: %s", status)
	}

	query := `
		UPDATE ai_tools
		SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, toolID, status, moderatorID, time.Now(), rejectionReason)
	return err
}

// DeleteTool removes a tool. Role tags, ratings, and comments cascade at the
// schema level.
func (r *ToolRepository) DeleteTool(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ai_tools WHERE id = $1`, id)
	return err
}

// GetToolAggregate computes the derived rating/comment statistics for a tool.
// A tool with no ratings reports an average of 0, and an unknown tool ID
// reports all zeros rather than an error.
func (r *ToolRepository) GetToolAggregate(ctx context.Context, toolID string) (*models.ToolAggregate, error) {
	query := `
		SELECT COALESCE((SELECT AVG(rating) FROM tool_ratings WHERE tool_id = $1), 0),
		       (SELECT COUNT(*) FROM tool_ratings WHERE tool_id = $1),
		       (SELECT COUNT(*) FROM tool_comments WHERE tool_id = $1)
	`

	agg := &models.ToolAggregate{}
	err := r.db.QueryRowContext(ctx, query, toolID).Scan(
		&agg.AverageRating,
		&agg.RatingCount,
		&agg.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func insertRoleTags(ctx context.Context, tx *sql.Tx, toolID string, roles []models.Role) error {
	for _, role := range roles {
		if !role.IsValid() {
			return fmt.Errorf("invalid role tag: %s", role)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ai_tool_roles (tool_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			toolID, role,
		); err != nil {
			return err
		}
	}
	return nil
}
