// comment_repository.go implements CommentRepository for per-tool comments,
// including the author-name join used when rendering comment threads.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/toolvault/toolvault/internal/db/models"
)

// CommentRepository handles tool comment database operations.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateComment creates a new comment. Content is expected to have passed
// validation.NormalizeComment already.
func (r *CommentRepository) CreateComment(ctx context.Context, c *models.ToolComment) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO tool_comments (id, tool_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.ToolID,
		c.UserID,
		c.Content,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// GetCommentByID retrieves a comment by ID. Returns (nil, nil) when absent.
func (r *CommentRepository) GetCommentByID(ctx context.Context, id string) (*models.ToolComment, error) {
	query := `
		SELECT id, tool_id, user_id, content, created_at, updated_at
		FROM tool_comments
		WHERE id = $1
	`

	c := &models.ToolComment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.ToolID,
		&c.UserID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments retrieves all comments for a tool, oldest first, with the
// author's display name joined in.
func (r *CommentRepository) ListComments(ctx context.Context, toolID string) ([]*models.ToolComment, error) {
	query := `
		SELECT c.id, c.tool_id, c.user_id, c.content, c.created_at, c.updated_at, p.full_name
		FROM tool_comments c
		JOIN profiles p ON p.id = c.user_id
		WHERE c.tool_id = $1
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*models.ToolComment, 0)
	for rows.Next() {
		c := &models.ToolComment{}
		err := rows.Scan(
			&c.ID,
			&c.ToolID,
			&c.UserID,
			&c.Content,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.AuthorName,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// UpdateComment replaces a comment's content.
func (r *CommentRepository) UpdateComment(ctx context.Context, id, content string) error {
	query := `UPDATE tool_comments SET content = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, content, time.Now())
	return err
}

// DeleteComment removes a comment.
func (r *CommentRepository) DeleteComment(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tool_comments WHERE id = $1`, id)
	return err
}
