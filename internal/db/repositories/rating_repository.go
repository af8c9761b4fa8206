// rating_repository.go implements RatingRepository with upsert semantics on
// (tool_id, user_id): re-rating overwrites, never duplicates.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/toolvault/toolvault/internal/db/models"
)

// RatingRepository handles tool rating database operations.
type RatingRepository struct {
	db *sql.DB
}

// NewRatingRepository creates a new RatingRepository.
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// UpsertRating records the actor's rating for a tool. The unique constraint on
// (tool_id, user_id) plus ON CONFLICT gives last-write-wins without read-modify-write.
func (r *RatingRepository) UpsertRating(ctx context.Context, rating *models.ToolRating) error {
	now := time.Now()
	rating.CreatedAt = now
	rating.UpdatedAt = now

	query := `
		INSERT INTO tool_ratings (tool_id, user_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (tool_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		rating.ToolID,
		rating.UserID,
		rating.Rating,
		now,
	)
	return err
}

// GetRating retrieves the actor's rating for a tool. Returns (nil, nil) when
// the actor has not rated it.
func (r *RatingRepository) GetRating(ctx context.Context, toolID, userID string) (*models.ToolRating, error) {
	query := `
		SELECT tool_id, user_id, rating, created_at, updated_at
		FROM tool_ratings
		WHERE tool_id = $1 AND user_id = $2
	`

	rating := &models.ToolRating{}
	err := r.db.QueryRowContext(ctx, query, toolID, userID).Scan(
		&rating.ToolID,
		&rating.UserID,
		&rating.Rating,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// DeleteRating removes the actor's rating for a tool.
func (r *RatingRepository) DeleteRating(ctx context.Context, toolID, userID string) error {
	query := `DELETE FROM tool_ratings WHERE tool_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, toolID, userID)
	return err
}
