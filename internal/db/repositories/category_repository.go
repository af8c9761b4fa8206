// category_repository.go implements CategoryRepository, the database queries
// for the category reference dataset that backs the dashboard's cache.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/toolvault/toolvault/internal/db/models"
)

// CategoryRepository handles category database operations.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// CreateCategory creates a new category.
func (r *CategoryRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO categories (id, name, description, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Description,
		c.Color,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// GetCategoryByID retrieves a category by ID. Returns (nil, nil) when absent.
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	query := `
		SELECT id, name, description, color, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Color,
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

// UpdateCategory updates a category's name, description, and color.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE categories
		SET name = $2, description = $3, color = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Description,
		c.Color,
		c.UpdatedAt,
	)
	return err
}

// DeleteCategory deletes a category. Tools referencing it keep existing with a
// null category (ON DELETE SET NULL).
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

// ListCategories retrieves all categories ordered by name.
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT id, name, description, color, created_at, updated_at
		FROM categories
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c := &models.Category{}
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.Color,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
