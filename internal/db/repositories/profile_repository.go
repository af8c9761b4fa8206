// Package repositories implements the data access layer (repository pattern)
// for ToolVault. Each repository type encapsulates all database queries for one
// domain entity. Handlers never issue SQL directly — all access goes through
// this layer, which keeps query logic testable in isolation and mirrors the
// visibility policy in SQL so client-side checks are never the only boundary.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/toolvault/toolvault/internal/db/models"
)

// ProfileRepository handles profile database operations.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, full_name, role, two_factor_enabled, password_hash, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Role,
		&p.TwoFactorEnabled,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProfile creates a new profile.
func (r *ProfileRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO profiles (id, email, full_name, role, two_factor_enabled, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Email,
		p.FullName,
		p.Role,
		p.TwoFactorEnabled,
		p.PasswordHash,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// GetProfileByID retrieves a profile by ID. Returns (nil, nil) when absent.
func (r *ProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// GetProfileByEmail retrieves a profile by email. Returns (nil, nil) when absent.
func (r *ProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, email))
}

// UpdateFullName updates the profile's display name.
func (r *ProfileRepository) UpdateFullName(ctx context.Context, id, fullName string) error {
	query := `UPDATE profiles SET full_name = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, fullName, time.Now())
	return err
}

// SetTwoFactorEnabled toggles the two-factor flag. The handler layer restricts
// this to the profile's own owner; no role override exists for this column.
func (r *ProfileRepository) SetTwoFactorEnabled(ctx context.Context, id string, enabled bool) error {
	query := `UPDATE profiles SET two_factor_enabled = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, enabled, time.Now())
	return err
}

// CountOwners returns the number of profiles holding the owner role. Used at
// startup to decide whether to bootstrap an initial owner account.
func (r *ProfileRepository) CountOwners(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE role = $1`, models.RoleOwner).Scan(&count)
	return count, err
}

// ListProfiles retrieves a paginated list of profiles, newest first.
func (r *ProfileRepository) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		p := &models.Profile{}
		err := rows.Scan(
			&p.ID,
			&p.Email,
			&p.FullName,
			&p.Role,
			&p.TwoFactorEnabled,
			&p.PasswordHash,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}

	return profiles, total, rows.Err()
}
