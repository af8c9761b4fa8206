// login_code_repository.go implements LoginCodeRepository, the store for
// one-time two-factor codes. A resend supersedes prior codes for the email, so
// only the newest unconsumed code ever satisfies a verification attempt.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/toolvault/toolvault/internal/db/models"
)

// LoginCodeRepository handles login code database operations.
type LoginCodeRepository struct {
	db *sql.DB
}

// NewLoginCodeRepository creates a new LoginCodeRepository.
func NewLoginCodeRepository(db *sql.DB) *LoginCodeRepository {
	return &LoginCodeRepository{db: db}
}

// CreateLoginCode stores a freshly generated code and consumes any earlier
// outstanding codes for the same email, so a resend always supersedes.
func (r *LoginCodeRepository) CreateLoginCode(ctx context.Context, code *models.LoginCode) error {
	code.ID = uuid.New().String()
	code.CreatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	supersede := `UPDATE login_codes SET consumed_at = $2 WHERE email = $1 AND consumed_at IS NULL`
	if _, err := tx.ExecContext(ctx, supersede, code.Email, code.CreatedAt); err != nil {
		return err
	}

	insert := `
		INSERT INTO login_codes (id, email, code, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, insert,
		code.ID,
		code.Email,
		code.Code,
		code.CreatedAt,
		code.ExpiresAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetActiveLoginCode retrieves the newest unconsumed code for the email.
// Returns (nil, nil) when no code is outstanding. Expiry is checked by the
// caller so the distinction between "no code" and "expired code" stays visible.
func (r *LoginCodeRepository) GetActiveLoginCode(ctx context.Context, email string) (*models.LoginCode, error) {
	query := `
		SELECT id, email, code, created_at, expires_at, consumed_at
		FROM login_codes
		WHERE email = $1 AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	code := &models.LoginCode{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&code.ID,
		&code.Email,
		&code.Code,
		&code.CreatedAt,
		&code.ExpiresAt,
		&code.ConsumedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return code, nil
}

// ConsumeLoginCode marks a code as used.
func (r *LoginCodeRepository) ConsumeLoginCode(ctx context.Context, id string) error {
	query := `UPDATE login_codes SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	return err
}

// DeleteStaleCodes removes codes that are consumed or expired before the
// cutoff. Called by the background sweeper; the table otherwise only grows.
func (r *LoginCodeRepository) DeleteStaleCodes(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_codes WHERE consumed_at IS NOT NULL OR expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
