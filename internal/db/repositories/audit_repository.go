// audit_repository.go implements AuditRepository, the append-only writer and
// filtered reader for the activity log. Entries are never updated or deleted.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/toolvault/toolvault/internal/db/models"
)

// AuditRepository handles activity log database operations.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AuditFilters contains optional filters for querying the activity log.
type AuditFilters struct {
	UserID       *string
	Action       *models.Action
	ResourceType *models.ResourceType
	StartDate    *time.Time
	EndDate      *time.Time
}

// CreateActivityLog appends one entry. Actions and resource types outside the
// closed vocabularies are rejected before any write.
func (r *AuditRepository) CreateActivityLog(ctx context.Context, entry *models.ActivityLog) error {
	if !entry.Action.IsValid() {
		return fmt.Errorf("invalid audit action: %s", entry.Action)
	}
	if !entry.ResourceType.IsValid() {
		return fmt.Errorf("invalid resource type: %s", entry.ResourceType)
	}

	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now()

	var detailsJSON []byte
	var err error
	if entry.Details != nil {
		detailsJSON, err = json.Marshal(entry.Details)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO activity_logs (id, user_id, action, resource_type, resource_id, details, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		detailsJSON,
		entry.UserAgent,
		entry.CreatedAt,
	)
	return err
}

// ListActivityLogs retrieves entries with optional filters, newest first.
func (r *AuditRepository) ListActivityLogs(ctx context.Context, filters AuditFilters, limit, offset int) ([]*models.ActivityLog, int, error) {
	countQuery := `SELECT COUNT(*) FROM activity_logs WHERE 1=1`
	query := `
		SELECT id, user_id, action, resource_type, resource_id, details, user_agent, created_at
		FROM activity_logs
		WHERE 1=1
	`

	args := make([]interface{}, 0)
	paramIndex := 1

	addFilter := func(clause string, value interface{}) {
		cond := fmt.Sprintf(clause, paramIndex)
		countQuery += cond
		query += cond
		args = append(args, value)
		paramIndex++
	}

	if filters.UserID != nil {
		addFilter(` AND user_id = $%d`, *filters.UserID)
	}
	if filters.Action != nil {
		addFilter(` AND action = $%d`, *filters.Action)
	}
	if filters.ResourceType != nil {
		addFilter(` AND resource_type = $%d`, *filters.ResourceType)
	}
	if filters.StartDate != nil {
		addFilter(` AND created_at >= $%d`, *filters.StartDate)
	}
	if filters.EndDate != nil {
		addFilter(` AND created_at <= $%d`, *filters.EndDate)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]*models.ActivityLog, 0)
	for rows.Next() {
		entry := &models.ActivityLog{}
		var detailsJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.ResourceType,
			&entry.ResourceID,
			&detailsJSON,
			&entry.UserAgent,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}

		if detailsJSON != nil {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, 0, err
			}
		}

		entries = append(entries, entry)
	}

	return entries, total, rows.Err()
}
