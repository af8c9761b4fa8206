// Package audit records who did what to the activity trail. The trail is
// append-only and kept separate from application logs: application logs are
// ephemeral debug output, while activity entries are the product's own record
// of logins, submissions, and moderation decisions, surfaced to owners in the
// dashboard. Writes are best-effort and never block or fail the request that
// triggered them.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
	"github.com/toolvault/toolvault/internal/safego"
)

// writeTimeout bounds a single background activity write.
const writeTimeout = 5 * time.Second

// Recorder appends entries to the activity trail. The database is the primary
// sink; an optional Mirror receives a copy of every entry (e.g. a local JSONL
// file for retention beyond the database).
type Recorder struct {
	repo   *repositories.AuditRepository
	mirror Mirror
}

// NewRecorder creates a Recorder. mirror may be nil.
func NewRecorder(repo *repositories.AuditRepository, mirror Mirror) *Recorder {
	return &Recorder{repo: repo, mirror: mirror}
}

// Event is one recordable action. UserID, ResourceID, and UserAgent are
// optional; Details carries free-form context such as a deleted tool's name.
type Event struct {
	UserID       *string
	Action       models.Action
	ResourceType models.ResourceType
	ResourceID   *string
	Details      map[string]interface{}
	UserAgent    *string
}

// Record appends the event asynchronously and returns immediately. A failed
// write is logged and dropped: the activity trail is best-effort and must
// never fail the request that produced the event. The caller's context is not
// used for the write so that request cancellation cannot lose the entry.
func (r *Recorder) Record(ev Event) {
	entry := &models.ActivityLog{
		UserID:       ev.UserID,
		Action:       ev.Action,
		ResourceType: ev.ResourceType,
		ResourceID:   ev.ResourceID,
		Details:      ev.Details,
		UserAgent:    ev.UserAgent,
	}

	safego.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := r.repo.CreateActivityLog(ctx, entry); err != nil {
			slog.Error("failed to record activity",
				"action", entry.Action,
				"resource_type", entry.ResourceType,
				"error", err)
			return
		}

		if r.mirror != nil {
			if err := r.mirror.Write(ctx, entry); err != nil {
				slog.Warn("failed to mirror activity entry", "error", err)
			}
		}
	})
}

// RecordSync appends the event in the caller's goroutine and returns the write
// error. Used where the caller needs the entry durable before proceeding, such
// as recording a tool deletion with its name snapshot.
func (r *Recorder) RecordSync(ctx context.Context, ev Event) error {
	entry := &models.ActivityLog{
		UserID:       ev.UserID,
		Action:       ev.Action,
		ResourceType: ev.ResourceType,
		ResourceID:   ev.ResourceID,
		Details:      ev.Details,
		UserAgent:    ev.UserAgent,
	}

	if err := r.repo.CreateActivityLog(ctx, entry); err != nil {
		return err
	}
	if r.mirror != nil {
		if err := r.mirror.Write(ctx, entry); err != nil {
			slog.Warn("failed to mirror activity entry", "error", err)
		}
	}
	return nil
}
