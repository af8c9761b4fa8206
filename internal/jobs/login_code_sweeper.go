// login_code_sweeper.go implements the LoginCodeSweeper background job, which
// periodically deletes login code rows that are consumed or expired. Expiry is
// enforced at verification time regardless; the sweeper is hygiene, keeping the
// table from accumulating dead rows. It is always safe to start.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/toolvault/toolvault/internal/db/repositories"
	"github.com/toolvault/toolvault/internal/telemetry"
)

// LoginCodeSweeper periodically purges stale two-factor login codes.
type LoginCodeSweeper struct {
	codes    *repositories.LoginCodeRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewLoginCodeSweeper creates a sweeper running on the given interval.
func NewLoginCodeSweeper(codes *repositories.LoginCodeRepository, interval time.Duration) *LoginCodeSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &LoginCodeSweeper{
		codes:    codes,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background sweep loop. It runs one sweep immediately, then
// repeats on the configured interval. The loop exits when ctx is cancelled or
// Stop() is called.
func (s *LoginCodeSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("login code sweeper started", "interval", s.interval)

	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			slog.Info("login code sweeper stopped")
			return
		case <-ctx.Done():
			slog.Info("login code sweeper context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit.
func (s *LoginCodeSweeper) Stop() {
	close(s.stopChan)
}

func (s *LoginCodeSweeper) sweep(ctx context.Context) {
	deleted, err := s.codes.DeleteStaleCodes(ctx, time.Now())
	if err != nil {
		slog.Error("login code sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		telemetry.LoginCodesSweptTotal.Add(float64(deleted))
		slog.Info("swept stale login codes", "deleted", deleted)
	}
}
