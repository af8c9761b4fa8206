// Package safego provides a panic-recovering goroutine launcher for background
// work such as activity-log writes and the login-code sweeper.
package safego

import "log/slog"

// Go launches fn in a new goroutine and recovers any panic, logging it instead
// of crashing the process. Every fire-and-forget goroutine in the service goes
// through this so an unexpected panic in best-effort work (audit writes,
// sweepers) never takes down the API.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
