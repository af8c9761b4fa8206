// mirror.go implements optional secondary sinks for activity entries. The
// database remains the source of truth; a mirror exists for teams that want
// the trail on disk with retention independent of the database.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/toolvault/toolvault/internal/db/models"
)

// Mirror receives a copy of every recorded activity entry.
type Mirror interface {
	Write(ctx context.Context, entry *models.ActivityLog) error
	Close() error
}

// FileMirror appends entries as JSON lines to a local file, rotating when the
// file exceeds maxSizeMB.
type FileMirror struct {
	path       string
	maxSizeMB  int
	maxBackups int

	mu   sync.Mutex
	file *os.File
}

// NewFileMirror opens (or creates) the mirror file for appending.
func NewFileMirror(path string, maxSizeMB, maxBackups int) (*FileMirror, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open activity mirror file: %w", err)
	}
	return &FileMirror{
		path:       path,
		maxSizeMB:  maxSizeMB,
		maxBackups: maxBackups,
		file:       file,
	}, nil
}

// Write appends one entry as a JSON line.
func (m *FileMirror) Write(_ context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSizeMB > 0 {
		if info, err := m.file.Stat(); err == nil && info.Size() > int64(m.maxSizeMB)*1024*1024 {
			if err := m.rotate(); err != nil {
				return fmt.Errorf("rotate activity mirror: %w", err)
			}
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = m.file.Write(append(data, '\n'))
	return err
}

// rotate shifts path → path.1 → path.2 … up to maxBackups and reopens path.
// Caller holds m.mu.
func (m *FileMirror) rotate() error {
	if err := m.file.Close(); err != nil {
		return err
	}

	for i := m.maxBackups - 1; i >= 1; i-- {
		_ = os.Rename(fmt.Sprintf("%s.%d", m.path, i), fmt.Sprintf("%s.%d", m.path, i+1))
	}
	_ = os.Rename(m.path, m.path+".1")
	if m.maxBackups > 0 {
		_ = os.Remove(fmt.Sprintf("%s.%d", m.path, m.maxBackups+1))
	}

	file, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	m.file = file
	return nil
}

// Close closes the mirror file.
func (m *FileMirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file.Close()
}
