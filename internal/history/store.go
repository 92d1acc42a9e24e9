// Package history persists the ordered log of past transfer attempts.
package history

import "sftpgrab/internal/models"

// Key identifies a single entry for deletion. Entries can share a file
// name, so the full (date, file, status) tuple is required; the first match
// in insertion order is removed.
type Key struct {
	Date   string
	File   string
	Status string
}

func (k Key) Matches(e models.HistoryEntry) bool {
	return e.Date == k.Date && e.File == k.File && e.Status == k.Status
}

// Store is the durable history log. Every mutation flushes synchronously
// before returning; insertion order is chronological order. Newest-first
// display is the caller's concern.
type Store interface {
	Load() ([]models.HistoryEntry, error)
	Append(e models.HistoryEntry) error
	Delete(k Key) error
	Clear() error
}
