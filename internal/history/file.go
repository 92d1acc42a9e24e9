package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"sftpgrab/internal/models"
)

// FileStore keeps the log as a JSON array in a single file. The encoding
// is indented and does not escape non-ASCII file names, so the file stays
// readable in a text editor.
type FileStore struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Load reads the persisted log. A missing or unreadable file yields an
// empty log rather than an error: history is a convenience and must never
// block the rest of the tool. The discarded error is logged.
func (s *FileStore) Load() ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

// Append adds one entry and flushes.
func (s *FileStore) Append(e models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(append(s.read(), e))
}

// Delete removes the first entry matching k and flushes.
func (s *FileStore) Delete(k Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.read()
	for i, e := range entries {
		if k.Matches(e) {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	return s.write(entries)
}

// Clear empties the log and flushes.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write([]models.HistoryEntry{})
}

func (s *FileStore) read() []models.HistoryEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("history unreadable, starting empty")
		}
		return nil
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("history corrupt, starting empty")
		return nil
	}
	return entries
}

// write flushes atomically: encode to a temp file, then rename over the
// log so a crash mid-write cannot corrupt it.
func (s *FileStore) write(entries []models.HistoryEntry) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("flush history: %w", err)
	}
	return nil
}
