package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"sftpgrab/internal/config"
	"sftpgrab/internal/history"
	"sftpgrab/internal/models"
)

func newTestServer(t *testing.T) (*Server, history.Store) {
	t.Helper()
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.json"), zerolog.Nop())
	return NewServer(config.Default(), store, nil, zerolog.Nop()), store
}

func TestHandleHistoryNewestFirst(t *testing.T) {
	srv, store := newTestServer(t)

	store.Append(models.HistoryEntry{Date: "2026-08-24 10:00", Type: "upload", File: "old.txt", Status: "success"})
	store.Append(models.HistoryEntry{Date: "2026-08-24 10:05", Type: "download", File: "new.txt", Status: "failed"})

	rec := httptest.NewRecorder()
	srv.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	var got []models.HistoryEntry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].File != "new.txt" || got[1].File != "old.txt" {
		t.Errorf("expected newest first, got %+v", got)
	}
}

func TestHandleClear(t *testing.T) {
	srv, store := newTestServer(t)
	store.Append(models.HistoryEntry{Date: "2026-08-24 10:00", Type: "upload", File: "a.txt", Status: "success"})

	rec := httptest.NewRecorder()
	srv.handleClear(rec, httptest.NewRequest(http.MethodPost, "/api/history/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	entries, _ := store.Load()
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %+v", entries)
	}
}

func TestHandleClearRejectsGet(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.handleClear(rec, httptest.NewRequest(http.MethodGet, "/api/history/clear", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
