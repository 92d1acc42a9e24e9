package models

import (
	"fmt"
	"path/filepath"
	"time"
)

// Direction of a transfer, as recorded in history.
type Direction string

const (
	DirectionUpload   Direction = "upload"
	DirectionDownload Direction = "download"
)

// Status values recorded in history entries.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ConnectionParams holds everything needed to open one authenticated
// session. Never persisted.
type ConnectionParams struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Normalized returns a copy with the default SFTP port applied.
func (p ConnectionParams) Normalized() ConnectionParams {
	if p.Port == 0 {
		p.Port = 22
	}
	return p
}

// Missing returns the name of the first empty required field, or "".
func (p ConnectionParams) Missing() string {
	switch {
	case p.Host == "":
		return "host"
	case p.Username == "":
		return "username"
	case p.Password == "":
		return "password"
	}
	return ""
}

func (p ConnectionParams) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// TransferRequest describes one upload or download. For uploads the remote
// name defaults to the local file's base name; for downloads LocalSavePath
// must be chosen before the transfer body begins.
type TransferRequest struct {
	Direction     Direction
	LocalPath     string // upload source
	RemoteName    string // remote file name
	LocalSavePath string // download destination
}

// FileName returns the name this request is recorded under.
func (r TransferRequest) FileName() string {
	if r.Direction == DirectionUpload {
		if r.RemoteName != "" {
			return r.RemoteName
		}
		return filepath.Base(r.LocalPath)
	}
	return r.RemoteName
}

// ProgressSample is one (transferred, total) byte-count pair. Samples for a
// single transfer are monotonically non-decreasing.
type ProgressSample struct {
	Transferred int64 `json:"transferred"`
	Total       int64 `json:"total"`
}

// ProgressFunc receives progress samples from the transfer execution context.
type ProgressFunc func(ProgressSample)

// HistoryEntry is one immutable record of a past transfer attempt. All four
// fields are strings so the persisted form stays human-inspectable.
type HistoryEntry struct {
	Date   string `json:"date"` // "YYYY-MM-DD HH:MM", local time
	Type   string `json:"type"` // "upload" | "download"
	File   string `json:"file"`
	Status string `json:"status"` // "success" | "failed"
}

// NewHistoryEntry builds an entry with the timestamp truncated to the minute.
func NewHistoryEntry(ts time.Time, direction Direction, file, status string) HistoryEntry {
	return HistoryEntry{
		Date:   ts.Format("2006-01-02 15:04"),
		Type:   string(direction),
		File:   file,
		Status: status,
	}
}

// Outcome is the terminal classification of one attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Error kinds carried on a failed Result.
const (
	ErrKindValidation = "validation"
	ErrKindConnection = "connection"
	ErrKindTransfer   = "transfer"
)

// Result is the single terminal outcome of a transfer attempt.
type Result struct {
	AttemptID     string
	Outcome       Outcome
	EffectivePath string // remote name for uploads, local save path for downloads
	ErrKind       string
	Err           error
	// StorageWarning reports a history write failure that did not affect
	// the transfer outcome.
	StorageWarning error
}
