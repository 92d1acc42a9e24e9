package history

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"sftpgrab/internal/models"
)

// PGStore keeps the log in PostgreSQL for setups where several machines
// share one history. The serial id column preserves insertion order.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(connStr string) (*PGStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &PGStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PGStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transfer_history (
			id     SERIAL PRIMARY KEY,
			date   TEXT NOT NULL,
			type   TEXT NOT NULL,
			file   TEXT NOT NULL,
			status TEXT NOT NULL
		);
	`)
	return err
}

// Load returns all entries in insertion order.
func (s *PGStore) Load() ([]models.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT date, type, file, status FROM transfer_history ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.Date, &e.Type, &e.File, &e.Status); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PGStore) Append(e models.HistoryEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO transfer_history (date, type, file, status) VALUES ($1, $2, $3, $4)`,
		e.Date, e.Type, e.File, e.Status,
	)
	return err
}

// Delete removes the oldest entry matching k.
func (s *PGStore) Delete(k Key) error {
	_, err := s.db.Exec(
		`DELETE FROM transfer_history WHERE id = (
			SELECT id FROM transfer_history
			WHERE date=$1 AND file=$2 AND status=$3
			ORDER BY id LIMIT 1
		)`,
		k.Date, k.File, k.Status,
	)
	return err
}

func (s *PGStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM transfer_history`)
	return err
}

func (s *PGStore) Close() error {
	return s.db.Close()
}
