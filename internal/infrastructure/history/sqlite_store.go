// Package history persists generation records in a SQLite database.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/ports"
)

// SQLiteStore records every generated command together with whether the user
// accepted it. Recording is best-effort; callers treat failures as non-fatal.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath returns the database location under the user data directory.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "baishify", "history.db")
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		timestamp TEXT,
		provider TEXT,
		model TEXT,
		prompt TEXT,
		command TEXT,
		safety TEXT,
		accepted INTEGER,
		attempt INTEGER
	);`)
	return err
}

// Save implements ports.HistoryRepository.
func (s *SQLiteStore) Save(record domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO generations
		(session_id, timestamp, provider, model, prompt, command, safety, accepted, attempt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.SessionID,
		record.Timestamp.Format(time.RFC3339),
		record.Provider,
		record.Model,
		record.Prompt,
		record.Command,
		string(record.Safety),
		boolToInt(record.Accepted),
		record.Attempt,
	)
	return err
}

// Recent implements ports.HistoryRepository, returning the newest records
// first.
func (s *SQLiteStore) Recent(limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	rows, err := s.db.Query(`SELECT id, session_id, timestamp, provider, model, prompt, command, safety, accepted, attempt
		FROM generations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts, safety string
		var accepted int
		if err := rows.Scan(&rec.ID, &rec.SessionID, &ts, &rec.Provider, &rec.Model, &rec.Prompt, &rec.Command, &safety, &accepted, &rec.Attempt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Safety = domain.SafetyLabel(safety)
		rec.Accepted = accepted == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all recorded generations.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM generations")
	return err
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close implements ports.HistoryRepository.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
