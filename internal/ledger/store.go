// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a history of image acquisition attempts in SQLite so
// runs can be audited and failed records found without re-reading logs.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lambelambe/pkg/types"
)

// DefaultPath is the ledger database used when none is configured.
const DefaultPath = "lambelambe.db"

// Store is the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and ensures its schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			csv_row INTEGER,
			profile_url TEXT,
			image_url TEXT,
			file_path TEXT,
			status TEXT NOT NULL,
			error TEXT,
			attempted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_name ON attempts(name)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_status ON attempts(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one attempt.
func (s *Store) Record(ctx context.Context, a types.Attempt) error {
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (name, csv_row, profile_url, image_url, file_path, status, error, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Row, a.ProfileURL, a.ImageURL, a.FilePath, string(a.Status), a.Error,
		at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording attempt for %q: %w", a.Name, err)
	}
	return nil
}

// Latest returns the most recent attempt for every name, ordered by CSV row.
// A non-empty status keeps only names whose latest attempt has that status.
func (s *Store) Latest(ctx context.Context, status types.AcquireStatus) ([]types.Attempt, error) {
	query := `SELECT a.name, a.csv_row, a.profile_url, a.image_url, a.file_path, a.status, a.error, a.attempted_at
		FROM attempts a
		WHERE a.id = (SELECT MAX(id) FROM attempts WHERE name = a.name)`
	var args []any
	if status != "" {
		query += ` AND a.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY a.csv_row, a.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var out []types.Attempt
	for rows.Next() {
		var (
			a                                   types.Attempt
			profileURL, imageURL, path, errText sql.NullString
			st, at                              string
		)
		if err := rows.Scan(&a.Name, &a.Row, &profileURL, &imageURL, &path, &st, &errText, &at); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		a.ProfileURL = profileURL.String
		a.ImageURL = imageURL.String
		a.FilePath = path.String
		a.Error = errText.String
		a.Status = types.AcquireStatus(st)
		a.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing attempt time %q: %w", at, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Summary counts names by the status of their latest attempt.
func (s *Store) Summary(ctx context.Context) (map[types.AcquireStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.status, COUNT(*) FROM attempts a
		 WHERE a.id = (SELECT MAX(id) FROM attempts WHERE name = a.name)
		 GROUP BY a.status`)
	if err != nil {
		return nil, fmt.Errorf("summarizing attempts: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.AcquireStatus]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		counts[types.AcquireStatus(st)] = n
	}
	return counts, rows.Err()
}
