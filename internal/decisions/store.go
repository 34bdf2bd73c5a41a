package decisions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// schemaVersion is the current schema version. Bump it when the schema
// changes; the store refuses to open a database from another version.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version of this tool.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrLocked indicates another session holds the decision log.
var ErrLocked = errors.New("decision log is locked by another session")

const schemaSQL = `
CREATE TABLE schema_version (
    version INTEGER NOT NULL
);
CREATE TABLE decisions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    label TEXT NOT NULL CHECK (label IN ('positive', 'negative')),
    session_id TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX idx_decisions_path ON decisions(path);
CREATE INDEX idx_decisions_label ON decisions(label);
`

// Store is the append-only decision log backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to (or creates) the decision database at path, acquires
// the sibling lock file, applies pragmas, and initializes the schema.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve decision log path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("ensure decision log directory: %w", err)
	}

	lock := flock.New(abs + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire decision log lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", abs)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = FULL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: abs, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the session lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Path returns the resolved database path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// Append writes one decision record. The commit completes before Append
// returns, so a successful return means the decision is durable.
func (s *Store) Append(ctx context.Context, path string, label Label, sessionID string) (*Record, error) {
	if !label.Valid() {
		return nil, fmt.Errorf("invalid label %q", label)
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (path, label, session_id, created_at) VALUES (?, ?, ?, ?)`,
		path, string(label), sessionID, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("append decision: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("decision id: %w", err)
	}
	return &Record{ID: id, Path: path, Label: label, SessionID: sessionID, CreatedAt: now}, nil
}

// LoadAll returns every record in insertion order.
func (s *Store) LoadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, label, session_id, created_at FROM decisions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load decisions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			label   string
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.Path, &label, &rec.SessionID, &created); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.Label = Label(label)
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Rebase rewrites every record whose path starts with oldRoot so it starts
// with newRoot instead, in one transaction, touching nothing else. It
// returns the number of rewritten records.
func (s *Store) Rebase(ctx context.Context, oldRoot, newRoot string) (int64, error) {
	oldRoot = filepath.Clean(oldRoot)
	newRoot = filepath.Clean(newRoot)
	if oldRoot == newRoot {
		return 0, nil
	}
	prefix := oldRoot + string(filepath.Separator)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin rebase tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id, path FROM decisions ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("read decisions for rebase: %w", err)
	}
	type rewrite struct {
		id   int64
		path string
	}
	var rewrites []rewrite
	for rows.Next() {
		var (
			id   int64
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan decision for rebase: %w", err)
		}
		switch {
		case path == oldRoot:
			rewrites = append(rewrites, rewrite{id: id, path: newRoot})
		case strings.HasPrefix(path, prefix):
			rewrites = append(rewrites, rewrite{id: id, path: filepath.Join(newRoot, path[len(prefix):])})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for _, rw := range rewrites {
		if _, err := tx.ExecContext(ctx, `UPDATE decisions SET path = ? WHERE id = ?`, rw.path, rw.id); err != nil {
			return 0, fmt.Errorf("rewrite decision %d: %w", rw.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rebase: %w", err)
	}
	return int64(len(rewrites)), nil
}
