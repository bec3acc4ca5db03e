package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver

	"github.com/corpusdb/corpusdb/internal/errors"
)

// Store is the SQLite-backed corpus store.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS libraries (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    written_by      TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    production_date TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
    id         TEXT PRIMARY KEY,
    library_id TEXT NOT NULL REFERENCES libraries(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
    id          TEXT PRIMARY KEY,
    document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    text        TEXT NOT NULL,
    embedding   BLOB NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_library ON documents(library_id);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
`

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. An empty path opens an in-memory database for tests.
// WAL mode and a busy timeout handle concurrent access; foreign keys are
// enforced so deletes cascade.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	dsn := ":memory:?_foreign_keys=on"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.StorageError(fmt.Sprintf("create data directory for %s", path), err)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.StorageError("open database", err)
	}
	// Single writer keeps SQLite lock contention out of the picture.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.New(errors.ErrCodeMigrationFailed, "apply schema", err)
	}

	log.Debug("store opened", slog.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// classify converts a database error into a structured storage error,
// marking transient lock contention retryable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return errors.New(errors.ErrCodeStoreBusy, op, err)
	}
	return errors.StorageError(op, err)
}

// withTx runs fn inside a transaction, retrying the whole attempt on
// transient lock contention.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return errors.Retry(ctx, errors.DefaultRetryConfig(), func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return classify(op, err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return classify(op, err)
		}
		return nil
	})
}
