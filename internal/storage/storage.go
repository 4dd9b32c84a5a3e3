// Package storage implements C3: the SQLite-backed storage engine. It owns a
// single pooled connection to a local database file, applies embedded
// migrations on open, and exposes higher-order operations over feeds,
// articles, categories, the content cache, reading history, search, and
// preferences. Callers never see SQL.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeout bounds how long a writer waits for a lock held by a concurrent
// connection before giving up; long enough to absorb the brief contention a
// single-process, single-pooled-connection reader can still produce between
// the event loop and a background refresh goroutine sharing one *sql.DB.
const busyTimeout = 5000 * time.Millisecond

// Store wraps the database connection and exposes domain operations.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the SQLite database at path, applies
// pending migrations, and returns a ready Store. path may be ":memory:" for
// tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=%d", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: Open: %w", err)
	}

	// A single pooled connection avoids SQLITE_BUSY churn between the event
	// loop and background refresh goroutines contending over one file; WAL
	// plus busy_timeout above already buys most of the same slack, this is
	// belt and suspenders for the writer path.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: Open: ping: %w", err)
	}

	if err := runMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: Open: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func nowUnix() int64 {
	return time.Now().Unix()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("withTx: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("withTx: commit: %w", err)
	}
	return nil
}
