package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations
var migrationsFS embed.FS

type migration struct {
	version int
	name    string
	sql     string
}

// runMigrations applies every embedded migration that schema_migrations does
// not yet record, in lexical (version) order, each inside its own
// transaction. It is safe to call on every open: an already-applied version
// is simply skipped.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("runMigrations: create schema_migrations: %w", err)
	}

	all, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("runMigrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("runMigrations: query applied: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("runMigrations: scan: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("runMigrations: %w", err)
	}
	rows.Close()

	for _, m := range all {
		if applied[m.version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("runMigrations: apply %d_%s: %w", m.version, m.name, err)
		}
		logger.Info("applied migration", "version", m.version, "name", m.name)
	}

	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	const insert = `INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`
	if _, err := tx.Exec(insert, m.version, m.name, time.Now().Unix()); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	return tx.Commit()
}

func loadMigrations() ([]migration, error) {
	var out []migration

	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}

		filename := filepath.Base(path)
		parts := strings.SplitN(strings.TrimSuffix(filename, ".sql"), "_", 2)
		if len(parts) != 2 {
			return fmt.Errorf("unrecognized migration filename %q", filename)
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("unrecognized migration version in %q: %w", filename, err)
		}

		content, err := fs.ReadFile(migrationsFS, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		out = append(out, migration{version: version, name: parts[1], sql: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}
