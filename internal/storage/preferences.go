package storage

import (
	"context"
	"database/sql"
	"fmt"

	"feedtui/internal/domain/entity"
)

// SetPreference upserts a dotted-key/value pair.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO preferences (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("SetPreference: %w", err)
	}
	return nil
}

// GetPreference reads one preference, returning def when absent.
func (s *Store) GetPreference(ctx context.Context, key, def string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("GetPreference: %w", err)
	}
	return value, nil
}

// ListPreferences returns every stored preference. Nothing calls it at
// startup: stored keybind.* and theme.* entries are not applied to the
// keybinding registry or the theme.
func (s *Store) ListPreferences(ctx context.Context) ([]entity.Preference, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return nil, fmt.Errorf("ListPreferences: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Preference, 0, 32)
	for rows.Next() {
		var p entity.Preference
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, fmt.Errorf("ListPreferences: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
