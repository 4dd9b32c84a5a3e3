package storage

import (
	"context"
	"fmt"

	"feedtui/internal/domain/entity"
)

// MaxSearchQueryLength bounds the search query accepted by Search.
const MaxSearchQueryLength = 256

// Search runs a full-text query over title, summary, and cached markdown.
// When feedID is non-nil, results are restricted to that feed.
func (s *Store) Search(ctx context.Context, query string, feedID *int64) ([]entity.Article, error) {
	if len(query) > MaxSearchQueryLength {
		return nil, fmt.Errorf("Search: %w: query exceeds %d characters", entity.ErrInvalidInput, MaxSearchQueryLength)
	}
	if query == "" {
		return nil, nil
	}

	sql := fmt.Sprintf(`
SELECT %s FROM articles a
JOIN articles_fts fts ON fts.rowid = a.id
WHERE articles_fts MATCH ?`, articleColumns)
	args := []interface{}{query}

	if feedID != nil {
		sql += " AND a.feed_id = ?"
		args = append(args, *feedID)
	}
	sql += " ORDER BY fts.rank"

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Article, 0, 32)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
