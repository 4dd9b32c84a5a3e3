package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"feedtui/internal/domain/entity"
)

// bulkCachedIDsChunkSize bounds how many article ids are checked per
// statement in BulkCachedIDs, to respect SQLite's bound-parameter limit.
const bulkCachedIDsChunkSize = 500

// PutCache inserts or replaces a cached article body. ttl defaults to
// entity.DefaultContentTTLHours hours when zero, with a floor of one hour.
func (s *Store) PutCache(ctx context.Context, articleID int64, markdown string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = entity.DefaultContentTTLHours * time.Hour
	}
	if ttl < time.Hour {
		ttl = time.Hour
	}

	now := nowUnix()
	expiresAt := now + int64(ttl.Seconds())

	const query = `
INSERT INTO content_cache (article_id, markdown, fetched_at, expires_at, size_bytes)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(article_id) DO UPDATE SET
	markdown = excluded.markdown, fetched_at = excluded.fetched_at,
	expires_at = excluded.expires_at, size_bytes = excluded.size_bytes`

	if _, err := s.db.ExecContext(ctx, query, articleID, markdown, now, expiresAt, len(markdown)); err != nil {
		return fmt.Errorf("PutCache: %w", err)
	}
	return nil
}

// GetCache returns the cached body for an article, only if unexpired.
func (s *Store) GetCache(ctx context.Context, articleID int64) (entity.CachedContent, error) {
	const query = `
SELECT article_id, markdown, fetched_at, expires_at, size_bytes
FROM content_cache WHERE article_id = ? AND expires_at > ?`

	var c entity.CachedContent
	err := s.db.QueryRowContext(ctx, query, articleID, nowUnix()).
		Scan(&c.ArticleID, &c.Markdown, &c.FetchedAt, &c.ExpiresAt, &c.SizeBytes)
	if err == sql.ErrNoRows {
		return entity.CachedContent{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.CachedContent{}, fmt.Errorf("GetCache: %w", err)
	}
	return c, nil
}

// EvictExpiredCache deletes every expired cache row, returning the count removed.
func (s *Store) EvictExpiredCache(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content_cache WHERE expires_at < ?`, nowUnix())
	if err != nil {
		return 0, fmt.Errorf("EvictExpiredCache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("EvictExpiredCache: %w", err)
	}
	return n, nil
}

// CacheStats summarizes the cache's current footprint.
func (s *Store) CacheStats(ctx context.Context) (entity.CacheStats, error) {
	const query = `
SELECT COUNT(*), COALESCE(SUM(size_bytes), 0), COALESCE(MIN(fetched_at), 0), COALESCE(MAX(fetched_at), 0)
FROM content_cache`

	var stats entity.CacheStats
	err := s.db.QueryRowContext(ctx, query).Scan(&stats.Count, &stats.TotalBytes, &stats.OldestFetch, &stats.NewestFetch)
	if err != nil {
		return entity.CacheStats{}, fmt.Errorf("CacheStats: %w", err)
	}
	return stats, nil
}

// PrefetchCandidates returns unread articles lacking a cache row, ordered by
// published desc, limited. When feedID is non-nil the search is scoped to
// that feed.
func (s *Store) PrefetchCandidates(ctx context.Context, feedID *int64, limit int) ([]entity.Article, error) {
	query := fmt.Sprintf(`
SELECT %s FROM articles a
WHERE a.read = 0 AND a.url != ''
  AND NOT EXISTS (SELECT 1 FROM content_cache c WHERE c.article_id = a.id AND c.expires_at > ?)`, articleColumns)
	args := []interface{}{nowUnix()}

	if feedID != nil {
		query += " AND a.feed_id = ?"
		args = append(args, *feedID)
	}
	query += " ORDER BY a.published_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("PrefetchCandidates: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("PrefetchCandidates: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// BulkCachedIDs returns the subset of ids whose cache rows are non-expired,
// chunked at bulkCachedIDsChunkSize ids per statement.
func (s *Store) BulkCachedIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	for start := 0; start < len(ids); start += bulkCachedIDsChunkSize {
		end := start + bulkCachedIDsChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		args := make([]interface{}, 0, len(chunk)+1)
		args = append(args, nowUnix())
		for _, id := range chunk {
			args = append(args, id)
		}

		query := fmt.Sprintf(`SELECT article_id FROM content_cache WHERE expires_at > ? AND article_id IN (%s)`,
			placeholders(len(chunk)))

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("BulkCachedIDs: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("BulkCachedIDs: %w", err)
			}
			result[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("BulkCachedIDs: %w", err)
		}
		rows.Close()
	}

	return result, nil
}
