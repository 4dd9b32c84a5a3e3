package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"feedtui/internal/domain/entity"
)

// feedSyncChunkSize bounds how many feeds are inserted per statement in
// SyncFeeds, to stay well clear of SQLite's bound-parameter limit.
const feedSyncChunkSize = 100

// SyncFeeds batch-inserts feeds (used by OPML import and manual add), one
// transaction for the whole batch, chunked at feedSyncChunkSize rows per
// statement. On URL conflict it updates title and site URL only, leaving
// error state, failure counts, and articles untouched. Empty input is a
// no-op.
func (s *Store) SyncFeeds(ctx context.Context, feeds []entity.Feed) error {
	if len(feeds) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(feeds); start += feedSyncChunkSize {
			end := start + feedSyncChunkSize
			if end > len(feeds) {
				end = len(feeds)
			}
			if err := syncFeedsChunk(ctx, tx, feeds[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

func syncFeedsChunk(ctx context.Context, tx *sql.Tx, chunk []entity.Feed) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO feeds (title, url, site_url) VALUES `)
	args := make([]interface{}, 0, len(chunk)*3)
	for i, f := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, f.Title, f.URL, f.SiteURL)
	}
	sb.WriteString(` ON CONFLICT(url) DO UPDATE SET title = excluded.title, site_url = excluded.site_url`)

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("syncFeedsChunk: %w", err)
	}
	return nil
}

// ListFeedsWithUnreadCounts returns every feed with UnreadCount populated,
// ordered by title.
func (s *Store) ListFeedsWithUnreadCounts(ctx context.Context) ([]entity.Feed, error) {
	const query = `
SELECT f.id, f.title, f.url, f.site_url, f.last_fetched_at, f.last_error,
       f.consecutive_failures, f.category_id,
       COALESCE(SUM(CASE WHEN a.read = 0 THEN 1 ELSE 0 END), 0) AS unread
FROM feeds f
LEFT JOIN articles a ON a.feed_id = f.id
GROUP BY f.id
ORDER BY f.title`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListFeedsWithUnreadCounts: %w", err)
	}
	defer rows.Close()

	feeds := make([]entity.Feed, 0, 32)
	for rows.Next() {
		f, err := scanFeedWithUnread(rows)
		if err != nil {
			return nil, fmt.Errorf("ListFeedsWithUnreadCounts: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

func scanFeedWithUnread(rows *sql.Rows) (entity.Feed, error) {
	var f entity.Feed
	var categoryID sql.NullInt64
	if err := rows.Scan(&f.ID, &f.Title, &f.URL, &f.SiteURL, &f.LastFetchedAt, &f.LastError,
		&f.ConsecutiveFailures, &categoryID, &f.UnreadCount); err != nil {
		return entity.Feed{}, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		f.CategoryID = &id
	}
	return f, nil
}

// GetFeed returns a single feed by id, or entity.ErrNotFound.
func (s *Store) GetFeed(ctx context.Context, id int64) (entity.Feed, error) {
	const query = `
SELECT id, title, url, site_url, last_fetched_at, last_error, consecutive_failures, category_id
FROM feeds WHERE id = ?`
	var f entity.Feed
	var categoryID sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Title, &f.URL, &f.SiteURL,
		&f.LastFetchedAt, &f.LastError, &f.ConsecutiveFailures, &categoryID)
	if err == sql.ErrNoRows {
		return entity.Feed{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Feed{}, fmt.Errorf("GetFeed: %w", err)
	}
	if categoryID.Valid {
		id := categoryID.Int64
		f.CategoryID = &id
	}
	return f, nil
}

// ActiveFeeds returns feeds whose consecutive failure count is below
// entity.CircuitBreakerThreshold — the set the refresh coordinator attempts.
func (s *Store) ActiveFeeds(ctx context.Context) ([]entity.Feed, error) {
	const query = `
SELECT id, title, url, site_url, last_fetched_at, last_error, consecutive_failures, category_id
FROM feeds WHERE consecutive_failures < ? ORDER BY title`
	rows, err := s.db.QueryContext(ctx, query, entity.CircuitBreakerThreshold)
	if err != nil {
		return nil, fmt.Errorf("ActiveFeeds: %w", err)
	}
	defer rows.Close()

	feeds := make([]entity.Feed, 0, 32)
	for rows.Next() {
		var f entity.Feed
		var categoryID sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Title, &f.URL, &f.SiteURL, &f.LastFetchedAt, &f.LastError,
			&f.ConsecutiveFailures, &categoryID); err != nil {
			return nil, fmt.Errorf("ActiveFeeds: %w", err)
		}
		if categoryID.Valid {
			id := categoryID.Int64
			f.CategoryID = &id
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// SetFeedError records a failure against one feed, incrementing its
// consecutive-failure counter.
func (s *Store) SetFeedError(ctx context.Context, feedID int64, errMsg string) error {
	const query = `UPDATE feeds SET last_error = ?, consecutive_failures = consecutive_failures + 1 WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, errMsg, feedID)
	if err != nil {
		return fmt.Errorf("SetFeedError: %w", err)
	}
	return rowsAffectedOrNotFound(res, "SetFeedError")
}

// FeedErrorResult pairs a feed id with its failure message for BatchSetFeedErrors.
type FeedErrorResult struct {
	FeedID int64
	Error  string
}

// BatchSetFeedErrors applies a set of failures in one statement using a CASE
// expression keyed by feed id, inside a single transaction.
func (s *Store) BatchSetFeedErrors(ctx context.Context, results []FeedErrorResult) error {
	if len(results) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var caseSQL strings.Builder
		caseSQL.WriteString("UPDATE feeds SET consecutive_failures = consecutive_failures + 1, last_error = CASE id ")
		ids := make([]interface{}, 0, len(results))
		args := make([]interface{}, 0, len(results)*2)
		for _, r := range results {
			caseSQL.WriteString("WHEN ? THEN ? ")
			args = append(args, r.FeedID, r.Error)
			ids = append(ids, r.FeedID)
		}
		caseSQL.WriteString("END WHERE id IN (")
		for i := range ids {
			if i > 0 {
				caseSQL.WriteString(", ")
			}
			caseSQL.WriteString("?")
		}
		caseSQL.WriteString(")")

		allArgs := append(args, ids...)
		if _, err := tx.ExecContext(ctx, caseSQL.String(), allArgs...); err != nil {
			return fmt.Errorf("BatchSetFeedErrors: %w", err)
		}
		return nil
	})
}

// RenameFeed updates a feed's display title.
func (s *Store) RenameFeed(ctx context.Context, id int64, title string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE feeds SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("RenameFeed: %w", err)
	}
	return rowsAffectedOrNotFound(res, "RenameFeed")
}

// RecategorizeFeed assigns (or, when categoryID is nil, clears) a feed's category.
func (s *Store) RecategorizeFeed(ctx context.Context, id int64, categoryID *int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE feeds SET category_id = ? WHERE id = ?`, categoryID, id)
	if err != nil {
		return fmt.Errorf("RecategorizeFeed: %w", err)
	}
	return rowsAffectedOrNotFound(res, "RecategorizeFeed")
}

// DeleteFeed removes a feed; articles, cache rows, and history cascade via
// foreign keys.
func (s *Store) DeleteFeed(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("DeleteFeed: %w", err)
	}
	return rowsAffectedOrNotFound(res, "DeleteFeed")
}

func rowsAffectedOrNotFound(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: RowsAffected: %w", op, err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
