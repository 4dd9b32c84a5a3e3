package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"feedtui/internal/domain/entity"
)

// topFeedsLimit bounds get_reading_stats's feed ranking, per §4.3.7.
const topFeedsLimit = 10

// RecordOpen records a reader-open event, returning its history id.
func (s *Store) RecordOpen(ctx context.Context, articleID, feedID int64) (int64, error) {
	const query = `INSERT INTO reading_history (article_id, feed_id, opened_at) VALUES (?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query, articleID, feedID, nowUnix())
	if err != nil {
		return 0, fmt.Errorf("RecordOpen: %w", err)
	}
	return res.LastInsertId()
}

// RecordClose closes a reading-history entry, clamping duration to >= 0.
func (s *Store) RecordClose(ctx context.Context, historyID int64, durationSeconds int64) error {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	const query = `UPDATE reading_history SET closed_at = ?, duration_seconds = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, nowUnix(), durationSeconds, historyID)
	if err != nil {
		return fmt.Errorf("RecordClose: %w", err)
	}
	return rowsAffectedOrNotFound(res, "RecordClose")
}

// GetReadingStats aggregates sessions over the trailing `days` window and
// ranks feeds by session count (top topFeedsLimit).
func (s *Store) GetReadingStats(ctx context.Context, days int) (entity.ReadingStats, error) {
	if days <= 0 {
		days = 1
	}
	since := nowUnix() - int64(days)*86400

	var count int64
	var totalSeconds int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0) FROM reading_history WHERE opened_at >= ?`, since).
		Scan(&count, &totalSeconds)
	if err != nil {
		return entity.ReadingStats{}, fmt.Errorf("GetReadingStats: %w", err)
	}

	const topQuery = `
SELECT h.feed_id, f.title, COUNT(*) AS sessions
FROM reading_history h
JOIN feeds f ON f.id = h.feed_id
WHERE h.opened_at >= ?
GROUP BY h.feed_id
ORDER BY sessions DESC
LIMIT ?`
	rows, err := s.db.QueryContext(ctx, topQuery, since, topFeedsLimit)
	if err != nil {
		return entity.ReadingStats{}, fmt.Errorf("GetReadingStats: %w", err)
	}
	defer rows.Close()

	top := make([]entity.FeedSessionCount, 0, topFeedsLimit)
	for rows.Next() {
		var fc entity.FeedSessionCount
		if err := rows.Scan(&fc.FeedID, &fc.Title, &fc.Sessions); err != nil {
			return entity.ReadingStats{}, fmt.Errorf("GetReadingStats: %w", err)
		}
		fc.Title = stripControlCharsLocal(fc.Title)
		top = append(top, fc)
	}
	if err := rows.Err(); err != nil {
		return entity.ReadingStats{}, fmt.Errorf("GetReadingStats: %w", err)
	}

	return entity.ReadingStats{
		Days:           days,
		ArticlesPerDay: float64(count) / float64(days),
		TotalMinutes:   float64(totalSeconds) / 60,
		TopFeeds:       top,
	}, nil
}

// GetReadingHistory returns recent entries, most recent first, limited.
// Rows carry ids and timestamps only; article and feed titles are not joined.
func (s *Store) GetReadingHistory(ctx context.Context, limit int) ([]entity.ReadingHistory, error) {
	const query = `
SELECT h.id, h.article_id, h.feed_id, h.opened_at, h.closed_at, h.duration_seconds
FROM reading_history h
ORDER BY h.opened_at DESC
LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("GetReadingHistory: %w", err)
	}
	defer rows.Close()

	out := make([]entity.ReadingHistory, 0, limit)
	for rows.Next() {
		var h entity.ReadingHistory
		var closedAt sql.NullInt64
		var duration sql.NullInt64
		if err := rows.Scan(&h.ID, &h.ArticleID, &h.FeedID, &h.OpenedAt, &closedAt, &duration); err != nil {
			return nil, fmt.Errorf("GetReadingHistory: %w", err)
		}
		if closedAt.Valid {
			v := closedAt.Int64
			h.ClosedAt = &v
		}
		if duration.Valid {
			v := duration.Int64
			h.DurationSeconds = &v
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// stripControlCharsLocal mirrors feedparser's stripping for titles returned
// through paths, like reading history joins, that bypass the normal
// row-to-entity conversion which would otherwise have sanitized them once at
// write time.
func stripControlCharsLocal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
