package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"feedtui/internal/domain/entity"
)

// refreshArticleChunkSize bounds the number of articles touched per
// statement inside RefreshFeed's two-phase insert/update, per §4.3.3.
const refreshArticleChunkSize = 50

// RefreshFeed performs the atomic refresh contract: within one transaction it
// clears the feed's error state and failure counter, inserts new articles
// and updates existing ones (by (feed_id, guid)) preserving read/starred
// flags, and stamps the feed's last-fetched time. Returns the count of
// genuinely new articles.
func (s *Store) RefreshFeed(ctx context.Context, feedID int64, articles []entity.Article) (int, error) {
	var newCount int

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := nowUnix()

		if _, err := tx.ExecContext(ctx,
			`UPDATE feeds SET last_error = '', consecutive_failures = 0 WHERE id = ?`, feedID); err != nil {
			return fmt.Errorf("clear error state: %w", err)
		}

		for start := 0; start < len(articles); start += refreshArticleChunkSize {
			end := start + refreshArticleChunkSize
			if end > len(articles) {
				end = len(articles)
			}
			chunk := articles[start:end]

			inserted, err := insertNewArticles(ctx, tx, feedID, chunk, now)
			if err != nil {
				return err
			}
			newCount += inserted

			if err := updateExistingArticles(ctx, tx, feedID, chunk); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE feeds SET last_fetched_at = ? WHERE id = ?`, now, feedID); err != nil {
			return fmt.Errorf("stamp last_fetched_at: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if articleCount, ftsCount, ok, err := s.CheckFTSConsistency(ctx, feedID); err != nil {
		s.logger.Warn("RefreshFeed: FTS consistency check failed", "feed_id", feedID, "error", err)
	} else if !ok {
		s.logger.Warn("RefreshFeed: FTS row count mismatch", "feed_id", feedID,
			"article_count", articleCount, "fts_count", ftsCount)
	}

	return newCount, nil
}

// insertNewArticles runs Phase A: INSERT OR IGNORE by (feed_id, guid),
// reporting how many rows were actually inserted.
func insertNewArticles(ctx context.Context, tx *sql.Tx, feedID int64, chunk []entity.Article, now int64) (int, error) {
	var before int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE feed_id = ?`, feedID).Scan(&before); err != nil {
		return 0, fmt.Errorf("insertNewArticles: count before: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`INSERT OR IGNORE INTO articles (feed_id, guid, title, url, published_at, summary, fetched_at) VALUES `)
	args := make([]interface{}, 0, len(chunk)*7)
	for i, a := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, feedID, a.GUID, a.Title, a.URL, a.PublishedAt, a.Summary, now)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return 0, fmt.Errorf("insertNewArticles: %w", err)
	}

	var after int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE feed_id = ?`, feedID).Scan(&after); err != nil {
		return 0, fmt.Errorf("insertNewArticles: count after: %w", err)
	}

	return int(after - before), nil
}

// updateExistingArticles runs Phase B: a CASE-based multi-row update of
// title/url/published/summary for every GUID in the chunk, preserving
// read/starred.
func updateExistingArticles(ctx context.Context, tx *sql.Tx, feedID int64, chunk []entity.Article) error {
	var titleCase, urlCase, pubCase, summaryCase strings.Builder
	guids := make([]interface{}, 0, len(chunk))
	args := make([]interface{}, 0, len(chunk)*4)

	titleCase.WriteString("title = CASE guid ")
	urlCase.WriteString("url = CASE guid ")
	pubCase.WriteString("published_at = CASE guid ")
	summaryCase.WriteString("summary = CASE guid ")

	for _, a := range chunk {
		titleCase.WriteString("WHEN ? THEN ? ")
		urlCase.WriteString("WHEN ? THEN ? ")
		pubCase.WriteString("WHEN ? THEN ? ")
		summaryCase.WriteString("WHEN ? THEN ? ")
		guids = append(guids, a.GUID)
	}
	titleCase.WriteString("ELSE title END")
	urlCase.WriteString("ELSE url END")
	pubCase.WriteString("ELSE published_at END")
	summaryCase.WriteString("ELSE summary END")

	for _, a := range chunk {
		args = append(args, a.GUID, a.Title)
	}
	for _, a := range chunk {
		args = append(args, a.GUID, a.URL)
	}
	for _, a := range chunk {
		args = append(args, a.GUID, a.PublishedAt)
	}
	for _, a := range chunk {
		args = append(args, a.GUID, a.Summary)
	}

	query := fmt.Sprintf(`UPDATE articles SET %s, %s, %s, %s WHERE feed_id = ? AND guid IN (%s)`,
		titleCase.String(), urlCase.String(), pubCase.String(), summaryCase.String(), placeholders(len(guids)))

	args = append(args, feedID)
	args = append(args, guids...)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updateExistingArticles: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
	}
	return sb.String()
}

// CheckFTSConsistency compares the FTS row count against the article row
// count for a feed; a mismatch is a consistency warning only, never a hard
// failure, per §4.3.3.
func (s *Store) CheckFTSConsistency(ctx context.Context, feedID int64) (articleCount, ftsCount int64, ok bool, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE feed_id = ?`, feedID).Scan(&articleCount); err != nil {
		return 0, 0, false, fmt.Errorf("CheckFTSConsistency: %w", err)
	}
	if err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles_fts WHERE rowid IN (SELECT id FROM articles WHERE feed_id = ?)`, feedID).
		Scan(&ftsCount); err != nil {
		return 0, 0, false, fmt.Errorf("CheckFTSConsistency: %w", err)
	}
	return articleCount, ftsCount, articleCount == ftsCount, nil
}

const articleColumns = `id, feed_id, guid, title, url, published_at, summary, read, starred, fetched_at`

func scanArticle(row interface{ Scan(...interface{}) error }) (entity.Article, error) {
	var a entity.Article
	err := row.Scan(&a.ID, &a.FeedID, &a.GUID, &a.Title, &a.URL, &a.PublishedAt, &a.Summary, &a.Read, &a.Starred, &a.FetchedAt)
	return a, err
}

// GetArticlesByFeed returns a feed's articles ordered by published desc.
func (s *Store) GetArticlesByFeed(ctx context.Context, feedID int64) ([]entity.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE feed_id = ? ORDER BY published_at DESC`, articleColumns)
	rows, err := s.db.QueryContext(ctx, query, feedID)
	if err != nil {
		return nil, fmt.Errorf("GetArticlesByFeed: %w", err)
	}
	defer rows.Close()

	articles := make([]entity.Article, 0, 64)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("GetArticlesByFeed: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// GetArticleByID returns one article, or entity.ErrNotFound.
func (s *Store) GetArticleByID(ctx context.Context, id int64) (entity.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE id = ?`, articleColumns)
	a, err := scanArticle(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return entity.Article{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Article{}, fmt.Errorf("GetArticleByID: %w", err)
	}
	return a, nil
}

// GetStarredArticles returns every starred article across all feeds, newest first.
func (s *Store) GetStarredArticles(ctx context.Context) ([]entity.FeedArticle, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE starred = 1 ORDER BY published_at DESC`, articleColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("GetStarredArticles: %w", err)
	}
	defer rows.Close()

	out := make([]entity.FeedArticle, 0, 32)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStarredArticles: %w", err)
		}
		out = append(out, entity.FeedArticle{FeedID: a.FeedID, Article: a})
	}
	return out, rows.Err()
}

// GetRecentAcrossFeeds returns (feed_id, article) pairs across the given
// feed ids ordered by published desc, limited — used by the post-refresh
// "what's new" flow.
func (s *Store) GetRecentAcrossFeeds(ctx context.Context, feedIDs []int64, limit int) ([]entity.FeedArticle, error) {
	if len(feedIDs) == 0 {
		return nil, nil
	}
	args := make([]interface{}, 0, len(feedIDs)+1)
	for _, id := range feedIDs {
		args = append(args, id)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM articles WHERE feed_id IN (%s) ORDER BY published_at DESC LIMIT ?`,
		articleColumns, placeholders(len(feedIDs)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetRecentAcrossFeeds: %w", err)
	}
	defer rows.Close()

	out := make([]entity.FeedArticle, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("GetRecentAcrossFeeds: %w", err)
		}
		out = append(out, entity.FeedArticle{FeedID: a.FeedID, Article: a})
	}
	return out, rows.Err()
}

// SetArticleRead sets (idempotently) an article's read state.
func (s *Store) SetArticleRead(ctx context.Context, id int64, read bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE articles SET read = ? WHERE id = ?`, read, id)
	if err != nil {
		return fmt.Errorf("SetArticleRead: %w", err)
	}
	return rowsAffectedOrNotFound(res, "SetArticleRead")
}

// ToggleStarred flips an article's starred flag and returns the new value.
func (s *Store) ToggleStarred(ctx context.Context, id int64) (bool, error) {
	var newVal bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current bool
		if err := tx.QueryRowContext(ctx, `SELECT starred FROM articles WHERE id = ?`, id).Scan(&current); err != nil {
			if err == sql.ErrNoRows {
				return entity.ErrNotFound
			}
			return fmt.Errorf("ToggleStarred: select: %w", err)
		}
		newVal = !current
		if _, err := tx.ExecContext(ctx, `UPDATE articles SET starred = ? WHERE id = ?`, newVal, id); err != nil {
			return fmt.Errorf("ToggleStarred: update: %w", err)
		}
		return nil
	})
	return newVal, err
}

// MarkFeedRead marks every article in a feed read.
func (s *Store) MarkFeedRead(ctx context.Context, feedID int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE articles SET read = 1 WHERE feed_id = ?`, feedID); err != nil {
		return fmt.Errorf("MarkFeedRead: %w", err)
	}
	return nil
}

// MarkAllRead marks every article in every feed read.
func (s *Store) MarkAllRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE articles SET read = 1`); err != nil {
		return fmt.Errorf("MarkAllRead: %w", err)
	}
	return nil
}
