package eventloop

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"feedtui/internal/domain/entity"
	"feedtui/internal/opml"
)

// spawnMaintenance runs the cache's periodic housekeeping: evicting expired
// content_cache rows. It reports nothing to the UI since it's best-effort
// background upkeep, not something a user is waiting on.
func (l *Loop) spawnMaintenance(ctx context.Context) {
	l.spawn("maintenance", func() {
		n, err := l.cache.EvictExpired(ctx)
		if err != nil {
			l.logger.Warn("maintenance: evict expired cache", slog.Any("error", err))
			return
		}
		if n > 0 {
			l.logger.Debug("maintenance: evicted expired cache rows", slog.Int64("count", n))
		}
	})
}

// spawnRefreshAll fetches and commits every circuit-closed feed, reporting
// progress as each one completes.
func (l *Loop) spawnRefreshAll(ctx context.Context) {
	l.spawn("refresh_all", func() {
		results, _ := l.refresh.RefreshAll(ctx, func(done, total int) {
			l.emit(RefreshProgress{Done: done, Total: total})
		})
		l.emit(RefreshComplete{Results: results})
	})
}

// spawnRefreshOne refreshes a single feed outside the bulk circuit-breaker
// gate, so a user can retry a feed that bulk refresh is currently skipping.
func (l *Loop) spawnRefreshOne(ctx context.Context, feedID int64) {
	l.spawn("refresh_one", func() {
		feed, err := l.store.GetFeed(ctx, feedID)
		if err != nil {
			l.emit(RefreshComplete{Results: nil})
			return
		}
		results, _ := l.refresh.Refresh(ctx, []entity.Feed{feed}, func(done, total int) {
			l.emit(RefreshProgress{Done: done, Total: total})
		})
		l.emit(RefreshComplete{Results: results})
	})
}

// spawnContentLoad runs the reader's load-or-fetch task for articleID,
// pre-rendering the markdown into styled lines on success. generation was
// already incremented by App.EnterReader before this is spawned; it is
// carried through so ContentLoaded's generation guard can discard a stale
// result.
func (l *Loop) spawnContentLoad(ctx context.Context, articleID int64, articleURL string, generation int64, fallbackSummary string) context.CancelFunc {
	taskCtx, cancel := context.WithCancel(ctx)
	l.spawn("content_load", func() {
		result, err := l.cache.Load(taskCtx, articleID, articleURL)
		if err != nil {
			l.emit(ContentLoaded{ArticleID: articleID, Generation: generation, Err: err, FallbackSummary: fallbackSummary})
			return
		}
		if result.CacheWriteFailed {
			l.emit(ContentCacheFailed{ArticleID: articleID})
		}
		lines := l.markdown.Render(result.Markdown)
		l.emit(ContentLoaded{ArticleID: articleID, Generation: generation, Markdown: result.Markdown, RenderedLines: lines})
	})
	return cancel
}

// spawnSearch runs a debounced search task over the current scope (the
// currently selected feed, or every feed when none is selected) and is
// abortable via a cancel func stashed on App. An empty query instead
// reloads the scope's full article list, restoring the pre-search view.
func (l *Loop) spawnSearch(ctx context.Context, query string) {
	generation := l.app.NextSearchGeneration()
	feedID := l.app.CurrentFeedID

	taskCtx, cancel := context.WithCancel(ctx)
	l.app.SetSearchCancel(cancel)

	l.spawn("search", func() {
		if query == "" {
			var articles []entity.Article
			if feedID != nil {
				as, err := l.store.GetArticlesByFeed(taskCtx, *feedID)
				if err == nil {
					articles = as
				}
			}
			l.emit(SearchCompleted{Query: "", Generation: generation, Results: articles})
			return
		}

		results, err := l.store.Search(taskCtx, query, feedID)
		if err != nil {
			l.emit(SearchCompleted{Query: query, Generation: generation})
			return
		}
		l.emit(SearchCompleted{Query: query, Generation: generation, Results: results})
	})
}

// spawnStarToggle writes a star-toggle through to storage; the caller has
// already applied the optimistic flip via App.SetStarred before calling
// this. A write failure rolls the flip back via StarToggleFailed.
func (l *Loop) spawnStarToggle(ctx context.Context, articleID int64, originalStarred bool) {
	l.spawn("star_toggle", func() {
		newStarred, err := l.store.ToggleStarred(ctx, articleID)
		if err != nil {
			l.emit(StarToggleFailed{ArticleID: articleID, OriginalStatus: originalStarred, Err: err})
			return
		}
		l.emit(StarToggled{ArticleID: articleID, Starred: newStarred})
	})
}

// spawnMarkAllRead marks every article across every feed as read. The
// caller has already applied the optimistic local update; per §4.8's
// BulkMarkReadComplete handling, a successful completion triggers no list
// reload.
func (l *Loop) spawnMarkAllRead(ctx context.Context) {
	l.spawn("mark_all_read", func() {
		if err := l.store.MarkAllRead(ctx); err != nil {
			l.emit(BulkMarkReadFailed{Err: err})
			return
		}
		l.emit(BulkMarkReadComplete{})
	})
}

// spawnMarkFeedRead marks every article in one feed as read.
func (l *Loop) spawnMarkFeedRead(ctx context.Context, feedID int64) {
	l.spawn("mark_feed_read", func() {
		if err := l.store.MarkFeedRead(ctx, feedID); err != nil {
			l.emit(BulkMarkReadFailed{Err: err})
			return
		}
		l.emit(BulkMarkReadComplete{})
	})
}

// spawnExport writes every stored feed to an OPML 2.0 file under the
// configured config directory.
func (l *Loop) spawnExport(ctx context.Context) {
	l.spawn("export", func() {
		feeds, err := l.store.ListFeedsWithUnreadCounts(ctx)
		if err != nil {
			l.emit(ExportFailed{Err: err})
			return
		}

		path := filepath.Join(l.configDir, "feeds-export.opml")
		f, err := os.Create(path)
		if err != nil {
			l.emit(ExportFailed{Err: err})
			return
		}
		defer f.Close()

		if err := opml.Export(f, feeds); err != nil {
			l.emit(ExportFailed{Err: err})
			return
		}
		l.emit(ExportComplete{Path: path})
	})
}
