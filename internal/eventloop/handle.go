package eventloop

import (
	"context"
	"fmt"
	"log/slog"

	"feedtui/internal/domain/entity"
	"feedtui/internal/refresh"
	"feedtui/internal/uistate"
)

// offlineFailureKinds are the refresh.Kind values treated as "network
// classified" for the offline heuristic: both indicate the fetch never got
// a usable response, as opposed to KindParse, which means a response was
// received but could not be understood.
var offlineFailureKinds = map[refresh.Kind]bool{
	refresh.KindNetwork: true,
	refresh.KindTimeout: true,
}

// handle reconciles one background event against the App, per §4.8's event
// reconciliation table.
func (l *Loop) handle(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case RefreshProgress:
		l.app.SetRefreshProgress(e.Done, e.Total)

	case RefreshComplete:
		l.handleRefreshComplete(ctx, e)

	case ContentLoaded:
		l.app.ApplyContentLoaded(e.ArticleID, e.Generation, e.Markdown, e.RenderedLines, e.Err, e.FallbackSummary)

	case ContentCacheFailed:
		l.app.SetStatus("content cached failed to save (disk full?), showing anyway", 0)

	case StarToggled:
		l.app.SetStarred(e.ArticleID, e.Starred)

	case StarToggleFailed:
		l.app.SetStarred(e.ArticleID, e.OriginalStatus)
		l.app.SetStatus("star toggle failed: "+e.Err.Error(), 0)

	case SearchCompleted:
		l.app.ApplySearchCompleted(e.Generation, e.Results)

	case BulkMarkReadComplete:
		// Optimistic update already applied; nothing to reload.

	case BulkMarkReadFailed:
		l.app.SetStatus("mark read failed: "+e.Err.Error(), 0)

	case ExportComplete:
		l.app.SetStatus("exported to "+e.Path, 0)

	case ExportFailed:
		l.app.SetStatus("export failed: "+e.Err.Error(), 0)

	case TaskPanicked:
		l.logger.Error("background task panicked", slog.String("task", e.Task), slog.Any("error", e.Err))
		l.app.SetStatus(e.Task+" crashed, see log", 0)

	case FeedRateLimited:
		l.app.SetStatus("feed is rate-limiting requests, backing off", 0)
	}
}

// handleRefreshComplete implements §4.8's RefreshComplete reconciliation:
// drop results for feeds deleted mid-refresh, compute single-pass stats,
// show "Offline" on a network-dominated failure, reload feeds and the
// current article list, clamp selections, and repopulate "what's new".
func (l *Loop) handleRefreshComplete(ctx context.Context, e RefreshComplete) {
	l.app.ClearRefreshProgress()

	live := make([]refresh.Result, 0, len(e.Results))
	for _, r := range e.Results {
		if l.app.HasFeed(r.FeedID) {
			live = append(live, r)
		}
	}

	total := len(live)
	failed := 0
	newCount := 0
	networkFailed := 0
	for _, r := range live {
		if r.Err != nil {
			failed++
			if offlineFailureKinds[r.Kind] {
				networkFailed++
			}
		} else {
			newCount += r.NewCount
		}
	}

	if total > 0 && float64(networkFailed)/float64(total) > uistate.OfflineFailureThreshold {
		l.app.SetStatus("Offline: most feeds failed to reach their host", 0)
	} else if total > 0 {
		l.app.SetStatus(refreshSummary(total, failed, newCount), 0)
	}

	feeds, err := l.store.ListFeedsWithUnreadCounts(ctx)
	if err != nil {
		l.logger.Error("reload feeds after refresh", slog.Any("error", err))
	} else {
		l.app.SetFeeds(feeds)
	}

	if feedID := l.app.CurrentFeedID; feedID != nil {
		articles, err := l.store.GetArticlesByFeed(ctx, *feedID)
		if err != nil {
			l.logger.Error("reload current feed's articles after refresh", slog.Any("error", err))
		} else {
			l.app.SetArticles(articles)
		}
	}

	l.app.ClampSelections()
	l.populateWhatsNew(ctx)

	if l.app.CanStealFocusForWhatsNew() {
		l.app.ShowWhatsNew(true)
	}

	if newCount > 0 {
		l.spawnPrefetch(ctx)
	}
}

// spawnPrefetch warms the content cache for newly-arrived unread articles
// in the background, so opening the reader right after a refresh is more
// often a cache hit. Best-effort: failures are logged, never surfaced.
func (l *Loop) spawnPrefetch(ctx context.Context) {
	l.spawn("prefetch", func() {
		n, err := l.cache.PrefetchWithTimeout(ctx, nil, prefetchLimit)
		if err != nil {
			l.logger.Warn("prefetch after refresh", slog.Any("error", err))
			return
		}
		l.logger.Debug("prefetch after refresh", slog.Int("cached", n))
	})
}

// prefetchLimit bounds how many articles one post-refresh prefetch pass
// warms, keeping it a brief background courtesy rather than a second full
// fetch sweep competing with the next on-demand Load.
const prefetchLimit = 10

func refreshSummary(total, failed, newCount int) string {
	if failed == 0 {
		return fmt.Sprintf("refreshed %d feeds, %d new articles", total, newCount)
	}
	return fmt.Sprintf("refreshed %d feeds: %d new, %d failed", total, newCount, failed)
}

// populateWhatsNew rebuilds the "what's new" list from a batched query of
// the most recently published articles across every active feed, then
// round-robin distributes them across source feeds per §4.7.
func (l *Loop) populateWhatsNew(ctx context.Context) {
	feeds := l.app.Feeds()
	if len(feeds) == 0 {
		l.app.PopulateWhatsNew(nil, nil)
		return
	}

	feedOrder := make([]int64, len(feeds))
	for i, f := range feeds {
		feedOrder[i] = f.ID
	}

	recent, err := l.store.GetRecentAcrossFeeds(ctx, feedOrder, uistate.WhatsNewLimit)
	if err != nil {
		l.logger.Error("populate what's new", slog.Any("error", err))
		return
	}

	byFeed := make(map[int64][]entity.Article, len(feedOrder))
	for _, fa := range recent {
		byFeed[fa.FeedID] = append(byFeed[fa.FeedID], fa.Article)
	}
	l.app.PopulateWhatsNew(byFeed, feedOrder)
}
