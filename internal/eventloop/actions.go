package eventloop

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"

	"feedtui/internal/domain/entity"
	"feedtui/internal/uistate"
	"feedtui/internal/urlvalidate"
)

// onEnter implements the Enter action across every focusable panel. Feed
// and starred-list selection reads are small local SQLite queries and are
// performed synchronously on the loop goroutine, the same way
// RefreshComplete's reconciliation reads are (§4.8) — only the genuinely
// long operations (§4.8's task list) are spawned.
func (l *Loop) onEnter(ctx context.Context) {
	switch l.app.Focus {
	case uistate.FocusFeeds:
		l.selectFeed(ctx)
	case uistate.FocusArticles:
		if a, ok := l.app.SelectedArticle(); ok {
			l.enterReaderFor(ctx, a)
		}
	case uistate.FocusWhatsNew:
		wn := l.app.WhatsNew()
		if l.app.WhatsNewSelIdx < len(wn) {
			l.enterReaderFor(ctx, wn[l.app.WhatsNewSelIdx])
		}
	}
}

func (l *Loop) selectFeed(ctx context.Context) {
	feed, ok := l.app.SelectedFeed()
	if !ok {
		return
	}
	id := feed.ID
	l.app.CurrentFeedID = &id
	l.app.Focus = uistate.FocusArticles
	l.reloadCurrentFeedArticles(ctx)
}

func (l *Loop) enterReaderFor(ctx context.Context, a entity.Article) {
	resuming := l.app.Content.Kind == uistate.ContentLoading && l.app.Content.ArticleID == a.ID

	generation, spawn := l.app.EnterReader(a.ID, a.HasURL(), a.Starred, a.Summary)
	if !resuming {
		l.beginReadingSession(ctx, a.ID, a.FeedID)
	}
	if !spawn {
		return
	}
	cancel := l.spawnContentLoad(ctx, a.ID, a.URL, generation, a.Summary)
	l.app.SetContentCancel(cancel)
}

// beginReadingSession opens a reading-history row for articleID, a small
// local write performed synchronously on the loop goroutine, like
// selectFeed's reads.
func (l *Loop) beginReadingSession(ctx context.Context, articleID, feedID int64) {
	historyID, err := l.store.RecordOpen(ctx, articleID, feedID)
	if err != nil {
		l.logger.Warn("record reading-history open", slog.Any("error", err))
		return
	}
	l.app.BeginReadingSession(historyID)
}

// endReadingSession closes whatever reading-history row is currently open,
// recording elapsed wall-clock time since entry. A no-op if no session is
// open (e.g. RecordOpen failed when the reader was entered, or back is
// pressed twice).
func (l *Loop) endReadingSession(ctx context.Context) {
	historyID, elapsed, ok := l.app.EndReadingSession()
	if !ok {
		return
	}
	if err := l.store.RecordClose(ctx, historyID, int64(elapsed.Seconds())); err != nil {
		l.logger.Warn("record reading-history close", slog.Any("error", err))
	}
}

// onBack implements the Back action: exit the reader back to Browse, or
// from the article panel return focus to the feed list.
func (l *Loop) onBack(ctx context.Context) {
	switch {
	case l.app.View == uistate.ViewReader:
		l.endReadingSession(ctx)
		l.app.ExitReader()
	case l.app.Focus == uistate.FocusArticles:
		l.app.Focus = uistate.FocusFeeds
	}
}

// onToggleStats shows or hides the reading-stats overlay. Opening it loads
// a fresh snapshot from storage, a small local read performed synchronously,
// like onEnterStarred's.
func (l *Loop) onToggleStats(ctx context.Context) {
	if l.app.StatsVisible() {
		l.app.DismissStats()
		return
	}
	stats, err := l.store.GetReadingStats(ctx, statsWindowDays)
	if err != nil {
		l.logger.Error("load reading stats", slog.Any("error", err))
		return
	}
	l.app.ShowStats(stats)
}

// statsWindowDays bounds the reading-stats overlay to a trailing window,
// per §4.3.7.
const statsWindowDays = 30

// onToggleStar flips the starred flag on whichever article is currently in
// view (the reader's article if in Reader view, else the selected article),
// applying the optimistic update immediately and writing through in the
// background.
func (l *Loop) onToggleStar(ctx context.Context) {
	id, starred, ok := l.currentArticleStarState()
	if !ok {
		return
	}
	l.app.SetStarred(id, !starred)
	l.spawnStarToggle(ctx, id, starred)
}

func (l *Loop) currentArticleStarState() (id int64, starred bool, ok bool) {
	if l.app.View == uistate.ViewReader {
		return l.app.Content.ArticleID, l.app.Content.Starred, l.app.Content.Kind != uistate.ContentIdle
	}
	switch l.app.Focus {
	case uistate.FocusArticles:
		if a, ok := l.app.SelectedArticle(); ok {
			return a.ID, a.Starred, true
		}
	case uistate.FocusWhatsNew:
		wn := l.app.WhatsNew()
		if l.app.WhatsNewSelIdx < len(wn) {
			a := wn[l.app.WhatsNewSelIdx]
			return a.ID, a.Starred, true
		}
	}
	return 0, false, false
}

// onMarkRead marks the selected article read, locally and then in storage.
// Idempotent: a second call on an already-read article is a no-op, mirroring
// the storage layer's own idempotence.
func (l *Loop) onMarkRead(ctx context.Context) {
	a, ok := l.app.SelectedArticle()
	if !ok || a.Read {
		return
	}
	l.app.SetArticleReadLocal(a.ID, true)
	l.spawn("mark_read", func() {
		if err := l.store.SetArticleRead(ctx, a.ID, true); err != nil {
			l.emit(BulkMarkReadFailed{Err: err})
		}
	})
}

// onEnterStarred switches the article panel to the cross-feed starred list.
// The query is a small local read, performed synchronously like selectFeed.
func (l *Loop) onEnterStarred(ctx context.Context) {
	l.app.EnterStarredMode()
	l.app.CurrentFeedID = nil

	pairs, err := l.store.GetStarredArticles(ctx)
	if err != nil {
		l.logger.Error("load starred articles", slog.Any("error", err))
		return
	}
	articles := make([]entity.Article, len(pairs))
	for i, p := range pairs {
		articles[i] = p.Article
	}
	l.app.SetArticles(articles)
}

// onOpenInBrowser opens the current article's URL with the host OS's
// default handler, after re-validating it through urlvalidate's stricter
// OS-open variant (§4.1). Launching an external program is itself an
// external collaborator; this only issues the OS-specific command.
func (l *Loop) onOpenInBrowser() {
	url := l.currentArticleURL()
	if url == "" {
		return
	}
	if _, err := urlvalidate.ValidateForOSOpen(url); err != nil {
		l.app.SetStatus("refusing to open unsafe URL", 0)
		return
	}

	cmd, args := openCommand(url)
	if cmd == "" {
		l.app.SetStatus("no known way to open a browser on this platform", 0)
		return
	}
	if err := exec.Command(cmd, args...).Start(); err != nil {
		l.app.SetStatus("failed to open browser: "+err.Error(), 0)
	}
}

func (l *Loop) currentArticleURL() string {
	if l.app.View == uistate.ViewReader {
		if a, ok := l.findArticleByID(l.app.Content.ArticleID); ok {
			return a.URL
		}
		return ""
	}
	if a, ok := l.app.SelectedArticle(); ok {
		return a.URL
	}
	return ""
}

func (l *Loop) findArticleByID(id int64) (entity.Article, bool) {
	for _, a := range l.app.Articles() {
		if a.ID == id {
			return a, true
		}
	}
	return entity.Article{}, false
}

func openCommand(url string) (cmd string, args []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", url}
	default:
		return "xdg-open", []string{url}
	}
}

// reloadCurrentFeedArticles reloads the article panel from storage for
// whatever CurrentFeedID currently is, used to recover when an optimistic
// snapshot restore is unavailable (it was invalidated by a mutation that
// happened while in search/starred mode).
func (l *Loop) reloadCurrentFeedArticles(ctx context.Context) {
	if l.app.CurrentFeedID == nil {
		l.app.SetArticles(nil)
		return
	}
	articles, err := l.store.GetArticlesByFeed(ctx, *l.app.CurrentFeedID)
	if err != nil {
		l.logger.Error("reload current feed articles", slog.Any("error", err))
		return
	}
	l.app.SetArticles(articles)
}
