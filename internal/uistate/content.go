package uistate

import "time"

// ContentStateKind enumerates the sum type described in §4.7.
type ContentStateKind int

const (
	ContentIdle ContentStateKind = iota
	ContentLoading
	ContentLoaded
	ContentFailed
)

// ContentState is the reader's current content sum type. Starred mirrors
// the viewed article's starred flag so a star toggle while reading can
// update the reader's own display copy (§4.8's StarToggled reconciliation).
type ContentState struct {
	Kind            ContentStateKind
	ArticleID       int64
	Markdown        string
	RenderedLines   []string
	Err             error
	FallbackSummary string
	Starred         bool
}

// EnterReader applies the content-load protocol of §4.8 for navigating into
// the reader on articleID, whose URL presence is hasURL. It returns the
// generation to carry on the spawned load task, and whether a task should
// actually be spawned (false covers both "already loading this article" and
// "no URL" cases).
func (a *App) EnterReader(articleID int64, hasURL, starred bool, fallbackSummary string) (generation int64, spawn bool) {
	a.View = ViewReader

	if a.Content.Kind == ContentLoading && a.Content.ArticleID == articleID {
		return a.contentGeneration, false
	}

	a.abortContentLoad()

	if !hasURL {
		a.Content = ContentState{Kind: ContentFailed, ArticleID: articleID, FallbackSummary: fallbackSummary, Starred: starred}
		a.NeedsRedraw = true
		return a.contentGeneration, false
	}

	a.contentGeneration++
	gen := a.contentGeneration
	a.Content = ContentState{Kind: ContentLoading, ArticleID: articleID, Starred: starred}
	a.ReaderScroll = 0
	a.NeedsRedraw = true
	return gen, true
}

// ExitReader returns to Browse view and aborts any in-flight content load.
func (a *App) ExitReader() {
	a.abortContentLoad()
	a.Content = ContentState{Kind: ContentIdle}
	a.View = ViewBrowse
	a.NeedsRedraw = true
}

// SetContentCancel stores the cancellation function for the currently
// spawned content-load task, so a later supersede or reader exit can abort
// it promptly.
func (a *App) SetContentCancel(cancel func()) {
	a.contentCancel = cancel
}

func (a *App) abortContentLoad() {
	if a.contentCancel != nil {
		a.contentCancel()
		a.contentCancel = nil
	}
}

// ContentGeneration returns the App's current content-load generation.
func (a *App) ContentGeneration() int64 {
	return a.contentGeneration
}

// BeginReadingSession records that a reading-history row with the given id
// is now open, starting the clock EndReadingSession measures elapsed time
// against (§4.3.7).
func (a *App) BeginReadingSession(historyID int64) {
	a.historyID = historyID
	a.historyStart = time.Now()
}

// EndReadingSession closes whatever reading session is currently open,
// reporting its history id and elapsed duration. ok is false when no
// session was open (e.g. RecordOpen failed when the reader was entered, or
// the session was already ended).
func (a *App) EndReadingSession() (historyID int64, elapsed time.Duration, ok bool) {
	if a.historyID == 0 {
		return 0, 0, false
	}
	historyID, elapsed = a.historyID, time.Since(a.historyStart)
	a.historyID = 0
	a.historyStart = time.Time{}
	return historyID, elapsed, true
}

// ApplyContentLoaded reconciles a ContentLoaded event per §4.8's generation
// guard: a generation mismatch is silently discarded. On a match, if the
// reader is still loading articleID the result is applied (Loaded or
// Failed); otherwise the event is dropped and Content is left unchanged.
func (a *App) ApplyContentLoaded(articleID, generation int64, markdown string, renderedLines []string, loadErr error, fallbackSummary string) {
	if generation != a.contentGeneration {
		return
	}

	if a.Content.Kind != ContentLoading || a.Content.ArticleID != articleID {
		return
	}

	starred := a.Content.Starred
	if loadErr != nil {
		a.Content = ContentState{Kind: ContentFailed, ArticleID: articleID, Err: loadErr, FallbackSummary: fallbackSummary, Starred: starred}
	} else {
		a.Content = ContentState{Kind: ContentLoaded, ArticleID: articleID, Markdown: markdown, RenderedLines: renderedLines, Starred: starred}
	}
	a.NeedsRedraw = true
}
