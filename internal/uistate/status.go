package uistate

import (
	"strings"
	"time"
)

// DefaultStatusDuration is how long a status message remains visible when
// the caller does not specify one.
const DefaultStatusDuration = 4 * time.Second

// themes is the built-in cycle order for CycleTheme. Theme files themselves
// are an external collaborator (§1); this is only the name the renderer
// looks up.
var themes = []string{"dark", "light", "solarized"}

// SetStatus sets the transient status line, visible until ttl elapses. A
// zero ttl uses DefaultStatusDuration.
func (a *App) SetStatus(message string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultStatusDuration
	}
	a.StatusMessage = message
	a.statusExpiry = time.Now().Add(ttl)
	a.NeedsRedraw = true
}

// ClearExpiredStatus clears the status message once its expiry has passed.
// Called every tick per §4.8.
func (a *App) ClearExpiredStatus() {
	if a.StatusMessage == "" || a.statusExpiry.IsZero() {
		return
	}
	if time.Now().After(a.statusExpiry) {
		a.StatusMessage = ""
		a.statusExpiry = time.Time{}
		a.NeedsRedraw = true
	}
}

// AdvanceSpinner advances the content-loading spinner by one frame in its
// SpinnerFrameCount cycle. Called every tick only while the reader is
// actually loading; the caller decides that, this just advances the frame.
func (a *App) AdvanceSpinner() {
	a.SpinnerFrame = (a.SpinnerFrame + 1) % SpinnerFrameCount
	a.NeedsRedraw = true
}

// CycleTheme advances to the next built-in theme name in a fixed ring.
func (a *App) CycleTheme() {
	for i, t := range themes {
		if t == a.Theme {
			a.Theme = themes[(i+1)%len(themes)]
			a.NeedsRedraw = true
			return
		}
	}
	a.Theme = themes[0]
	a.NeedsRedraw = true
}

// ToggleHelp flips the help-overlay visibility flag and resets its scroll
// offset when newly shown.
func (a *App) ToggleHelp() {
	a.HelpVisible = !a.HelpVisible
	if a.HelpVisible {
		a.HelpScroll = 0
	}
	a.NeedsRedraw = true
}

// ScrollHelp adjusts the help overlay's scroll offset by delta, clamped at
// zero; the renderer clamps the upper bound against its own content height.
func (a *App) ScrollHelp(delta int) {
	a.HelpScroll += delta
	if a.HelpScroll < 0 {
		a.HelpScroll = 0
	}
	a.NeedsRedraw = true
}

// ScrollReader adjusts the reader's scroll offset by delta, clamped against
// the rendered line count captured in Content.RenderedLines and the
// visible-line count the renderer last reported via SetReaderVisibleLines.
func (a *App) ScrollReader(delta int) {
	a.ReaderScroll += delta
	if a.ReaderScroll < 0 {
		a.ReaderScroll = 0
	}
	maxScroll := len(a.Content.RenderedLines) - a.ReaderVisibleLines
	if maxScroll < 0 {
		maxScroll = 0
	}
	if a.ReaderScroll > maxScroll {
		a.ReaderScroll = maxScroll
	}
	a.NeedsRedraw = true
}

// SetReaderVisibleLines records how many lines of the reader viewport the
// renderer last drew, used by ScrollReader to clamp.
func (a *App) SetReaderVisibleLines(n int) {
	a.ReaderVisibleLines = n
}

// SetRefreshProgress updates the (done, total) pair shown during a refresh
// pass.
func (a *App) SetRefreshProgress(done, total int) {
	a.RefreshDone = done
	a.RefreshTotal = total
	a.NeedsRedraw = true
}

// ClearRefreshProgress resets the progress pair once a refresh pass
// completes.
func (a *App) ClearRefreshProgress() {
	a.RefreshDone = 0
	a.RefreshTotal = 0
	a.NeedsRedraw = true
}

// syncFeedCache rebuilds the feed-title and feed-prefix caches from the
// current feed snapshot. The prefix is used in starred mode, where
// articles from many feeds are interleaved and need a short per-feed label.
func (a *App) syncFeedCache() {
	feeds := a.Feeds()
	titles := make(map[int64]string, len(feeds))
	prefixes := make(map[int64]string, len(feeds))
	for _, f := range feeds {
		titles[f.ID] = f.Title
		prefixes[f.ID] = feedPrefix(f.Title)
	}
	a.feedTitles = titles
	a.feedPrefixes = prefixes
}

// feedPrefix derives a short bracketed label from a feed title, e.g.
// "Example Blog" -> "[Example Blog]", truncated to keep starred-mode rows
// from being dominated by the label.
func feedPrefix(title string) string {
	const maxLen = 20
	t := strings.TrimSpace(title)
	if len(t) > maxLen {
		t = t[:maxLen-1] + "…"
	}
	return "[" + t + "]"
}

// FeedTitle returns the cached title for feedID, or "" if unknown.
func (a *App) FeedTitle(feedID int64) string {
	return a.feedTitles[feedID]
}

// FeedPrefix returns the cached starred-mode display prefix for feedID, or
// "" if unknown.
func (a *App) FeedPrefix(feedID int64) string {
	return a.feedPrefixes[feedID]
}

// RemoveFeedFromOrder filters feedIDs to only those still present in the
// current feed snapshot, used by RefreshComplete reconciliation to drop
// results for feeds deleted mid-refresh.
func (a *App) RemoveFeedFromOrder(feedIDs []int64) []int64 {
	present := make(map[int64]bool, len(a.Feeds()))
	for _, f := range a.Feeds() {
		present[f.ID] = true
	}
	out := feedIDs[:0:0]
	for _, id := range feedIDs {
		if present[id] {
			out = append(out, id)
		}
	}
	return out
}

// HasFeed reports whether feedID is present in the current feed snapshot.
func (a *App) HasFeed(feedID int64) bool {
	for _, f := range a.Feeds() {
		if f.ID == feedID {
			return true
		}
	}
	return false
}
