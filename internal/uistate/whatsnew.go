package uistate

import "feedtui/internal/domain/entity"

// PopulateWhatsNew rebuilds the "what's new" list from a set of recent
// articles grouped by source feed, round-robin distributing across feeds
// (one article per feed per round) so a single prolific feed cannot fill
// the whole list, capped at WhatsNewLimit.
func (a *App) PopulateWhatsNew(byFeed map[int64][]entity.Article, feedOrder []int64) {
	out := make([]entity.Article, 0, WhatsNewLimit)
	cursors := make(map[int64]int, len(feedOrder))

	for len(out) < WhatsNewLimit {
		progressed := false
		for _, feedID := range feedOrder {
			if len(out) >= WhatsNewLimit {
				break
			}
			articles := byFeed[feedID]
			idx := cursors[feedID]
			if idx >= len(articles) {
				continue
			}
			out = append(out, articles[idx])
			cursors[feedID] = idx + 1
			progressed = true
		}
		if !progressed {
			break
		}
	}

	a.whatsNew = out
	a.WhatsNewSelIdx = clampIndex(a.WhatsNewSelIdx, len(out))
	a.NeedsRedraw = true
}

// WhatsNew returns the current "what's new" list.
func (a *App) WhatsNew() []entity.Article {
	return a.whatsNew
}

// WhatsNewVisible reports whether the "what's new" panel is shown.
func (a *App) WhatsNewVisible() bool {
	return a.whatsNewVisible
}

// ShowWhatsNew reveals the "what's new" panel and, if the caller indicates
// the user has been sufficiently idle and is not in the reader, steals
// focus to it.
func (a *App) ShowWhatsNew(stealFocus bool) {
	a.whatsNewVisible = true
	if stealFocus && a.View != ViewReader {
		a.Focus = FocusWhatsNew
	}
	a.NeedsRedraw = true
}

// DismissWhatsNew hides the "what's new" panel and, if it currently has
// focus, returns focus to the feed list.
func (a *App) DismissWhatsNew() {
	a.whatsNewVisible = false
	if a.Focus == FocusWhatsNew {
		a.Focus = FocusFeeds
	}
	a.NeedsRedraw = true
}

// CanStealFocusForWhatsNew reports whether the idle and view conditions for
// a post-refresh focus steal are satisfied.
func (a *App) CanStealFocusForWhatsNew() bool {
	return a.IdleFor() >= IdleThreshold && a.View != ViewReader
}
