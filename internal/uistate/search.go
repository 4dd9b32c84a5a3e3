package uistate

import (
	"time"

	"feedtui/internal/domain/entity"
)

// EnterSearchMode clones the current article list and selection into the
// optimistic snapshot cache (a cheap slice-header copy, not a deep clone —
// Go slices already share their backing array), so exiting search is a
// pointer swap rather than a re-query.
func (a *App) EnterSearchMode() {
	a.cloneOptimisticSnapshot()
	a.searchActive = true
	a.searchQuery = ""
	a.NeedsRedraw = true
}

// ExitSearchMode restores the pre-search article list and selection from
// the optimistic snapshot when one is still valid (ok == true); otherwise
// the caller must reload the current feed's articles from storage, since
// any direct article mutation during search invalidated the cache.
func (a *App) ExitSearchMode() (ok bool) {
	a.AbortSearch()
	a.searchActive = false
	a.searchQuery = ""
	return a.restoreOptimisticSnapshot()
}

// InSearchMode reports whether search mode is currently active.
func (a *App) InSearchMode() bool {
	return a.searchActive
}

// SetSearchQuery records the pending query text and arms the debounce
// timer; the tick handler spawns the actual search task once quiet for
// SearchDebounce.
func (a *App) SetSearchQuery(query string) {
	a.searchQuery = query
	a.searchDebounceAt = time.Now()
	a.NeedsRedraw = true
}

// SearchQuery returns the pending query text.
func (a *App) SearchQuery() string {
	return a.searchQuery
}

// DebounceElapsed reports whether SearchDebounce has elapsed since the last
// SetSearchQuery call.
func (a *App) DebounceElapsed() bool {
	return !a.searchDebounceAt.IsZero() && time.Since(a.searchDebounceAt) >= SearchDebounce
}

// ClearDebounce disarms the debounce timer, called once a search task has
// been spawned for the current query so the tick handler does not re-spawn.
func (a *App) ClearDebounce() {
	a.searchDebounceAt = time.Time{}
}

// NextSearchGeneration aborts any still-in-flight search task and returns a
// new monotonically increasing search generation, to be carried by the task
// the caller is about to spawn for the current query.
func (a *App) NextSearchGeneration() int64 {
	a.AbortSearch()
	a.searchGeneration++
	return a.searchGeneration
}

// SetSearchCancel stores the cancellation function for the currently
// spawned search task.
func (a *App) SetSearchCancel(cancel func()) {
	a.searchCancel = cancel
}

// AbortSearch cancels the in-flight search task, if any, per §5's "abort is
// invoked on each new keystroke-triggered spawn and on explicit Enter."
func (a *App) AbortSearch() {
	if a.searchCancel != nil {
		a.searchCancel()
		a.searchCancel = nil
	}
}

// SearchGeneration returns the App's current search generation.
func (a *App) SearchGeneration() int64 {
	return a.searchGeneration
}

// ApplySearchCompleted reconciles a SearchCompleted event: a generation
// mismatch is discarded (a later keystroke already superseded this
// result); on a match the article list is replaced.
func (a *App) ApplySearchCompleted(generation int64, results []entity.Article) {
	if generation != a.searchGeneration {
		return
	}
	a.SetArticles(results)
	a.NeedsRedraw = true
}
