package uistate

// EnterStarredMode clones the current article list into the optimistic
// snapshot cache. It does not change the article panel itself: the caller
// fetches the starred list from storage and calls SetArticles with it.
func (a *App) EnterStarredMode() {
	a.cloneOptimisticSnapshot()
	a.NeedsRedraw = true
}

// ExitStarredMode restores the pre-starred-mode article list and selection
// when the optimistic snapshot is still valid; otherwise the caller must
// reload the current feed's articles from storage.
func (a *App) ExitStarredMode() (ok bool) {
	return a.restoreOptimisticSnapshot()
}

func (a *App) cloneOptimisticSnapshot() {
	a.optimistic = &optimisticSnapshot{
		articles: a.Articles(),
		selIdx:   a.ArticleSelIdx,
	}
}

func (a *App) restoreOptimisticSnapshot() bool {
	snap := a.optimistic
	a.optimistic = nil
	if snap == nil {
		return false
	}
	a.SetArticles(snap.articles)
	a.ArticleSelIdx = clampIndex(snap.selIdx, len(snap.articles))
	a.NeedsRedraw = true
	return true
}

// InvalidateOptimisticSnapshot drops the cached pre-mode article list,
// called on any direct article mutation (star toggle, mark read) so a
// later restore never clobbers state that has since changed underneath it.
func (a *App) InvalidateOptimisticSnapshot() {
	a.optimistic = nil
}
