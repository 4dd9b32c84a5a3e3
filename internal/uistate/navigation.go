package uistate

import "feedtui/internal/domain/entity"

// clampIndex keeps idx within [0, length). An empty list clamps to 0.
func clampIndex(idx, length int) int {
	if length <= 0 {
		return 0
	}
	if idx < 0 {
		return 0
	}
	if idx >= length {
		return length - 1
	}
	return idx
}

// ClampSelections re-clamps the feed, article, and "what's new" selection
// indices to their current list lengths. Called after any change to those
// lists. CategorySelIdx is not clamped here.
func (a *App) ClampSelections() {
	a.FeedSelIdx = clampIndex(a.FeedSelIdx, len(a.Feeds()))
	a.ArticleSelIdx = clampIndex(a.ArticleSelIdx, len(a.Articles()))
	a.WhatsNewSelIdx = clampIndex(a.WhatsNewSelIdx, len(a.whatsNew))
}

// MoveDown advances the selection index of the currently focused panel.
func (a *App) MoveDown() {
	switch a.Focus {
	case FocusFeeds:
		a.FeedSelIdx = clampIndex(a.FeedSelIdx+1, len(a.Feeds()))
	case FocusArticles:
		a.ArticleSelIdx = clampIndex(a.ArticleSelIdx+1, len(a.Articles()))
	case FocusWhatsNew:
		a.WhatsNewSelIdx = clampIndex(a.WhatsNewSelIdx+1, len(a.whatsNew))
	case FocusCategories:
		a.CategorySelIdx++
	}
	a.NeedsRedraw = true
}

// MoveUp retreats the selection index of the currently focused panel.
func (a *App) MoveUp() {
	switch a.Focus {
	case FocusFeeds:
		a.FeedSelIdx = clampIndex(a.FeedSelIdx-1, len(a.Feeds()))
	case FocusArticles:
		a.ArticleSelIdx = clampIndex(a.ArticleSelIdx-1, len(a.Articles()))
	case FocusWhatsNew:
		a.WhatsNewSelIdx = clampIndex(a.WhatsNewSelIdx-1, len(a.whatsNew))
	case FocusCategories:
		if a.CategorySelIdx > 0 {
			a.CategorySelIdx--
		}
	}
	a.NeedsRedraw = true
}

var focusCycle = []Focus{FocusFeeds, FocusArticles, FocusWhatsNew, FocusCategories}

// CycleFocus advances focus to the next panel in a fixed ring order.
func (a *App) CycleFocus() {
	for i, f := range focusCycle {
		if f == a.Focus {
			a.Focus = focusCycle[(i+1)%len(focusCycle)]
			a.NeedsRedraw = true
			return
		}
	}
	a.Focus = FocusFeeds
	a.NeedsRedraw = true
}

// SelectedFeed returns the feed under the feed panel's selection, or false
// if the feed list is empty.
func (a *App) SelectedFeed() (entity.Feed, bool) {
	feeds := a.Feeds()
	if len(feeds) == 0 {
		return entity.Feed{}, false
	}
	return feeds[clampIndex(a.FeedSelIdx, len(feeds))], true
}

// SelectedArticle returns the article under the article panel's selection,
// or false if the article list is empty.
func (a *App) SelectedArticle() (entity.Article, bool) {
	articles := a.Articles()
	if len(articles) == 0 {
		return entity.Article{}, false
	}
	return articles[clampIndex(a.ArticleSelIdx, len(articles))], true
}
