package uistate

import "feedtui/internal/domain/entity"

// SetStarred applies starred to articleID in every holder that might carry
// a copy of it: the article list (copy-on-write), the "what's new" list,
// and the reader's own display copy if it is currently showing articleID.
// Used both for the initial optimistic flip (before the storage write
// completes) and to reconcile a successful StarToggled event, which is
// idempotent against an already-applied optimistic flip.
func (a *App) SetStarred(articleID int64, starred bool) {
	a.mutateArticle(articleID, func(art *entity.Article) { art.Starred = starred })

	for i := range a.whatsNew {
		if a.whatsNew[i].ID == articleID {
			a.whatsNew[i].Starred = starred
		}
	}

	if a.Content.ArticleID == articleID && a.Content.Kind != ContentIdle {
		a.Content.Starred = starred
	}

	a.InvalidateOptimisticSnapshot()
	a.NeedsRedraw = true
}

// mutateArticle applies fn to the article with the given id inside a
// cloned copy of the article snapshot, then stores the clone. A no-op if
// the article is not present in the current snapshot (e.g. it belongs to a
// different feed than the one currently displayed).
func (a *App) mutateArticle(articleID int64, fn func(*entity.Article)) {
	current := a.Articles()
	idx := -1
	for i := range current {
		if current[i].ID == articleID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	clone := make([]entity.Article, len(current))
	copy(clone, current)
	fn(&clone[idx])
	snapshot := clone
	a.articles.Store(&snapshot)
}

// SetArticleReadLocal applies a read-flag flip to the article list without
// touching storage, mirroring the optimistic-update style used for star
// toggles (mark-read is fire-and-forget, per §4.8's
// BulkMarkReadComplete/Failed handling: no list reload on success since
// this local update already covers it).
func (a *App) SetArticleReadLocal(articleID int64, read bool) {
	a.mutateArticle(articleID, func(art *entity.Article) { art.Read = read })
	for i := range a.whatsNew {
		if a.whatsNew[i].ID == articleID {
			a.whatsNew[i].Read = read
		}
	}
	a.InvalidateOptimisticSnapshot()
	a.NeedsRedraw = true
}
