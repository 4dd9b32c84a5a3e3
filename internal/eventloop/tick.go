package eventloop

import (
	"context"

	"feedtui/internal/uistate"
)

// tick implements §4.8's periodic handling, run once per tickInterval:
// expire the transient status line, advance the reader's loading spinner,
// and fire a debounced search once the query has been quiet long enough.
func (l *Loop) tick(ctx context.Context) {
	l.app.ClearExpiredStatus()

	if l.app.View == uistate.ViewReader && l.app.Content.Kind == uistate.ContentLoading {
		l.app.AdvanceSpinner()
	}

	if l.app.InSearchMode() && l.app.DebounceElapsed() {
		l.app.ClearDebounce()
		l.spawnSearch(ctx, l.app.SearchQuery())
	}
}
