package uistate

import "feedtui/internal/domain/entity"

// StatsVisible reports whether the reading-stats overlay is shown.
func (a *App) StatsVisible() bool {
	return a.statsVisible
}

// ShowStats displays the reading-stats overlay with a freshly loaded
// snapshot. The caller (eventloop) is responsible for querying storage;
// this only updates display state, same as ShowWhatsNew.
func (a *App) ShowStats(stats entity.ReadingStats) {
	a.Stats = stats
	a.statsVisible = true
	a.NeedsRedraw = true
}

// DismissStats hides the reading-stats overlay.
func (a *App) DismissStats() {
	a.statsVisible = false
	a.NeedsRedraw = true
}
