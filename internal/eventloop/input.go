package eventloop

import (
	"context"

	"feedtui/internal/keybinding"
	"feedtui/internal/terminal"
	"feedtui/internal/uistate"
)

// handleKey routes one decoded key by current mode, per §4.8's input
// dispatch: help overlay first, then search mode, then view/focus. Within a
// view, focus maps to a keybinding context and the registry resolves
// (context, key) to an action; an empty resolution is a no-op.
func (l *Loop) handleKey(ctx context.Context, key string) {
	l.app.NoteInput()

	switch {
	case l.app.HelpVisible:
		l.dispatchHelp(key)
	case l.app.StatsVisible():
		l.dispatchStats(ctx, key)
	case l.app.InSearchMode():
		l.dispatchSearch(ctx, key)
	case l.app.View == uistate.ViewReader:
		l.dispatchAction(ctx, keybinding.ContextReader, key)
	default:
		l.dispatchAction(ctx, focusContext(l.app.Focus), key)
	}
}

func focusContext(f uistate.Focus) keybinding.Context {
	switch f {
	case uistate.FocusFeeds:
		return keybinding.ContextFeeds
	case uistate.FocusArticles:
		return keybinding.ContextArticles
	case uistate.FocusWhatsNew:
		return keybinding.ContextWhatsNew
	case uistate.FocusCategories:
		return keybinding.ContextCategories
	default:
		return keybinding.ContextFeeds
	}
}

func (l *Loop) dispatchHelp(key string) {
	switch l.app.Keybindings.Resolve(keybinding.ContextHelp, key) {
	case keybinding.ActionToggleHelp:
		l.app.ToggleHelp()
	case keybinding.ActionMoveDown:
		l.app.ScrollHelp(1)
	case keybinding.ActionMoveUp:
		l.app.ScrollHelp(-1)
	}
}

// dispatchStats handles keys while the reading-stats overlay is shown: only
// the toggle action (bound to esc/q/S in ContextStats) is meaningful, and it
// closes the overlay rather than reopening it.
func (l *Loop) dispatchStats(ctx context.Context, key string) {
	if l.app.Keybindings.Resolve(keybinding.ContextStats, key) == keybinding.ActionToggleStats {
		l.onToggleStats(ctx)
	}
}

// dispatchSearch handles keys while search mode is active: the exit action
// resolves through the registry as usual; any other
// printable key is treated as text input into the pending query and arms
// the debounce timer instead of being looked up as an action.
func (l *Loop) dispatchSearch(ctx context.Context, key string) {
	switch action := l.app.Keybindings.Resolve(keybinding.ContextSearch, key); action {
	case keybinding.ActionExitSearch:
		if key == string(terminal.KeyEnter) {
			l.spawnSearch(ctx, l.app.SearchQuery())
			return
		}
		if ok := l.app.ExitSearchMode(); !ok {
			l.reloadCurrentFeedArticles(ctx)
		}
		return
	}

	switch key {
	case string(terminal.KeyBackspace):
		q := l.app.SearchQuery()
		if len(q) > 0 {
			l.app.SetSearchQuery(q[:len(q)-1])
		}
	default:
		if len(key) == 1 && key[0] >= 0x20 && key[0] != 0x7f {
			l.app.SetSearchQuery(l.app.SearchQuery() + key)
		}
	}
}

// dispatchAction resolves key within ctx and executes the resulting
// action. An empty resolution (ActionNone) is a no-op.
func (l *Loop) dispatchAction(ctx context.Context, kbCtx keybinding.Context, key string) {
	switch l.app.Keybindings.Resolve(kbCtx, key) {
	case keybinding.ActionMoveDown:
		l.app.MoveDown()
	case keybinding.ActionMoveUp:
		l.app.MoveUp()
	case keybinding.ActionCycleFocus:
		l.app.CycleFocus()
	case keybinding.ActionEnter:
		l.onEnter(ctx)
	case keybinding.ActionBack:
		l.onBack(ctx)
	case keybinding.ActionQuit:
		l.requestQuit()
	case keybinding.ActionRefreshAll:
		l.spawnRefreshAll(ctx)
	case keybinding.ActionRefreshOne:
		if f, ok := l.app.SelectedFeed(); ok {
			l.spawnRefreshOne(ctx, f.ID)
		}
	case keybinding.ActionToggleStar:
		l.onToggleStar(ctx)
	case keybinding.ActionMarkRead:
		l.onMarkRead(ctx)
	case keybinding.ActionMarkAllRead:
		l.spawnMarkAllRead(ctx)
	case keybinding.ActionEnterSearch:
		l.app.EnterSearchMode()
	case keybinding.ActionExitSearch:
		if ok := l.app.ExitSearchMode(); !ok {
			l.reloadCurrentFeedArticles(ctx)
		}
	case keybinding.ActionEnterStarred:
		l.onEnterStarred(ctx)
	case keybinding.ActionExitStarred:
		if ok := l.app.ExitStarredMode(); !ok {
			l.reloadCurrentFeedArticles(ctx)
		}
	case keybinding.ActionOpenInBrowser:
		l.onOpenInBrowser()
	case keybinding.ActionDismissWhatsNew:
		l.app.DismissWhatsNew()
	case keybinding.ActionToggleHelp:
		l.app.ToggleHelp()
	case keybinding.ActionToggleStats:
		l.onToggleStats(ctx)
	case keybinding.ActionCycleTheme:
		l.app.CycleTheme()
	case keybinding.ActionScrollDown:
		l.app.ScrollReader(1)
	case keybinding.ActionScrollUp:
		l.app.ScrollReader(-1)
	case keybinding.ActionExport:
		l.spawnExport(ctx)
	}
}
