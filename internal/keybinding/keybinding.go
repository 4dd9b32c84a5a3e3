// Package keybinding implements the registry described in §4.11: a
// data-driven (context, key) -> action lookup, built from compiled-in
// defaults and then overridden entry-by-entry from configuration.
package keybinding

// Context identifies which part of the UI a key press should be resolved
// against.
type Context string

const (
	ContextFeeds      Context = "feeds"
	ContextArticles   Context = "articles"
	ContextWhatsNew   Context = "whats_new"
	ContextCategories Context = "categories"
	ContextReader     Context = "reader"
	ContextSearch     Context = "search"
	ContextHelp       Context = "help"
	ContextStats      Context = "stats"
)

// Action is an opaque action name the event loop switches on. The registry
// itself never interprets these; it only maps keys to them.
type Action string

const (
	ActionNone Action = ""

	ActionMoveDown    Action = "move_down"
	ActionMoveUp      Action = "move_up"
	ActionCycleFocus  Action = "cycle_focus"
	ActionEnter       Action = "enter"
	ActionBack        Action = "back"
	ActionQuit        Action = "quit"
	ActionRefreshAll  Action = "refresh_all"
	ActionRefreshOne  Action = "refresh_one"
	ActionToggleStar  Action = "toggle_star"
	ActionMarkRead    Action = "mark_read"
	ActionMarkAllRead Action = "mark_all_read"
	ActionEnterSearch Action = "enter_search"
	ActionExitSearch  Action = "exit_search"
	ActionEnterStarred Action = "enter_starred"
	ActionExitStarred  Action = "exit_starred"
	ActionOpenInBrowser Action = "open_in_browser"
	ActionDismissWhatsNew Action = "dismiss_whats_new"
	ActionToggleHelp  Action = "toggle_help"
	ActionToggleStats Action = "toggle_stats"
	ActionCycleTheme  Action = "cycle_theme"
	ActionScrollDown  Action = "scroll_down"
	ActionScrollUp    Action = "scroll_up"
	ActionExport      Action = "export"
)

type binding struct {
	context Context
	key     string
}

// Registry is a flat (context, key) -> action map. Resolution is a single
// lookup; an absent entry resolves to ActionNone, never a panic.
type Registry struct {
	bindings map[binding]Action
}

// New builds a Registry seeded with the built-in defaults.
func New() *Registry {
	r := &Registry{bindings: make(map[binding]Action, len(defaultBindings))}
	for _, b := range defaultBindings {
		r.bindings[binding{b.context, b.key}] = b.action
	}
	return r
}

// Resolve looks up the action bound to key within ctx. An absent entry
// returns ActionNone.
func (r *Registry) Resolve(ctx Context, key string) Action {
	return r.bindings[binding{ctx, key}]
}

// Override replaces (or adds) a single binding, used by appconfig to apply
// config-file keybindings over the compiled-in defaults. Stored keybind.*
// preferences are not applied.
func (r *Registry) Override(ctx Context, key string, action Action) {
	r.bindings[binding{ctx, key}] = action
}

type defaultBinding struct {
	context Context
	key     string
	action  Action
}

var defaultBindings = []defaultBinding{
	{ContextFeeds, "j", ActionMoveDown},
	{ContextFeeds, "down", ActionMoveDown},
	{ContextFeeds, "k", ActionMoveUp},
	{ContextFeeds, "up", ActionMoveUp},
	{ContextFeeds, "tab", ActionCycleFocus},
	{ContextFeeds, "enter", ActionEnter},
	{ContextFeeds, "r", ActionRefreshOne},
	{ContextFeeds, "R", ActionRefreshAll},
	{ContextFeeds, "s", ActionEnterStarred},
	{ContextFeeds, "/", ActionEnterSearch},
	{ContextFeeds, "q", ActionQuit},
	{ContextFeeds, "?", ActionToggleHelp},
	{ContextFeeds, "S", ActionToggleStats},
	{ContextFeeds, "t", ActionCycleTheme},
	{ContextFeeds, "A", ActionMarkAllRead},
	{ContextFeeds, "e", ActionExport},

	{ContextArticles, "j", ActionMoveDown},
	{ContextArticles, "down", ActionMoveDown},
	{ContextArticles, "k", ActionMoveUp},
	{ContextArticles, "up", ActionMoveUp},
	{ContextArticles, "tab", ActionCycleFocus},
	{ContextArticles, "enter", ActionEnter},
	{ContextArticles, "esc", ActionBack},
	{ContextArticles, "m", ActionMarkRead},
	{ContextArticles, "*", ActionToggleStar},
	{ContextArticles, "o", ActionOpenInBrowser},
	{ContextArticles, "/", ActionEnterSearch},
	{ContextArticles, "q", ActionQuit},
	{ContextArticles, "?", ActionToggleHelp},
	{ContextArticles, "S", ActionToggleStats},

	{ContextWhatsNew, "j", ActionMoveDown},
	{ContextWhatsNew, "k", ActionMoveUp},
	{ContextWhatsNew, "enter", ActionEnter},
	{ContextWhatsNew, "esc", ActionDismissWhatsNew},
	{ContextWhatsNew, "tab", ActionCycleFocus},

	{ContextCategories, "j", ActionMoveDown},
	{ContextCategories, "k", ActionMoveUp},
	{ContextCategories, "tab", ActionCycleFocus},

	{ContextReader, "esc", ActionBack},
	{ContextReader, "q", ActionBack},
	{ContextReader, "j", ActionScrollDown},
	{ContextReader, "down", ActionScrollDown},
	{ContextReader, "k", ActionScrollUp},
	{ContextReader, "up", ActionScrollUp},
	{ContextReader, "*", ActionToggleStar},
	{ContextReader, "o", ActionOpenInBrowser},

	{ContextSearch, "esc", ActionExitSearch},
	{ContextSearch, "enter", ActionExitSearch},

	{ContextHelp, "esc", ActionToggleHelp},
	{ContextHelp, "?", ActionToggleHelp},
	{ContextHelp, "q", ActionToggleHelp},

	{ContextStats, "esc", ActionToggleStats},
	{ContextStats, "S", ActionToggleStats},
	{ContextStats, "q", ActionToggleStats},
}
