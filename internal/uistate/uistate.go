// Package uistate implements C7: the App, the single owner of all UI state.
// Every mutation runs on the event-loop goroutine; background tasks never
// touch App directly, they only send events the loop reconciles (§4.8).
package uistate

import (
	"sync/atomic"
	"time"

	"feedtui/internal/domain/entity"
	"feedtui/internal/keybinding"
)

// Focus identifies which panel currently has keyboard focus in Browse view.
type Focus int

const (
	FocusFeeds Focus = iota
	FocusArticles
	FocusWhatsNew
	FocusCategories
)

// View identifies the top-level screen.
type View int

const (
	ViewBrowse View = iota
	ViewReader
)

const (
	// WhatsNewLimit bounds the "what's new" list, round-robin distributed
	// across source feeds so no single prolific feed dominates.
	WhatsNewLimit = 100
	// IdleThreshold is how long the user must be idle before a
	// post-refresh "what's new" focus steal is allowed.
	IdleThreshold = 2 * time.Second
	// SpinnerFrameCount is the length of the content-loading spinner's
	// animation cycle.
	SpinnerFrameCount = 10
	// SearchDebounce is how long the tick handler waits after the last
	// keystroke before spawning a search task.
	SearchDebounce = 300 * time.Millisecond
	// OfflineFailureThreshold is the fraction of network-classified
	// refresh failures above which the UI reports "Offline", named so it
	// is easy to revisit without being a silent magic number.
	OfflineFailureThreshold = 0.8
)

// App is the single owner of UI state.
type App struct {
	feeds    atomic.Pointer[[]entity.Feed]
	articles atomic.Pointer[[]entity.Article]

	CurrentFeedID *int64 // nil means "All" / whats-new / starred scope

	Focus Focus
	View  View

	FeedSelIdx      int
	ArticleSelIdx   int
	WhatsNewSelIdx  int
	CategorySelIdx  int

	Content ContentState

	contentGeneration int64
	contentCancel     func()

	historyID    int64
	historyStart time.Time

	Stats        entity.ReadingStats
	statsVisible bool

	searchGeneration int64
	searchDebounceAt time.Time
	searchActive     bool
	searchQuery      string
	searchCancel     func()

	optimistic *optimisticSnapshot

	whatsNew        []entity.Article
	whatsNewVisible bool

	feedTitles   map[int64]string
	feedPrefixes map[int64]string

	StatusMessage string
	statusExpiry  time.Time

	SpinnerFrame int
	lastInputAt  time.Time

	RefreshDone  int
	RefreshTotal int

	HelpVisible bool
	HelpScroll  int

	ReaderScroll       int
	ReaderVisibleLines int

	NeedsRedraw bool

	Keybindings *keybinding.Registry
	Theme       string
}

// optimisticSnapshot is the cloned (articles, selection) pair captured on
// entering search or starred mode, restored as a pointer swap on exit.
type optimisticSnapshot struct {
	articles []entity.Article
	selIdx   int
}

// New builds an empty App with the given keybinding registry and theme.
func New(reg *keybinding.Registry, theme string) *App {
	a := &App{
		Keybindings: reg,
		Theme:       theme,
		Content:     ContentState{Kind: ContentIdle},
		feedTitles:  make(map[int64]string),
		feedPrefixes: make(map[int64]string),
		lastInputAt: time.Now(),
	}
	empty := []entity.Feed{}
	emptyArticles := []entity.Article{}
	a.feeds.Store(&empty)
	a.articles.Store(&emptyArticles)
	return a
}

// Feeds returns the current feed snapshot. The returned slice must be
// treated as immutable by the caller.
func (a *App) Feeds() []entity.Feed {
	return *a.feeds.Load()
}

// SetFeeds replaces the feed snapshot and rebuilds the title/prefix caches.
func (a *App) SetFeeds(feeds []entity.Feed) {
	snapshot := make([]entity.Feed, len(feeds))
	copy(snapshot, feeds)
	a.feeds.Store(&snapshot)
	a.syncFeedCache()
	a.ClampSelections()
}

// Articles returns the current article-panel snapshot.
func (a *App) Articles() []entity.Article {
	return *a.articles.Load()
}

// SetArticles replaces the article-panel snapshot.
func (a *App) SetArticles(articles []entity.Article) {
	snapshot := make([]entity.Article, len(articles))
	copy(snapshot, articles)
	a.articles.Store(&snapshot)
	a.ClampSelections()
}

// NoteInput records the instant of the latest user keystroke, used by the
// idle-detection heuristic for "what's new" focus stealing.
func (a *App) NoteInput() {
	a.lastInputAt = time.Now()
}

// IdleFor reports how long it has been since the last recorded user input.
func (a *App) IdleFor() time.Duration {
	return time.Since(a.lastInputAt)
}
