package eventloop

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"feedtui/internal/cachemanager"
	"feedtui/internal/httpfetch"
	"feedtui/internal/keybinding"
	"feedtui/internal/refresh"
	"feedtui/internal/storage"
	"feedtui/internal/uistate"
)

// tickInterval is how often the loop's periodic tick fires, per §4.8.
const tickInterval = 250 * time.Millisecond

// eventChannelCapacity bounds the event channel; backpressure here is
// intentional (§5): the event loop is the only consumer and a briefly
// lagging sender is acceptable.
const eventChannelCapacity = 32

// maintenanceInterval is how often expired content_cache rows are swept.
// Far coarser than tickInterval since this is background upkeep, not
// anything a user is waiting on.
const maintenanceInterval = 10 * time.Minute

// Loop is C8: the single-threaded cooperative event loop. It owns no state
// of its own beyond wiring — App (C7) is the single owner of mutable UI
// state, and the Loop only ever mutates it from within Run's goroutine.
type Loop struct {
	app      *uistate.App
	store    *storage.Store
	refresh  *refresh.Coordinator
	cache    *cachemanager.Manager
	fetcher  *httpfetch.Fetcher
	logger   *slog.Logger
	renderer Renderer
	markdown MarkdownRenderer

	events chan Event
	keys   <-chan string
	sig    <-chan os.Signal

	quitCh   chan struct{}
	quitOnce sync.Once

	// configDir is where exports are written (feeds-export.opml) and where
	// the OPML import flag (C10) places feeds.opml.
	configDir string
}

// New builds a Loop. keys delivers decoded key names (see internal/terminal)
// and sig delivers shutdown signals; both are owned by the caller, which is
// responsible for closing keys on terminal teardown.
func New(
	app *uistate.App,
	store *storage.Store,
	coordinator *refresh.Coordinator,
	cache *cachemanager.Manager,
	fetcher *httpfetch.Fetcher,
	renderer Renderer,
	markdown MarkdownRenderer,
	keys <-chan string,
	sig <-chan os.Signal,
	configDir string,
	logger *slog.Logger,
) *Loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if renderer == nil {
		renderer = NopRenderer{}
	}
	if markdown == nil {
		markdown = PlainMarkdownRenderer{}
	}
	return &Loop{
		app:      app,
		store:    store,
		refresh:  coordinator,
		cache:    cache,
		fetcher:  fetcher,
		logger:   logger,
		renderer: renderer,
		markdown: markdown,
		events:    make(chan Event, eventChannelCapacity),
		keys:      keys,
		sig:       sig,
		quitCh:    make(chan struct{}),
		configDir: configDir,
	}
}

// Bootstrap loads the initial feed and "what's new" snapshots from storage,
// run once by main before Run starts, per §4.10's startup order.
func (l *Loop) Bootstrap(ctx context.Context) error {
	feeds, err := l.store.ListFeedsWithUnreadCounts(ctx)
	if err != nil {
		return fmt.Errorf("eventloop: Bootstrap: %w", err)
	}
	l.app.SetFeeds(feeds)
	l.populateWhatsNew(ctx)
	return nil
}

// requestQuit breaks Run out of its select loop; called by the "quit"
// action and safe to call more than once or concurrently.
func (l *Loop) requestQuit() {
	l.quitOnce.Do(func() { close(l.quitCh) })
}

// Run executes the event loop until ctx is cancelled, a shutdown signal
// arrives, or the key channel is closed (terminal teardown). The priority
// order per iteration is: (1) a pending shutdown signal, (2) a non-blocking
// drain of queued background events, (3) a blocking wait on input, a new
// event, or the tick.
func (l *Loop) Run(ctx context.Context) error {
	taskCtx, cancelTasks := context.WithCancel(ctx)
	defer cancelTasks()
	defer l.endReadingSession(context.Background())

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	maintenanceTicker := time.NewTicker(maintenanceInterval)
	defer maintenanceTicker.Stop()

	l.app.NeedsRedraw = true

	for {
		select {
		case <-l.sig:
			return nil
		case <-l.quitCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		l.drainEvents(taskCtx)
		l.redrawIfNeeded()

		select {
		case <-l.sig:
			return nil
		case <-l.quitCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			l.handle(taskCtx, ev)
		case key, ok := <-l.keys:
			if !ok {
				return nil
			}
			l.handleKey(taskCtx, key)
		case <-ticker.C:
			l.tick(taskCtx)
		case <-maintenanceTicker.C:
			l.spawnMaintenance(taskCtx)
		}

		l.redrawIfNeeded()
	}
}

// drainEvents processes every event already queued, without blocking, so a
// backlog built up while the loop was busy rendering or handling a prior
// event is cleared before the next blocking wait.
func (l *Loop) drainEvents(ctx context.Context) {
	for {
		select {
		case ev := <-l.events:
			l.handle(ctx, ev)
		default:
			return
		}
	}
}

func (l *Loop) redrawIfNeeded() {
	if !l.app.NeedsRedraw {
		return
	}
	l.renderer.Render(l.app)
	l.app.NeedsRedraw = false
}

// emit sends ev to the event channel, used by task goroutines. It never
// blocks the caller past the channel's capacity draining normally; per §5
// the bound is intentional backpressure against a slow consumer.
func (l *Loop) emit(ev Event) {
	l.events <- ev
}

// spawn runs fn in its own goroutine, wrapped in a panic-catching adapter
// per §4.8: a panic becomes a TaskPanicked event instead of a silent
// disappearance or a crashed process.
func (l *Loop) spawn(task string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				l.emit(TaskPanicked{Task: task, Err: fmt.Errorf("%v", r)})
			}
		}()
		fn()
	}()
}
