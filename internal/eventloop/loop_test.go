package eventloop

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"feedtui/internal/cachemanager"
	"feedtui/internal/domain/entity"
	"feedtui/internal/httpfetch"
	"feedtui/internal/keybinding"
	"feedtui/internal/observability/logging"
	"feedtui/internal/refresh"
	"feedtui/internal/storage"
	"feedtui/internal/uistate"
)

// newTestLoop builds a Loop wired to a real temp-file store, a NopRenderer,
// and a PlainMarkdownRenderer, with unbuffered key/signal channels the test
// never sends on. Background tasks spawned during a test hit the real
// network only when a test exercises a code path that actually calls the
// fetcher; the handle()/tick()/action tests in this package avoid that by
// constructing events directly or by priming the content cache so Load
// returns before ever reaching the fetcher.
func newTestLoop(t *testing.T) (*Loop, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	logger := logging.NewWriter(io.Discard)

	store, err := storage.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fetcher := httpfetch.New()
	coordinator := refresh.New(store, fetcher, logger)
	cache := cachemanager.New(store, fetcher, logger)

	app := uistate.New(keybinding.New(), "dark")

	keys := make(chan string)
	sig := make(chan os.Signal)

	loop := New(app, store, coordinator, cache, fetcher, NopRenderer{}, PlainMarkdownRenderer{}, keys, sig, dir, logger)
	return loop, store
}

// seedFeed inserts one feed directly via SyncFeeds and returns its ID.
func seedFeed(t *testing.T, store *storage.Store, url, title string) int64 {
	t.Helper()
	err := store.SyncFeeds(context.Background(), []entity.Feed{{URL: url, Title: title}})
	require.NoError(t, err)
	feeds, err := store.ListFeedsWithUnreadCounts(context.Background())
	require.NoError(t, err)
	for _, f := range feeds {
		if f.URL == url {
			return f.ID
		}
	}
	t.Fatalf("seeded feed %q not found after sync", url)
	return 0
}

// seedArticle inserts one article into feedID via RefreshFeed and returns
// its assigned ID.
func seedArticle(t *testing.T, store *storage.Store, feedID int64, guid, title, url string) int64 {
	t.Helper()
	_, err := store.RefreshFeed(context.Background(), feedID, []entity.Article{
		{FeedID: feedID, GUID: guid, Title: title, URL: url},
	})
	require.NoError(t, err)
	articles, err := store.GetArticlesByFeed(context.Background(), feedID)
	require.NoError(t, err)
	for _, a := range articles {
		if a.GUID == guid {
			return a.ID
		}
	}
	t.Fatalf("seeded article %q not found after refresh", guid)
	return 0
}
