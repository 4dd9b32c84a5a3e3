package eventloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedtui/internal/uistate"
)

func TestTick_ExpiresStatusMessage(t *testing.T) {
	loop, _ := newTestLoop(t)
	loop.app.SetStatus("transient", time.Millisecond)
	time.Sleep(2 * time.Millisecond)

	loop.tick(context.Background())

	assert.Empty(t, loop.app.StatusMessage)
}

func TestTick_AdvancesSpinnerOnlyWhileReaderLoading(t *testing.T) {
	loop, store := newTestLoop(t)
	ctx := context.Background()
	f1 := seedFeed(t, store, "https://a.example/feed.xml", "A")
	a1 := seedArticle(t, store, f1, "guid-1", "Title", "https://a.example/1")
	require.NoError(t, loop.Bootstrap(ctx))

	before := loop.app.SpinnerFrame
	loop.tick(ctx) // not in reader yet: no change
	assert.Equal(t, before, loop.app.SpinnerFrame)

	_, spawn := loop.app.EnterReader(a1, true, false, "summary")
	require.True(t, spawn)
	loop.tick(ctx)
	assert.Equal(t, (before+1)%uistate.SpinnerFrameCount, loop.app.SpinnerFrame)
}

func TestTick_FiresDebouncedSearchOnceElapsed(t *testing.T) {
	loop, store := newTestLoop(t)
	ctx := context.Background()
	f1 := seedFeed(t, store, "https://a.example/feed.xml", "A")
	seedArticle(t, store, f1, "guid-1", "Hello World", "https://a.example/1")
	require.NoError(t, loop.Bootstrap(ctx))
	loop.selectFeed(ctx)

	loop.app.EnterSearchMode()
	loop.app.SetSearchQuery("hello")

	// DebounceElapsed requires SearchDebounce to have passed; back-date the
	// query's internal timer isn't exposed, so sleep past the real window.
	time.Sleep(uistate.SearchDebounce + 10*time.Millisecond)

	loop.tick(ctx)

	// spawnSearch runs asynchronously; wait for its SearchCompleted event.
	select {
	case ev := <-loop.events:
		sc, ok := ev.(SearchCompleted)
		require.True(t, ok, "expected SearchCompleted, got %T", ev)
		require.Len(t, sc.Results, 1)
		assert.Equal(t, "Hello World", sc.Results[0].Title)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search to complete")
	}
}
