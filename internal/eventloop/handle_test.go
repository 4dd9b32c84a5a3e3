package eventloop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedtui/internal/refresh"
	"feedtui/internal/uistate"
)

func TestHandleRefreshComplete_MostlyNetworkFailures_ReportsOffline(t *testing.T) {
	loop, store := newTestLoop(t)
	ctx := context.Background()
	f1 := seedFeed(t, store, "https://a.example/feed.xml", "A")
	f2 := seedFeed(t, store, "https://b.example/feed.xml", "B")
	require.NoError(t, loop.Bootstrap(ctx))

	loop.handle(ctx, RefreshComplete{Results: []refresh.Result{
		{FeedID: f1, Err: errors.New("dial tcp: timeout"), Kind: refresh.KindNetwork},
		{FeedID: f2, Err: errors.New("dial tcp: timeout"), Kind: refresh.KindTimeout},
	}})

	assert.Contains(t, loop.app.StatusMessage, "Offline")
}

func TestHandleRefreshComplete_MixedOutcomes_ReportsCounts(t *testing.T) {
	loop, store := newTestLoop(t)
	ctx := context.Background()
	f1 := seedFeed(t, store, "https://a.example/feed.xml", "A")
	f2 := seedFeed(t, store, "https://b.example/feed.xml", "B")
	require.NoError(t, loop.Bootstrap(ctx))

	loop.handle(ctx, RefreshComplete{Results: []refresh.Result{
		{FeedID: f1, NewCount: 3},
		{FeedID: f2, Err: errors.New("malformed xml"), Kind: refresh.KindParse},
	}})

	assert.Contains(t, loop.app.StatusMessage, "3 new")
	assert.Contains(t, loop.app.StatusMessage, "1 failed")
}

func TestHandleRefreshComplete_DropsResultsForDeletedFeeds(t *testing.T) {
	loop, store := newTestLoop(t)
	ctx := context.Background()
	f1 := seedFeed(t, store, "https://a.example/feed.xml", "A")
	require.NoError(t, loop.Bootstrap(ctx))

	loop.handle(ctx, RefreshComplete{Results: []refresh.Result{
		{FeedID: f1, NewCount: 1},
		{FeedID: 999999, NewCount: 5},
	}})

	assert.Contains(t, loop.app.StatusMessage, "refreshed 1 feeds")
}

func TestHandleStarToggleFailed_RollsBackOptimisticFlip(t *testing.T) {
	loop, store := newTestLoop(t)
	ctx := context.Background()
	f1 := seedFeed(t, store, "https://a.example/feed.xml", "A")
	a1 := seedArticle(t, store, f1, "guid-1", "Title", "https://a.example/1")
	require.NoError(t, loop.Bootstrap(ctx))
	loop.app.CurrentFeedID = &f1
	loop.reloadCurrentFeedArticles(ctx)

	loop.app.SetStarred(a1, true)
	loop.handle(ctx, StarToggleFailed{ArticleID: a1, OriginalStatus: false, Err: errors.New("disk full")})

	articles := loop.app.Articles()
	require.Len(t, articles, 1)
	assert.False(t, articles[0].Starred)
	assert.Contains(t, loop.app.StatusMessage, "star toggle failed")
}

func TestHandleContentLoaded_AppliesViaGenerationGuard(t *testing.T) {
	loop, store := newTestLoop(t)
	ctx := context.Background()
	f1 := seedFeed(t, store, "https://a.example/feed.xml", "A")
	a1 := seedArticle(t, store, f1, "guid-1", "Title", "https://a.example/1")

	gen, spawn := loop.app.EnterReader(a1, true, false, "summary")
	require.True(t, spawn)

	loop.handle(ctx, ContentLoaded{ArticleID: a1, Generation: gen, Markdown: "# hi", RenderedLines: []string{"# hi"}})
	require.Equal(t, uistate.ContentLoaded, loop.app.Content.Kind)
	assert.Equal(t, "# hi", loop.app.Content.Markdown)

	// A stale, superseded generation must not clobber the now-current state.
	loop.handle(ctx, ContentLoaded{ArticleID: a1, Generation: gen - 1, Markdown: "stale"})
	assert.Equal(t, "# hi", loop.app.Content.Markdown)
}

func TestHandleTaskPanicked_LogsAndSetsStatus(t *testing.T) {
	loop, _ := newTestLoop(t)
	loop.handle(context.Background(), TaskPanicked{Task: "refresh_all", Err: errors.New("boom")})
	assert.Contains(t, loop.app.StatusMessage, "refresh_all")
}
