package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedtui/internal/domain/entity"
)

func TestSyncFeeds_InsertsAndUpdatesOnConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SyncFeeds(ctx, []entity.Feed{
		{Title: "Feed A", URL: "https://a.example/feed", SiteURL: "https://a.example"},
		{Title: "Feed B", URL: "https://b.example/feed", SiteURL: "https://b.example"},
	}))

	feeds, err := store.ListFeedsWithUnreadCounts(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 2)

	require.NoError(t, store.SetFeedError(ctx, feeds[0].ID, "boom"))

	require.NoError(t, store.SyncFeeds(ctx, []entity.Feed{
		{Title: "Feed A Renamed", URL: "https://a.example/feed", SiteURL: "https://a.example/new"},
	}))

	updated, err := store.GetFeed(ctx, feeds[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Feed A Renamed", updated.Title)
	assert.Equal(t, "https://a.example/new", updated.SiteURL)
	assert.Equal(t, "boom", updated.LastError, "error state must survive a sync conflict")
}

func TestSyncFeeds_EmptyIsNoop(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SyncFeeds(context.Background(), nil))
}

func TestGetFeed_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetFeed(context.Background(), 999)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestActiveFeeds_ExcludesCircuitOpenFeeds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SyncFeeds(ctx, []entity.Feed{
		{Title: "Healthy", URL: "https://h.example/feed"},
		{Title: "Failing", URL: "https://f.example/feed"},
	}))
	feeds, err := store.ListFeedsWithUnreadCounts(ctx)
	require.NoError(t, err)

	var failingID int64
	for _, f := range feeds {
		if f.Title == "Failing" {
			failingID = f.ID
		}
	}

	for i := 0; i < entity.CircuitBreakerThreshold; i++ {
		require.NoError(t, store.SetFeedError(ctx, failingID, "err"))
	}

	active, err := store.ActiveFeeds(ctx)
	require.NoError(t, err)
	for _, f := range active {
		assert.NotEqual(t, failingID, f.ID)
	}
}

func TestBatchSetFeedErrors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SyncFeeds(ctx, []entity.Feed{
		{Title: "A", URL: "https://a.example/feed"},
		{Title: "B", URL: "https://b.example/feed"},
	}))
	feeds, err := store.ListFeedsWithUnreadCounts(ctx)
	require.NoError(t, err)

	require.NoError(t, store.BatchSetFeedErrors(ctx, []FeedErrorResult{
		{FeedID: feeds[0].ID, Error: "err-a"},
		{FeedID: feeds[1].ID, Error: "err-b"},
	}))

	a, err := store.GetFeed(ctx, feeds[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "err-a", a.LastError)
	assert.Equal(t, 1, a.ConsecutiveFailures)

	b, err := store.GetFeed(ctx, feeds[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "err-b", b.LastError)
}

func TestDeleteFeed_CascadesArticles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SyncFeeds(ctx, []entity.Feed{{Title: "A", URL: "https://a.example/feed"}}))
	feeds, err := store.ListFeedsWithUnreadCounts(ctx)
	require.NoError(t, err)
	feedID := feeds[0].ID

	_, err = store.RefreshFeed(ctx, feedID, []entity.Article{{GUID: "g1", Title: "T1", URL: "https://a.example/1"}})
	require.NoError(t, err)

	require.NoError(t, store.DeleteFeed(ctx, feedID))

	articles, err := store.GetArticlesByFeed(ctx, feedID)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestDeleteFeed_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.DeleteFeed(context.Background(), 12345)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
