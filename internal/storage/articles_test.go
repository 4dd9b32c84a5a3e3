package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedtui/internal/domain/entity"
)

func mustCreateFeed(t *testing.T, store *Store, url string) int64 {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SyncFeeds(ctx, []entity.Feed{{Title: "F", URL: url}}))
	feeds, err := store.ListFeedsWithUnreadCounts(ctx)
	require.NoError(t, err)
	for _, f := range feeds {
		if f.URL == url {
			return f.ID
		}
	}
	t.Fatalf("feed %s not found after sync", url)
	return 0
}

func TestRefreshFeed_InsertsNewArticles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")

	newCount, err := store.RefreshFeed(ctx, feedID, []entity.Article{
		{GUID: "g1", Title: "One", URL: "https://a.example/1", PublishedAt: 100},
		{GUID: "g2", Title: "Two", URL: "https://a.example/2", PublishedAt: 200},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, newCount)

	articles, err := store.GetArticlesByFeed(ctx, feedID)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Two", articles[0].Title, "ordered by published desc")
}

func TestRefreshFeed_PreservesReadAndStarredOnReparse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")

	_, err := store.RefreshFeed(ctx, feedID, []entity.Article{
		{GUID: "g1", Title: "Original", URL: "https://a.example/1", PublishedAt: 100},
	})
	require.NoError(t, err)

	articles, err := store.GetArticlesByFeed(ctx, feedID)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.NoError(t, store.SetArticleRead(ctx, articles[0].ID, true))
	_, err = store.ToggleStarred(ctx, articles[0].ID)
	require.NoError(t, err)

	newCount, err := store.RefreshFeed(ctx, feedID, []entity.Article{
		{GUID: "g1", Title: "Updated Title", URL: "https://a.example/1-new", PublishedAt: 150},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, newCount, "re-parsing an existing guid must not count as new")

	updated, err := store.GetArticleByID(ctx, articles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", updated.Title)
	assert.Equal(t, "https://a.example/1-new", updated.URL)
	assert.True(t, updated.Read, "read flag must survive re-parse")
	assert.True(t, updated.Starred, "starred flag must survive re-parse")
}

func TestRefreshFeed_ClearsErrorState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")

	require.NoError(t, store.SetFeedError(ctx, feedID, "timeout"))

	_, err := store.RefreshFeed(ctx, feedID, nil)
	require.NoError(t, err)

	f, err := store.GetFeed(ctx, feedID)
	require.NoError(t, err)
	assert.Empty(t, f.LastError)
	assert.Zero(t, f.ConsecutiveFailures)
	assert.NotZero(t, f.LastFetchedAt)
}

func TestRefreshFeed_ChunksAcrossBoundary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")

	articles := make([]entity.Article, 0, refreshArticleChunkSize+5)
	for i := 0; i < refreshArticleChunkSize+5; i++ {
		articles = append(articles, entity.Article{
			GUID:  string(rune('a' + i%26)) + string(rune(i)),
			Title: "T",
			URL:   "https://a.example/x",
		})
	}

	newCount, err := store.RefreshFeed(ctx, feedID, articles)
	require.NoError(t, err)
	assert.Equal(t, len(articles), newCount)
}

func TestToggleStarred(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")
	_, err := store.RefreshFeed(ctx, feedID, []entity.Article{{GUID: "g1", Title: "T", URL: "https://a.example/1"}})
	require.NoError(t, err)

	articles, err := store.GetArticlesByFeed(ctx, feedID)
	require.NoError(t, err)
	id := articles[0].ID

	v1, err := store.ToggleStarred(ctx, id)
	require.NoError(t, err)
	assert.True(t, v1)

	v2, err := store.ToggleStarred(ctx, id)
	require.NoError(t, err)
	assert.False(t, v2)
}

func TestMarkFeedRead_And_MarkAllRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")
	_, err := store.RefreshFeed(ctx, feedID, []entity.Article{
		{GUID: "g1", Title: "T1", URL: "https://a.example/1"},
		{GUID: "g2", Title: "T2", URL: "https://a.example/2"},
	})
	require.NoError(t, err)

	require.NoError(t, store.MarkFeedRead(ctx, feedID))
	articles, err := store.GetArticlesByFeed(ctx, feedID)
	require.NoError(t, err)
	for _, a := range articles {
		assert.True(t, a.Read)
	}

	require.NoError(t, store.MarkAllRead(ctx))
}

func TestCheckFTSConsistency(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")
	_, err := store.RefreshFeed(ctx, feedID, []entity.Article{
		{GUID: "g1", Title: "T1", URL: "https://a.example/1"},
		{GUID: "g2", Title: "T2", URL: "https://a.example/2"},
	})
	require.NoError(t, err)

	articleCount, ftsCount, ok, err := store.CheckFTSConsistency(ctx, feedID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), articleCount)
	assert.Equal(t, int64(2), ftsCount)
}

func TestGetRecentAcrossFeeds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedA := mustCreateFeed(t, store, "https://a.example/feed")
	feedB := mustCreateFeed(t, store, "https://b.example/feed")

	_, err := store.RefreshFeed(ctx, feedA, []entity.Article{{GUID: "a1", Title: "A1", URL: "https://a.example/1", PublishedAt: 10}})
	require.NoError(t, err)
	_, err = store.RefreshFeed(ctx, feedB, []entity.Article{{GUID: "b1", Title: "B1", URL: "https://b.example/1", PublishedAt: 20}})
	require.NoError(t, err)

	out, err := store.GetRecentAcrossFeeds(ctx, []int64{feedA, feedB}, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "B1", out[0].Article.Title, "ordered by published desc")
}

func TestGetStarredArticles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")
	_, err := store.RefreshFeed(ctx, feedID, []entity.Article{{GUID: "g1", Title: "T", URL: "https://a.example/1"}})
	require.NoError(t, err)

	articles, err := store.GetArticlesByFeed(ctx, feedID)
	require.NoError(t, err)
	_, err = store.ToggleStarred(ctx, articles[0].ID)
	require.NoError(t, err)

	starred, err := store.GetStarredArticles(ctx)
	require.NoError(t, err)
	require.Len(t, starred, 1)
	assert.Equal(t, feedID, starred[0].FeedID)
}
