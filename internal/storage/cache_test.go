package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedtui/internal/domain/entity"
)

func mustCreateArticle(t *testing.T, store *Store, feedURL, guid string) int64 {
	t.Helper()
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, feedURL)
	_, err := store.RefreshFeed(ctx, feedID, []entity.Article{{GUID: guid, Title: "T", URL: feedURL + "/" + guid}})
	require.NoError(t, err)
	articles, err := store.GetArticlesByFeed(ctx, feedID)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	return articles[0].ID
}

func TestPutCache_AndGetCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	articleID := mustCreateArticle(t, store, "https://a.example/feed", "g1")

	require.NoError(t, store.PutCache(ctx, articleID, "# hello", time.Hour))

	c, err := store.GetCache(ctx, articleID)
	require.NoError(t, err)
	assert.Equal(t, "# hello", c.Markdown)
	assert.Equal(t, int64(len("# hello")), c.SizeBytes)
}

func TestGetCache_NotFoundWhenExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	articleID := mustCreateArticle(t, store, "https://a.example/feed", "g1")

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO content_cache (article_id, markdown, fetched_at, expires_at, size_bytes) VALUES (?, ?, ?, ?, ?)`,
		articleID, "stale", nowUnix()-1000, nowUnix()-10, 5)
	require.NoError(t, err)

	_, err = store.GetCache(ctx, articleID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestEvictExpiredCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	articleID := mustCreateArticle(t, store, "https://a.example/feed", "g1")

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO content_cache (article_id, markdown, fetched_at, expires_at, size_bytes) VALUES (?, ?, ?, ?, ?)`,
		articleID, "stale", nowUnix()-1000, nowUnix()-10, 5)
	require.NoError(t, err)

	n, err := store.EvictExpiredCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCacheStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	articleID := mustCreateArticle(t, store, "https://a.example/feed", "g1")
	require.NoError(t, store.PutCache(ctx, articleID, "abcdef", time.Hour))

	stats, err := store.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Count)
	assert.Equal(t, int64(6), stats.TotalBytes)
}

func TestPrefetchCandidates_ExcludesCachedAndRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feedID := mustCreateFeed(t, store, "https://a.example/feed")
	_, err := store.RefreshFeed(ctx, feedID, []entity.Article{
		{GUID: "g1", Title: "Unread Uncached", URL: "https://a.example/1", PublishedAt: 10},
		{GUID: "g2", Title: "Read", URL: "https://a.example/2", PublishedAt: 20},
		{GUID: "g3", Title: "Cached", URL: "https://a.example/3", PublishedAt: 30},
	})
	require.NoError(t, err)

	articles, err := store.GetArticlesByFeed(ctx, feedID)
	require.NoError(t, err)
	var readID, cachedID int64
	for _, a := range articles {
		switch a.Title {
		case "Read":
			readID = a.ID
		case "Cached":
			cachedID = a.ID
		}
	}
	require.NoError(t, store.SetArticleRead(ctx, readID, true))
	require.NoError(t, store.PutCache(ctx, cachedID, "content", time.Hour))

	candidates, err := store.PrefetchCandidates(ctx, &feedID, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Unread Uncached", candidates[0].Title)
}

func TestBulkCachedIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id1 := mustCreateArticle(t, store, "https://a.example/feed", "g1")
	id2 := mustCreateArticle(t, store, "https://b.example/feed", "g2")

	require.NoError(t, store.PutCache(ctx, id1, "cached", time.Hour))

	result, err := store.BulkCachedIDs(ctx, []int64{id1, id2})
	require.NoError(t, err)
	assert.True(t, result[id1])
	assert.False(t, result[id2])
}

func TestBulkCachedIDs_Empty(t *testing.T) {
	store := newTestStore(t)
	result, err := store.BulkCachedIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
