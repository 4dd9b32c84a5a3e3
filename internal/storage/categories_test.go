package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedtui/internal/domain/entity"
)

func TestCreateCategory_SanitizesName(t *testing.T) {
	store := newTestStore(t)
	cat, err := store.CreateCategory(context.Background(), "  Tech\x01 News  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tech News", cat.Name)
}

func TestCreateCategory_RejectsEmptyAfterSanitize(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateCategory(context.Background(), "   \x01\x02  ", nil)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestCreateCategory_EnforcesMaxDepth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	root, err := store.CreateCategory(ctx, "root", nil)
	require.NoError(t, err)
	child, err := store.CreateCategory(ctx, "child", &root.ID)
	require.NoError(t, err)

	grandchild, err := store.CreateCategory(ctx, "grandchild", &child.ID)
	require.NoError(t, err, "depth 2 is below MaxCategoryDepth of 3")

	_, err = store.CreateCategory(ctx, "great-grandchild", &grandchild.ID)
	require.Error(t, err, "depth 3 would reach MaxCategoryDepth of 3")
}

func TestDeleteCategory_ClearsFeedCategoryID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "News", nil)
	require.NoError(t, err)

	require.NoError(t, store.SyncFeeds(ctx, []entity.Feed{{Title: "F", URL: "https://a.example/feed"}}))
	feeds, err := store.ListFeedsWithUnreadCounts(ctx)
	require.NoError(t, err)
	require.NoError(t, store.RecategorizeFeed(ctx, feeds[0].ID, &cat.ID))

	require.NoError(t, store.DeleteCategory(ctx, cat.ID))

	f, err := store.GetFeed(ctx, feeds[0].ID)
	require.NoError(t, err)
	assert.Nil(t, f.CategoryID)
}

func TestListCategories_OrderedBySortThenName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateCategory(ctx, "Zeta", nil)
	require.NoError(t, err)
	_, err = store.CreateCategory(ctx, "Alpha", nil)
	require.NoError(t, err)

	cats, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Alpha", cats[0].Name, "same sort_order falls back to name ascending")
	assert.Equal(t, "Zeta", cats[1].Name)
}
