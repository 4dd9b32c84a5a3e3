package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPreference_AndGetPreference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPreference(ctx, "theme.name", "solarized"))

	value, err := store.GetPreference(ctx, "theme.name", "default")
	require.NoError(t, err)
	assert.Equal(t, "solarized", value)
}

func TestGetPreference_DefaultWhenAbsent(t *testing.T) {
	store := newTestStore(t)
	value, err := store.GetPreference(context.Background(), "missing.key", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", value)
}

func TestSetPreference_UpsertsOnConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPreference(ctx, "session.last_feed_id", "1"))
	require.NoError(t, store.SetPreference(ctx, "session.last_feed_id", "2"))

	value, err := store.GetPreference(ctx, "session.last_feed_id", "")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestListPreferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPreference(ctx, "theme.name", "dark"))
	require.NoError(t, store.SetPreference(ctx, "keybind.quit", "q"))

	prefs, err := store.ListPreferences(ctx)
	require.NoError(t, err)
	assert.Len(t, prefs, 2)
}
