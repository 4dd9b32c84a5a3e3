package uistate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedtui/internal/domain/entity"
)

func TestPopulateWhatsNew_RoundRobinsAcrossFeeds(t *testing.T) {
	a := newTestApp()
	byFeed := map[int64][]entity.Article{
		1: {{ID: 10, FeedID: 1}, {ID: 11, FeedID: 1}},
		2: {{ID: 20, FeedID: 2}},
	}

	a.PopulateWhatsNew(byFeed, []int64{1, 2})

	got := a.WhatsNew()
	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0].ID)
	assert.Equal(t, int64(20), got[1].ID)
	assert.Equal(t, int64(11), got[2].ID)
}

func TestPopulateWhatsNew_CapsAtLimit(t *testing.T) {
	a := newTestApp()
	articles := make([]entity.Article, WhatsNewLimit+10)
	for i := range articles {
		articles[i] = entity.Article{ID: int64(i), FeedID: 1}
	}

	a.PopulateWhatsNew(map[int64][]entity.Article{1: articles}, []int64{1})

	assert.Len(t, a.WhatsNew(), WhatsNewLimit)
}

func TestShowWhatsNew_StealsFocusOnlyOutsideReader(t *testing.T) {
	a := newTestApp()
	a.ShowWhatsNew(true)
	assert.Equal(t, FocusWhatsNew, a.Focus)

	a2 := newTestApp()
	a2.EnterReader(1, true, false, "")
	a2.ShowWhatsNew(true)
	assert.NotEqual(t, FocusWhatsNew, a2.Focus)
}

func TestDismissWhatsNew_ReturnsFocusToFeedsWhenFocused(t *testing.T) {
	a := newTestApp()
	a.ShowWhatsNew(true)
	require.Equal(t, FocusWhatsNew, a.Focus)

	a.DismissWhatsNew()

	assert.False(t, a.WhatsNewVisible())
	assert.Equal(t, FocusFeeds, a.Focus)
}

func TestCanStealFocusForWhatsNew_FalseWhileActive(t *testing.T) {
	a := newTestApp()
	a.NoteInput()
	assert.False(t, a.CanStealFocusForWhatsNew())
}
