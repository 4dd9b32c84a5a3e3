package uistate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedtui/internal/domain/entity"
)

func TestEnterExitStarredMode_RestoresPriorListAndSelection(t *testing.T) {
	a := newTestApp()
	a.SetArticles([]entity.Article{{ID: 1}, {ID: 2}})
	a.ArticleSelIdx = 1

	a.EnterStarredMode()
	a.SetArticles([]entity.Article{{ID: 2}}) // simulates loading the starred-only list

	ok := a.ExitStarredMode()

	require.True(t, ok)
	assert.Len(t, a.Articles(), 2)
	assert.Equal(t, 1, a.ArticleSelIdx)
}

func TestExitStarredMode_WithoutEnterReturnsFalse(t *testing.T) {
	a := newTestApp()
	ok := a.ExitStarredMode()
	assert.False(t, ok)
}

func TestInvalidateOptimisticSnapshot_DropsRestoreCapability(t *testing.T) {
	a := newTestApp()
	a.SetArticles([]entity.Article{{ID: 1}})
	a.EnterStarredMode()

	a.InvalidateOptimisticSnapshot()

	assert.False(t, a.ExitStarredMode())
}
