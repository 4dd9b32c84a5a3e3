package uistate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterReader_NoURLFailsImmediatelyWithoutSpawning(t *testing.T) {
	a := newTestApp()

	gen, spawn := a.EnterReader(1, false, false, "fallback summary")

	assert.False(t, spawn)
	assert.Equal(t, ContentFailed, a.Content.Kind)
	assert.Equal(t, "fallback summary", a.Content.FallbackSummary)
	assert.Equal(t, gen, a.ContentGeneration())
}

func TestEnterReader_ReenteringSameLoadingArticleDoesNotRespawn(t *testing.T) {
	a := newTestApp()

	gen1, spawn1 := a.EnterReader(1, true, false, "")
	require.True(t, spawn1)

	gen2, spawn2 := a.EnterReader(1, true, false, "")
	assert.False(t, spawn2)
	assert.Equal(t, gen1, gen2)
}

func TestEnterReader_DifferentArticleBumpsGeneration(t *testing.T) {
	a := newTestApp()

	gen1, _ := a.EnterReader(1, true, false, "")
	gen2, spawn2 := a.EnterReader(2, true, false, "")

	assert.True(t, spawn2)
	assert.Greater(t, gen2, gen1)
}

func TestApplyContentLoaded_StaleGenerationDiscarded(t *testing.T) {
	a := newTestApp()
	gen, _ := a.EnterReader(1, true, false, "")

	a.ApplyContentLoaded(1, gen-1, "stale", nil, nil, "")

	assert.Equal(t, ContentLoading, a.Content.Kind)
}

func TestApplyContentLoaded_ErrorProducesFailedWithFallback(t *testing.T) {
	a := newTestApp()
	gen, _ := a.EnterReader(1, true, false, "fallback")

	a.ApplyContentLoaded(1, gen, "", nil, errors.New("network error"), "fallback")

	assert.Equal(t, ContentFailed, a.Content.Kind)
	assert.Equal(t, "fallback", a.Content.FallbackSummary)
}

func TestExitReader_ReturnsToBrowseAndClearsContent(t *testing.T) {
	a := newTestApp()
	a.EnterReader(1, true, false, "")

	a.ExitReader()

	assert.Equal(t, ViewBrowse, a.View)
	assert.Equal(t, ContentIdle, a.Content.Kind)
}

func TestExitReader_CallsStoredCancelFunc(t *testing.T) {
	a := newTestApp()
	a.EnterReader(1, true, false, "")

	called := false
	a.SetContentCancel(func() { called = true })

	a.ExitReader()

	assert.True(t, called)
}
