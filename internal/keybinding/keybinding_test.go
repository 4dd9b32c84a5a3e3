package keybinding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve_DefaultBinding(t *testing.T) {
	reg := New()
	require.Equal(t, ActionMoveDown, reg.Resolve(ContextArticles, "j"))
}

func TestResolve_AbsentEntryIsNoOp(t *testing.T) {
	reg := New()
	require.Equal(t, ActionNone, reg.Resolve(ContextArticles, "nonexistent-key"))
}

func TestOverride_ReplacesDefaultBinding(t *testing.T) {
	reg := New()
	reg.Override(ContextArticles, "j", ActionToggleStar)
	require.Equal(t, ActionToggleStar, reg.Resolve(ContextArticles, "j"))
}

func TestOverride_AddsNewBindingWithoutAffectingOtherContexts(t *testing.T) {
	reg := New()
	reg.Override(ContextReader, "x", ActionExport)
	require.Equal(t, ActionExport, reg.Resolve(ContextReader, "x"))
	require.Equal(t, ActionNone, reg.Resolve(ContextFeeds, "x"))
}
