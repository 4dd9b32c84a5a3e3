// Package appconfig implements C11's file-backed configuration: an optional
// config.toml parsed with BurntSushi/toml (the teacher's stack carries no
// TOML dependency; this repository adds one, recorded in DESIGN.md), falling
// back to built-in defaults when the file is absent. Session-scoped values
// are not read from here; those live in the database's preferences table
// (internal/storage) and take precedence, since they are written back by the
// running app and the file is not.
package appconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"feedtui/internal/keybinding"
)

const (
	DefaultTheme              = "dark"
	DefaultTTLHours           = 72
	DefaultRefreshConcurrency = 10
)

// Config is the parsed shape of config.toml.
type Config struct {
	Theme              string            `toml:"theme"`
	TTLHours           int               `toml:"ttl_hours"`
	RefreshConcurrency int               `toml:"refresh_concurrency"`
	Keybindings        map[string]string `toml:"keybindings"`
}

// Default returns the built-in configuration used when no config.toml is
// present.
func Default() Config {
	return Config{
		Theme:              DefaultTheme,
		TTLHours:           DefaultTTLHours,
		RefreshConcurrency: DefaultRefreshConcurrency,
	}
}

// Load reads and parses path. A missing file is not an error: Default() is
// returned instead. Any other I/O or parse failure is returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("appconfig: read %s: %w", path, err)
	}

	// Decode into a copy carrying the defaults so unset fields in the file
	// keep their default rather than zeroing out.
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("appconfig: parse %s: %w", path, err)
	}
	if cfg.Theme == "" {
		cfg.Theme = DefaultTheme
	}
	if cfg.TTLHours <= 0 {
		cfg.TTLHours = DefaultTTLHours
	}
	if cfg.RefreshConcurrency <= 0 {
		cfg.RefreshConcurrency = DefaultRefreshConcurrency
	}
	return cfg, nil
}

// keybindingContexts maps a config key's "context.key" dotted form to a
// keybinding.Context, the inverse of how such entries are written.
var keybindingContexts = map[string]keybinding.Context{
	"feeds":      keybinding.ContextFeeds,
	"articles":   keybinding.ContextArticles,
	"whats_new":  keybinding.ContextWhatsNew,
	"categories": keybinding.ContextCategories,
	"reader":     keybinding.ContextReader,
	"search":     keybinding.ContextSearch,
	"help":       keybinding.ContextHelp,
	"stats":      keybinding.ContextStats,
}

// ApplyKeybindings overrides reg entry-by-entry from cfg's keybinding table,
// whose keys are "<context>.<key>" (e.g. "articles.j") and whose values are
// action names. Unrecognized contexts are skipped rather than treated as
// fatal, since a config typo should not prevent the app from starting.
func ApplyKeybindings(reg *keybinding.Registry, overrides map[string]string) {
	for dotted, action := range overrides {
		ctx, key, ok := splitContextKey(dotted)
		if !ok {
			continue
		}
		reg.Override(ctx, key, keybinding.Action(action))
	}
}

func splitContextKey(dotted string) (keybinding.Context, string, bool) {
	for i := 0; i < len(dotted); i++ {
		if dotted[i] != '.' {
			continue
		}
		ctxName, key := dotted[:i], dotted[i+1:]
		ctx, ok := keybindingContexts[ctxName]
		if !ok || key == "" {
			return "", "", false
		}
		return ctx, key, true
	}
	return "", "", false
}
