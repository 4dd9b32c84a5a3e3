// Command feedtui is the terminal RSS/Atom reader's entry point: C10's
// bootstrap sequence described in §4.10.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"feedtui/internal/appconfig"
	"feedtui/internal/cachemanager"
	"feedtui/internal/eventloop"
	"feedtui/internal/httpfetch"
	"feedtui/internal/keybinding"
	"feedtui/internal/observability/logging"
	"feedtui/internal/opml"
	"feedtui/internal/refresh"
	"feedtui/internal/storage"
	"feedtui/internal/terminal"
	"feedtui/internal/uistate"
)

const appDirName = "feedtui"

func main() {
	os.Exit(run())
}

// run carries out §4.10's startup order and returns the process exit code,
// keeping main itself free of any defer/os.Exit interaction (os.Exit skips
// deferred calls, so it must never be called anywhere a defer still
// matters).
func run() int {
	resetDB := flag.Bool("reset-db", false, "delete the on-disk database before startup")
	importPath := flag.String("import", "", "copy an OPML file into the config directory as feeds.opml")
	flag.Parse()

	configDir, err := resolveConfigDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "feedtui:", err)
		return 1
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "feedtui: creating config directory:", err)
		return 1
	}

	logger, logCloser, err := logging.New(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "feedtui: opening log file:", err)
		return 1
	}
	defer logCloser.Close()

	// Every log line this run produces carries the same session id, so a
	// user attaching an app.log excerpt to a bug report can be asked "which
	// session" instead of having to reconstruct process boundaries from
	// timestamps alone.
	logger = logging.WithFields(logger, map[string]interface{}{"session_id": uuid.New().String()})

	dbPath := filepath.Join(configDir, "feedtui.db")
	if *resetDB {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			logger.Error("reset-db: removing database", slog.Any("error", err))
			return 1
		}
	}

	opmlPath := filepath.Join(configDir, "feeds.opml")
	if *importPath != "" {
		if err := copyFile(*importPath, opmlPath); err != nil {
			logger.Error("import: copying OPML file", slog.Any("error", err))
			return 1
		}
	}

	if _, err := os.Stat(opmlPath); err != nil {
		fmt.Fprintf(os.Stderr, "feedtui: no feeds.opml found in %s\n", configDir)
		fmt.Fprintln(os.Stderr, "Run with --import <path-to-opml> to add one, then start feedtui again.")
		return 1
	}

	cfg, err := appconfig.Load(filepath.Join(configDir, "config.toml"))
	if err != nil {
		logger.Error("loading config.toml", slog.Any("error", err))
		return 1
	}

	store, err := storage.Open(dbPath, logger)
	if err != nil {
		logger.Error("opening database", slog.Any("error", err))
		return 1
	}
	defer store.Close()

	if err := syncFeedsFromOPML(opmlPath, store); err != nil {
		logger.Error("syncing feeds from feeds.opml", slog.Any("error", err))
		return 1
	}

	reg := keybinding.New()
	appconfig.ApplyKeybindings(reg, cfg.Keybindings)
	app := uistate.New(reg, cfg.Theme)

	fetcher := httpfetch.New()
	coordinator := refresh.New(store, fetcher, logger)
	cache := cachemanager.New(store, fetcher, logger)

	term, err := terminal.Acquire()
	if err != nil {
		logger.Error("acquiring terminal", slog.Any("error", err))
		return 1
	}
	defer terminal.InstallPanicHook(term)()

	keys := make(chan string)
	go readKeys(keys)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	loop := eventloop.New(app, store, coordinator, cache, fetcher, nil, nil, keys, sigCh, configDir, logger)
	if err := loop.Bootstrap(context.Background()); err != nil {
		logger.Error("loading initial snapshot", slog.Any("error", err))
		term.Release()
		return 1
	}

	if err := loop.Run(context.Background()); err != nil {
		logger.Error("event loop exited with error", slog.Any("error", err))
	}

	term.Release()
	fmt.Println("feedtui: goodbye")
	return 0
}

// resolveConfigDir returns $HOME/.config/feedtui, per §4.10/§6. A missing
// HOME is a fatal startup error rather than falling back to a relative
// path, since that fallback would silently scatter state across whatever
// directory the process happened to be launched from.
func resolveConfigDir() (string, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return "", fmt.Errorf("HOME is not set")
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// copyFile copies src to dst, overwriting dst if it already exists, used by
// --import to install a feeds.opml into the config directory.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copyFile: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copyFile: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copyFile: %w", err)
	}
	return out.Close()
}

// syncFeedsFromOPML parses the config directory's feeds.opml and upserts
// its subscriptions into storage, run once at every startup so edits made
// to feeds.opml between runs (or a fresh --import) take effect.
func syncFeedsFromOPML(opmlPath string, store *storage.Store) error {
	f, err := os.Open(opmlPath)
	if err != nil {
		return fmt.Errorf("syncFeedsFromOPML: open: %w", err)
	}
	defer f.Close()

	subs, err := opml.Import(f)
	if err != nil {
		return fmt.Errorf("syncFeedsFromOPML: parse: %w", err)
	}

	feeds := opml.SubscriptionsToFeeds(subs)
	if err := store.SyncFeeds(context.Background(), feeds); err != nil {
		return fmt.Errorf("syncFeedsFromOPML: sync: %w", err)
	}
	return nil
}

// readKeys decodes raw terminal input into the event loop's key channel
// until stdin reaches EOF or errors, at which point it closes keys so Run's
// select sees the channel close and returns. Reads come from os.Stdin
// directly; Terminal only owns mode/screen state, not the read side.
func readKeys(keys chan<- string) {
	defer close(keys)

	var buf []byte
	chunk := make([]byte, 64)
	for {
		n, err := os.Stdin.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for len(buf) > 0 {
				key, consumed := terminal.Decode(buf)
				if consumed == 0 {
					break
				}
				buf = buf[consumed:]
				if key != "" {
					keys <- key
				}
			}
		}
		if err != nil {
			return
		}
	}
}
