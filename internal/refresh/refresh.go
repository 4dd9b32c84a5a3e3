// Package refresh implements C5: fetching a batch of feeds in parallel,
// bounded concurrency, and committing each one's articles through the
// atomic refresh contract in internal/storage.
package refresh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"feedtui/internal/domain/entity"
	"feedtui/internal/feedparser"
	"feedtui/internal/httpfetch"
	"feedtui/internal/storage"
)

// maxConcurrency bounds how many feeds are fetched at once, per §4.5.
const maxConcurrency = 10

// Kind categorizes a per-feed refresh failure for the UI's offline heuristic.
type Kind string

const (
	KindTimeout Kind = "timeout"
	KindNetwork Kind = "network"
	KindParse   Kind = "parse"
)

// Result is one feed's outcome from a refresh pass.
type Result struct {
	FeedID   int64
	NewCount int
	Err      error
	Kind     Kind // zero value when Err is nil
}

// ProgressFunc is invoked once per completed feed, after that feed's result
// is known, carrying the running (done, total) count across the whole pass.
type ProgressFunc func(done, total int)

// Coordinator fetches and commits feed refreshes.
type Coordinator struct {
	store   *storage.Store
	fetcher *httpfetch.Fetcher
	logger  *slog.Logger
}

// New builds a Coordinator. logger may be nil, in which case a discard
// logger is used.
func New(store *storage.Store, fetcher *httpfetch.Fetcher, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{store: store, fetcher: fetcher, logger: logger}
}

// RefreshAll refreshes every feed eligible per the circuit-breaker
// threshold, i.e. storage.ActiveFeeds.
func (c *Coordinator) RefreshAll(ctx context.Context, onProgress ProgressFunc) ([]Result, error) {
	feeds, err := c.store.ActiveFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh: list active feeds: %w", err)
	}
	return c.Refresh(ctx, feeds, onProgress)
}

// Refresh fetches and commits feeds in parallel, bounded to maxConcurrency.
// Cancelling ctx aborts in-flight fetches promptly; results already
// committed to storage before cancellation are not rolled back. A non-nil
// error is returned only when ctx itself was cancelled while the pass was
// still running; individual feed failures are reported in each Result
// instead of failing the whole pass.
func (c *Coordinator) Refresh(ctx context.Context, feeds []entity.Feed, onProgress ProgressFunc) ([]Result, error) {
	total := len(feeds)
	if total == 0 {
		return nil, nil
	}

	results := make([]Result, total)
	sem := make(chan struct{}, maxConcurrency)
	eg, egCtx := errgroup.WithContext(ctx)

	var (
		progressMu sync.Mutex
		done       int
		failMu     sync.Mutex
		failures   []storage.FeedErrorResult
	)

	for i, feed := range feeds {
		i, feed := i, feed
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			defer func() { <-sem }()

			res := c.refreshOne(egCtx, feed)
			results[i] = res

			if res.Err != nil {
				failMu.Lock()
				failures = append(failures, storage.FeedErrorResult{FeedID: feed.ID, Error: res.Err.Error()})
				failMu.Unlock()
			}

			progressMu.Lock()
			done++
			d := done
			progressMu.Unlock()
			if onProgress != nil {
				onProgress(d, total)
			}

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, fmt.Errorf("refresh: aborted: %w", err)
	}

	if len(failures) > 0 {
		if err := c.store.BatchSetFeedErrors(ctx, failures); err != nil {
			c.logger.Error("refresh: record feed failures", slog.Any("error", err))
		}
	}

	return results, nil
}

// refreshOne fetches, parses, and commits a single feed. It never returns an
// error directly; failures are captured on the returned Result so one feed's
// trouble never aborts the errgroup for its siblings.
func (c *Coordinator) refreshOne(ctx context.Context, feed entity.Feed) Result {
	body, err := c.fetcher.FetchFeed(ctx, feed.URL)
	if err != nil {
		return Result{FeedID: feed.ID, Err: err, Kind: classifyFetchErr(err)}
	}

	parsed, err := feedparser.Parse(ctx, bytes.NewReader(body))
	if err != nil {
		return Result{FeedID: feed.ID, Err: fmt.Errorf("parse: %w", err), Kind: KindParse}
	}

	newCount, err := c.store.RefreshFeed(ctx, feed.ID, parsed.Articles)
	if err != nil {
		// Storage failures are not one of the three fetch-side kinds; they are
		// rare (disk full, locked database) and surfaced as network-class so
		// the offline heuristic in §4.8 still has somewhere sane to put them.
		return Result{FeedID: feed.ID, Err: fmt.Errorf("commit: %w", err), Kind: KindNetwork}
	}

	return Result{FeedID: feed.ID, NewCount: newCount}
}

func classifyFetchErr(err error) Kind {
	var fe *httpfetch.Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case httpfetch.KindTimeout:
			return KindTimeout
		case httpfetch.KindParse, httpfetch.KindNotAFeed:
			return KindParse
		default:
			return KindNetwork
		}
	}
	return KindNetwork
}
