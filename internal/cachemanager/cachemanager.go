// Package cachemanager implements C6: a façade over the storage engine's
// content-cache operations that adds load-or-fetch semantics for the
// reader and best-effort serial prefetching. Generation tagging for
// stale-result detection is owned by uistate.App (§4.7's single state
// owner), not here; a content-load task is tagged with the generation
// App.EnterReader already returned, not one of the Manager's own.
package cachemanager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feedtui/internal/httpfetch"
	"feedtui/internal/storage"
)

// Manager loads article content on demand, caching the rendered body, and
// prefetches content for a feed ahead of the reader needing it.
type Manager struct {
	store   *storage.Store
	fetcher *httpfetch.Fetcher
	logger  *slog.Logger
}

// New builds a Manager. logger may be nil, in which case a discard logger
// is used.
func New(store *storage.Store, fetcher *httpfetch.Fetcher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{store: store, fetcher: fetcher, logger: logger}
}

// LoadResult is the outcome of Load.
type LoadResult struct {
	Markdown string
	// CacheWriteFailed is set when a fetch succeeded but storing it failed
	// (disk full, locked database); the content is still valid and returned,
	// but the caller should surface a non-fatal ContentCacheFailed notice.
	CacheWriteFailed bool
}

// Load returns the rendered body for an article: a cache hit serves
// directly, a miss fetches via the readability endpoint, stores the result,
// and serves it. articleURL must be non-empty; callers with an article
// lacking a URL should not call Load at all (§4.8's reader-entry protocol
// short-circuits to Failed before ever reaching here).
func (m *Manager) Load(ctx context.Context, articleID int64, articleURL string) (LoadResult, error) {
	cached, err := m.store.GetCache(ctx, articleID)
	if err == nil {
		return LoadResult{Markdown: cached.Markdown}, nil
	}

	markdown, err := m.fetcher.FetchReadability(ctx, articleURL)
	if err != nil {
		return LoadResult{}, fmt.Errorf("cachemanager: load %d: %w", articleID, err)
	}

	writeFailed := false
	if err := m.store.PutCache(ctx, articleID, markdown, 0); err != nil {
		m.logger.Warn("cachemanager: cache write failed, serving uncached content",
			slog.Int64("article_id", articleID), slog.Any("error", err))
		writeFailed = true
	}

	return LoadResult{Markdown: markdown, CacheWriteFailed: writeFailed}, nil
}

// Prefetch fetches and caches up to limit uncached, unread articles for
// feedID (or across all feeds when feedID is nil), serially: prefetch is
// best-effort background work and must never contend with an on-demand
// Load for connection/circuit-breaker budget. Returns the number
// successfully cached; per-article fetch failures are logged and skipped,
// not returned, since a single unreachable article must not abort the rest
// of the batch.
func (m *Manager) Prefetch(ctx context.Context, feedID *int64, limit int) (int, error) {
	candidates, err := m.store.PrefetchCandidates(ctx, feedID, limit)
	if err != nil {
		return 0, fmt.Errorf("cachemanager: prefetch candidates: %w", err)
	}

	fetched := 0
	for _, article := range candidates {
		if ctx.Err() != nil {
			break
		}
		if article.URL == "" {
			continue
		}

		markdown, err := m.fetcher.FetchReadability(ctx, article.URL)
		if err != nil {
			m.logger.Debug("cachemanager: prefetch fetch failed",
				slog.Int64("article_id", article.ID), slog.Any("error", err))
			continue
		}
		if err := m.store.PutCache(ctx, article.ID, markdown, 0); err != nil {
			m.logger.Warn("cachemanager: prefetch cache write failed",
				slog.Int64("article_id", article.ID), slog.Any("error", err))
			continue
		}
		fetched++
	}

	return fetched, nil
}

// EvictExpired removes expired cache rows. Callers typically run this
// periodically from a maintenance tick, not the 250ms UI tick.
func (m *Manager) EvictExpired(ctx context.Context) (int64, error) {
	n, err := m.store.EvictExpiredCache(ctx)
	if err != nil {
		return 0, fmt.Errorf("cachemanager: evict expired: %w", err)
	}
	return n, nil
}

// defaultPrefetchTimeout bounds a single prefetch pass so it cannot run
// forever against a slow or stalled readability endpoint.
const defaultPrefetchTimeout = 2 * time.Minute

// PrefetchWithTimeout wraps Prefetch with defaultPrefetchTimeout, for
// callers (the event loop's background prefetch task) that do not already
// have a bounded context.
func (m *Manager) PrefetchWithTimeout(ctx context.Context, feedID *int64, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultPrefetchTimeout)
	defer cancel()
	return m.Prefetch(ctx, feedID, limit)
}
