// Package feedparser implements C2: normalizing raw RSS/Atom bytes into the
// canonical entity.Article shape, with partial recovery on a per-entry basis.
//
// It wraps github.com/mmcdole/gofeed, which already detects RSS vs. Atom
// automatically; this package adds GUID derivation, control-character
// stripping, and per-entry link validation through internal/urlvalidate.
package feedparser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"feedtui/internal/domain/entity"
	"feedtui/internal/urlvalidate"
)

const untitledSentinel = "Untitled"

// Result is the output of parsing one feed document.
type Result struct {
	// Title is the feed's own channel/feed title, control-stripped. Discovery
	// uses this in preference to anything scraped from an HTML wrapper page.
	Title    string
	Articles []entity.Article
	// Skipped is the number of entries dropped because their link failed
	// urlvalidate. Always reconciled as total entries minus kept articles,
	// so double-counting in the per-entry loop can never leak through.
	Skipped int
}

// Parse normalizes the bytes read from r into a Result. It fails only when
// gofeed cannot recognize the document as RSS or Atom at all; individual
// malformed entries are dropped, not fatal.
func Parse(ctx context.Context, r io.Reader) (*Result, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseWithContext(r, ctx)
	if err != nil {
		return nil, fmt.Errorf("feedparser: Parse: %w", err)
	}

	articles := make([]entity.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a, ok := normalize(item)
		if !ok {
			continue
		}
		articles = append(articles, a)
	}

	title := stripControlChars(feed.Title)
	if title == "" {
		title = untitledSentinel
	}

	return &Result{
		Title:    title,
		Articles: articles,
		Skipped:  len(feed.Items) - len(articles),
	}, nil
}

func normalize(item *gofeed.Item) (entity.Article, bool) {
	link := strings.TrimSpace(item.Link)
	if link != "" {
		if _, err := urlvalidate.Validate(link); err != nil {
			return entity.Article{}, false
		}
	}

	title := stripControlChars(item.Title)
	if title == "" {
		title = untitledSentinel
	}

	var publishedAt int64
	switch {
	case item.PublishedParsed != nil:
		publishedAt = item.PublishedParsed.Unix()
	case item.UpdatedParsed != nil:
		publishedAt = item.UpdatedParsed.Unix()
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}
	summary = stripControlChars(summary)

	guid := strings.TrimSpace(item.GUID)
	if guid == "" {
		guid = deriveGUID(link, title, publishedAt)
	}

	return entity.Article{
		GUID:        guid,
		Title:       title,
		URL:         link,
		PublishedAt: publishedAt,
		Summary:     summary,
	}, true
}

// deriveGUID computes a deterministic identity for an entry that supplied no
// id of its own: SHA-256 of "url|title|published_epoch", hex-encoded. Any
// two parses of identical bytes must land on the same GUID.
func deriveGUID(url, title string, publishedAt int64) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(title))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatInt(publishedAt, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// stripControlChars removes ASCII control characters (including escape
// sequences) from text taken directly out of XML, defending the terminal
// renderer against escape injection.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\t' {
			continue
		}
		if r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
