package httpfetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"feedtui/internal/domain/entity"
	"feedtui/internal/feedparser"
	"feedtui/internal/urlvalidate"
)

// feedLinkTypes are the `type` attribute values discovery treats as
// "alternate feed" links per §4.4.
var feedLinkTypes = map[string]bool{
	"application/rss+xml":  true,
	"application/atom+xml": true,
	"application/xml":      true,
	"text/xml":             true,
}

// Discover fetches rawURL, validated first through urlvalidate, and either
// parses it directly as a feed (XML content-type) or scans an HTML body for
// an alternate feed link, fetching and parsing that instead. An ambiguous
// content type tries feed parsing first and falls back to the HTML scan.
func (f *Fetcher) Discover(ctx context.Context, rawURL string) (entity.DiscoveredFeed, error) {
	if _, err := urlvalidate.Validate(rawURL); err != nil {
		return entity.DiscoveredFeed{}, &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}

	body, contentType, err := f.fetchDiscovery(ctx, rawURL)
	if err != nil {
		return entity.DiscoveredFeed{}, err
	}

	switch {
	case looksLikeFeedContentType(contentType):
		return f.discoverFromFeedBytes(ctx, rawURL, body)
	case looksLikeHTMLContentType(contentType):
		return f.discoverFromHTML(ctx, rawURL, body)
	default:
		if d, err := f.discoverFromFeedBytes(ctx, rawURL, body); err == nil {
			return d, nil
		}
		return f.discoverFromHTML(ctx, rawURL, body)
	}
}

// discoveryResult pairs a body with the Content-Type header that accompanied
// it, since Discover's branching needs both and the circuit breaker's
// Execute only returns a single interface{} value.
type discoveryResult struct {
	body        []byte
	contentType string
}

func (f *Fetcher) fetchDiscovery(ctx context.Context, rawURL string) ([]byte, string, error) {
	result, err := f.feedBreaker.Execute(func() (interface{}, error) {
		reqCtx, cancel := context.WithTimeout(ctx, DiscoveryTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", "feedtui/1.0 (+terminal RSS reader)")

		body, contentType, err := f.do(req, reqCtx, DiscoveryMaxBytes)
		if err != nil {
			return nil, err
		}
		return discoveryResult{body: body, contentType: contentType}, nil
	})
	if err != nil {
		return nil, "", classifyError(rawURL, err)
	}
	dr := result.(discoveryResult)
	return dr.body, dr.contentType, nil
}

func (f *Fetcher) discoverFromFeedBytes(ctx context.Context, feedURL string, body []byte) (entity.DiscoveredFeed, error) {
	result, err := feedparser.Parse(ctx, bytes.NewReader(body))
	if err != nil {
		return entity.DiscoveredFeed{}, &Error{Kind: KindParse, URL: feedURL, Err: err}
	}
	return entity.DiscoveredFeed{
		Title:   result.Title,
		FeedURL: feedURL,
	}, nil
}

func (f *Fetcher) discoverFromHTML(ctx context.Context, baseURL string, body []byte) (entity.DiscoveredFeed, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return entity.DiscoveredFeed{}, &Error{Kind: KindParse, URL: baseURL, Err: err}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return entity.DiscoveredFeed{}, &Error{Kind: KindInvalidURL, URL: baseURL, Err: err}
	}

	var feedHref string
	doc.Find(`link[rel="alternate"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		typ := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "")))
		if !feedLinkTypes[typ] {
			return true
		}
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		feedHref = href
		return false
	})

	if feedHref == "" {
		return entity.DiscoveredFeed{}, &Error{Kind: KindNotAFeed, URL: baseURL}
	}

	resolved, err := resolveHref(base, feedHref)
	if err != nil {
		return entity.DiscoveredFeed{}, &Error{Kind: KindInvalidURL, URL: feedHref, Err: err}
	}

	if _, err := urlvalidate.Validate(resolved); err != nil {
		return entity.DiscoveredFeed{}, &Error{Kind: KindInvalidURL, URL: resolved, Err: err}
	}

	feedBody, err := f.FetchFeed(ctx, resolved)
	if err != nil {
		return entity.DiscoveredFeed{}, err
	}

	result, err := feedparser.Parse(ctx, bytes.NewReader(feedBody))
	if err != nil {
		return entity.DiscoveredFeed{}, &Error{Kind: KindParse, URL: resolved, Err: err}
	}

	title := result.Title
	if title == "" || title == untitledFallback {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return entity.DiscoveredFeed{
		Title:   title,
		FeedURL: resolved,
		SiteURL: baseURL,
	}, nil
}

const untitledFallback = "Untitled"

// resolveHref resolves href against base using net/url's ResolveReference,
// which normalizes absolute, protocol-relative, and relative forms alike and
// defeats path-traversal or credential-injection attempts embedded in href.
func resolveHref(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
