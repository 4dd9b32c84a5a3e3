// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects — feeds, articles, categories, cached content,
// reading history, and preferences — along with their invariants and domain-specific errors.
package entity

// Article represents a single entry pulled from a feed.
//
// GUID is the feed-supplied identifier when the source feed provides a non-empty one;
// otherwise it is a deterministic hash computed by the feed parser so that re-parsing
// identical bytes always yields the same article identity.
type Article struct {
	ID          int64
	FeedID      int64
	GUID        string
	Title       string
	URL         string // empty when the entry carried no link
	PublishedAt int64  // unix epoch seconds
	Summary     string
	Read        bool
	Starred     bool
	FetchedAt   int64 // unix epoch seconds, set on upsert
}

// HasURL reports whether the article has a usable link for content loading.
func (a *Article) HasURL() bool {
	return a.URL != ""
}

// FeedArticle pairs an article with the id of the feed it belongs to, used by
// queries that span multiple feeds (e.g. the post-refresh "recent articles" scan).
type FeedArticle struct {
	FeedID  int64
	Article Article
}
