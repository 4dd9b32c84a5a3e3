package entity

// DefaultContentTTLHours is the lifetime applied to a cached article body
// when the caller does not specify one.
const DefaultContentTTLHours = 72

// CachedContent is a rendered (markdown) article body keyed by article id.
type CachedContent struct {
	ArticleID int64
	Markdown  string
	FetchedAt int64 // unix epoch seconds
	ExpiresAt int64 // unix epoch seconds; invariant ExpiresAt > FetchedAt
	SizeBytes int64
}

// CacheStats summarizes the content cache's current footprint.
type CacheStats struct {
	Count      int64
	TotalBytes int64
	OldestFetch int64
	NewestFetch int64
}
