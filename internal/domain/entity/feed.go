package entity

// CircuitBreakerThreshold is the number of consecutive fetch failures after
// which a feed is excluded from bulk refresh until it succeeds again.
const CircuitBreakerThreshold = 5

// Feed represents a subscribed RSS/Atom source.
type Feed struct {
	ID                 int64
	Title              string
	URL                string // unique
	SiteURL            string
	LastFetchedAt       int64 // unix epoch seconds, zero if never fetched
	LastError           string
	UnreadCount         int   // derived, populated by ListFeedsWithUnreadCounts
	ConsecutiveFailures int
	CategoryID          *int64
}

// IsCircuitOpen reports whether the feed has failed enough consecutive times
// to be skipped by bulk refresh.
func (f *Feed) IsCircuitOpen() bool {
	return f.ConsecutiveFailures >= CircuitBreakerThreshold
}

// DiscoveredFeed is the result of feed discovery against an arbitrary URL: it is
// not persisted, only handed back to the caller so it can decide whether to subscribe.
type DiscoveredFeed struct {
	Title       string
	FeedURL     string
	SiteURL     string
	Description string
}
