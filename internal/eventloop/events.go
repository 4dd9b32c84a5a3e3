// Package eventloop implements C8: the single-threaded cooperative loop
// that multiplexes terminal input, background task completions, and a
// periodic tick, updating the App (C7) and spawning the background tasks
// described in §4.8.
package eventloop

import (
	"feedtui/internal/domain/entity"
	"feedtui/internal/refresh"
)

// Event is the sum type carried on the bounded event channel. Background
// tasks never touch App directly; they construct one of these and send it.
type Event interface{ isEvent() }

// RefreshProgress reports one feed's completion within an in-flight
// refresh pass.
type RefreshProgress struct {
	Done, Total int
}

// RefreshComplete reports the outcome of a full refresh pass.
type RefreshComplete struct {
	Results []refresh.Result
}

// ContentLoaded reports the outcome of a reader content-load task.
type ContentLoaded struct {
	ArticleID       int64
	Generation      int64
	Markdown        string
	RenderedLines   []string
	Err             error
	FallbackSummary string
}

// ContentCacheFailed is a non-fatal notification that a content fetch
// succeeded but storing it in the cache failed.
type ContentCacheFailed struct {
	ArticleID int64
}

// StarToggled reports a successful optimistic star-toggle write.
type StarToggled struct {
	ArticleID int64
	Starred   bool
}

// StarToggleFailed reports a failed star-toggle write; the loop rolls back
// the optimistic flip applied before the write was issued.
type StarToggleFailed struct {
	ArticleID      int64
	OriginalStatus bool
	Err            error
}

// SearchCompleted reports the results of a debounced search task. An empty
// Query carries the current feed's full article list, used to restore the
// view after the user clears the search box.
type SearchCompleted struct {
	Query      string
	Generation int64
	Results    []entity.Article
}

// BulkMarkReadComplete reports a successful mark-all/mark-feed-read task.
type BulkMarkReadComplete struct{}

// BulkMarkReadFailed reports a failed mark-all/mark-feed-read task.
type BulkMarkReadFailed struct {
	Err error
}

// ExportComplete reports a successful OPML export.
type ExportComplete struct {
	Path string
}

// ExportFailed reports a failed OPML export.
type ExportFailed struct {
	Err error
}

// TaskPanicked reports that a background task's body panicked; the
// panic-catching adapter converts it to this event instead of letting it
// escape the goroutine.
type TaskPanicked struct {
	Task string
	Err  error
}

// FeedRateLimited is a status-only notification that a feed's host appears
// to be rate-limiting fetches (HTTP 429).
type FeedRateLimited struct {
	FeedID int64
}

func (RefreshProgress) isEvent()     {}
func (RefreshComplete) isEvent()     {}
func (ContentLoaded) isEvent()       {}
func (ContentCacheFailed) isEvent()  {}
func (StarToggled) isEvent()         {}
func (StarToggleFailed) isEvent()    {}
func (SearchCompleted) isEvent()     {}
func (BulkMarkReadComplete) isEvent() {}
func (BulkMarkReadFailed) isEvent()  {}
func (ExportComplete) isEvent()      {}
func (ExportFailed) isEvent()        {}
func (TaskPanicked) isEvent()        {}
func (FeedRateLimited) isEvent()     {}
