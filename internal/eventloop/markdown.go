package eventloop

import "strings"

// MarkdownRenderer converts a raw markdown article body into styled
// terminal lines. Actual markdown-to-styled-text rendering is an external
// collaborator (§1); this interface is the seam the content-load task
// depends on so the loop itself stays decoupled from any particular
// styling library.
type MarkdownRenderer interface {
	Render(markdown string) []string
}

// PlainMarkdownRenderer is the degenerate default: it splits the markdown
// into lines verbatim, with no styling applied. A full implementation
// lives outside this module.
type PlainMarkdownRenderer struct{}

func (PlainMarkdownRenderer) Render(markdown string) []string {
	if markdown == "" {
		return nil
	}
	return strings.Split(markdown, "\n")
}
