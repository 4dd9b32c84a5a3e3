// Package opml implements C9: decoding an OPML subscription list into
// entity.Feed records and encoding the stored feeds back into an OPML 2.0
// document, per §4.9 and §6.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"feedtui/internal/domain/entity"
	"feedtui/internal/urlvalidate"
)

// MaxOutlineDepth bounds outline nesting during import; exceeding it is an
// error rather than a silent truncation.
const MaxOutlineDepth = 50

// outline mirrors a single <outline> element. encoding/xml has no
// DTD/external-entity expansion support at all, so XXE is rejected by
// construction rather than by an explicit check.
type outline struct {
	XMLName  xml.Name  `xml:"outline"`
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	HTMLURL  string    `xml:"htmlUrl,attr"`
	Outlines []outline `xml:"outline"`
}

type opmlBody struct {
	Outlines []outline `xml:"outline"`
}

type opmlDoc struct {
	XMLName xml.Name `xml:"opml"`
	Body    opmlBody `xml:"body"`
}

// Subscription is one parsed <outline xmlUrl="..."> entry.
type Subscription struct {
	Title   string
	FeedURL string
	SiteURL string // empty when htmlUrl was absent or failed C1 validation
}

// errTooDeep is returned by Import when outline nesting exceeds
// MaxOutlineDepth; it is not exported since the caller cannot do anything
// with the identity beyond reporting failure.
var errTooDeep = fmt.Errorf("opml: outline nesting exceeds %d", MaxOutlineDepth)

// Import decodes an OPML document from r, producing one Subscription per
// outline carrying a non-empty xmlUrl. Title falls back from the title
// attribute to text to the feed URL itself. htmlUrl is validated through
// urlvalidate.Validate and dropped (not the whole subscription) if it
// fails, since a bad site URL should not block importing a good feed URL.
func Import(r io.Reader) ([]Subscription, error) {
	var doc opmlDoc
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("opml: decode: %w", err)
	}

	var subs []Subscription
	if err := walkOutlines(doc.Body.Outlines, 1, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func walkOutlines(outlines []outline, depth int, out *[]Subscription) error {
	if depth > MaxOutlineDepth {
		return errTooDeep
	}
	for _, o := range outlines {
		if xmlURL := strings.TrimSpace(o.XMLURL); xmlURL != "" {
			*out = append(*out, Subscription{
				Title:   subscriptionTitle(o, xmlURL),
				FeedURL: xmlURL,
				SiteURL: validatedSiteURL(o.HTMLURL),
			})
		}
		if len(o.Outlines) > 0 {
			if err := walkOutlines(o.Outlines, depth+1, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func subscriptionTitle(o outline, feedURL string) string {
	if t := strings.TrimSpace(o.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(o.Text); t != "" {
		return t
	}
	return feedURL
}

func validatedSiteURL(htmlURL string) string {
	htmlURL = strings.TrimSpace(htmlURL)
	if htmlURL == "" {
		return ""
	}
	if _, err := urlvalidate.Validate(htmlURL); err != nil {
		return ""
	}
	return htmlURL
}

// SubscriptionsToFeeds converts imported subscriptions into entity.Feed
// records suitable for storage.SyncFeeds.
func SubscriptionsToFeeds(subs []Subscription) []entity.Feed {
	feeds := make([]entity.Feed, len(subs))
	for i, s := range subs {
		feeds[i] = entity.Feed{Title: s.Title, URL: s.FeedURL, SiteURL: s.SiteURL}
	}
	return feeds
}

// exportDoc and friends define the OPML 2.0 shape Export writes. xml.Marshal
// fields are ordered to match a conventional OPML document: head before
// body, attributes in xmlUrl/htmlUrl/text/title order is not mandated by
// the format, but this reader writes title first for human readability when
// opened in an editor.
type exportDoc struct {
	XMLName xml.Name    `xml:"opml"`
	Version string      `xml:"version,attr"`
	Head    exportHead  `xml:"head"`
	Body    exportBody  `xml:"body"`
}

type exportHead struct {
	Title string `xml:"title"`
}

type exportBody struct {
	Outlines []exportOutline `xml:"outline"`
}

type exportOutline struct {
	Title   string `xml:"title,attr"`
	Text    string `xml:"text,attr"`
	XMLURL  string `xml:"xmlUrl,attr"`
	HTMLURL string `xml:"htmlUrl,attr,omitempty"`
}

// Export writes feeds as an OPML 2.0 document to w.
func Export(w io.Writer, feeds []entity.Feed) error {
	doc := exportDoc{
		Version: "2.0",
		Head:    exportHead{Title: "Subscriptions"},
	}
	doc.Body.Outlines = make([]exportOutline, len(feeds))
	for i, f := range feeds {
		doc.Body.Outlines[i] = exportOutline{
			Text:    f.Title,
			Title:   f.Title,
			XMLURL:  f.URL,
			HTMLURL: f.SiteURL,
		}
	}

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("opml: write header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("opml: encode: %w", err)
	}
	_, err := w.Write([]byte("\n"))
	return err
}
