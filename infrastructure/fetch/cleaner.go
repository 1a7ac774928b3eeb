package fetch

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is the cleaned form of a fetched document: a display title and the
// visible text with whitespace collapsed.
type Page struct {
	Title string
	Text  string
}

// Clean parses HTML, drops non-content elements and returns the page title
// and the visible text. Scripts, styles and embedded media contribute
// nothing to the text; link text is kept inline.
func Clean(html []byte, pageURL string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, iframe, img, svg, video, audio").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = titleFromURL(pageURL)
	}

	return Page{
		Title: title,
		Text:  collapseWhitespace(doc.Find("body").Text()),
	}, nil
}

// titleFromURL derives a fallback title from the last path segment, or the
// host when the path is empty.
func titleFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return u.Host
	}
	return last
}

// collapseWhitespace reduces any run of whitespace, including newlines, to a
// single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
