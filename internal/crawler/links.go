package crawler

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"covidfeed/pkg/utils"
)

// Link is an anchor found on a page.
type Link struct {
	Text string
	Href string
	URL  string
}

// ParseLinks returns every <a href> in document order with its text and the
// href resolved against base.
func ParseLinks(page, base string) ([]Link, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	helper := utils.NewHTTPHelper()
	strs := utils.NewStringHelper()

	var links []Link

	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.Data != "a" {
			continue
		}

		href, ok := Attr(n, "href")
		if !ok || href == "" {
			continue
		}

		abs, err := helper.ResolveURL(base, href)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", href, err)
		}

		links = append(links, Link{
			Text: strs.NormalizeWhitespace(Text(n)),
			Href: href,
			URL:  abs,
		})
	}

	return links, nil
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val), true
		}
	}

	return "", false
}

// Text concatenates the text nodes below n.
func Text(n *html.Node) string {
	var b strings.Builder

	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			b.WriteString(d.Data)
		}
	}

	return b.String()
}
