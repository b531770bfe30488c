// Package news scrapes announcement listings into the news and i18n feeds.
package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/samber/lo"
	"golang.org/x/net/html"

	"covidfeed/internal/config"
	"covidfeed/internal/crawler"
	"covidfeed/internal/models"
	"covidfeed/pkg/utils"
)

// Listing errors.
var (
	ErrMissingDate        = errors.New("listing entry has no date")
	ErrInvalidDate        = errors.New("listing entry has an invalid date")
	ErrUnknownListingKind = errors.New("unknown listing kind")
)

// Listing kinds accepted in news.listings[].kind.
const (
	KindHTML = "html"
	KindRSS  = "rss"
)

var listingDatePattern = regexp.MustCompile(`^(\d+)年(\d+)月(\d+)日`)

// Source yields the news items of one listing.
type Source interface {
	Fetch(ctx context.Context) ([]models.NewsItem, error)
	Name() string
}

// NewSource builds the source for a configured listing.
func NewSource(cfg config.ListingConfig, scraper *crawler.Scraper, client *http.Client) (Source, error) {
	switch cfg.Kind {
	case "", KindHTML:
		return &HTMLListing{URL: cfg.URL, Keyword: cfg.Keyword, scraper: scraper}, nil
	case KindRSS:
		return &RSSListing{URL: cfg.URL, Keyword: cfg.Keyword, client: client}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownListingKind, cfg.Kind)
}

// HTMLListing is a page of <li> entries, each holding a link and a dated span.
type HTMLListing struct {
	scraper *crawler.Scraper
	URL     string
	Keyword string
}

func (l *HTMLListing) Name() string {
	return l.URL
}

// Fetch downloads the listing page and parses it.
func (l *HTMLListing) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	page, err := l.scraper.ScrapeHTML(ctx, l.URL)
	if err != nil {
		return nil, err
	}

	return ParseListing(page, l.URL, l.Keyword)
}

// ParseListing extracts the entries of an HTML listing whose link text
// contains keyword. Entries without a link are skipped; a matching entry
// without a leading "YYYY年M月D日" span is an error.
func ParseListing(page, base, keyword string) ([]models.NewsItem, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	helper := utils.NewHTTPHelper()
	strs := utils.NewStringHelper()

	var items []models.NewsItem

	for li := range doc.Descendants() {
		if !isElement(li, "li") {
			continue
		}

		a := firstElement(li, "a")
		if a == nil {
			continue
		}

		title := strs.NormalizeWhitespace(crawler.Text(a))
		if !strings.Contains(title, keyword) {
			continue
		}

		span := firstElement(li, "span")
		if span == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingDate, title)
		}

		date, err := ParseListingDate(strs.TrimWhitespace(strs.FoldWidth(crawler.Text(span))))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", title, err)
		}

		href, _ := crawler.Attr(a, "href")

		link, err := helper.ResolveURL(base, href)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", href, err)
		}

		items = append(items, models.NewsItem{Date: date, URL: link, Title: title})
	}

	return items, nil
}

// ParseListingDate reads the "YYYY年M月D日" prefix of s.
func ParseListingDate(s string) (time.Time, error) {
	m := listingDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMissingDate, s)
	}

	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])

	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return t, nil
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func firstElement(n *html.Node, tag string) *html.Node {
	for d := range n.Descendants() {
		if isElement(d, tag) {
			return d
		}
	}

	return nil
}

// contextTransport injects a context into every outgoing request so that
// cancellation propagates through the rss library.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// RSSListing is an RSS or Atom feed; items whose title contains Keyword are
// kept.
type RSSListing struct {
	client  *http.Client
	URL     string
	Keyword string
}

func (l *RSSListing) Name() string {
	return l.URL
}

// Fetch downloads and filters the feed.
func (l *RSSListing) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	base := http.DefaultTransport
	timeout := 30 * time.Second

	if l.client != nil {
		if l.client.Transport != nil {
			base = l.client.Transport
		}

		timeout = l.client.Timeout
	}

	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: base},
		Timeout:   timeout,
	}

	feed, err := rss.FetchByClient(l.URL, client)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", l.URL, err)
	}

	strs := utils.NewStringHelper()

	matching := lo.Filter(feed.Items, func(item *rss.Item, _ int) bool {
		return strings.Contains(item.Title, l.Keyword)
	})

	return lo.Map(matching, func(item *rss.Item, _ int) models.NewsItem {
		d := item.Date

		return models.NewsItem{
			Date:  time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			URL:   item.Link,
			Title: strs.NormalizeWhitespace(item.Title),
		}
	}), nil
}
