// Package crawler fetches disclosure pages and the documents they link to.
package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"covidfeed/internal/logger"
	"covidfeed/internal/output"
)

// ErrNoFileName is returned for a link whose URL has no usable file name.
var ErrNoFileName = errors.New("link has no file name")

// Client manages HTTP communications and data flow for crawling.
type Client struct {
	scraper *Scraper
	logger  *logger.Logger
}

// NewClient creates a new crawler client with default dependencies.
func NewClient() *Client {
	return &Client{
		scraper: NewScraper(),
		logger:  logger.Discard(),
	}
}

// NewClientWithDeps creates a new crawler client with injected dependencies.
func NewClientWithDeps(scraper *Scraper, l *logger.Logger) *Client {
	return &Client{
		scraper: scraper,
		logger:  l,
	}
}

// Scraper returns the scraper backing the client.
func (c *Client) Scraper() *Scraper {
	return c.scraper
}

// Links fetches pageURL and returns its anchors.
func (c *Client) Links(ctx context.Context, pageURL string) ([]Link, error) {
	page, err := c.scraper.ScrapeHTML(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape page: %w", err)
	}

	links, err := ParseLinks(page, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return links, nil
}

// Download saves every document linked from pageURL whose link text contains
// linkTitle into dir, named after the last path segment of the link. It
// returns the written paths in link order.
func (c *Client) Download(ctx context.Context, pageURL, dir, linkTitle string) ([]string, error) {
	links, err := c.Links(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return c.DownloadLinks(ctx, MatchLinks(links, linkTitle), dir)
}

// DownloadLinks saves each link into dir.
func (c *Client) DownloadLinks(ctx context.Context, links []Link, dir string) ([]string, error) {
	var written []string

	for _, link := range links {
		name, err := FileName(link.URL)
		if err != nil {
			return written, err
		}

		resp, err := c.scraper.Fetch(ctx, link.URL)
		if err != nil {
			return written, fmt.Errorf("failed to download %q: %w", link.Text, err)
		}

		dest := filepath.Join(dir, name)
		if err := output.WriteFile(dest, bytes.NewReader(resp.Body)); err != nil {
			return written, err
		}

		c.logger.Info("downloaded", "title", link.Text, "url", link.URL, "path", dest, "bytes", len(resp.Body))
		written = append(written, dest)
	}

	return written, nil
}

// MatchLinks keeps the links whose text contains title.
func MatchLinks(links []Link, title string) []Link {
	var out []Link

	for _, l := range links {
		if strings.Contains(l.Text, title) {
			out = append(out, l)
		}
	}

	return out
}

// FileName returns the unescaped last path segment of raw.
func FileName(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoFileName, raw)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: %s", ErrNoFileName, raw)
	}

	return name, nil
}
