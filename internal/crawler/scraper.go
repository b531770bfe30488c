package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"covidfeed/internal/config"
	"covidfeed/internal/logger"
	"covidfeed/pkg/utils"
)

// Scraper errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrBodyTooLarge         = errors.New("response body exceeds buffer limit")
)

// Response is a fully read HTTP response body.
type Response struct {
	Body        []byte
	ContentType string
	StatusCode  int
	Duration    time.Duration
}

// Scraper handles HTTP fetching with config-driven retry logic.
type Scraper struct {
	client       *http.Client
	retryPolicy  *config.RetryPolicy
	headers      http.Header
	attempts     *AttemptLog
	logger       *logger.Logger
	bufferSizeKb int
}

// NewScraper creates a new scraper instance with the default retry policy.
func NewScraper() *Scraper {
	return NewScraperWithConfig(&config.Default().Retry, logger.Discard())
}

// NewScraperWithConfig creates a new scraper with a custom retry policy.
func NewScraperWithConfig(retryPolicy *config.RetryPolicy, l *logger.Logger) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy:  retryPolicy,
		headers:      utils.NewHTTPHelper().BuildHeaders(nil),
		attempts:     NewAttemptLog(),
		logger:       l,
		bufferSizeKb: retryPolicy.BufferSizeKb,
	}
}

// WithHTTPClient swaps the underlying client. Used by tests.
func (s *Scraper) WithHTTPClient(c *http.Client) *Scraper {
	s.client = c

	return s
}

// Attempts returns the log of every request made so far.
func (s *Scraper) Attempts() *AttemptLog {
	return s.attempts
}

// Fetch GETs url, retrying transport failures and retryable status codes with
// exponential backoff.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Response, error) {
	var lastErr error

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := s.wait(ctx, s.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		resp, retry, err := s.fetchOnce(ctx, url)
		if resp != nil {
			totalDuration += resp.Duration
		}

		s.attempts.Record(url, attempt, resp, err)

		if err == nil {
			resp.Duration = totalDuration

			return resp, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, s.retryPolicy.MaxAttempts, err)
		s.logger.Debug("fetch attempt failed", "url", url, "attempt", attempt, "error", err)

		if !retry || ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

// ScrapeHTML fetches url and decodes the body to UTF-8 using the declared or
// sniffed charset.
func (s *Scraper) ScrapeHTML(ctx context.Context, url string) (string, error) {
	resp, err := s.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	r, err := charset.NewReader(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}

	return string(body), nil
}

// fetchOnce performs one request. The bool reports whether a failure is worth
// retrying.
func (s *Scraper) fetchOnce(ctx context.Context, url string) (*Response, bool, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = s.headers.Clone()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	out := &Response{
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		out.Duration = time.Since(startTime)

		return out, isRetryableStatus(resp.StatusCode), fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// bufferSizeKb is in KB; read one byte past the limit to detect overflow.
	limit := int64(s.bufferSizeKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	out.Duration = time.Since(startTime)

	if err != nil {
		return out, true, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > limit {
		return out, false, fmt.Errorf("%w: %d KB", ErrBodyTooLarge, s.bufferSizeKb)
	}

	out.Body = body

	return out, false, nil
}

func (s *Scraper) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}
