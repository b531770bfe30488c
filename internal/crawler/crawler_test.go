package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"covidfeed/internal/config"
	"covidfeed/internal/logger"
)

func testPolicy() *config.RetryPolicy {
	return &config.RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    1,
		MaxDelayMs:        5,
		BackoffMultiplier: 2.0,
		TimeoutSec:        5,
		BufferSizeKb:      64,
	}
}

func TestScraper_Fetch_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := NewScraperWithConfig(testPolicy(), logger.Discard())

	resp, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.EqualValues(t, 3, calls.Load())

	stats := s.Attempts().Stats()
	assert.Equal(t, 3, stats.TotalAttempts)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 2, stats.FailureCount)
}

func TestScraper_Fetch_NoRetryOnNotFound(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	s := NewScraperWithConfig(testPolicy(), logger.Discard())

	_, err := s.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
	assert.EqualValues(t, 1, calls.Load())

	attempts := s.Attempts().Get(srv.URL)
	require.Len(t, attempts, 1)
	assert.Equal(t, http.StatusNotFound, attempts[0].StatusCode)
}

func TestScraper_Fetch_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	policy := testPolicy()
	policy.BufferSizeKb = 1

	_, err := NewScraperWithConfig(policy, logger.Discard()).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestScraper_Fetch_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScraperWithConfig(testPolicy(), logger.Discard()).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScraper_ScrapeHTML_ShiftJIS(t *testing.T) {
	page := `<html><body><a href="/a.pdf">県内発生事例一覧表</a></body></html>`

	encoded, err := japanese.ShiftJIS.NewEncoder().String(page)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		_, _ = w.Write([]byte(encoded))
	}))
	defer srv.Close()

	got, err := NewScraperWithConfig(testPolicy(), logger.Discard()).ScrapeHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, got, "県内発生事例一覧表")
}

func TestParseLinks(t *testing.T) {
	page := `<ul>
<li><a href="/uploaded/attachment/1.pdf"> 県内発生事例一覧表 <span>(PDF)</span></a></li>
<li><a href="2.pdf">検査状況</a></li>
<li><a name="anchor">no href</a></li>
<li><a href="https://other.example/3.pdf">外部</a></li>
</ul>`

	links, err := ParseLinks(page, "https://www.pref.aichi.jp/site/covid19-aichi/index.html")
	require.NoError(t, err)
	require.Len(t, links, 3)

	assert.Equal(t, "県内発生事例一覧表 (PDF)", links[0].Text)
	assert.Equal(t, "https://www.pref.aichi.jp/uploaded/attachment/1.pdf", links[0].URL)
	assert.Equal(t, "https://www.pref.aichi.jp/site/covid19-aichi/2.pdf", links[1].URL)
	assert.Equal(t, "https://other.example/3.pdf", links[2].URL)
}

func TestMatchLinks(t *testing.T) {
	links := []Link{{Text: "県内発生事例一覧表 (PDF)"}, {Text: "検査状況"}, {Text: "一覧表"}}

	got := MatchLinks(links, "一覧表")
	assert.Len(t, got, 2)
	assert.Empty(t, MatchLinks(links, "退院"))
}

func TestFileName(t *testing.T) {
	name, err := FileName("https://example.com/uploaded/attachment/%E4%B8%80%E8%A6%A7.pdf?v=2")
	require.NoError(t, err)
	assert.Equal(t, "一覧.pdf", name)

	_, err = FileName("https://example.com")
	assert.ErrorIs(t, err, ErrNoFileName)
}

func TestClient_Download(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/index.html", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<a href="files/patients.pdf">県内発生事例一覧表</a>
<a href="files/inspections.pdf">検査陽性者の状況</a>`))
	})
	mux.HandleFunc("/files/patients.pdf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 patients"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "patients")
	client := NewClientWithDeps(NewScraperWithConfig(testPolicy(), logger.Discard()), logger.Discard())

	written, err := client.Download(context.Background(), srv.URL+"/index.html", dir, "県内発生事例")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "patients.pdf")}, written)

	got, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 patients", string(got))
}

func TestClient_Download_MissingDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte(`<a href="/gone.pdf">一覧表</a>`))

			return
		}

		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := NewClientWithDeps(NewScraperWithConfig(testPolicy(), logger.Discard()), logger.Discard())

	_, err := client.Download(context.Background(), srv.URL+"/", dir, "一覧表")
	require.ErrorIs(t, err, ErrUnexpectedStatusCode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
