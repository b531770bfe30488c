package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidfeed/internal/config"
	"covidfeed/internal/crawler"
	"covidfeed/internal/logger"
	"covidfeed/internal/models"
	"covidfeed/internal/output"
)

const listingPage = `<html><body>
<ul class="news">
  <li><span>2020年3月5日更新</span><a href="/site/covid19-aichi/kansensya-kensa.html">新型コロナウイルス感染症の検査陽性者について</a></li>
  <li><span>２０２０年３月４日</span><a href="page2.html">  新型コロナウイルス
      感染症に関する相談窓口 </a></li>
  <li><span>2020年3月3日</span><a href="other.html">インフルエンザの流行状況</a></li>
  <li>リンクのない項目</li>
</ul>
</body></html>`

func TestParseListing(t *testing.T) {
	items, err := ParseListing(listingPage, "https://www.pref.aichi.jp/site/covid19-aichi/index.html", "コロナ")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "https://www.pref.aichi.jp/site/covid19-aichi/kansensya-kensa.html", items[0].URL)
	assert.Equal(t, "新型コロナウイルス感染症の検査陽性者について", items[0].Title)
	assert.Equal(t, time.Date(2020, 3, 5, 0, 0, 0, 0, time.UTC), items[0].Date)

	assert.Equal(t, "https://www.pref.aichi.jp/site/covid19-aichi/page2.html", items[1].URL)
	assert.Equal(t, "新型コロナウイルス 感染症に関する相談窓口", items[1].Title)
	assert.Equal(t, 4, items[1].Date.Day())
}

func TestParseListing_MissingDate(t *testing.T) {
	page := `<ul><li><a href="/a.html">新型コロナウイルス</a></li></ul>`

	_, err := ParseListing(page, "https://example.com/", "コロナ")
	assert.ErrorIs(t, err, ErrMissingDate)

	page = `<ul><li><span>更新情報</span><a href="/a.html">新型コロナウイルス</a></li></ul>`

	_, err = ParseListing(page, "https://example.com/", "コロナ")
	assert.ErrorIs(t, err, ErrMissingDate)
}

func TestParseListingDate(t *testing.T) {
	d, err := ParseListingDate("2020年2月29日 掲載")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseListingDate("2021年2月29日")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestHTMLListing_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	scraper := crawler.NewScraperWithConfig(&config.Default().Retry, logger.Discard())

	src, err := NewSource(config.ListingConfig{URL: srv.URL + "/list1-1.html", Keyword: "コロナ", Kind: KindHTML}, scraper, nil)
	require.NoError(t, err)

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, strings.HasPrefix(items[1].URL, srv.URL+"/"))
}

func TestNewSource_UnknownKind(t *testing.T) {
	_, err := NewSource(config.ListingConfig{URL: "https://example.com", Kind: "atom"}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownListingKind)
}

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>お知らせ</title><link>https://example.com/</link><description>d</description>
<item><title>新型コロナウイルスに関するお知らせ</title><link>https://example.com/a.html</link><pubDate>Thu, 05 Mar 2020 10:00:00 +0900</pubDate></item>
<item><title>防災訓練</title><link>https://example.com/b.html</link><pubDate>Wed, 04 Mar 2020 10:00:00 +0900</pubDate></item>
</channel></rss>`

func TestRSSListing_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	src, err := NewSource(config.ListingConfig{URL: srv.URL, Keyword: "コロナ", Kind: KindRSS}, nil, srv.Client())
	require.NoError(t, err)

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/a.html", items[0].URL)
	assert.Equal(t, "2020/03/05", items[0].Entry().Date)
}

func item(url string, day int, title string) models.NewsItem {
	return models.NewsItem{URL: url, Date: time.Date(2020, 3, day, 0, 0, 0, 0, time.UTC), Title: title}
}

func TestAggregator_Dedupe(t *testing.T) {
	a := NewAggregator()
	a.Add(item("u1", 1, "first"), item("u2", 2, "second"))
	a.Add(item("u1", 3, "replaced"))

	require.Equal(t, 2, a.Len())

	items := a.Items()
	assert.Equal(t, "u1", items[0].URL)
	assert.Equal(t, "replaced", items[0].Title)
	assert.Equal(t, 3, items[0].Date.Day())
}

func TestAggregator_Top(t *testing.T) {
	a := NewAggregator()
	for i := 1; i <= 10; i++ {
		// Days 1,1,2,2,...,5,5 registered in ascending order.
		a.Add(item(fmt.Sprintf("u%02d", i), (i+1)/2, fmt.Sprintf("t%02d", i)))
	}

	top := a.Top(5)
	require.Len(t, top, 5)

	got := make([]string, len(top))
	for i, it := range top {
		got[i] = it.URL
	}

	assert.Equal(t, []string{"u09", "u10", "u07", "u08", "u05"}, got)

	for i := 1; i < len(top); i++ {
		assert.False(t, top[i].Date.After(top[i-1].Date))
	}

	assert.Len(t, a.Top(50), 10)
}

func TestFeed(t *testing.T) {
	feed := Feed([]models.NewsItem{item("https://example.com/a", 5, "新型コロナ")})

	data, err := output.Marshal(feed)
	require.NoError(t, err)
	assert.Equal(t, `{
    "newsItems": [
        {
            "date": "2020/03/05",
            "url": "https://example.com/a",
            "text": "新型コロナ"
        }
    ]
}
`, string(data))
}

type upperTranslator struct {
	calls int
	fail  bool
}

func (u *upperTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	u.calls++
	if u.fail {
		return "", errors.New("quota exceeded")
	}

	return source + ">" + target + ":" + text, nil
}

func TestBuildI18n(t *testing.T) {
	tr := &upperTranslator{}
	items := []models.NewsItem{item("u1", 2, "検査"), item("u2", 1, "相談窓口"), item("u3", 1, "検査")}

	doc, err := BuildI18n(context.Background(), items, tr, "ja", "en")
	require.NoError(t, err)
	assert.Equal(t, 2, tr.calls)

	data, err := output.Marshal(doc)
	require.NoError(t, err)

	want := `{"ja":{"最新のお知らせ":"最新のお知らせ","検査":"検査","相談窓口":"相談窓口"},` +
		`"en":{"最新のお知らせ":"What's new","検査":"ja>en:検査","相談窓口":"ja>en:相談窓口"}}`
	assert.JSONEq(t, want, string(data))

	ja := strings.Index(string(data), `"検査"`)
	consult := strings.Index(string(data), `"相談窓口"`)
	assert.Less(t, ja, consult, "insertion order lost")
}

func TestBuildI18n_HTMLCharactersUnescaped(t *testing.T) {
	items := []models.NewsItem{item("u1", 1, "コロナQ&A <更新>")}

	doc, err := BuildI18n(context.Background(), items, &upperTranslator{}, "ja", "en")
	require.NoError(t, err)

	data, err := output.Marshal(doc)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"コロナQ&A <更新>": "コロナQ&A <更新>"`)
	assert.Contains(t, text, `"ja>en:コロナQ&A <更新>"`)
	assert.NotContains(t, text, `\u0026`)
	assert.NotContains(t, text, `\u003c`)
	assert.True(t, strings.HasPrefix(text, "{\n    \"ja\": {\n        \"最新のお知らせ\""), "expected 4-space indent:\n%s", text)

	feed, err := output.Marshal(Feed(items))
	require.NoError(t, err)
	assert.Contains(t, string(feed), `"text": "コロナQ&A <更新>"`)
}

func TestBuildI18n_TranslatorError(t *testing.T) {
	_, err := BuildI18n(context.Background(), []models.NewsItem{item("u1", 1, "検査")}, &upperTranslator{fail: true}, "ja", "en")
	assert.Error(t, err)
}
