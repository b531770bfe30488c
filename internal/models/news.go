package models

import "time"

// NewsItem is one entry scraped from a news listing.
type NewsItem struct {
	Date  time.Time
	URL   string
	Title string
}

// NewsEntry is the serialized form of a NewsItem in news.json.
type NewsEntry struct {
	Date string `json:"date"`
	URL  string `json:"url"`
	Text string `json:"text"`
}

// NewsFeed is the news.json document.
type NewsFeed struct {
	NewsItems []NewsEntry `json:"newsItems"`
}

// Entry renders the item for news.json.
func (n NewsItem) Entry() NewsEntry {
	return NewsEntry{
		Date: n.Date.Format("2006/01/02"),
		URL:  n.URL,
		Text: n.Title,
	}
}
