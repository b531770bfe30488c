package news

import (
	"slices"

	"github.com/samber/lo"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"covidfeed/internal/models"
)

// Aggregator collects news items keyed by URL. Registering a URL again
// replaces its item but keeps the position of the first registration.
type Aggregator struct {
	items *orderedmap.OrderedMap[string, models.NewsItem]
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{items: orderedmap.New[string, models.NewsItem]()}
}

// Add registers items in order.
func (a *Aggregator) Add(items ...models.NewsItem) {
	for _, it := range items {
		a.items.Set(it.URL, it)
	}
}

// Len returns the number of distinct URLs.
func (a *Aggregator) Len() int {
	return a.items.Len()
}

// Items returns the registered items in registration order.
func (a *Aggregator) Items() []models.NewsItem {
	out := make([]models.NewsItem, 0, a.items.Len())
	for pair := a.items.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

// Top returns at most n items, newest first. Items sharing a date keep their
// registration order.
func (a *Aggregator) Top(n int) []models.NewsItem {
	items := a.Items()
	slices.SortStableFunc(items, func(x, y models.NewsItem) int {
		return y.Date.Compare(x.Date)
	})

	if n >= 0 && len(items) > n {
		items = items[:n]
	}

	return items
}

// Feed renders items as the news.json document.
func Feed(items []models.NewsItem) models.NewsFeed {
	return models.NewsFeed{
		NewsItems: lo.Map(items, func(it models.NewsItem, _ int) models.NewsEntry {
			return it.Entry()
		}),
	}
}
