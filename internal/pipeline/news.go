package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"covidfeed/internal/config"
	"covidfeed/internal/crawler"
	"covidfeed/internal/logger"
	"covidfeed/internal/models"
	"covidfeed/internal/news"
	"covidfeed/internal/output"
	"covidfeed/internal/translate"
)

// News scrapes the configured listings into news.json and WhatsNew.i18n.json.
type News struct {
	cfg        *config.Config
	log        *logger.Logger
	sources    []news.Source
	translator translate.Translator
}

// NewNews builds the listing sources and translator from cfg.
func NewNews(cfg *config.Config, log *logger.Logger, scraper *crawler.Scraper) (*News, error) {
	tr, err := translate.New(cfg.News.Translator)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Retry.GetTimeout()}

	sources := make([]news.Source, 0, len(cfg.News.Listings))

	for _, l := range cfg.News.Listings {
		src, err := news.NewSource(l, scraper, client)
		if err != nil {
			return nil, err
		}

		sources = append(sources, src)
	}

	return NewNewsWithDeps(cfg, log, sources, tr), nil
}

// NewNewsWithDeps creates a news step with injected sources and translator.
func NewNewsWithDeps(cfg *config.Config, log *logger.Logger, sources []news.Source, tr translate.Translator) *News {
	return &News{cfg: cfg, log: log, sources: sources, translator: tr}
}

// NewsResult describes a finished news run.
type NewsResult struct {
	NewsPath   string
	I18nPath   string
	Candidates int
	Published  int
}

// maxListingFetches bounds concurrent listing downloads.
const maxListingFetches = 4

// Run scrapes the listings, keeps the newest items and writes both documents.
// Listings are fetched concurrently but registered in configuration order.
func (n *News) Run(ctx context.Context) (*NewsResult, error) {
	done := n.log.Phase("news")

	scraped := make([][]models.NewsItem, len(n.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxListingFetches)

	for i, src := range n.sources {
		g.Go(func() error {
			items, err := src.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("listing %s: %w", src.Name(), err)
			}

			n.log.Debug("listing scraped", "listing", src.Name(), "items", len(items))
			scraped[i] = items

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := news.NewAggregator()
	for _, items := range scraped {
		agg.Add(items...)
	}

	top := agg.Top(n.cfg.News.MaxItems)

	result := &NewsResult{
		NewsPath:   n.cfg.OutputPath(n.cfg.News.OutputFile),
		I18nPath:   n.cfg.OutputPath(n.cfg.News.I18nFile),
		Candidates: agg.Len(),
		Published:  len(top),
	}

	if err := output.WriteJSON(result.NewsPath, news.Feed(top)); err != nil {
		return nil, err
	}

	tc := n.cfg.News.Translator

	doc, err := news.BuildI18n(ctx, top, n.translator, tc.SourceLang, tc.TargetLang)
	if err != nil {
		return nil, err
	}

	if err := output.WriteJSON(result.I18nPath, doc); err != nil {
		return nil, err
	}

	done("candidates", result.Candidates, "published", result.Published, "translator", tc.Provider)

	return result, nil
}
