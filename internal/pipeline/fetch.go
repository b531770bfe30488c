package pipeline

import (
	"context"
	"fmt"

	"covidfeed/internal/config"
	"covidfeed/internal/crawler"
	"covidfeed/internal/logger"
)

// Fetcher downloads the documents named by fetcher.targets.
type Fetcher struct {
	cfg    *config.Config
	log    *logger.Logger
	client *crawler.Client
}

// NewFetcher creates a fetcher using the configured retry policy.
func NewFetcher(cfg *config.Config, log *logger.Logger) *Fetcher {
	scraper := crawler.NewScraperWithConfig(&cfg.Retry, log)

	return &Fetcher{
		cfg:    cfg,
		log:    log,
		client: crawler.NewClientWithDeps(scraper, log),
	}
}

// Run fetches the source page once and downloads every target's documents.
// It returns the written paths per target directory.
func (f *Fetcher) Run(ctx context.Context) (map[string][]string, error) {
	done := f.log.Phase("fetch")
	defer f.client.Scraper().Attempts().LogSummary(f.log)

	links, err := f.client.Links(ctx, f.cfg.Fetcher.PageURL)
	if err != nil {
		return nil, err
	}

	written := make(map[string][]string, len(f.cfg.Fetcher.Targets))
	total := 0

	for _, target := range f.cfg.Fetcher.Targets {
		matched := crawler.MatchLinks(links, target.LinkTitle)
		if len(matched) == 0 {
			f.log.Warn("no link matched", "title", target.LinkTitle, "page", f.cfg.Fetcher.PageURL)

			continue
		}

		paths, err := f.client.DownloadLinks(ctx, matched, target.Dir)
		if err != nil {
			return written, fmt.Errorf("target %s: %w", target.Dir, err)
		}

		written[target.Dir] = paths
		total += len(paths)
	}

	done("documents", total)

	return written, nil
}
