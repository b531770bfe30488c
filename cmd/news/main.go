// Package main provides the news command that scrapes the announcement
// listings into news.json and WhatsNew.i18n.json.
package main

import (
	"context"
	"fmt"

	"covidfeed/internal/cli"
	"covidfeed/internal/config"
	"covidfeed/internal/crawler"
	"covidfeed/internal/logger"
	"covidfeed/internal/pipeline"
)

func main() {
	cli.Execute(cli.NewCommand("news", "Scrape news listings into news.json and WhatsNew.i18n.json", run))
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	scraper := crawler.NewScraperWithConfig(&cfg.Retry, log)

	n, err := pipeline.NewNews(cfg, log, scraper)
	if err != nil {
		return err
	}

	result, err := n.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s: %d of %d items\n", result.NewsPath, result.Published, result.Candidates)
	fmt.Printf("✅ %s\n", result.I18nPath)

	return nil
}
