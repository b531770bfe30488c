// Package pipeline wires the fetch, convert and news steps from
// configuration. Each step is a one-shot, sequential run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"covidfeed/internal/config"
	"covidfeed/internal/logger"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// stampLayout is used for section dates not derived from a date range.
const stampLayout = "2006/01/02 15:04:05"

// RunAll runs fetch, convert and news in order, stopping at the first failure.
func RunAll(ctx context.Context, cfg *config.Config, log *logger.Logger, now Clock) error {
	done := log.Phase("worker")

	fetcher := NewFetcher(cfg, log)
	if _, err := fetcher.Run(ctx); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	extractor, err := NewExtractor(cfg.Converter.Extractor)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	if _, err := NewConverter(cfg, log, extractor, now).Run(ctx); err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	news, err := NewNews(cfg, log, fetcher.client.Scraper())
	if err != nil {
		return fmt.Errorf("news: %w", err)
	}

	if _, err := news.Run(ctx); err != nil {
		return fmt.Errorf("news: %w", err)
	}

	done()

	return nil
}
