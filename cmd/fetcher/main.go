// Package main provides the fetcher command that downloads the latest source
// documents linked from the prefecture page.
package main

import (
	"context"
	"fmt"
	"sort"

	"covidfeed/internal/cli"
	"covidfeed/internal/config"
	"covidfeed/internal/logger"
	"covidfeed/internal/pipeline"
)

func main() {
	cli.Execute(cli.NewCommand("fetcher", "Download source documents into their target directories", run))
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	fmt.Printf("🕷️  Fetching %s (%d targets)\n", cfg.Fetcher.PageURL, len(cfg.Fetcher.Targets))

	written, err := pipeline.NewFetcher(cfg, log).Run(ctx)
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(written))
	for dir := range written {
		dirs = append(dirs, dir)
	}

	sort.Strings(dirs)

	for _, dir := range dirs {
		for _, path := range written[dir] {
			fmt.Printf("✅ %s\n", path)
		}
	}

	return nil
}
