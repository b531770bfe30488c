// Package main provides the unified worker command that fetches, converts and
// publishes news in one run.
package main

import (
	"context"
	"fmt"
	"time"

	"covidfeed/internal/cli"
	"covidfeed/internal/config"
	"covidfeed/internal/logger"
	"covidfeed/internal/pipeline"
)

func main() {
	cli.Execute(cli.NewCommand("worker", "Run fetch, convert and news in sequence", run))
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	start := time.Now()

	log.Info("🚀 starting feed worker", "profile", cfg.Profile().Name, "output", cfg.Output.Dir)

	if err := pipeline.RunAll(ctx, cfg, log, time.Now); err != nil {
		return err
	}

	fmt.Println("------------------------------------------------")
	fmt.Printf("✨ Pipeline complete in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Output: %s\n", cfg.Output.Dir)
	fmt.Println("------------------------------------------------")

	return nil
}
