// Package main provides the converter command that turns the latest patient
// and inspection documents into data.json.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"covidfeed/internal/cli"
	"covidfeed/internal/config"
	"covidfeed/internal/logger"
	"covidfeed/internal/pipeline"
)

type flags struct {
	validate bool
	strict   bool
	dense    bool
	output   string
}

func main() {
	cli.Execute(newCommand())
}

func newCommand() *cobra.Command {
	f := &flags{}

	cmd := cli.NewCommand("converter", "Convert patient and inspection extracts into data.json",
		func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
			return run(ctx, cfg, log, f)
		})

	cmd.Flags().BoolVar(&f.validate, "validate", false, "validate the latest extracts and exit without writing")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject records that are not in ascending date order")
	cmd.Flags().BoolVar(&f.dense, "dense", false, "emit zero buckets for days without patients")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (overrides converter.output_file)")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, f *flags) error {
	if f.strict {
		cfg.Converter.Strict = true
	}

	if f.dense {
		cfg.Converter.SummaryFill = "dense"
	}

	if f.output != "" {
		cfg.Converter.OutputFile = f.output
	}

	extractor, err := pipeline.NewExtractor(cfg.Converter.Extractor)
	if err != nil {
		return err
	}

	conv := pipeline.NewConverter(cfg, log, extractor, time.Now)

	if f.validate {
		fmt.Println("🔍 Validating extracts...")

		patients, inspections, err := conv.Validate(ctx)
		if patients != nil {
			fmt.Printf("patients:    %s\n", patients)
			patients.WriteWarnings(os.Stdout)
			patients.WriteErrors(os.Stdout)
		}

		if inspections != nil {
			fmt.Printf("inspections: %s\n", inspections)
			inspections.WriteWarnings(os.Stdout)
			inspections.WriteErrors(os.Stdout)
		}

		return err
	}

	result, err := conv.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s: %d patients, %d inspection days (%s)\n",
		result.Path, result.Patients, result.Inspections, result.Profile.Name)

	return nil
}
