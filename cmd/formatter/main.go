// Package main provides the formatter command: it previews extracts and
// normalized patient records as aligned markdown tables.
package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"covidfeed/internal/cli"
	"covidfeed/internal/formatter"
	"covidfeed/internal/normalizer"
	"covidfeed/internal/pipeline"
	"covidfeed/internal/table"
)

func main() {
	cli.Execute(newRootCommand())
}

func newRootCommand() *cobra.Command {
	opts := &cli.Options{}

	root := &cobra.Command{
		Use:           "formatter",
		Short:         "Preview extracts as aligned markdown tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.Bind(root)

	root.AddCommand(newPreviewCommand(opts))

	return root
}

func newPreviewCommand(opts *cli.Options) *cobra.Command {
	var (
		rows      int
		normalize bool
	)

	cmd := &cobra.Command{
		Use:   "preview <extract>",
		Short: "Print an extract (CSV or PDF) as a markdown table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}

			var extractor table.Extractor = table.NewCSVExtractor()
			if !strings.EqualFold(filepath.Ext(args[0]), ".csv") {
				extractor, err = pipeline.NewExtractor(cfg.Converter.Extractor)
				if err != nil {
					return err
				}
			}

			tbl, err := extractor.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !normalize {
				fmt.Print(formatter.RenderTable(tbl, rows))

				return nil
			}

			profile := cfg.Profile()

			schema, err := normalizer.NewRegistry(cfg.Schemas).Lookup(profile.Schema)
			if err != nil {
				return err
			}

			proc := normalizer.NewProcessor(normalizer.Options{
				Schema:     schema,
				DateSuffix: profile.DateSuffix,
				EpochYear:  cfg.Converter.EpochYear,
			})

			records, err := proc.ProcessPatients(tbl)
			if err != nil {
				return err
			}

			if rows > 0 && len(records) > rows {
				records = records[:rows]
			}

			fmt.Print(formatter.RenderPatients(records))

			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 20, "maximum rows to print (0 for all)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "print normalized patient records instead of raw rows")

	return cmd
}
