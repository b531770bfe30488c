// Package cli holds the cobra plumbing shared by the commands: config
// loading, logger setup and signal handling.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"covidfeed/internal/config"
	"covidfeed/internal/logger"
)

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = "configs/feed.yaml"

// RunFunc is the body of a command once configuration is loaded.
type RunFunc func(ctx context.Context, cfg *config.Config, log *logger.Logger) error

// Options are the persistent flags every command accepts.
type Options struct {
	ConfigPath string
	LogLevel   string
}

// NewCommand builds a root command that loads configuration and a logger
// before calling run.
func NewCommand(use, short string, run RunFunc) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}

			log := logger.NewLogger(cfg.Logging.Level)
			log.Debug("configuration loaded", "config", cfg.String())

			return run(cmd.Context(), cfg, log)
		},
	}

	opts.Bind(cmd)

	return cmd
}

// Bind registers --config and --log-level on cmd and its subcommands.
func (o *Options) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&o.ConfigPath, "config", "c", "", "path to YAML configuration file")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

// Load reads the configuration named by the flags.
func (o *Options) Load() (*config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Execute runs cmd with a context cancelled on SIGINT or SIGTERM and exits
// non-zero on failure.
func Execute(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s: %v\n", cmd.Name(), err)
		os.Exit(1)
	}
}
