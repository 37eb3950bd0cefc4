package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"railio/internal/adapters/filesystem"
	"railio/internal/adapters/sqlite"
	"railio/internal/application/pipeline"
	"railio/internal/config"
	"railio/internal/ports"
)

var (
	configPath string
	dbPath     string
	mileageArg string
	logLevel   string

	cfg     config.Config
	sources ports.SourceRepository
	pipe    *pipeline.Pipeline
)

var rootCmd = &cobra.Command{
	Use:   "railio-cli",
	Short: "CLI for importing, converting and inspecting railML files",
	Long: `railio-cli reads railML 2.3, 2.4 and 2.5 infrastructure files, resolves
their topology and mileage, and writes them back in any supported version.

It provides commands to import and record runs, dump models as JSON,
export and round-trip files, lay out schematics and publish topologies.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd)
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.Path(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the run index (default $XDG_DATA_HOME/railio/runs.db)")
	rootCmd.PersistentFlags().StringVarP(&mileageArg, "mileage", "m", "", "mileage policy: fromFile or estimated")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

// setup loads the config, applies flag overrides and builds the shared services
func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.LoadFrom(configPath, os.Getenv)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.DB = dbPath
	}
	if cmd.Flags().Changed("mileage") {
		cfg.Mileage = mileageArg
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("config loaded", "path", configPath, "settings", cfg.Redacted())

	policy, _ := cfg.Policy()
	pipe = pipeline.New(pipeline.WithPolicy(policy), pipeline.WithLogger(logger))
	sources = filesystem.NewRepository("")
	return nil
}

// openIndex opens the run index; callers close it
func openIndex() (*sqlite.Index, error) {
	path := cfg.DB
	if path == "" {
		path = sqlite.DefaultPath()
	}
	idx := sqlite.NewIndex()
	if err := idx.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open run index: %w", err)
	}
	return idx, nil
}
