package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gtdlens/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string
	sourcePath string
	sqlitePath string

	// Loaded configuration, available to all subcommands.
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gtdlens",
	Short: "gtdlens - GTD hierarchy analysis engine",
	Long: `gtdlens inspects a task-management hierarchy (folders, projects, tasks,
tags), infers its organizational patterns with deterministic rules, scores
workflow health across the five GTD phases, and optionally enhances the
result with AI insights merged on top of the rule-based baseline.

The rule-based analysis always completes; AI enhancement is additive and
never replaces a deterministic finding.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		zc := zap.NewProductionConfig()
		if cfg.Logging.Format == "text" {
			zc = zap.NewDevelopmentConfig()
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(parsed)
		// Keep stdout clean for reports and JSON output.
		zc.OutputPaths = []string{"stderr"}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.gtdlens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&sourcePath, "source", "", "Path to a JSON hierarchy export")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Path to a SQLite hierarchy database")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gtdlens version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gtdlens %s\n", cfg.Version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
