package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gtdlens/internal/llm"
	"gtdlens/internal/pipeline"
	"gtdlens/internal/report"
	"gtdlens/internal/snapshot"
	"gtdlens/internal/source"
	"gtdlens/internal/types"
)

var (
	analyzeDepth string
	analyzeNoAI  bool
	analyzePlain bool
	analyzeJSON  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a hierarchy and render the system map",
	Long: `Collects a snapshot from the configured source, runs rule-based pattern
inference and health scoring, and renders the resulting system map.

With an API key configured, the map is additionally enhanced with AI
insights, merged batch by batch on top of the rule-based baseline. The
command degrades gracefully: an unreachable provider still yields the
complete rule-based report.

Examples:
  gtdlens analyze --source export.json
  gtdlens analyze --sqlite tasks.db --depth folders
  gtdlens analyze --source export.json --no-ai --json`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDepth, "depth", "", "Analysis depth: folders, projects, complete (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoAI, "no-ai", false, "Skip AI enhancement even when an API key is configured")
	analyzeCmd.Flags().BoolVar(&analyzePlain, "plain", false, "Plain markdown output without terminal rendering")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit the system map as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, closeSrc, err := openSource()
	if err != nil {
		return err
	}
	defer closeSrc()

	depth, err := resolveDepth(analyzeDepth)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithLimits(cfg.Limits()),
		pipeline.WithLogger(logger),
	}
	if !analyzeNoAI && cfg.LLM.APIKey != "" {
		client, err := llm.New(cfg.LLMOptions())
		if err != nil {
			return fmt.Errorf("failed to create inference client: %w", err)
		}
		opts = append(opts, pipeline.WithClient(client))
	}

	result, err := pipeline.New(src, opts...).Run(ctx, depth)
	if err != nil {
		if errors.Is(err, snapshot.ErrMalformedInput) {
			return fmt.Errorf("source data is malformed: %w", err)
		}
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Map)
	}

	md := report.Markdown(result.Map)
	if analyzePlain {
		fmt.Print(md)
	} else {
		renderer, rerr := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if rerr != nil {
			fmt.Print(md)
		} else {
			out, rerr := renderer.Render(md)
			if rerr != nil {
				fmt.Print(md)
			} else {
				fmt.Print(out)
			}
		}
	}

	printRunStatus(result)
	return nil
}

var (
	statusOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// printRunStatus summarizes the AI enhancement outcome on stderr so the
// report itself stays pipeable.
func printRunStatus(result *pipeline.Result) {
	switch {
	case result.Unavailable:
		fmt.Fprintln(os.Stderr, statusWarnStyle.Render("AI enhancement unavailable; showing rule-based analysis"))
	case result.Aborted:
		fmt.Fprintln(os.Stderr, statusWarnStyle.Render(
			fmt.Sprintf("Interrupted after %d of %d batches; partial enhancement shown", result.Merged, len(result.Batches))))
	case result.Map.AIEnhanced:
		msg := fmt.Sprintf("AI enhancement complete (%d batches merged", result.Merged)
		if result.Skipped > 0 {
			msg += fmt.Sprintf(", %d skipped", result.Skipped)
		}
		msg += ")"
		fmt.Fprintln(os.Stderr, statusOKStyle.Render(msg))
	}
}

// resolveDepth picks the flag value over the configured default.
func resolveDepth(flag string) (types.Depth, error) {
	raw := flag
	if raw == "" {
		raw = cfg.Analysis.Depth
	}
	depth := types.Depth(raw)
	if !depth.Valid() {
		return "", fmt.Errorf("invalid depth %q (want folders, projects, or complete)", raw)
	}
	return depth, nil
}

// openSource opens whichever hierarchy source the flags selected.
func openSource() (types.HierarchySource, func(), error) {
	switch {
	case sourcePath != "" && sqlitePath != "":
		return nil, nil, fmt.Errorf("--source and --sqlite are mutually exclusive")
	case sqlitePath != "":
		db, err := source.OpenSQLite(sqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}, nil
	case sourcePath != "":
		return source.NewJSONFile(sourcePath), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("no source given (use --source or --sqlite)")
	}
}
