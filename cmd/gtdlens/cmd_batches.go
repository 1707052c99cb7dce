package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gtdlens/internal/batch"
	"gtdlens/internal/health"
	"gtdlens/internal/inference"
	"gtdlens/internal/snapshot"
	"gtdlens/internal/sysmap"
	"gtdlens/internal/types"
)

var (
	batchesDepth       string
	batchesShowPrompts bool
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Show the AI batch plan without submitting anything",
	Long: `Runs the rule-based pipeline and prints the batches that an AI-enhanced
run would submit, in submission order. Nothing is sent to a provider.

Useful for inspecting budget packing and prompt content before spending
tokens on a large hierarchy.`,
	RunE: runBatches,
}

func init() {
	batchesCmd.Flags().StringVar(&batchesDepth, "depth", "", "Analysis depth: folders, projects, complete (default from config)")
	batchesCmd.Flags().BoolVar(&batchesShowPrompts, "prompts", false, "Print the full prompt for each batch")
}

func runBatches(cmd *cobra.Command, args []string) error {
	src, closeSrc, err := openSource()
	if err != nil {
		return err
	}
	defer closeSrc()

	depth, err := resolveDepth(batchesDepth)
	if err != nil {
		return err
	}

	snap, err := snapshot.New(src, snapshot.WithLogger(logger)).Collect(cmd.Context(), depth == types.DepthComplete)
	if err != nil {
		return err
	}
	inf := inference.Analyze(snap)
	m := sysmap.Build(snap, inf, health.Score(snap, inf.Conventions), depth)

	batches, err := batch.NewPlanner(batch.WithLimits(cfg.Limits()), batch.WithLogger(logger)).Plan(m, snap, depth)
	if err != nil {
		return err
	}

	if len(batches) == 0 {
		fmt.Println("No batches: the hierarchy has nothing to analyze at this depth.")
		return nil
	}

	total := 0
	for _, b := range batches {
		total += b.Size
		fmt.Printf("%2d. [%s] %s\n", b.Seq+1, b.Level, describeBatch(b))
		fmt.Printf("    id=%s size=%d chars\n", b.ID, b.Size)
		if batchesShowPrompts {
			fmt.Println()
			fmt.Println(b.Prompt)
			fmt.Println()
		}
	}
	fmt.Printf("\n%d batches, %d chars total\n", len(batches), total)
	return nil
}

func describeBatch(b types.Batch) string {
	switch b.Level {
	case types.LevelFolder:
		return fmt.Sprintf("%d folders", len(b.Entities))
	case types.LevelProject:
		folder := b.ParentFolder
		if folder == "" {
			folder = "(no folder)"
		}
		return fmt.Sprintf("%d projects in %s", len(b.Entities), folder)
	case types.LevelTask:
		return fmt.Sprintf("%s: %d of %d tasks (%s)", b.ProjectName, b.AnalyzingTasks, b.TotalTasks, b.ProjectStatus)
	default:
		return fmt.Sprintf("%d entities", len(b.Entities))
	}
}
