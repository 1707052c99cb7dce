package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gtdlens/internal/batch"
	"gtdlens/internal/health"
	"gtdlens/internal/inference"
	"gtdlens/internal/llm"
	"gtdlens/internal/pipeline"
	"gtdlens/internal/report"
	"gtdlens/internal/snapshot"
	"gtdlens/internal/sysmap"
	"gtdlens/internal/types"
)

var (
	serveTransport string
	servePort      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis engine as an MCP server",
	Long: `Exposes gtdlens over the Model Context Protocol so agent clients can
request hierarchy analyses as tool calls.

Tools:
  analyze_system  Run the full pipeline and return the system map
  plan_batches    Return the AI batch plan without submitting anything

Transports: stdio (default) and streamable HTTP.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "Transport mode: stdio or http")
	serveCmd.Flags().StringVar(&servePort, "port", "8081", "HTTP port (only used with --transport http)")
}

func runServe(cmd *cobra.Command, args []string) error {
	src, closeSrc, err := openSource()
	if err != nil {
		return err
	}
	defer closeSrc()

	at := &analysisTools{source: src}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "gtdlens",
		Version: cfg.Version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_system",
		Description: "Analyze the hierarchy: rule-based inference, health scoring, and optional AI enhancement",
	}, at.AnalyzeSystem)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "plan_batches",
		Description: "Plan the AI analysis batches for the hierarchy without submitting anything",
	}, at.PlanBatches)

	switch serveTransport {
	case "stdio":
		logger.Info("mcp server starting", zap.String("transport", "stdio"))
		return srv.Run(cmd.Context(), &mcp.StdioTransport{})
	case "http":
		addr := ":" + servePort
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		logger.Info("mcp server listening", zap.String("addr", addr))
		return http.ListenAndServe(addr, handler)
	default:
		return fmt.Errorf("unknown transport %q (use stdio or http)", serveTransport)
	}
}

type analysisTools struct {
	source types.HierarchySource
}

// AnalyzeSystemInput selects the analysis depth and whether AI runs.
type AnalyzeSystemInput struct {
	Depth    string `json:"depth,omitempty" jsonschema:"Analysis depth: folders, projects, or complete (default from config)"`
	NoAI     bool   `json:"no_ai,omitempty" jsonschema:"Skip AI enhancement even when an API key is configured"`
	Markdown bool   `json:"markdown,omitempty" jsonschema:"Return a rendered markdown report instead of the raw system map"`
}

// AnalyzeSystemResult wraps the system map with enhancement accounting.
type AnalyzeSystemResult struct {
	Map         *types.SystemMap `json:"map"`
	Merged      int              `json:"mergedBatches"`
	Skipped     int              `json:"skippedBatches"`
	Unavailable bool             `json:"aiUnavailable"`
}

func (t *analysisTools) AnalyzeSystem(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeSystemInput) (*mcp.CallToolResult, any, error) {
	depth, err := resolveDepth(input.Depth)
	if err != nil {
		return toolError("%v", err), nil, nil
	}

	opts := []pipeline.Option{
		pipeline.WithLimits(cfg.Limits()),
		pipeline.WithLogger(logger),
	}
	if !input.NoAI && cfg.LLM.APIKey != "" {
		client, err := llm.New(cfg.LLMOptions())
		if err != nil {
			return toolError("Failed to create inference client: %v", err), nil, nil
		}
		opts = append(opts, pipeline.WithClient(client))
	}

	result, err := pipeline.New(t.source, opts...).Run(ctx, depth)
	if err != nil {
		return toolError("Analysis failed: %v", err), nil, nil
	}

	if input.Markdown {
		return toolText(report.Markdown(result.Map)), nil, nil
	}
	return toolJSON(AnalyzeSystemResult{
		Map:         result.Map,
		Merged:      result.Merged,
		Skipped:     result.Skipped,
		Unavailable: result.Unavailable,
	})
}

// PlanBatchesInput selects the planning depth.
type PlanBatchesInput struct {
	Depth          string `json:"depth,omitempty" jsonschema:"Analysis depth: folders, projects, or complete (default from config)"`
	IncludePrompts bool   `json:"include_prompts,omitempty" jsonschema:"Include the full prompt text for each batch"`
}

// PlannedBatch is the wire form of one batch in the plan.
type PlannedBatch struct {
	ID      string   `json:"id"`
	Level   string   `json:"level"`
	Seq     int      `json:"seq"`
	Summary string   `json:"summary"`
	Size    int      `json:"size"`
	Items   []string `json:"items"`
	Prompt  string   `json:"prompt,omitempty"`
}

func (t *analysisTools) PlanBatches(ctx context.Context, _ *mcp.CallToolRequest, input PlanBatchesInput) (*mcp.CallToolResult, any, error) {
	depth, err := resolveDepth(input.Depth)
	if err != nil {
		return toolError("%v", err), nil, nil
	}

	snap, err := snapshot.New(t.source, snapshot.WithLogger(logger)).Collect(ctx, depth == types.DepthComplete)
	if err != nil {
		return toolError("Snapshot failed: %v", err), nil, nil
	}
	inf := inference.Analyze(snap)
	m := sysmap.Build(snap, inf, health.Score(snap, inf.Conventions), depth)

	batches, err := batch.NewPlanner(batch.WithLimits(cfg.Limits()), batch.WithLogger(logger)).Plan(m, snap, depth)
	if err != nil {
		return toolError("Planning failed: %v", err), nil, nil
	}

	out := make([]PlannedBatch, 0, len(batches))
	for _, b := range batches {
		pb := PlannedBatch{
			ID:      b.ID,
			Level:   string(b.Level),
			Seq:     b.Seq,
			Summary: describeBatch(b),
			Size:    b.Size,
			Items:   b.Entities,
		}
		if input.IncludePrompts {
			pb.Prompt = b.Prompt
		}
		out = append(out, pb)
	}
	return toolJSON(out)
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
