// Package pipeline wires the analysis stages together: snapshot →
// inference → scoring → map building → batching → sequential AI enhancement.
// The rule-based analysis always completes and is usable standalone; AI
// enhancement is strictly additive and its failure never degrades the
// baseline.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gtdlens/internal/batch"
	"gtdlens/internal/health"
	"gtdlens/internal/inference"
	"gtdlens/internal/llm"
	"gtdlens/internal/merge"
	"gtdlens/internal/snapshot"
	"gtdlens/internal/sysmap"
	"gtdlens/internal/types"
)

// Analyzer runs the full pipeline over one hierarchy source.
type Analyzer struct {
	source types.HierarchySource
	client llm.Client // nil means rule-based analysis only
	limits batch.Limits
	log    *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClient injects the inference capability. Without it the pipeline
// produces rule-based results only.
func WithClient(c llm.Client) Option {
	return func(a *Analyzer) { a.client = c }
}

// WithLimits overrides the batching budgets.
func WithLimits(l batch.Limits) Option {
	return func(a *Analyzer) { a.limits = l }
}

// WithLogger sets the pipeline logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

// New creates an Analyzer over the given source.
func New(source types.HierarchySource, opts ...Option) *Analyzer {
	a := &Analyzer{
		source: source,
		limits: batch.DefaultLimits(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of one pipeline run.
type Result struct {
	Map     *types.SystemMap
	Batches []types.Batch

	// AI enhancement accounting.
	Merged      int  // batches whose responses were merged
	Skipped     int  // batches given up after a failed retry
	Unavailable bool // inference capability was unreachable
	Aborted     bool // run was cancelled between batches
}

// Run executes the pipeline at the requested depth. Inference requests are
// issued one batch at a time, in order (folders, then projects, then tasks),
// so a single session can build context level by level. Cancellation between
// batches discards unsubmitted batches; merges already applied remain valid.
func (a *Analyzer) Run(ctx context.Context, depth types.Depth) (*Result, error) {
	full := depth == types.DepthComplete

	collector := snapshot.New(a.source, snapshot.WithLogger(a.log))
	snap, err := collector.Collect(ctx, full)
	if err != nil {
		return nil, err
	}

	inf := inference.Analyze(snap)
	report := health.Score(snap, inf.Conventions)
	m := sysmap.Build(snap, inf, report, depth)

	planner := batch.NewPlanner(batch.WithLimits(a.limits), batch.WithLogger(a.log))
	batches, err := planner.Plan(m, snap, depth)
	if err != nil {
		return nil, err
	}

	res := &Result{Map: m, Batches: batches}
	if a.client == nil || len(batches) == 0 {
		return res, nil
	}

	merger := merge.NewMerger(a.log)
	for _, b := range batches {
		if ctx.Err() != nil {
			res.Aborted = true
			a.log.Info("analysis aborted between batches",
				zap.Int("merged", res.Merged),
				zap.Int("remaining", len(batches)-res.Merged-res.Skipped))
			return res, nil
		}

		merged, err := a.runBatch(ctx, merger, res.Map, b)
		switch {
		case err == nil:
			res.Map = merged
			res.Merged++
		case errors.Is(err, llm.ErrUnavailable):
			// Unreachable capability: finish with what the rules (and any
			// already-merged batches) produced.
			res.Unavailable = true
			a.log.Warn("inference unavailable, continuing rule-based", zap.Error(err))
			return res, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			res.Aborted = true
			return res, nil
		default:
			res.Skipped++
			a.log.Warn("batch skipped",
				zap.String("level", string(b.Level)),
				zap.Int("seq", b.Seq),
				zap.Error(err))
		}
	}
	return res, nil
}

// runBatch submits one batch and merges its response. A parse failure earns
// exactly one retry of the same batch before giving up on it.
func (a *Analyzer) runBatch(ctx context.Context, merger *merge.Merger, m *types.SystemMap, b types.Batch) (*types.SystemMap, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := a.client.CompleteWithSchema(ctx, b.Prompt, b.Schema)
		if err != nil {
			if errors.Is(err, llm.ErrUnavailable) || ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		merged, err := merger.Apply(m, b, raw)
		if err == nil {
			return merged, nil
		}
		if !errors.Is(err, merge.ErrParse) {
			return nil, err
		}
		lastErr = err
		a.log.Debug("batch response unparseable, retrying once",
			zap.String("level", string(b.Level)), zap.Int("seq", b.Seq))
	}
	return nil, lastErr
}
