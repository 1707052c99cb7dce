// Package snapshot implements the collector that turns an opaque hierarchy
// source into a flat, denormalized Snapshot: folders, tags, aggregate
// project statistics and (at full depth) aggregate task statistics.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gtdlens/internal/types"
)

// ErrMalformedInput indicates the source returned structurally invalid data.
// It is fatal: the pipeline propagates it immediately with no retry.
var ErrMalformedInput = errors.New("malformed hierarchy input")

// Collector reads a HierarchySource and produces a Snapshot. It has no side
// effects beyond reading the source and never fails on empty inputs.
type Collector struct {
	source types.HierarchySource
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for collection diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Collector) { c.log = log }
}

// WithClock overrides the time source. Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// New creates a Collector over the given source.
func New(source types.HierarchySource, opts ...Option) *Collector {
	c := &Collector{
		source: source,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect produces a Snapshot. When full is true the work-item sample is
// read and task statistics are computed; otherwise TaskStats stays nil and
// only the item-independent aggregates are produced.
func (c *Collector) Collect(ctx context.Context, full bool) (*types.Snapshot, error) {
	folders, err := c.source.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("read folders: %w", err)
	}
	tags, err := c.source.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	projects, err := c.source.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("read projects: %w", err)
	}

	if err := validateFolders(folders); err != nil {
		return nil, err
	}
	if err := validateTags(tags); err != nil {
		return nil, err
	}
	if err := validateProjects(projects); err != nil {
		return nil, err
	}

	var items []types.WorkItem
	if full {
		items, err = c.source.WorkItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("read work items: %w", err)
		}
		if err := validateItems(items); err != nil {
			return nil, err
		}
	}

	now := c.now()
	snap := &types.Snapshot{
		TakenAt:  now,
		Folders:  folders,
		Tags:     countTagUsage(tags, items),
		Projects: projects,
		Items:    items,
	}
	snap.ProjectStats = projectStats(projects, items, now)
	if full {
		ts := taskStats(projects, items, now)
		snap.TaskStats = &ts
	}

	c.log.Debug("snapshot collected",
		zap.Int("folders", len(folders)),
		zap.Int("tags", len(tags)),
		zap.Int("projects", len(projects)),
		zap.Int("items", len(items)),
		zap.Bool("full", full))
	return snap, nil
}

func validateFolders(folders []types.Folder) error {
	depthOf := make(map[string]int, len(folders))
	for _, f := range folders {
		depthOf[f.Name] = f.Depth
	}
	for _, f := range folders {
		if f.Depth < 0 {
			return fmt.Errorf("%w: folder %q has negative depth %d", ErrMalformedInput, f.Name, f.Depth)
		}
		if f.Depth > 0 && f.Parent == "" {
			return fmt.Errorf("%w: folder %q has depth %d but no parent", ErrMalformedInput, f.Name, f.Depth)
		}
		if f.Depth == 0 && f.Parent != "" {
			return fmt.Errorf("%w: root folder %q claims parent %q", ErrMalformedInput, f.Name, f.Parent)
		}
		if f.Parent != "" {
			pd, ok := depthOf[f.Parent]
			if !ok {
				return fmt.Errorf("%w: folder %q names missing parent %q", ErrMalformedInput, f.Name, f.Parent)
			}
			if f.Depth != pd+1 {
				return fmt.Errorf("%w: folder %q has depth %d but parent %q has depth %d", ErrMalformedInput, f.Name, f.Depth, f.Parent, pd)
			}
		}
	}
	return nil
}

func validateTags(tags []types.Tag) error {
	depthOf := make(map[string]int, len(tags))
	for _, t := range tags {
		depthOf[t.Name] = t.Depth
	}
	for _, t := range tags {
		if t.Depth < 0 {
			return fmt.Errorf("%w: tag %q has negative depth %d", ErrMalformedInput, t.Name, t.Depth)
		}
		if t.Depth > 0 && t.Parent == "" {
			return fmt.Errorf("%w: tag %q has depth %d but no parent", ErrMalformedInput, t.Name, t.Depth)
		}
		if t.Parent != "" {
			pd, ok := depthOf[t.Parent]
			if !ok {
				return fmt.Errorf("%w: tag %q names missing parent %q", ErrMalformedInput, t.Name, t.Parent)
			}
			if t.Depth != pd+1 {
				return fmt.Errorf("%w: tag %q has depth %d but parent %q has depth %d", ErrMalformedInput, t.Name, t.Depth, t.Parent, pd)
			}
		}
	}
	return nil
}

func validateProjects(projects []types.Project) error {
	for _, p := range projects {
		switch p.Status {
		case types.ProjectActive, types.ProjectOnHold, types.ProjectCompleted, types.ProjectDropped:
		default:
			return fmt.Errorf("%w: project %q has unknown status %q", ErrMalformedInput, p.Name, p.Status)
		}
		switch p.Type {
		case types.ProjectSequential, types.ProjectParallel, types.ProjectSingleAction:
		default:
			return fmt.Errorf("%w: project %q has unknown type %q", ErrMalformedInput, p.Name, p.Type)
		}
	}
	return nil
}

func validateItems(items []types.WorkItem) error {
	for _, it := range items {
		if it.Completed && it.Dropped {
			return fmt.Errorf("%w: item %q is both completed and dropped", ErrMalformedInput, it.Name)
		}
	}
	return nil
}

// countTagUsage fills UsageCount with the number of distinct work items
// referencing each tag.
func countTagUsage(tags []types.Tag, items []types.WorkItem) []types.Tag {
	usage := make(map[string]int, len(tags))
	for _, it := range items {
		seen := make(map[string]bool, len(it.Tags))
		for _, name := range it.Tags {
			if !seen[name] {
				usage[name]++
				seen[name] = true
			}
		}
	}
	out := make([]types.Tag, len(tags))
	for i, t := range tags {
		t.UsageCount = usage[t.Name]
		out[i] = t
	}
	return out
}

// availableByProject counts the available (incomplete, unblocked) items per
// project, and the number of sampled items per project. In a sequential
// project only the first incomplete item in source order is available; every
// later incomplete item is blocked by it. Parallel and single-action
// projects never block items.
func availableByProject(projects []types.Project, items []types.WorkItem) (available, sampled map[string]int) {
	typeByID := make(map[string]types.ProjectType, len(projects))
	for _, p := range projects {
		typeByID[p.ID] = p.Type
	}

	available = make(map[string]int)
	sampled = make(map[string]int)
	seqOpen := make(map[string]bool) // sequential projects with an earlier incomplete item

	for _, it := range items {
		if it.ProjectID == "" {
			continue
		}
		sampled[it.ProjectID]++
		if !it.Active() {
			continue
		}
		if typeByID[it.ProjectID] == types.ProjectSequential {
			if seqOpen[it.ProjectID] {
				continue // blocked behind the first incomplete item
			}
			seqOpen[it.ProjectID] = true
		}
		available[it.ProjectID]++
	}
	return available, sampled
}

func projectStats(projects []types.Project, items []types.WorkItem, now time.Time) types.ProjectStats {
	var ps types.ProjectStats
	ps.Total = len(projects)

	available, sampled := availableByProject(projects, items)

	for _, p := range projects {
		switch p.Status {
		case types.ProjectActive:
			ps.Active++
		case types.ProjectOnHold:
			ps.OnHold++
		case types.ProjectCompleted:
			ps.Completed++
		case types.ProjectDropped:
			ps.Dropped++
		}
		switch p.Type {
		case types.ProjectSequential:
			ps.Sequential++
		case types.ProjectParallel:
			ps.Parallel++
		case types.ProjectSingleAction:
			ps.SingleAction++
		}
		if p.Status == types.ProjectActive && p.DueAt != nil && p.DueAt.Before(now) {
			ps.Overdue++
		}
		// A project only counts as stalled when the sample actually
		// contains its items; an unsampled project is unknown, not stalled.
		if p.Status == types.ProjectActive && sampled[p.ID] > 0 && available[p.ID] == 0 {
			ps.Stalled++
		}
	}
	return ps
}

func taskStats(projects []types.Project, items []types.WorkItem, now time.Time) types.TaskStats {
	var ts types.TaskStats
	ts.Total = len(items)
	if ts.Total == 0 {
		return ts
	}

	available, _ := availableByProject(projects, items)
	for _, n := range available {
		ts.Available += n
	}

	var withDue, withEstimate, withTags, withNote int
	for _, it := range items {
		if it.Completed {
			ts.Completed++
		}
		if it.Flagged {
			ts.Flagged++
		}
		if it.Active() && it.ProjectID == "" {
			ts.Inbox++
			ts.Available++ // inbox items are never blocked
		}
		if it.Active() && it.DueAt != nil && it.DueAt.Before(now) {
			ts.Overdue++
		}
		if it.DueAt != nil {
			withDue++
		}
		if it.EstimatedMinutes > 0 {
			withEstimate++
		}
		if len(it.Tags) > 0 {
			withTags++
		}
		if it.Note != "" {
			withNote++
		}
	}

	total := float64(ts.Total)
	ts.PctWithDueDate = 100 * float64(withDue) / total
	ts.PctWithEstimate = 100 * float64(withEstimate) / total
	ts.PctWithTags = 100 * float64(withTags) / total
	ts.PctWithNote = 100 * float64(withNote) / total
	return ts
}
