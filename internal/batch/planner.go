package batch

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gtdlens/internal/types"
)

// Planner produces the ordered batch list for a system map. It is a pure
// transform: no I/O, and malformed input raises immediately rather than
// silently producing an empty plan.
type Planner struct {
	limits Limits
	log    *zap.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithLimits overrides the default budgets.
func WithLimits(l Limits) Option {
	return func(p *Planner) { p.limits = l }
}

// WithLogger sets the planner's logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Planner) { p.log = log }
}

// NewPlanner creates a Planner with default limits.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{limits: DefaultLimits(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan partitions the map's collections into batches for the requested
// depth. Sequence numbers order folder batches before project batches before
// task batches, and within the project tier batches never mix projects from
// two different folders.
func (p *Planner) Plan(m *types.SystemMap, snap *types.Snapshot, depth types.Depth) ([]types.Batch, error) {
	if m == nil || snap == nil {
		return nil, fmt.Errorf("batch plan: nil system map or snapshot")
	}
	if !depth.Valid() {
		return nil, fmt.Errorf("batch plan: unknown analysis depth %q", depth)
	}

	var batches []types.Batch
	seq := 0

	folderBatches := p.planFolders(m, &seq)
	batches = append(batches, folderBatches...)

	if depth == types.DepthProjects || depth == types.DepthComplete {
		batches = append(batches, p.planProjects(snap, &seq)...)
	}
	if depth == types.DepthComplete {
		batches = append(batches, p.planTasks(snap, &seq)...)
	}

	p.log.Debug("batch plan built",
		zap.String("depth", string(depth)),
		zap.Int("batches", len(batches)))
	return batches, nil
}

// ----- folder level -----

type folderSummary struct {
	Name           string `json:"name"`
	Depth          int    `json:"depth"`
	Parent         string `json:"parent,omitempty"`
	Type           string `json:"inferredType"`
	Confidence     string `json:"confidence"`
	DirectProjects int    `json:"directProjects"`
	TotalProjects  int    `json:"totalProjects"`
}

func (p *Planner) planFolders(m *types.SystemMap, seq *int) []types.Batch {
	if len(m.Folders) == 0 {
		return nil
	}
	names := make([]string, len(m.Folders))
	summaries := make([]string, len(m.Folders))
	for i, f := range m.Folders {
		names[i] = f.Name
		summaries[i] = mustJSON(folderSummary{
			Name:           f.Name,
			Depth:          f.Folder.Depth,
			Parent:         f.Parent,
			Type:           f.Type,
			Confidence:     f.Confidence,
			DirectProjects: f.DirectProjects,
			TotalProjects:  f.TotalProjects,
		})
	}

	var batches []types.Batch
	for _, group := range pack(summaries, p.limits.FolderBudget) {
		b := newBatch(types.LevelFolder, seq, names, summaries, group)
		b.Prompt = folderPrompt(b)
		b.Schema = FolderResponseSchema
		batches = append(batches, b)
	}
	return batches
}

// ----- project level -----

type projectSummary struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Type      string `json:"type"`
	TaskCount int    `json:"taskCount"`
	Due       string `json:"due,omitempty"`
	Deferred  string `json:"deferred,omitempty"`
}

func (p *Planner) planProjects(snap *types.Snapshot, seq *int) []types.Batch {
	// Group by parent folder first; the size rule applies within each
	// folder's project list, so a batch never mixes folders. Folder order
	// follows the snapshot's folder list for determinism.
	byFolder := make(map[string][]types.Project)
	for _, proj := range snap.Projects {
		byFolder[proj.Folder] = append(byFolder[proj.Folder], proj)
	}

	var order []string
	seen := make(map[string]bool)
	for _, f := range snap.Folders {
		if projs := byFolder[f.Name]; len(projs) > 0 && !seen[f.Name] {
			order = append(order, f.Name)
			seen[f.Name] = true
		}
	}
	if projs := byFolder[""]; len(projs) > 0 {
		order = append(order, "") // projects outside any folder
	}

	var batches []types.Batch
	for _, folder := range order {
		projs := byFolder[folder]
		names := make([]string, len(projs))
		summaries := make([]string, len(projs))
		for i, proj := range projs {
			s := projectSummary{
				Name:      proj.Name,
				Status:    string(proj.Status),
				Type:      string(proj.Type),
				TaskCount: proj.TaskCount,
			}
			if proj.DueAt != nil {
				s.Due = proj.DueAt.Format("2006-01-02")
			}
			if proj.DeferTo != nil {
				s.Deferred = proj.DeferTo.Format("2006-01-02")
			}
			names[i] = proj.Name
			summaries[i] = mustJSON(s)
		}
		for _, group := range pack(summaries, p.limits.ProjectBudget) {
			b := newBatch(types.LevelProject, seq, names, summaries, group)
			b.ParentFolder = folder
			b.Prompt = projectPrompt(b)
			b.Schema = ProjectResponseSchema
			batches = append(batches, b)
		}
	}
	return batches
}

// ----- task level -----

type taskSummary struct {
	Name      string   `json:"name"`
	Tags      []string `json:"tags,omitempty"`
	Due       string   `json:"due,omitempty"`
	Flagged   bool     `json:"flagged,omitempty"`
	Completed bool     `json:"completed,omitempty"`
	Estimate  int      `json:"estimatedMinutes,omitempty"`
	Note      string   `json:"note,omitempty"`
}

func (p *Planner) planTasks(snap *types.Snapshot, seq *int) []types.Batch {
	itemsByProject := make(map[string][]types.WorkItem)
	for _, it := range snap.Items {
		if it.ProjectID != "" {
			itemsByProject[it.ProjectID] = append(itemsByProject[it.ProjectID], it)
		}
	}

	var batches []types.Batch
	for _, proj := range snap.Projects {
		items := itemsByProject[proj.ID]
		if len(items) == 0 {
			continue
		}
		total := len(items)
		if total > p.limits.MaxTasksPerProject {
			// Keep the first N in the source's stable order; the batch
			// records how many were left out.
			items = items[:p.limits.MaxTasksPerProject]
		}

		names := make([]string, len(items))
		summaries := make([]string, len(items))
		for i, it := range items {
			s := taskSummary{
				Name:      it.Name,
				Tags:      it.Tags,
				Flagged:   it.Flagged,
				Completed: it.Completed,
				Estimate:  it.EstimatedMinutes,
				Note:      truncate(it.Note, p.limits.NoteLimit),
			}
			if it.DueAt != nil {
				s.Due = it.DueAt.Format("2006-01-02")
			}
			names[i] = it.Name
			summaries[i] = mustJSON(s)
		}

		group := make([]int, len(items))
		for i := range group {
			group[i] = i
		}
		b := newBatch(types.LevelTask, seq, names, summaries, group)
		b.ProjectName = proj.Name
		b.ProjectStatus = string(proj.Status)
		b.AnalyzingTasks = len(items)
		b.TotalTasks = total
		b.Prompt = taskPrompt(b)
		b.Schema = TaskResponseSchema
		batches = append(batches, b)
	}
	return batches
}

// ----- shared helpers -----

func newBatch(level types.BatchLevel, seq *int, names, summaries []string, group []int) types.Batch {
	b := types.Batch{
		ID:    uuid.NewString(),
		Level: level,
		Seq:   *seq,
	}
	*seq++
	for _, i := range group {
		b.Entities = append(b.Entities, names[i])
		b.Summaries = append(b.Summaries, summaries[i])
		b.Size += charCount(summaries[i])
	}
	return b
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Summary structs contain only plain fields; this cannot fail.
		panic(fmt.Sprintf("serialize summary: %v", err))
	}
	return string(data)
}
