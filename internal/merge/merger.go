// Package merge folds structured inference responses back into a SystemMap.
// The merge is non-destructive: rule-based fields are never overwritten, AI
// data rides alongside with explicit provenance, and every merge returns a
// structurally-copied map so a failed or partial merge cannot corrupt the
// caller's reference.
package merge

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gtdlens/internal/types"
)

// ErrParse indicates a response could not be parsed against the batch's
// schema. The pipeline recovers locally: it may retry the batch once, then
// skips its contribution.
var ErrParse = errors.New("inference response parse failure")

// =============================================================================
// RESPONSE SHAPES
// =============================================================================
// These mirror the schemas in the batch package.

// FolderResponse is the reply to a folder-level batch.
type FolderResponse struct {
	Folders             []FolderFinding `json:"folders"`
	Tags                []TagFinding    `json:"tags,omitempty"`
	OrganizationalStyle string          `json:"organizationalStyle,omitempty"`
	Recommendations     []Finding       `json:"recommendations,omitempty"`
}

// FolderFinding is one per-folder assessment.
type FolderFinding struct {
	Name          string  `json:"name"`
	Health        string  `json:"health,omitempty"`
	SuggestedType string  `json:"suggestedType"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning,omitempty"`
}

// TagFinding is one per-tag category suggestion.
type TagFinding struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Meaning  string `json:"meaning,omitempty"`
}

// Finding is one AI-sourced recommendation.
type Finding struct {
	Area       string `json:"area"`
	Severity   string `json:"severity"`
	Finding    string `json:"finding"`
	Suggestion string `json:"suggestion"`
}

// ProjectResponse is the reply to a project-level batch.
type ProjectResponse struct {
	FlowAssessment  string    `json:"flowAssessment"`
	BlockedProjects []string  `json:"blockedProjects,omitempty"`
	Priorities      []string  `json:"priorities,omitempty"`
	Recommendations []Finding `json:"recommendations,omitempty"`
}

// TaskResponse is the reply to a task-level batch.
type TaskResponse struct {
	WorkloadAssessment string    `json:"workloadAssessment"`
	QualityIssues      []string  `json:"qualityIssues,omitempty"`
	NextActions        []string  `json:"nextActions,omitempty"`
	Recommendations    []Finding `json:"recommendations,omitempty"`
}

// =============================================================================
// MERGER
// =============================================================================

// Merger applies batch responses to a SystemMap.
type Merger struct {
	log *zap.Logger
}

// NewMerger creates a Merger. A nil logger means no diagnostics.
func NewMerger(log *zap.Logger) *Merger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{log: log}
}

// Apply parses raw inference output for the batch's level and merges it into
// a structural copy of m, which is returned. m itself is never mutated.
// Merging the same response twice yields the same map as merging it once.
func (mg *Merger) Apply(m *types.SystemMap, b types.Batch, raw string) (*types.SystemMap, error) {
	out := Clone(m)
	switch b.Level {
	case types.LevelFolder:
		resp, err := parseAs[FolderResponse](raw, func(r *FolderResponse) bool {
			return r.Folders != nil
		})
		if err != nil {
			return nil, err
		}
		mg.applyFolder(out, resp)
	case types.LevelProject:
		resp, err := parseAs[ProjectResponse](raw, func(r *ProjectResponse) bool {
			return r.FlowAssessment != ""
		})
		if err != nil {
			return nil, err
		}
		mg.applyProject(out, resp)
	case types.LevelTask:
		resp, err := parseAs[TaskResponse](raw, func(r *TaskResponse) bool {
			return r.WorkloadAssessment != ""
		})
		if err != nil {
			return nil, err
		}
		mg.applyTask(out, resp)
	default:
		return nil, fmt.Errorf("merge: unknown batch level %q", b.Level)
	}
	out.AIEnhanced = true
	return out, nil
}

// parseAs tries each JSON candidate in the raw output until one unmarshals
// into T and passes the shape check.
func parseAs[T any](raw string, valid func(*T) bool) (*T, error) {
	for _, candidate := range findJSONCandidates(raw) {
		var resp T
		if err := json.Unmarshal([]byte(candidate), &resp); err != nil {
			continue
		}
		if valid(&resp) {
			return &resp, nil
		}
	}
	return nil, fmt.Errorf("%w: no JSON object matching the expected schema", ErrParse)
}

func (mg *Merger) applyFolder(m *types.SystemMap, resp *FolderResponse) {
	byName := make(map[string]int, len(m.Folders))
	for i, f := range m.Folders {
		byName[f.Name] = i
	}
	for _, finding := range resp.Folders {
		i, ok := byName[finding.Name]
		if !ok {
			// Stale or hallucinated name; dropped, not an error.
			mg.log.Debug("folder insight dropped, no matching folder", zap.String("name", finding.Name))
			continue
		}
		m.Folders[i].AI = &types.FolderInsight{
			Type:       finding.SuggestedType,
			Confidence: finding.Confidence,
			Reasoning:  finding.Reasoning,
			Health:     finding.Health,
		}
	}

	tagByName := make(map[string]int, len(m.Tags))
	for i, t := range m.Tags {
		tagByName[t.Name] = i
	}
	for _, finding := range resp.Tags {
		i, ok := tagByName[finding.Name]
		if !ok {
			mg.log.Debug("tag insight dropped, no matching tag", zap.String("name", finding.Name))
			continue
		}
		m.Tags[i].AI = &types.TagInsight{Category: finding.Category, Meaning: finding.Meaning}
	}

	if resp.OrganizationalStyle != "" {
		m.OrganizationalStyle = resp.OrganizationalStyle
	}
	appendRecommendations(m, resp.Recommendations)
}

func (mg *Merger) applyProject(m *types.SystemMap, resp *ProjectResponse) {
	m.AIFlowAssessment = resp.FlowAssessment
	for _, name := range resp.BlockedProjects {
		if !containsString(m.BlockedProjects, name) {
			m.BlockedProjects = append(m.BlockedProjects, name)
		}
	}
	for _, name := range resp.Priorities {
		rec := types.Recommendation{
			Area:       "projects",
			Severity:   types.SeverityMedium,
			Finding:    fmt.Sprintf("Project %q needs attention", name),
			Suggestion: "Review this project during the next weekly review",
			Source:     types.SourceAI,
		}
		appendRecommendation(m, rec)
	}
	appendRecommendations(m, resp.Recommendations)
}

func (mg *Merger) applyTask(m *types.SystemMap, resp *TaskResponse) {
	m.AIWorkload = resp.WorkloadAssessment
	for _, issue := range resp.QualityIssues {
		rec := types.Recommendation{
			Area:       "tasks",
			Severity:   types.SeverityLow,
			Finding:    issue,
			Suggestion: "Clean this up during clarifying",
			Source:     types.SourceAI,
		}
		appendRecommendation(m, rec)
	}
	appendRecommendations(m, resp.Recommendations)
}

// appendRecommendations adds AI findings to the existing list without ever
// replacing rule-based entries, deduplicating so a re-merged response does
// not double up.
func appendRecommendations(m *types.SystemMap, findings []Finding) {
	for _, f := range findings {
		appendRecommendation(m, types.Recommendation{
			Area:       f.Area,
			Severity:   f.Severity,
			Finding:    f.Finding,
			Suggestion: f.Suggestion,
			Source:     types.SourceAI,
		})
	}
}

func appendRecommendation(m *types.SystemMap, rec types.Recommendation) {
	for _, existing := range m.Recommendations {
		if existing == rec {
			return
		}
	}
	m.Recommendations = append(m.Recommendations, rec)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Clone makes a structural copy of a SystemMap deep enough that merging
// into the copy cannot alias the original: slices are copied and all
// pointer-held values are duplicated.
func Clone(m *types.SystemMap) *types.SystemMap {
	out := *m
	out.Folders = make([]types.FolderProfile, len(m.Folders))
	for i, f := range m.Folders {
		if f.AI != nil {
			ai := *f.AI
			f.AI = &ai
		}
		out.Folders[i] = f
	}
	out.Tags = make([]types.TagProfile, len(m.Tags))
	for i, t := range m.Tags {
		if t.AI != nil {
			ai := *t.AI
			t.AI = &ai
		}
		out.Tags[i] = t
	}
	if m.TaskStats != nil {
		ts := *m.TaskStats
		out.TaskStats = &ts
	}
	if m.Conventions.Tasks != nil {
		tc := *m.Conventions.Tasks
		out.Conventions.Tasks = &tc
	}
	out.Recommendations = append([]types.Recommendation(nil), m.Recommendations...)
	out.BlockedProjects = append([]string(nil), m.BlockedProjects...)
	return &out
}
