package sysmap

import (
	"fmt"

	"gtdlens/internal/types"
)

// recommendRule inspects the aggregated statistics and either yields one
// recommendation or nil. Each rule is independent so the thresholds can be
// tested in isolation; the rules run as a pipeline and their order carries
// no meaning (consumers may re-sort by severity).
type recommendRule func(*types.SystemMap) *types.Recommendation

var recommendRules = []recommendRule{
	inboxRule,
	stalledRule,
	estimateRule,
	tagUsageRule,
	overdueRule,
	contextTagRule,
}

// Recommend evaluates every threshold rule against the map's aggregated
// statistics. An empty hierarchy yields an empty list, not nil findings.
func Recommend(m *types.SystemMap) []types.Recommendation {
	recs := make([]types.Recommendation, 0, len(recommendRules))
	for _, rule := range recommendRules {
		if r := rule(m); r != nil {
			r.Source = types.SourceRules
			recs = append(recs, *r)
		}
	}
	return recs
}

func inboxRule(m *types.SystemMap) *types.Recommendation {
	if m.TaskStats == nil || m.TaskStats.Inbox <= 20 {
		return nil
	}
	return &types.Recommendation{
		Area:       "inbox",
		Severity:   types.SeverityHigh,
		Finding:    fmt.Sprintf("%d items are sitting unprocessed in the inbox", m.TaskStats.Inbox),
		Suggestion: "Schedule a processing session and clarify each item into a project or next action",
	}
}

func stalledRule(m *types.SystemMap) *types.Recommendation {
	if m.ProjectStats.Stalled <= 5 {
		return nil
	}
	return &types.Recommendation{
		Area:       "projects",
		Severity:   types.SeverityMedium,
		Finding:    fmt.Sprintf("%d active projects have no available next action", m.ProjectStats.Stalled),
		Suggestion: "Review each stalled project and add a concrete next action or put it on hold",
	}
}

func estimateRule(m *types.SystemMap) *types.Recommendation {
	if m.TaskStats == nil || m.TaskStats.PctWithEstimate >= 50 {
		return nil
	}
	return &types.Recommendation{
		Area:       "clarifying",
		Severity:   types.SeverityMedium,
		Finding:    fmt.Sprintf("Only %.0f%% of tasks carry a duration estimate", m.TaskStats.PctWithEstimate),
		Suggestion: "Add rough estimates while clarifying so engagement filters by available time",
	}
}

func tagUsageRule(m *types.SystemMap) *types.Recommendation {
	if m.TaskStats == nil || m.TaskStats.PctWithTags >= 50 {
		return nil
	}
	return &types.Recommendation{
		Area:       "tags",
		Severity:   types.SeverityLow,
		Finding:    fmt.Sprintf("Only %.0f%% of tasks are tagged", m.TaskStats.PctWithTags),
		Suggestion: "Tag tasks with a context so they surface in the right working mode",
	}
}

func overdueRule(m *types.SystemMap) *types.Recommendation {
	if m.TaskStats == nil || m.TaskStats.Overdue <= 10 {
		return nil
	}
	return &types.Recommendation{
		Area:       "due-dates",
		Severity:   types.SeverityHigh,
		Finding:    fmt.Sprintf("%d tasks are past their due date", m.TaskStats.Overdue),
		Suggestion: "Renegotiate or clear overdue items; reserve due dates for real deadlines",
	}
}

func contextTagRule(m *types.SystemMap) *types.Recommendation {
	if len(m.Tags) == 0 {
		return nil // no taxonomy at all is not a missing-context finding
	}
	for _, t := range m.Tags {
		if t.Category == types.TagContexts {
			return nil
		}
	}
	return &types.Recommendation{
		Area:       "tags",
		Severity:   types.SeverityLow,
		Finding:    "No context-category tags were detected in the taxonomy",
		Suggestion: "Introduce a small set of context tags (e.g. @computer, @errands, @calls)",
	}
}
