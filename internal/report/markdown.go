// Package report renders a SystemMap into a markdown document. Rendering is
// a consumer concern: the engine hands over plain structured data and this
// package formats it for humans.
package report

import (
	"fmt"
	"strings"

	"gtdlens/internal/types"
)

// Markdown renders the full analysis report.
func Markdown(m *types.SystemMap) string {
	var sb strings.Builder

	sb.WriteString("# Task System Analysis\n\n")
	fmt.Fprintf(&sb, "Generated %s · depth: %s", m.GeneratedAt.Format("2006-01-02 15:04"), m.Depth)
	if m.AIEnhanced {
		sb.WriteString(" · AI-enhanced")
	}
	sb.WriteString("\n\n")

	writeHealth(&sb, m.Health)
	writeStructure(&sb, m)
	writeRecommendations(&sb, m.Recommendations)
	writeAISummary(&sb, m)

	return sb.String()
}

func writeHealth(sb *strings.Builder, h types.HealthReport) {
	sb.WriteString("## Health\n\n")
	fmt.Fprintf(sb, "**Overall: %.1f / 10**\n\n", h.Overall)
	sb.WriteString("| Phase | Score |\n|---|---|\n")
	fmt.Fprintf(sb, "| Collection | %d |\n", h.Collection)
	fmt.Fprintf(sb, "| Clarifying | %d |\n", h.Clarifying)
	fmt.Fprintf(sb, "| Organizing | %d |\n", h.Organizing)
	fmt.Fprintf(sb, "| Reviewing | %d |\n", h.Reviewing)
	fmt.Fprintf(sb, "| Engaging | %d |\n\n", h.Engaging)
}

func writeStructure(sb *strings.Builder, m *types.SystemMap) {
	sb.WriteString("## Structure\n\n")
	fmt.Fprintf(sb, "%d folders, %d tags, %d projects (%d active, %d stalled)\n\n",
		len(m.Folders), len(m.Tags), m.ProjectStats.Total,
		m.ProjectStats.Active, m.ProjectStats.Stalled)

	if len(m.Folders) > 0 {
		sb.WriteString("| Folder | Type | Confidence | Projects |\n|---|---|---|---|\n")
		for _, f := range m.Folders {
			typ := f.Type
			if f.AI != nil && f.AI.Type != f.Type {
				typ = fmt.Sprintf("%s (AI: %s)", f.Type, f.AI.Type)
			}
			fmt.Fprintf(sb, "| %s | %s | %s | %d |\n",
				strings.Repeat("· ", f.Folder.Depth)+f.Name, typ, f.Confidence, f.TotalProjects)
		}
		sb.WriteString("\n")
	}

	if ts := m.TaskStats; ts != nil {
		fmt.Fprintf(sb, "%d tasks sampled: %d inbox, %d overdue, %.0f%% estimated, %.0f%% tagged\n\n",
			ts.Total, ts.Inbox, ts.Overdue, ts.PctWithEstimate, ts.PctWithTags)
	}
}

func writeRecommendations(sb *strings.Builder, recs []types.Recommendation) {
	if len(recs) == 0 {
		return
	}
	sb.WriteString("## Recommendations\n\n")
	for _, severity := range []string{types.SeverityHigh, types.SeverityMedium, types.SeverityLow} {
		for _, r := range recs {
			if r.Severity != severity {
				continue
			}
			marker := ""
			if r.Source == types.SourceAI {
				marker = " _(AI)_"
			}
			fmt.Fprintf(sb, "- **[%s] %s**%s: %s. %s\n", r.Severity, r.Area, marker, r.Finding, r.Suggestion)
		}
	}
	sb.WriteString("\n")
}

func writeAISummary(sb *strings.Builder, m *types.SystemMap) {
	if !m.AIEnhanced {
		return
	}
	sb.WriteString("## AI Assessment\n\n")
	if m.OrganizationalStyle != "" {
		fmt.Fprintf(sb, "**Style:** %s\n\n", m.OrganizationalStyle)
	}
	if m.AIFlowAssessment != "" {
		fmt.Fprintf(sb, "**Flow:** %s\n\n", m.AIFlowAssessment)
	}
	if m.AIWorkload != "" {
		fmt.Fprintf(sb, "**Workload:** %s\n\n", m.AIWorkload)
	}
	if len(m.BlockedProjects) > 0 {
		fmt.Fprintf(sb, "**Blocked projects:** %s\n\n", strings.Join(m.BlockedProjects, ", "))
	}
}
