package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gtdlens/internal/types"
)

func TestMarkdownBasicReport(t *testing.T) {
	m := &types.SystemMap{
		Depth: types.DepthComplete,
		Folders: []types.FolderProfile{
			{Folder: types.Folder{Name: "Work", Depth: 0, TotalProjects: 5}, Type: types.FolderArea, Confidence: types.ConfidenceHigh},
			{Folder: types.Folder{Name: "Clients", Depth: 1, Parent: "Work", TotalProjects: 3}, Type: types.FolderGeneral, Confidence: types.ConfidenceMedium},
		},
		Tags:         []types.TagProfile{{Tag: types.Tag{Name: "@phone"}, Category: types.TagContexts}},
		ProjectStats: types.ProjectStats{Total: 8, Active: 6, Stalled: 1},
		TaskStats:    &types.TaskStats{Total: 40, Inbox: 4, Overdue: 2, PctWithEstimate: 55, PctWithTags: 80},
		Health:       types.HealthReport{Collection: 9, Clarifying: 7, Organizing: 7, Reviewing: 8, Engaging: 9, Overall: 8.0},
	}

	md := Markdown(m)

	assert.Contains(t, md, "# Task System Analysis")
	assert.Contains(t, md, "depth: complete")
	assert.NotContains(t, md, "AI-enhanced")
	assert.Contains(t, md, "**Overall: 8.0 / 10**")
	assert.Contains(t, md, "| Collection | 9 |")
	assert.Contains(t, md, "2 folders, 1 tags, 8 projects (6 active, 1 stalled)")
	// Nested folders are indented under their parent.
	assert.Contains(t, md, "| Work |")
	assert.Contains(t, md, "| · Clients |")
	assert.Contains(t, md, "40 tasks sampled")
	// No recommendations section when the list is empty.
	assert.NotContains(t, md, "## Recommendations")
	assert.NotContains(t, md, "## AI Assessment")
}

func TestMarkdownRecommendationsOrderedBySeverity(t *testing.T) {
	m := &types.SystemMap{
		Recommendations: []types.Recommendation{
			{Area: "tags", Severity: types.SeverityLow, Finding: "few tags", Suggestion: "add some", Source: types.SourceRules},
			{Area: "inbox", Severity: types.SeverityHigh, Finding: "inbox overflow", Suggestion: "process it", Source: types.SourceRules},
			{Area: "projects", Severity: types.SeverityMedium, Finding: "needs review", Suggestion: "review", Source: types.SourceAI},
		},
	}

	md := Markdown(m)
	high := strings.Index(md, "[high] inbox")
	medium := strings.Index(md, "[medium] projects")
	low := strings.Index(md, "[low] tags")

	assert.Greater(t, high, -1)
	assert.Less(t, high, medium)
	assert.Less(t, medium, low)
	// AI findings carry a provenance marker, rule findings do not.
	assert.Contains(t, md, "**[medium] projects** _(AI)_")
	assert.NotContains(t, md, "**[high] inbox** _(AI)_")
}

func TestMarkdownAISection(t *testing.T) {
	m := &types.SystemMap{
		AIEnhanced:          true,
		OrganizationalStyle: "area-based",
		AIFlowAssessment:    "steady",
		AIWorkload:          "heavy",
		BlockedProjects:     []string{"Alpha", "Beta"},
	}

	md := Markdown(m)
	assert.Contains(t, md, "AI-enhanced")
	assert.Contains(t, md, "## AI Assessment")
	assert.Contains(t, md, "**Style:** area-based")
	assert.Contains(t, md, "**Flow:** steady")
	assert.Contains(t, md, "**Workload:** heavy")
	assert.Contains(t, md, "**Blocked projects:** Alpha, Beta")
}

func TestMarkdownFolderAITypeShownWhenDifferent(t *testing.T) {
	m := &types.SystemMap{
		AIEnhanced: true,
		Folders: []types.FolderProfile{
			{
				Folder:     types.Folder{Name: "Old Stuff"},
				Type:       types.FolderGeneral,
				Confidence: types.ConfidenceMedium,
				AI:         &types.FolderInsight{Type: types.FolderArchive, Confidence: 0.9},
			},
			{
				Folder:     types.Folder{Name: "Work"},
				Type:       types.FolderArea,
				Confidence: types.ConfidenceHigh,
				AI:         &types.FolderInsight{Type: types.FolderArea, Confidence: 0.8},
			},
		},
	}

	md := Markdown(m)
	assert.Contains(t, md, "general (AI: archive)")
	assert.NotContains(t, md, "area (AI: area)")
}
