package batch

import (
	"fmt"
	"strings"

	"gtdlens/internal/types"
)

// Prompt templates are deterministic: the same batch always produces the
// same prompt, so an inference session can be replayed.

func folderPrompt(b types.Batch) string {
	var sb strings.Builder
	sb.WriteString("You are reviewing the folder hierarchy of a personal task-management system.\n")
	sb.WriteString("Each line below is one folder with its rule-based classification.\n\n")
	writeSummaries(&sb, b.Summaries)
	sb.WriteString("\nFor every folder, assess its organizational health and suggest a purpose type\n")
	sb.WriteString("(archive, someday, reference, area, general) with a confidence between 0 and 1\n")
	sb.WriteString("and a one-sentence reasoning. Add hierarchy-wide recommendations, a short\n")
	sb.WriteString("description of the organizational style, and category suggestions for any tags\n")
	sb.WriteString("you can infer from folder names.\n")
	sb.WriteString("Respond with a single JSON object matching the provided schema.\n")
	return sb.String()
}

func projectPrompt(b types.Batch) string {
	var sb strings.Builder
	folder := b.ParentFolder
	if folder == "" {
		folder = "(no folder)"
	}
	fmt.Fprintf(&sb, "You are reviewing the projects inside the folder %q.\n", folder)
	sb.WriteString("Each line below is one project with its status, type and task count.\n\n")
	writeSummaries(&sb, b.Summaries)
	sb.WriteString("\nAssess the flow of work through these projects: name projects that look\n")
	sb.WriteString("blocked or are bottlenecks, and list the projects that deserve attention\n")
	sb.WriteString("first. Respond with a single JSON object matching the provided schema.\n")
	return sb.String()
}

func taskPrompt(b types.Batch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are reviewing tasks of the project %q (status: %s).\n", b.ProjectName, b.ProjectStatus)
	if b.TotalTasks > b.AnalyzingTasks {
		fmt.Fprintf(&sb, "Showing the first %d of %d tasks.\n", b.AnalyzingTasks, b.TotalTasks)
	}
	sb.WriteString("Each line below is one task.\n\n")
	writeSummaries(&sb, b.Summaries)
	sb.WriteString("\nAssess the workload, point out quality issues (vague names, missing\n")
	sb.WriteString("estimates, stale items) and suggest concrete next actions.\n")
	sb.WriteString("Respond with a single JSON object matching the provided schema.\n")
	return sb.String()
}

func writeSummaries(sb *strings.Builder, summaries []string) {
	for _, s := range summaries {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
}
