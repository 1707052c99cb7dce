// Package batch partitions a system map's nested collections into
// context-size-bounded batches, each carrying a deterministic prompt and a
// structured-response schema for one inference call.
package batch

import "unicode/utf8"

// =============================================================================
// Character Budget Management
// =============================================================================
// Batch sizes are measured in characters of serialized summary text. The
// inference session's context window is managed upstream; these budgets keep
// any single request comfortably inside it.

// Limits holds the per-level batching budgets.
type Limits struct {
	// FolderBudget is the character budget for one folder-level batch.
	FolderBudget int
	// ProjectBudget is the character budget for one project-level batch
	// within a single parent-folder grouping.
	ProjectBudget int
	// MaxTasksPerProject caps how many tasks of one project are analyzed;
	// tasks beyond the cap are counted but omitted.
	MaxTasksPerProject int
	// NoteLimit truncates task notes before serialization.
	NoteLimit int
}

// DefaultLimits returns the standard budgets.
func DefaultLimits() Limits {
	return Limits{
		FolderBudget:       20000,
		ProjectBudget:      18000,
		MaxTasksPerProject: 15,
		NoteLimit:          200,
	}
}

// charCount measures a summary's size in characters. Rune count, not byte
// count, so emoji-heavy hierarchies are not penalized.
func charCount(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// pack greedily accumulates summaries into groups whose cumulative character
// size stays at or below budget. A summary that alone exceeds the budget
// still becomes its own group; nothing is ever dropped.
func pack(summaries []string, budget int) [][]int {
	var groups [][]int
	var current []int
	var size int

	for i, s := range summaries {
		n := charCount(s)
		if len(current) > 0 && size+n > budget {
			groups = append(groups, current)
			current = nil
			size = 0
		}
		current = append(current, i)
		size += n
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
