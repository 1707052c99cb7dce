package inference

import (
	"strings"
	"unicode"

	"gtdlens/internal/types"
)

// DetectConventions scans the snapshot for naming and structural habits.
// Task conventions are only present when the snapshot carries task stats.
func DetectConventions(snap *types.Snapshot) types.Conventions {
	conv := types.Conventions{
		Tags:    tagConventions(snap.Tags),
		Folders: folderConventions(snap.Folders),
	}
	if ts := snap.TaskStats; ts != nil {
		conv.Tasks = &types.TaskConventions{
			EstimateRate: ts.PctWithEstimate,
			TagRate:      ts.PctWithTags,
			DueDateRate:  ts.PctWithDueDate,
		}
	}
	return conv
}

func tagConventions(tags []types.Tag) types.TagConventions {
	var tc types.TagConventions
	if len(tags) == 0 {
		return tc
	}
	var totalLen int
	for _, t := range tags {
		if strings.HasPrefix(t.Name, "@") {
			tc.UsesAtPrefix = true
		}
		if strings.Contains(t.Name, ":") {
			tc.UsesColons = true
		}
		if containsEmoji(t.Name) {
			tc.UsesEmoji = true
		}
		if isMixedCase(t.Name) {
			tc.UsesMixedCase = true
		}
		totalLen += len([]rune(t.Name))
	}
	tc.MeanNameLength = float64(totalLen) / float64(len(tags))
	return tc
}

func folderConventions(folders []types.Folder) types.FolderConventions {
	var fc types.FolderConventions
	if len(folders) == 0 {
		return fc
	}
	var totalProjects int
	for _, f := range folders {
		if f.Depth > fc.MaxDepth {
			fc.MaxDepth = f.Depth
		}
		if f.Depth == 0 {
			fc.TopLevelCount++
		}
		if containsEmoji(f.Name) {
			fc.UsesEmoji = true
		}
		totalProjects += f.DirectProjects
	}
	fc.MeanProjectsEach = float64(totalProjects) / float64(len(folders))
	return fc
}

func containsEmoji(s string) bool {
	for _, r := range s {
		if r >= 0x1F000 || (r >= 0x2600 && r <= 0x27BF) {
			return true
		}
	}
	return false
}

// isMixedCase reports whether the name mixes upper and lower case letters.
func isMixedCase(s string) bool {
	var hasUpper, hasLower bool
	for _, r := range s {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	return hasUpper && hasLower
}
