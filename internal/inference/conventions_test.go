package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gtdlens/internal/types"
)

func TestTagConventions(t *testing.T) {
	snap := &types.Snapshot{
		Tags: []types.Tag{
			{Name: "@phone"},
			{Name: "energy:low"},
			{Name: "Waiting For"},
			{Name: "🔥 urgent"},
		},
	}

	conv := DetectConventions(snap)
	assert.True(t, conv.Tags.UsesAtPrefix)
	assert.True(t, conv.Tags.UsesColons)
	assert.True(t, conv.Tags.UsesMixedCase)
	assert.True(t, conv.Tags.UsesEmoji)
	assert.Greater(t, conv.Tags.MeanNameLength, 0.0)
}

func TestTagConventionsEmptyTaxonomy(t *testing.T) {
	conv := DetectConventions(&types.Snapshot{})
	assert.Equal(t, types.TagConventions{}, conv.Tags)
	assert.Equal(t, types.FolderConventions{}, conv.Folders)
	assert.Nil(t, conv.Tasks)
}

func TestFolderConventions(t *testing.T) {
	snap := &types.Snapshot{
		Folders: []types.Folder{
			{Name: "Work", Depth: 0, DirectProjects: 6},
			{Name: "Personal", Depth: 0, DirectProjects: 2},
			{Name: "Clients", Depth: 1, Parent: "Work", DirectProjects: 4},
			{Name: "Acme", Depth: 2, Parent: "Clients"},
		},
	}

	conv := DetectConventions(snap)
	assert.Equal(t, 2, conv.Folders.MaxDepth)
	assert.Equal(t, 2, conv.Folders.TopLevelCount)
	assert.InDelta(t, 3.0, conv.Folders.MeanProjectsEach, 0.001)
	assert.False(t, conv.Folders.UsesEmoji)
}

func TestTaskConventionsFromStats(t *testing.T) {
	snap := &types.Snapshot{
		TaskStats: &types.TaskStats{
			PctWithEstimate: 35,
			PctWithTags:     80,
			PctWithDueDate:  12,
		},
	}

	conv := DetectConventions(snap)
	if assert.NotNil(t, conv.Tasks) {
		assert.InDelta(t, 35.0, conv.Tasks.EstimateRate, 0.001)
		assert.InDelta(t, 80.0, conv.Tasks.TagRate, 0.001)
		assert.InDelta(t, 12.0, conv.Tasks.DueDateRate, 0.001)
	}
}

func TestMeanNameLengthCountsRunes(t *testing.T) {
	snap := &types.Snapshot{
		Tags: []types.Tag{{Name: "日本語"}},
	}
	conv := DetectConventions(snap)
	assert.InDelta(t, 3.0, conv.Tags.MeanNameLength, 0.001)
}
