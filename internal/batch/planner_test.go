package batch

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtdlens/internal/types"
)

func testMap(folders ...types.Folder) *types.SystemMap {
	m := &types.SystemMap{}
	for _, f := range folders {
		m.Folders = append(m.Folders, types.FolderProfile{
			Folder:     f,
			Type:       types.FolderGeneral,
			Confidence: types.ConfidenceMedium,
		})
	}
	return m
}

func TestPlanRejectsBadInput(t *testing.T) {
	p := NewPlanner()

	_, err := p.Plan(nil, &types.Snapshot{}, types.DepthFolders)
	require.Error(t, err)

	_, err = p.Plan(&types.SystemMap{}, nil, types.DepthFolders)
	require.Error(t, err)

	_, err = p.Plan(&types.SystemMap{}, &types.Snapshot{}, types.Depth("everything"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "everything")
}

func TestPlanEmptyHierarchy(t *testing.T) {
	batches, err := NewPlanner().Plan(&types.SystemMap{}, &types.Snapshot{}, types.DepthComplete)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestPlanFolderBatchesRespectBudget(t *testing.T) {
	var folders []types.Folder
	for i := 0; i < 40; i++ {
		folders = append(folders, types.Folder{Name: fmt.Sprintf("Folder %02d", i), Depth: 0})
	}
	m := testMap(folders...)

	limits := DefaultLimits()
	limits.FolderBudget = 500
	batches, err := NewPlanner(WithLimits(limits)).Plan(m, &types.Snapshot{Folders: folders}, types.DepthFolders)
	require.NoError(t, err)
	require.Greater(t, len(batches), 1)

	var seen int
	for _, b := range batches {
		assert.Equal(t, types.LevelFolder, b.Level)
		assert.LessOrEqual(t, b.Size, limits.FolderBudget)
		assert.Equal(t, len(b.Entities), len(b.Summaries))
		assert.NotEmpty(t, b.Prompt)
		assert.Equal(t, FolderResponseSchema, b.Schema)
		seen += len(b.Entities)
	}
	assert.Equal(t, len(folders), seen)
}

func TestPlanProjectBatchesNeverMixFolders(t *testing.T) {
	snap := &types.Snapshot{
		Folders: []types.Folder{
			{Name: "Work", Depth: 0},
			{Name: "Personal", Depth: 0},
		},
		Projects: []types.Project{
			{ID: "p1", Name: "Alpha", Folder: "Work", Status: types.ProjectActive, Type: types.ProjectParallel},
			{ID: "p2", Name: "Beta", Folder: "Personal", Status: types.ProjectActive, Type: types.ProjectParallel},
			{ID: "p3", Name: "Gamma", Folder: "Work", Status: types.ProjectOnHold, Type: types.ProjectSequential},
			{ID: "p4", Name: "Loose", Status: types.ProjectActive, Type: types.ProjectSingleAction},
		},
	}
	m := testMap(snap.Folders...)

	batches, err := NewPlanner().Plan(m, snap, types.DepthProjects)
	require.NoError(t, err)

	var projectBatches []types.Batch
	for _, b := range batches {
		if b.Level == types.LevelProject {
			projectBatches = append(projectBatches, b)
		}
	}
	require.Len(t, projectBatches, 3)

	byFolder := map[string][]string{}
	for _, b := range projectBatches {
		byFolder[b.ParentFolder] = append(byFolder[b.ParentFolder], b.Entities...)
	}
	assert.ElementsMatch(t, []string{"Alpha", "Gamma"}, byFolder["Work"])
	assert.ElementsMatch(t, []string{"Beta"}, byFolder["Personal"])
	assert.ElementsMatch(t, []string{"Loose"}, byFolder[""])
}

func TestPlanTaskBatchCapsPerProject(t *testing.T) {
	snap := &types.Snapshot{
		Projects: []types.Project{
			{ID: "p1", Name: "Big", Status: types.ProjectActive, Type: types.ProjectParallel},
		},
	}
	for i := 0; i < 20; i++ {
		snap.Items = append(snap.Items, types.WorkItem{
			ID:        fmt.Sprintf("t%02d", i),
			Name:      fmt.Sprintf("Task %02d", i),
			ProjectID: "p1",
		})
	}

	batches, err := NewPlanner().Plan(testMap(), snap, types.DepthComplete)
	require.NoError(t, err)
	// One project-tier batch for the loose project plus its task batch.
	require.Len(t, batches, 2)

	b := batches[1]
	assert.Equal(t, types.LevelTask, b.Level)
	assert.Equal(t, "Big", b.ProjectName)
	assert.Equal(t, 15, b.AnalyzingTasks)
	assert.Equal(t, 20, b.TotalTasks)
	assert.Len(t, b.Entities, 15)
	// The cap keeps the first items in source order.
	assert.Equal(t, "Task 00", b.Entities[0])
	assert.Equal(t, "Task 14", b.Entities[14])
	assert.Contains(t, b.Prompt, "first 15 of 20")
}

func TestPlanTruncatesNotes(t *testing.T) {
	snap := &types.Snapshot{
		Projects: []types.Project{
			{ID: "p1", Name: "P", Status: types.ProjectActive, Type: types.ProjectParallel},
		},
		Items: []types.WorkItem{
			{ID: "t1", Name: "noisy", ProjectID: "p1", Note: strings.Repeat("n", 1000)},
		},
	}

	limits := DefaultLimits()
	limits.NoteLimit = 50
	batches, err := NewPlanner(WithLimits(limits)).Plan(testMap(), snap, types.DepthComplete)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	taskBatch := batches[1]
	require.Equal(t, types.LevelTask, taskBatch.Level)
	assert.NotContains(t, taskBatch.Summaries[0], strings.Repeat("n", 51))
	assert.Contains(t, taskBatch.Summaries[0], strings.Repeat("n", 50))
}

func TestPlanOrdering(t *testing.T) {
	snap := &types.Snapshot{
		Folders: []types.Folder{{Name: "Work", Depth: 0}},
		Projects: []types.Project{
			{ID: "p1", Name: "Alpha", Folder: "Work", Status: types.ProjectActive, Type: types.ProjectParallel},
		},
		Items: []types.WorkItem{
			{ID: "t1", Name: "task", ProjectID: "p1"},
		},
	}
	m := testMap(snap.Folders...)

	batches, err := NewPlanner().Plan(m, snap, types.DepthComplete)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	// Sequence numbers are consecutive and tiers never interleave.
	levelRank := map[types.BatchLevel]int{
		types.LevelFolder:  0,
		types.LevelProject: 1,
		types.LevelTask:    2,
	}
	for i, b := range batches {
		assert.Equal(t, i, b.Seq)
		if i > 0 {
			assert.GreaterOrEqual(t, levelRank[b.Level], levelRank[batches[i-1].Level])
		}
		assert.NotEmpty(t, b.ID)
	}
}

func TestPlanDepthGating(t *testing.T) {
	snap := &types.Snapshot{
		Folders: []types.Folder{{Name: "Work", Depth: 0}},
		Projects: []types.Project{
			{ID: "p1", Name: "Alpha", Folder: "Work", Status: types.ProjectActive, Type: types.ProjectParallel},
		},
		Items: []types.WorkItem{{ID: "t1", Name: "task", ProjectID: "p1"}},
	}
	m := testMap(snap.Folders...)
	p := NewPlanner()

	foldersOnly, err := p.Plan(m, snap, types.DepthFolders)
	require.NoError(t, err)
	require.Len(t, foldersOnly, 1)
	assert.Equal(t, types.LevelFolder, foldersOnly[0].Level)

	withProjects, err := p.Plan(m, snap, types.DepthProjects)
	require.NoError(t, err)
	require.Len(t, withProjects, 2)

	complete, err := p.Plan(m, snap, types.DepthComplete)
	require.NoError(t, err)
	require.Len(t, complete, 3)
}

func TestSchemasAreValidJSON(t *testing.T) {
	for name, schema := range map[string]string{
		"folder":  FolderResponseSchema,
		"project": ProjectResponseSchema,
		"task":    TaskResponseSchema,
	} {
		var parsed map[string]any
		require.NoError(t, json.Unmarshal([]byte(schema), &parsed), "schema %s", name)
		assert.Equal(t, "object", parsed["type"], "schema %s", name)
	}
}

func TestSchemaFor(t *testing.T) {
	assert.Equal(t, FolderResponseSchema, SchemaFor(types.LevelFolder))
	assert.Equal(t, ProjectResponseSchema, SchemaFor(types.LevelProject))
	assert.Equal(t, TaskResponseSchema, SchemaFor(types.LevelTask))
}
