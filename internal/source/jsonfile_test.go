package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtdlens/internal/types"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestJSONFileLoadsAllCollections(t *testing.T) {
	path := writeExport(t, `{
		"folders": [{"name": "Work", "depth": 0, "directProjects": 2, "totalProjects": 3}],
		"tags": [{"name": "@phone", "depth": 0}],
		"projects": [{"id": "p1", "name": "Alpha", "folder": "Work", "status": "active", "type": "parallel", "taskCount": 4}],
		"items": [{"id": "t1", "name": "call venue", "projectId": "p1", "tags": ["@phone"], "flagged": true}]
	}`)
	src := NewJSONFile(path)
	ctx := context.Background()

	folders, err := src.Folders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Work", folders[0].Name)
	assert.Equal(t, 3, folders[0].TotalProjects)

	tags, err := src.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	projects, err := src.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, types.ProjectActive, projects[0].Status)
	assert.Equal(t, types.ProjectParallel, projects[0].Type)

	items, err := src.WorkItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Flagged)
	assert.Equal(t, []string{"@phone"}, items[0].Tags)
}

func TestJSONFileMissing(t *testing.T) {
	src := NewJSONFile(filepath.Join(t.TempDir(), "nope.json"))
	_, err := src.Folders(context.Background())
	require.Error(t, err)
}

func TestJSONFileMalformed(t *testing.T) {
	src := NewJSONFile(writeExport(t, "{not json"))
	_, err := src.Tags(context.Background())
	require.Error(t, err)
}

func TestJSONFileCapsWorkItems(t *testing.T) {
	items := make([]map[string]any, MaxTaskSample+50)
	for i := range items {
		items[i] = map[string]any{"id": fmt.Sprintf("t%d", i), "name": "x"}
	}
	blob, err := json.Marshal(map[string]any{"items": items})
	require.NoError(t, err)

	src := NewJSONFile(writeExport(t, string(blob)))
	got, err := src.WorkItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, MaxTaskSample)
	// The cap keeps the head of the file order.
	assert.Equal(t, "t0", got[0].ID)
}

func TestJSONFileCachesAfterFirstRead(t *testing.T) {
	path := writeExport(t, `{"folders": [{"name": "Work", "depth": 0}]}`)
	src := NewJSONFile(path)

	first, err := src.Folders(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Changing the file after the first read must not change the data.
	require.NoError(t, os.WriteFile(path, []byte(`{"folders": []}`), 0644))
	second, err := src.Folders(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
}
