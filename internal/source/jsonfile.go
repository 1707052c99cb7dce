// Package source provides concrete HierarchySource implementations: a JSON
// export file and a SQLite export database. Both are read-only; the engine
// never writes back.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gtdlens/internal/types"
)

// MaxTaskSample caps how many work items a source returns. The collector
// works on a sample; analysis quality degrades gracefully past this point
// while memory stays bounded.
const MaxTaskSample = 1000

// export mirrors the JSON export file layout.
type export struct {
	Folders  []types.Folder   `json:"folders"`
	Tags     []types.Tag      `json:"tags"`
	Projects []types.Project  `json:"projects"`
	Items    []types.WorkItem `json:"items"`
}

// JSONFile is a HierarchySource backed by a single export file. The file is
// read once on first access and cached for the lifetime of the source.
type JSONFile struct {
	path   string
	loaded bool
	data   export
}

// NewJSONFile creates a source for the given export path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (s *JSONFile) load() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read export %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return fmt.Errorf("parse export %s: %w", s.path, err)
	}
	s.loaded = true
	return nil
}

// Folders returns the exported folders.
func (s *JSONFile) Folders(ctx context.Context) ([]types.Folder, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.data.Folders, nil
}

// Tags returns the exported tags.
func (s *JSONFile) Tags(ctx context.Context) ([]types.Tag, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.data.Tags, nil
}

// Projects returns the exported projects.
func (s *JSONFile) Projects(ctx context.Context) ([]types.Project, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.data.Projects, nil
}

// WorkItems returns the exported work items in file order, capped at
// MaxTaskSample.
func (s *JSONFile) WorkItems(ctx context.Context) ([]types.WorkItem, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	items := s.data.Items
	if len(items) > MaxTaskSample {
		items = items[:MaxTaskSample]
	}
	return items, nil
}
