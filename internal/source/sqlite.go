package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gtdlens/internal/types"
)

// SQLite is a HierarchySource backed by an exported SQLite database with
// folders, tags, projects and tasks tables. Item tags are stored as a
// comma-separated list in the tasks table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens an export database read-only.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open export db: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Folders reads the folders table ordered by depth then name.
func (s *SQLite) Folders(ctx context.Context) ([]types.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, depth, COALESCE(parent, ''), child_folders, direct_projects, total_projects
		FROM folders ORDER BY depth, name`)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	var out []types.Folder
	for rows.Next() {
		var f types.Folder
		if err := rows.Scan(&f.Name, &f.Depth, &f.Parent, &f.ChildFolders, &f.DirectProjects, &f.TotalProjects); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Tags reads the tags table ordered by depth then name.
func (s *SQLite) Tags(ctx context.Context) ([]types.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, depth, COALESCE(parent, ''), child_count
		FROM tags ORDER BY depth, name`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var out []types.Tag
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.Name, &t.Depth, &t.Parent, &t.ChildCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Projects reads the projects table in rowid order.
func (s *SQLite) Projects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(folder, ''), status, type, due_at, defer_to, task_count
		FROM projects ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []types.Project
	for rows.Next() {
		var p types.Project
		var due, deferTo sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Folder, &p.Status, &p.Type, &due, &deferTo, &p.TaskCount); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.DueAt = parseNullTime(due)
		p.DeferTo = parseNullTime(deferTo)
		out = append(out, p)
	}
	return out, rows.Err()
}

// WorkItems reads the tasks table in rowid order, which preserves the
// source application's within-project ordering, capped at MaxTaskSample.
func (s *SQLite) WorkItems(ctx context.Context) ([]types.WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(project_id, ''), COALESCE(tags, ''),
		       due_at, defer_to, flagged, completed, dropped,
		       COALESCE(estimated_minutes, 0), COALESCE(note, ''),
		       created_at, modified_at
		FROM tasks ORDER BY rowid LIMIT ?`, MaxTaskSample)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []types.WorkItem
	for rows.Next() {
		var it types.WorkItem
		var tags string
		var due, deferTo, created, modified sql.NullString
		if err := rows.Scan(&it.ID, &it.Name, &it.ProjectID, &tags,
			&due, &deferTo, &it.Flagged, &it.Completed, &it.Dropped,
			&it.EstimatedMinutes, &it.Note, &created, &modified); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if tags != "" {
			it.Tags = strings.Split(tags, ",")
		}
		it.DueAt = parseNullTime(due)
		it.DeferTo = parseNullTime(deferTo)
		if t := parseNullTime(created); t != nil {
			it.CreatedAt = *t
		}
		if t := parseNullTime(modified); t != nil {
			it.ModifiedAt = *t
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v.String); err == nil {
			return &t
		}
	}
	return nil
}
