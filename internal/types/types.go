// Package types provides shared type definitions used across gtdlens
// packages: raw hierarchy records, snapshot aggregates, the canonical
// SystemMap, and batching structures. This package exists so that the
// pipeline stages depend on one vocabulary instead of on each other.
package types

import (
	"context"
	"time"
)

// =============================================================================
// RAW HIERARCHY RECORDS
// =============================================================================

// ProjectStatus enumerates the lifecycle states of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "onHold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectDropped   ProjectStatus = "dropped"
)

// ProjectType enumerates the structural types of a project.
type ProjectType string

const (
	ProjectSequential   ProjectType = "sequential"
	ProjectParallel     ProjectType = "parallel"
	ProjectSingleAction ProjectType = "singleAction"
)

// Folder is a hierarchical organizational node. Depth 0 means root; a child
// folder's depth is always its parent's depth + 1.
type Folder struct {
	Name           string `json:"name"`
	Depth          int    `json:"depth"`
	Parent         string `json:"parent,omitempty"` // empty for roots
	ChildFolders   int    `json:"childFolders"`
	DirectProjects int    `json:"directProjects"`
	TotalProjects  int    `json:"totalProjects"` // direct + transitive
}

// Tag is a hierarchical label. UsageCount is filled in by the collector from
// the work-item sample.
type Tag struct {
	Name       string `json:"name"`
	Depth      int    `json:"depth"`
	Parent     string `json:"parent,omitempty"`
	ChildCount int    `json:"childCount"`
	UsageCount int    `json:"usageCount"`
}

// Project is a named container of work items.
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Folder    string        `json:"folder,omitempty"` // parent folder name
	Status    ProjectStatus `json:"status"`
	Type      ProjectType   `json:"type"`
	DueAt     *time.Time    `json:"dueAt,omitempty"`
	DeferTo   *time.Time    `json:"deferTo,omitempty"`
	TaskCount int           `json:"taskCount"`
}

// WorkItem is a single actionable unit. Completed and Dropped are mutually
// exclusive; exactly one of {active, completed, dropped} holds. Items with
// an empty ProjectID live in the inbox.
type WorkItem struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	ProjectID        string     `json:"projectId,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	DueAt            *time.Time `json:"dueAt,omitempty"`
	DeferTo          *time.Time `json:"deferTo,omitempty"`
	Flagged          bool       `json:"flagged"`
	Completed        bool       `json:"completed"`
	Dropped          bool       `json:"dropped"`
	EstimatedMinutes int        `json:"estimatedMinutes,omitempty"`
	Note             string     `json:"note,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	ModifiedAt       time.Time  `json:"modifiedAt"`
}

// Active reports whether the item is neither completed nor dropped.
func (w WorkItem) Active() bool { return !w.Completed && !w.Dropped }

// HierarchySource provides read access to an opaque task-management
// hierarchy. Implementations must return work items in a stable order;
// sequential-project blocking is derived from that order. The engine never
// mutates the source.
type HierarchySource interface {
	Folders(ctx context.Context) ([]Folder, error)
	Tags(ctx context.Context) ([]Tag, error)
	Projects(ctx context.Context) ([]Project, error)
	// WorkItems returns a capped sample of work items in source order.
	WorkItems(ctx context.Context) ([]WorkItem, error)
}

// =============================================================================
// SNAPSHOT AGGREGATES
// =============================================================================

// ProjectStats aggregates project counts by status and type.
type ProjectStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	OnHold       int `json:"onHold"`
	Completed    int `json:"completed"`
	Dropped      int `json:"dropped"`
	Sequential   int `json:"sequential"`
	Parallel     int `json:"parallel"`
	SingleAction int `json:"singleAction"`
	Overdue      int `json:"overdue"`
	Stalled      int `json:"stalled"` // active projects with no available task
}

// TaskStats aggregates the work-item sample. Percentages are 0-100.
type TaskStats struct {
	Total           int     `json:"total"`
	Inbox           int     `json:"inbox"`
	Completed       int     `json:"completed"`
	Flagged         int     `json:"flagged"`
	Overdue         int     `json:"overdue"`
	Available       int     `json:"available"`
	PctWithDueDate  float64 `json:"pctWithDueDate"`
	PctWithEstimate float64 `json:"pctWithEstimate"`
	PctWithTags     float64 `json:"pctWithTags"`
	PctWithNote     float64 `json:"pctWithNote"`
}

// Snapshot is the denormalized point-in-time view produced by the collector.
// TaskStats is nil unless full collection depth was requested.
type Snapshot struct {
	TakenAt      time.Time    `json:"takenAt"`
	Folders      []Folder     `json:"folders"`
	Tags         []Tag        `json:"tags"`
	Projects     []Project    `json:"projects"`
	Items        []WorkItem   `json:"items"`
	ProjectStats ProjectStats `json:"projectStats"`
	TaskStats    *TaskStats   `json:"taskStats,omitempty"`
}

// =============================================================================
// INFERENCE RESULTS
// =============================================================================

// Confidence levels for rule-based classification.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Folder types assigned by the inference engine.
const (
	FolderArchive   = "archive"
	FolderSomeday   = "someday"
	FolderReference = "reference"
	FolderArea      = "area"
	FolderGeneral   = "general"
)

// Tag categories assigned by the inference engine.
const (
	TagContexts      = "contexts"
	TagPeople        = "people"
	TagStatus        = "status"
	TagEnergy        = "energy"
	TagTime          = "time"
	TagAreas         = "areas"
	TagUncategorized = "uncategorized"
)

// FolderInsight carries AI-sourced fields attached next to (never replacing)
// the rule-based classification.
type FolderInsight struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Health     string  `json:"health,omitempty"`
}

// TagInsight carries AI-sourced fields for a tag.
type TagInsight struct {
	Category string `json:"category"`
	Meaning  string `json:"meaning,omitempty"`
}

// FolderProfile is a folder plus its classification.
type FolderProfile struct {
	Folder
	Type       string         `json:"inferredType"`
	Confidence string         `json:"confidence"`
	AI         *FolderInsight `json:"ai,omitempty"`
}

// TagProfile is a tag plus its classification.
type TagProfile struct {
	Tag
	Category string      `json:"category"`
	AI       *TagInsight `json:"ai,omitempty"`
}

// TagConventions summarizes naming habits across the tag taxonomy.
type TagConventions struct {
	UsesAtPrefix   bool    `json:"usesAtPrefix"`
	UsesColons     bool    `json:"usesColons"`
	UsesEmoji      bool    `json:"usesEmoji"`
	UsesMixedCase  bool    `json:"usesMixedCase"`
	MeanNameLength float64 `json:"meanNameLength"`
}

// FolderConventions summarizes structural habits across folders.
type FolderConventions struct {
	MaxDepth         int     `json:"maxDepth"`
	TopLevelCount    int     `json:"topLevelCount"`
	MeanProjectsEach float64 `json:"meanProjectsEach"`
	UsesEmoji        bool    `json:"usesEmoji"`
}

// TaskConventions carries usage rates from the task sample (0-100).
type TaskConventions struct {
	EstimateRate float64 `json:"estimateRate"`
	TagRate      float64 `json:"tagRate"`
	DueDateRate  float64 `json:"dueDateRate"`
}

// Conventions is the full convention summary.
type Conventions struct {
	Tags    TagConventions    `json:"tags"`
	Folders FolderConventions `json:"folders"`
	Tasks   *TaskConventions  `json:"tasks,omitempty"`
}

// =============================================================================
// HEALTH AND RECOMMENDATIONS
// =============================================================================

// HealthReport holds the five phase scores (1-10) and the weighted overall
// score rounded to one decimal.
type HealthReport struct {
	Collection int     `json:"collection"`
	Clarifying int     `json:"clarifying"`
	Organizing int     `json:"organizing"`
	Reviewing  int     `json:"reviewing"`
	Engaging   int     `json:"engaging"`
	Overall    float64 `json:"overall"`
}

// Recommendation severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Provenance values for merged fields.
const (
	SourceRules = "rules"
	SourceAI    = "ai"
)

// Recommendation is one prioritized finding. Recommendations are independent
// and order-insensitive; consumers may re-sort by severity.
type Recommendation struct {
	Area       string `json:"area"`
	Severity   string `json:"severity"`
	Finding    string `json:"finding"`
	Suggestion string `json:"suggestion"`
	Source     string `json:"source"` // rules or ai
}

// SystemMap is the canonical aggregate result. Once AIEnhanced is true every
// rule-based field remains unchanged; AI data only appears in the insight
// fields, the appended recommendations, and the AI summary fields below.
type SystemMap struct {
	ID              string           `json:"id"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Depth           Depth            `json:"depth"`
	Folders         []FolderProfile  `json:"folders"`
	Tags            []TagProfile     `json:"tags"`
	ProjectStats    ProjectStats     `json:"projectStats"`
	TaskStats       *TaskStats       `json:"taskStats,omitempty"`
	Health          HealthReport     `json:"health"`
	Conventions     Conventions      `json:"conventions"`
	Recommendations []Recommendation `json:"recommendations"`

	AIEnhanced          bool     `json:"aiEnhanced"`
	OrganizationalStyle string   `json:"organizationalStyle,omitempty"`
	AIFlowAssessment    string   `json:"aiFlowAssessment,omitempty"`
	AIWorkload          string   `json:"aiWorkload,omitempty"`
	BlockedProjects     []string `json:"blockedProjects,omitempty"`
}

// =============================================================================
// BATCHING
// =============================================================================

// Depth selects which batching tiers run.
type Depth string

const (
	DepthFolders  Depth = "folders"
	DepthProjects Depth = "projects" // folders + projects
	DepthComplete Depth = "complete" // folders + projects + tasks
)

// Valid reports whether d is a known depth value.
func (d Depth) Valid() bool {
	switch d {
	case DepthFolders, DepthProjects, DepthComplete:
		return true
	}
	return false
}

// BatchLevel identifies which analysis tier a batch belongs to.
type BatchLevel string

const (
	LevelFolder  BatchLevel = "folder"
	LevelProject BatchLevel = "project"
	LevelTask    BatchLevel = "task"
)

// Batch is one unit of AI-analysis work: a size-bounded group of summarized
// entities plus the prompt and response schema for a single inference call.
type Batch struct {
	ID        string     `json:"id"`
	Level     BatchLevel `json:"level"`
	Seq       int        `json:"seq"`
	Entities  []string   `json:"entities"`  // entity names, for merge matching
	Summaries []string   `json:"summaries"` // serialized summary per entity
	Size      int        `json:"size"`      // characters across summaries
	Prompt    string     `json:"prompt"`
	Schema    string     `json:"schema"`

	// Level-specific context.
	ParentFolder   string `json:"parentFolder,omitempty"`  // project batches
	ProjectName    string `json:"projectName,omitempty"`   // task batches
	ProjectStatus  string `json:"projectStatus,omitempty"` // task batches
	AnalyzingTasks int    `json:"analyzingTasks,omitempty"`
	TotalTasks     int    `json:"totalTasks,omitempty"`
}
