// Package inference applies deterministic rules to a snapshot: folder
// purpose classification, tag category classification, and organizational
// convention detection. Everything here is pure; no external calls, no
// randomness.
package inference

import (
	"strings"

	"gtdlens/internal/types"
)

// Result is the full rule-based classification of a snapshot.
type Result struct {
	Folders     []types.FolderProfile
	Tags        []types.TagProfile
	Conventions types.Conventions
}

// Analyze classifies every folder and tag in the snapshot and detects the
// organizational conventions. Calling it twice with the same snapshot yields
// identical results.
func Analyze(snap *types.Snapshot) Result {
	res := Result{
		Folders: make([]types.FolderProfile, 0, len(snap.Folders)),
		Tags:    make([]types.TagProfile, 0, len(snap.Tags)),
	}
	for _, f := range snap.Folders {
		typ, conf := ClassifyFolder(f)
		res.Folders = append(res.Folders, types.FolderProfile{Folder: f, Type: typ, Confidence: conf})
	}
	for _, t := range snap.Tags {
		res.Tags = append(res.Tags, types.TagProfile{Tag: t, Category: ClassifyTag(t)})
	}
	res.Conventions = DetectConventions(snap)
	return res
}

// =============================================================================
// FOLDER TYPE RULES
// =============================================================================
// Priority order is data, not control flow: the first rule whose predicate
// matches wins. Name matching is case-insensitive substring.

type folderRule struct {
	folderType string
	terms      []string
}

// folderRules in priority order. Archive beats someday beats reference beats
// life-area, so "Archive - Someday" still classifies as archive.
var folderRules = []folderRule{
	{types.FolderArchive, []string{"archive", "archived", "inactive", "old projects", "completed"}},
	{types.FolderSomeday, []string{"someday", "maybe", "later", "eventually", "incubat"}},
	{types.FolderReference, []string{"reference", "resources", "reading", "library", "checklists"}},
	{types.FolderArea, []string{"work", "personal", "home", "family", "health", "finance", "career"}},
}

// ClassifyFolder returns the inferred folder type and confidence. Any
// pattern match is high confidence; the structural fallback for a top-level
// folder with projects is low confidence, and everything else is a medium
// confidence "general".
func ClassifyFolder(f types.Folder) (folderType, confidence string) {
	name := strings.ToLower(f.Name)
	for _, rule := range folderRules {
		for _, term := range rule.terms {
			if strings.Contains(name, term) {
				return rule.folderType, types.ConfidenceHigh
			}
		}
	}
	if f.Depth == 0 && f.DirectProjects > 0 {
		return types.FolderArea, types.ConfidenceLow
	}
	return types.FolderGeneral, types.ConfidenceMedium
}

// =============================================================================
// TAG CATEGORY RULES
// =============================================================================

// areaUsageThreshold is the usage count above which a top-level tag that
// matches nothing else is treated as an area of responsibility.
const areaUsageThreshold = 10

type tagRule struct {
	category string
	match    func(types.Tag, string) bool
}

func containsAny(name string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(name, term) {
			return true
		}
	}
	return false
}

// tagRules in priority order; first match wins.
var tagRules = []tagRule{
	{types.TagContexts, func(t types.Tag, name string) bool {
		return strings.HasPrefix(t.Name, "@") ||
			containsAny(name, "office", "computer", "phone", "errand", "online", "calls", "anywhere")
	}},
	{types.TagPeople, func(t types.Tag, name string) bool {
		return strings.HasPrefix(name, "waiting") || strings.HasPrefix(name, "agenda") ||
			containsAny(name, "waiting", "delegated", "agenda")
	}},
	{types.TagStatus, func(t types.Tag, name string) bool {
		return containsAny(name, "hold", "someday", "review", "maybe", "pending")
	}},
	{types.TagEnergy, func(t types.Tag, name string) bool {
		return containsAny(name, "energy", "focus", "deep", "quick", "easy", "brainless")
	}},
	{types.TagTime, func(t types.Tag, name string) bool {
		return containsAny(name, "morning", "afternoon", "evening", "night", "weekend",
			"min", "hour", "short", "long")
	}},
	{types.TagAreas, func(t types.Tag, name string) bool {
		return t.Depth == 0 && t.UsageCount > areaUsageThreshold
	}},
}

// ClassifyTag returns the inferred tag category.
func ClassifyTag(t types.Tag) string {
	name := strings.ToLower(t.Name)
	for _, rule := range tagRules {
		if rule.match(t, name) {
			return rule.category
		}
	}
	return types.TagUncategorized
}
