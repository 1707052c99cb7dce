// Package health computes the five phase scores and the weighted overall
// score from a snapshot and its detected conventions. The scorer is pure:
// identical input always yields an identical report.
package health

import (
	"math"

	"gtdlens/internal/types"
)

// Phase weights for the overall score. Every phase always contributes; a
// phase whose input is absent uses its documented default so the weighted
// formula stays stable.
const (
	weightCollection = 1.0
	weightClarifying = 1.5
	weightOrganizing = 2.0
	weightReviewing  = 1.5
	weightEngaging   = 2.0
)

// defaultPhaseScore is used when a phase's required input (the task sample)
// was not collected.
const defaultPhaseScore = 5

// Score computes the HealthReport for a snapshot.
func Score(snap *types.Snapshot, conv types.Conventions) types.HealthReport {
	r := types.HealthReport{
		Collection: scoreCollection(snap.TaskStats),
		Clarifying: scoreClarifying(snap.TaskStats),
		Organizing: scoreOrganizing(conv.Folders),
		Reviewing:  scoreReviewing(snap.ProjectStats),
		Engaging:   scoreEngaging(snap.ProjectStats),
	}
	r.Overall = overall(r)
	return r
}

// scoreCollection is a step function of inbox size, monotonically
// non-increasing.
func scoreCollection(ts *types.TaskStats) int {
	if ts == nil {
		return defaultPhaseScore
	}
	switch inbox := ts.Inbox; {
	case inbox == 0:
		return 10
	case inbox <= 5:
		return 9
	case inbox <= 10:
		return 8
	case inbox <= 20:
		return 6
	case inbox <= 50:
		return 4
	default:
		return 2
	}
}

func scoreClarifying(ts *types.TaskStats) int {
	if ts == nil {
		return defaultPhaseScore
	}
	mean := (ts.PctWithEstimate + ts.PctWithTags) / 2
	return clamp(int(math.Round(mean / 10)))
}

// scoreOrganizing is a structural balance heuristic over the folder tree.
func scoreOrganizing(fc types.FolderConventions) int {
	score := 7
	if fc.TopLevelCount > 12 {
		score -= 2
	} else if fc.TopLevelCount > 0 && fc.TopLevelCount < 3 {
		score--
	}
	if fc.MaxDepth > 4 {
		score -= 2
	}
	return clamp(score)
}

func scoreReviewing(ps types.ProjectStats) int {
	if ps.Active == 0 {
		return 8
	}
	ratio := float64(ps.Stalled) / float64(ps.Active)
	switch {
	case ratio > 0.30:
		return 4
	case ratio > 0.15:
		return 6
	default:
		return 8
	}
}

// scoreEngaging derives from the share of active projects that are not
// stalled.
func scoreEngaging(ps types.ProjectStats) int {
	if ps.Active == 0 {
		return 7
	}
	availability := 100 * float64(ps.Active-ps.Stalled) / float64(ps.Active)
	switch {
	case availability >= 90:
		return 9
	case availability < 70:
		return 5
	default:
		return 7
	}
}

// overall is the weighted mean of the phase scores, rounded to one decimal.
func overall(r types.HealthReport) float64 {
	sum := weightCollection*float64(r.Collection) +
		weightClarifying*float64(r.Clarifying) +
		weightOrganizing*float64(r.Organizing) +
		weightReviewing*float64(r.Reviewing) +
		weightEngaging*float64(r.Engaging)
	total := weightCollection + weightClarifying + weightOrganizing + weightReviewing + weightEngaging
	return math.Round(sum/total*10) / 10
}

func clamp(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
