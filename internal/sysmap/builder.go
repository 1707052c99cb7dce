// Package sysmap assembles the canonical SystemMap from the snapshot, the
// rule-based inferences and the health report, and derives the prioritized
// recommendation list.
package sysmap

import (
	"time"

	"github.com/google/uuid"

	"gtdlens/internal/inference"
	"gtdlens/internal/types"
)

// Build assembles the SystemMap. The map is produced fresh on every call and
// is never retained by this package.
func Build(snap *types.Snapshot, inf inference.Result, report types.HealthReport, depth types.Depth) *types.SystemMap {
	m := &types.SystemMap{
		ID:           uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		Depth:        depth,
		Folders:      inf.Folders,
		Tags:         inf.Tags,
		ProjectStats: snap.ProjectStats,
		TaskStats:    snap.TaskStats,
		Health:       report,
		Conventions:  inf.Conventions,
	}
	m.Recommendations = Recommend(m)
	return m
}
