package health

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"gtdlens/internal/types"
)

func TestScoreIsPure(t *testing.T) {
	snap := &types.Snapshot{
		ProjectStats: types.ProjectStats{Active: 10, Stalled: 2},
		TaskStats:    &types.TaskStats{Inbox: 7, PctWithEstimate: 60, PctWithTags: 40},
	}
	conv := types.Conventions{
		Folders: types.FolderConventions{TopLevelCount: 6, MaxDepth: 2},
	}

	first := Score(snap, conv)
	second := Score(snap, conv)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Score is not deterministic (-first +second):\n%s", diff)
	}
}

func TestScoreCollection(t *testing.T) {
	cases := []struct {
		inbox int
		want  int
	}{
		{0, 10}, {1, 9}, {5, 9}, {6, 8}, {10, 8},
		{11, 6}, {20, 6}, {21, 4}, {50, 4}, {51, 2}, {500, 2},
	}
	for _, tc := range cases {
		got := scoreCollection(&types.TaskStats{Inbox: tc.inbox})
		assert.Equal(t, tc.want, got, "inbox=%d", tc.inbox)
	}
}

func TestScoreCollectionMonotone(t *testing.T) {
	prev := 11
	for inbox := 0; inbox <= 100; inbox++ {
		got := scoreCollection(&types.TaskStats{Inbox: inbox})
		assert.LessOrEqual(t, got, prev, "inbox=%d", inbox)
		prev = got
	}
}

func TestScoreClarifying(t *testing.T) {
	// Mean of estimate and tag rates, scaled to 1..10.
	assert.Equal(t, 5, scoreClarifying(&types.TaskStats{PctWithEstimate: 60, PctWithTags: 40}))
	assert.Equal(t, 10, scoreClarifying(&types.TaskStats{PctWithEstimate: 100, PctWithTags: 100}))
	// Zero rates clamp up to the floor.
	assert.Equal(t, 1, scoreClarifying(&types.TaskStats{}))
}

func TestDefaultScoresWithoutTaskSample(t *testing.T) {
	snap := &types.Snapshot{
		ProjectStats: types.ProjectStats{Active: 4},
	}
	r := Score(snap, types.Conventions{})

	assert.Equal(t, defaultPhaseScore, r.Collection)
	assert.Equal(t, defaultPhaseScore, r.Clarifying)
	// The other phases have their inputs and score normally.
	assert.NotZero(t, r.Organizing)
	assert.NotZero(t, r.Reviewing)
	assert.NotZero(t, r.Engaging)
}

func TestScoreOrganizing(t *testing.T) {
	assert.Equal(t, 7, scoreOrganizing(types.FolderConventions{TopLevelCount: 6, MaxDepth: 2}))
	assert.Equal(t, 5, scoreOrganizing(types.FolderConventions{TopLevelCount: 15, MaxDepth: 2}))
	assert.Equal(t, 6, scoreOrganizing(types.FolderConventions{TopLevelCount: 2, MaxDepth: 1}))
	assert.Equal(t, 5, scoreOrganizing(types.FolderConventions{TopLevelCount: 6, MaxDepth: 6}))
	assert.Equal(t, 3, scoreOrganizing(types.FolderConventions{TopLevelCount: 20, MaxDepth: 8}))
	// No folders at all is still the neutral baseline.
	assert.Equal(t, 7, scoreOrganizing(types.FolderConventions{}))
}

func TestScoreReviewing(t *testing.T) {
	assert.Equal(t, 8, scoreReviewing(types.ProjectStats{Active: 0}))
	assert.Equal(t, 8, scoreReviewing(types.ProjectStats{Active: 10, Stalled: 1}))
	assert.Equal(t, 6, scoreReviewing(types.ProjectStats{Active: 10, Stalled: 2}))
	assert.Equal(t, 4, scoreReviewing(types.ProjectStats{Active: 10, Stalled: 6}))
}

func TestScoreEngaging(t *testing.T) {
	assert.Equal(t, 7, scoreEngaging(types.ProjectStats{Active: 0}))
	assert.Equal(t, 9, scoreEngaging(types.ProjectStats{Active: 10, Stalled: 1}))
	assert.Equal(t, 7, scoreEngaging(types.ProjectStats{Active: 10, Stalled: 2}))
	assert.Equal(t, 5, scoreEngaging(types.ProjectStats{Active: 10, Stalled: 4}))
}

func TestOverallIsWeightedMean(t *testing.T) {
	r := types.HealthReport{
		Collection: 10,
		Clarifying: 10,
		Organizing: 10,
		Reviewing:  10,
		Engaging:   10,
	}
	assert.InDelta(t, 10.0, overall(r), 0.001)

	r = types.HealthReport{Collection: 2, Clarifying: 4, Organizing: 6, Reviewing: 8, Engaging: 10}
	// (1*2 + 1.5*4 + 2*6 + 1.5*8 + 2*10) / 8 = 52/8 = 6.5
	assert.InDelta(t, 6.5, overall(r), 0.001)
}

func TestScoresStayInRange(t *testing.T) {
	snaps := []*types.Snapshot{
		{},
		{TaskStats: &types.TaskStats{Inbox: 10000}},
		{
			ProjectStats: types.ProjectStats{Active: 100, Stalled: 100},
			TaskStats:    &types.TaskStats{Inbox: 63, PctWithEstimate: 1, PctWithTags: 1},
		},
	}
	for _, snap := range snaps {
		r := Score(snap, types.Conventions{
			Folders: types.FolderConventions{TopLevelCount: 40, MaxDepth: 9},
		})
		for _, s := range []int{r.Collection, r.Clarifying, r.Organizing, r.Reviewing, r.Engaging} {
			assert.GreaterOrEqual(t, s, 1)
			assert.LessOrEqual(t, s, 10)
		}
		assert.GreaterOrEqual(t, r.Overall, 1.0)
		assert.LessOrEqual(t, r.Overall, 10.0)
	}
}
