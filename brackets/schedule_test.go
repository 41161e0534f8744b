package brackets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinScheduleEveryPairMeetsOnce(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 2, 0)
	teamIDs := []int{1, 2, 3, 4, 5}

	fixtures, err := RoundRobinSchedule(teamIDs, start, end)
	require.NoError(t, err)

	// n*(n-1)/2 fixtures for a single round-robin.
	assert.Len(t, fixtures, 10)

	seen := make(map[[2]int]bool)
	for _, fixture := range fixtures {
		assert.NotEqual(t, fixture.HomeTeamID, fixture.AwayTeamID)
		lo, hi := fixture.HomeTeamID, fixture.AwayTeamID
		if lo > hi {
			lo, hi = hi, lo
		}
		pair := [2]int{lo, hi}
		assert.False(t, seen[pair], "pair %v scheduled twice", pair)
		seen[pair] = true
	}
	assert.Len(t, seen, 10)
}

func TestRoundRobinScheduleKickOffsWithinWindowAtNoon(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	fixtures, err := RoundRobinSchedule([]int{1, 2, 3, 4}, start, end)
	require.NoError(t, err)

	for _, fixture := range fixtures {
		assert.Equal(t, 12, fixture.KickOff.Hour())
		assert.False(t, fixture.KickOff.Before(start))
		assert.True(t, fixture.KickOff.Before(end.AddDate(0, 0, 1)))
	}
}

func TestRoundRobinScheduleTwoTeams(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	fixtures, err := RoundRobinSchedule([]int{1, 2}, start, start)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, 12, fixtures[0].KickOff.Hour())
}

func TestRoundRobinScheduleRejectsBadInput(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := RoundRobinSchedule([]int{1}, start, start.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, ErrNotEnoughTeams)

	_, err = RoundRobinSchedule([]int{1, 2}, start, start.AddDate(0, 0, -1))
	assert.Error(t, err)
}
