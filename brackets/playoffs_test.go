package brackets

import (
	"testing"

	"github.com/soccerhub/league-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standingsRows(teamIDs ...int) []models.StandingRow {
	rows := make([]models.StandingRow, len(teamIDs))
	for i, id := range teamIDs {
		rows[i] = models.StandingRow{TeamID: id, Rank: i + 1}
	}
	return rows
}

func TestSeedPlayoffsPairsOneVsFourAndTwoVsThree(t *testing.T) {
	seeding, err := SeedPlayoffs(standingsRows(10, 20, 30, 40))
	require.NoError(t, err)

	assert.Equal(t, []int{10, 20, 30, 40}, seeding.Seeds)
	assert.Equal(t, Pairing{HomeTeamID: 10, AwayTeamID: 40}, seeding.Semifinals[0])
	assert.Equal(t, Pairing{HomeTeamID: 20, AwayTeamID: 30}, seeding.Semifinals[1])
}

func TestSeedPlayoffsTakesTopFourOfLargerTable(t *testing.T) {
	seeding, err := SeedPlayoffs(standingsRows(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, seeding.Seeds)
}

func TestSeedPlayoffsRejectsFewerThanFourTeams(t *testing.T) {
	_, err := SeedPlayoffs(standingsRows(1, 2, 3))
	assert.ErrorIs(t, err, ErrNotEnoughSeeds)

	_, err = SeedPlayoffs(nil)
	assert.ErrorIs(t, err, ErrNotEnoughSeeds)
}

func TestSemifinalWinner(t *testing.T) {
	home, away := 7, 8

	t.Run("home win", func(t *testing.T) {
		hs, as := 2, 1
		winner, err := SemifinalWinner(&models.Match{
			HomeTeamID: &home, AwayTeamID: &away,
			HomeScore: &hs, AwayScore: &as,
			Status: models.MatchStatusCompleted,
		})
		require.NoError(t, err)
		assert.Equal(t, home, winner)
	})

	t.Run("away win", func(t *testing.T) {
		hs, as := 0, 3
		winner, err := SemifinalWinner(&models.Match{
			HomeTeamID: &home, AwayTeamID: &away,
			HomeScore: &hs, AwayScore: &as,
			Status: models.MatchStatusCompleted,
		})
		require.NoError(t, err)
		assert.Equal(t, away, winner)
	})

	t.Run("level score rejected", func(t *testing.T) {
		hs, as := 1, 1
		_, err := SemifinalWinner(&models.Match{
			HomeTeamID: &home, AwayTeamID: &away,
			HomeScore: &hs, AwayScore: &as,
			Status: models.MatchStatusCompleted,
		})
		assert.Error(t, err)
	})

	t.Run("no recorded result", func(t *testing.T) {
		_, err := SemifinalWinner(&models.Match{
			HomeTeamID: &home, AwayTeamID: &away,
			Status: models.MatchStatusScheduled,
		})
		assert.Error(t, err)
	})
}
