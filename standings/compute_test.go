package standings

import (
	"testing"

	"github.com/soccerhub/league-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func team(id int, name string) *models.Team {
	return &models.Team{ID: id, Name: name, DivisionID: 1}
}

func completedMatch(homeID, awayID, homeScore, awayScore int) *models.Match {
	return &models.Match{
		DivisionID: 1,
		HomeTeamID: &homeID,
		AwayTeamID: &awayID,
		HomeScore:  &homeScore,
		AwayScore:  &awayScore,
		Status:     models.MatchStatusCompleted,
	}
}

func TestComputeEmptyDivision(t *testing.T) {
	rows := Compute(nil, nil)
	assert.Empty(t, rows)
}

func TestComputeZeroMatchesGivesAllZeroRows(t *testing.T) {
	teams := []*models.Team{team(1, "Ajax"), team(2, "Breda")}

	rows := Compute(teams, nil)

	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Zero(t, row.Played)
		assert.Zero(t, row.Points)
		assert.Zero(t, row.GoalDifference)
	}
	// Alphabetical tie-break when everything is level.
	assert.Equal(t, "Ajax", rows[0].TeamName)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Breda", rows[1].TeamName)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestComputeWinDrawLossPoints(t *testing.T) {
	teams := []*models.Team{team(1, "Ajax"), team(2, "Breda"), team(3, "Cambuur")}
	matches := []*models.Match{
		completedMatch(1, 2, 3, 1), // Ajax beats Breda
		completedMatch(2, 3, 2, 2), // Breda draws Cambuur
	}

	rows := Compute(teams, matches)
	require.Len(t, rows, 3)

	byName := indexByName(rows)
	assert.Equal(t, 3, byName["Ajax"].Points)
	assert.Equal(t, 1, byName["Ajax"].Won)
	assert.Equal(t, 1, byName["Breda"].Points)
	assert.Equal(t, 1, byName["Breda"].Drawn)
	assert.Equal(t, 1, byName["Breda"].Lost)
	assert.Equal(t, 1, byName["Cambuur"].Points)
	assert.Equal(t, 1, byName["Cambuur"].Played)
}

func TestComputeIgnoresPlayoffAndUnfinishedMatches(t *testing.T) {
	teams := []*models.Team{team(1, "Ajax"), team(2, "Breda")}

	playoff := completedMatch(1, 2, 2, 0)
	round := models.PlayoffRoundSemifinal
	playoff.PlayoffRound = &round

	scheduled := completedMatch(1, 2, 4, 0)
	scheduled.Status = models.MatchStatusScheduled

	rows := Compute(teams, []*models.Match{playoff, scheduled})

	for _, row := range rows {
		assert.Zero(t, row.Played, "neither playoff nor scheduled matches should count")
		assert.Zero(t, row.Points)
	}
}

func TestComputeTieBreakOrder(t *testing.T) {
	teams := []*models.Team{team(1, "Zwolle"), team(2, "Ajax"), team(3, "Breda"), team(4, "Cambuur")}
	matches := []*models.Match{
		// Zwolle and Ajax both win once, Zwolle with the larger margin.
		completedMatch(1, 3, 4, 0),
		completedMatch(2, 4, 2, 1),
		// Breda and Cambuur lose, Cambuur conceding more.
	}

	rows := Compute(teams, matches)
	require.Len(t, rows, 4)

	assert.Equal(t, "Zwolle", rows[0].TeamName, "better goal difference ranks first on equal points")
	assert.Equal(t, "Ajax", rows[1].TeamName)
	assert.Equal(t, "Cambuur", rows[2].TeamName, "smaller deficit ranks above larger")
	assert.Equal(t, "Breda", rows[3].TeamName)

	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	teams := []*models.Team{team(1, "Ajax"), team(2, "Breda"), team(3, "Cambuur"), team(4, "Dordrecht")}
	matches := []*models.Match{
		completedMatch(1, 2, 1, 1),
		completedMatch(3, 4, 2, 2),
		completedMatch(1, 3, 0, 0),
		completedMatch(2, 4, 3, 3),
	}

	first := Compute(teams, matches)
	second := Compute(teams, matches)
	assert.Equal(t, first, second)
}

func TestComputeGoalConservation(t *testing.T) {
	teams := []*models.Team{team(1, "Ajax"), team(2, "Breda"), team(3, "Cambuur")}
	matches := []*models.Match{
		completedMatch(1, 2, 3, 1),
		completedMatch(2, 3, 0, 2),
		completedMatch(3, 1, 1, 1),
	}

	rows := Compute(teams, matches)

	totalFor, totalAgainst, totalDiff := 0, 0, 0
	for _, row := range rows {
		totalFor += row.GoalsFor
		totalAgainst += row.GoalsAgainst
		totalDiff += row.GoalDifference
	}
	assert.Equal(t, totalFor, totalAgainst)
	assert.Zero(t, totalDiff)
}

func TestComputeSkipsMatchesReferencingUnknownTeams(t *testing.T) {
	teams := []*models.Team{team(1, "Ajax"), team(2, "Breda")}
	matches := []*models.Match{
		completedMatch(1, 99, 5, 0), // opponent no longer in the division
		completedMatch(1, 2, 1, 0),
	}

	rows := Compute(teams, matches)
	byName := indexByName(rows)
	assert.Equal(t, 1, byName["Ajax"].Played)
	assert.Equal(t, 1, byName["Ajax"].GoalsFor)
}

func indexByName(rows []models.StandingRow) map[string]models.StandingRow {
	byName := make(map[string]models.StandingRow, len(rows))
	for _, row := range rows {
		byName[row.TeamName] = row
	}
	return byName
}
