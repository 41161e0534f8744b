package standings

import (
	"sort"

	"github.com/soccerhub/league-manager/models"
)

const (
	pointsPerWin  = 3
	pointsPerDraw = 1
)

// Compute derives the league table for a division from scratch. Every team
// in the division gets a row, all-zero when it has no completed matches.
// Only COMPLETED league matches count; playoff fixtures never feed the
// table. The result is a total order: points desc, goal difference desc,
// goals for desc, then team name asc as the final tie-break, so two calls
// over the same match set always yield identical rows in identical order.
func Compute(teams []*models.Team, matches []*models.Match) []models.StandingRow {
	rowsByTeam := make(map[int]*models.StandingRow, len(teams))
	names := make(map[int]string, len(teams))

	for _, team := range teams {
		names[team.ID] = team.Name
		rowsByTeam[team.ID] = &models.StandingRow{
			DivisionID: team.DivisionID,
			TeamID:     team.ID,
			TeamName:   team.Name,
		}
	}

	for _, match := range matches {
		if !countsForStandings(match) {
			continue
		}
		home, okHome := rowsByTeam[*match.HomeTeamID]
		away, okAway := rowsByTeam[*match.AwayTeamID]
		if !okHome || !okAway {
			// Match references a team outside the provided set, e.g. a
			// stale fixture after a cross-division move. Skip it.
			continue
		}
		applyResult(home, away, *match.HomeScore, *match.AwayScore)
	}

	rows := make([]models.StandingRow, 0, len(rowsByTeam))
	for _, row := range rowsByTeam {
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamName < b.TeamName
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func countsForStandings(m *models.Match) bool {
	return m.Status == models.MatchStatusCompleted &&
		!m.IsPlayoff() &&
		m.HomeTeamID != nil && m.AwayTeamID != nil &&
		m.HomeScore != nil && m.AwayScore != nil
}

func applyResult(home, away *models.StandingRow, homeScore, awayScore int) {
	home.Played++
	away.Played++

	home.GoalsFor += homeScore
	home.GoalsAgainst += awayScore
	away.GoalsFor += awayScore
	away.GoalsAgainst += homeScore

	switch {
	case homeScore > awayScore:
		home.Won++
		home.Points += pointsPerWin
		away.Lost++
	case homeScore < awayScore:
		away.Won++
		away.Points += pointsPerWin
		home.Lost++
	default:
		home.Drawn++
		home.Points += pointsPerDraw
		away.Drawn++
		away.Points += pointsPerDraw
	}
}
