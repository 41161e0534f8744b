package models

// StandingRow is one line of a division's league table. It is derived on
// demand from completed league matches and never persisted; Rank is the
// row's 1-based position after the full sort.
type StandingRow struct {
	DivisionID     int    `json:"division_id"`
	TeamID         int    `json:"team_id"`
	TeamName       string `json:"team_name"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
	Rank           int    `json:"rank"`
}
