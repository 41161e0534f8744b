package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "SCHEDULED"
	MatchStatusInProgress MatchStatus = "IN_PROGRESS"
	MatchStatusCompleted  MatchStatus = "COMPLETED"
	MatchStatusPostponed  MatchStatus = "POSTPONED"
	MatchStatusCancelled  MatchStatus = "CANCELLED"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusInProgress, MatchStatusCompleted,
		MatchStatusPostponed, MatchStatusCancelled:
		return true
	}
	return false
}

type PlayoffRound string

const (
	PlayoffRoundSemifinal PlayoffRound = "SEMIFINAL"
	PlayoffRoundFinal     PlayoffRound = "FINAL"
)

// Match is a fixture between two teams of the same division. Team slots and
// the venue/date are nullable: a playoff final starts with both slots
// unresolved, and playoff fixtures are created without a date until the
// organizer schedules them. Scores are present iff the match is COMPLETED.
type Match struct {
	ID           int           `json:"id" db:"id"`
	DivisionID   int           `json:"division_id" db:"division_id"`
	HomeTeamID   *int          `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   *int          `json:"away_team_id" db:"away_team_id"`
	VenueID      *int          `json:"venue_id,omitempty" db:"venue_id"`
	MatchDate    *time.Time    `json:"match_date,omitempty" db:"match_date"`
	HomeScore    *int          `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int          `json:"away_score,omitempty" db:"away_score"`
	Status       MatchStatus   `json:"status" db:"status"`
	RefereeID    *int          `json:"referee_id,omitempty" db:"referee_id"`
	PlayoffRound *PlayoffRound `json:"playoff_round,omitempty" db:"playoff_round"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// IsPlayoff reports whether the match belongs to the division's bracket
// rather than the league phase. Playoff results never feed the standings.
func (m *Match) IsPlayoff() bool {
	return m.PlayoffRound != nil
}
