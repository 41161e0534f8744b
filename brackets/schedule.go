package brackets

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrNotEnoughTeams = errors.New("not enough teams to generate a schedule")

type Fixture struct {
	HomeTeamID int
	AwayTeamID int
	KickOff    time.Time
}

// RoundRobinSchedule builds a single round-robin for the given teams using
// the circle method: one team stays fixed while the rest rotate, giving
// n-1 rounds (a bye slot is inserted for an odd team count). Rounds are
// spread evenly between start and end, kicking off at noon.
func RoundRobinSchedule(teamIDs []int, start, end time.Time) ([]Fixture, error) {
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: found %d, minimum 2 required", ErrNotEnoughTeams, len(teamIDs))
	}
	if end.Before(start) {
		return nil, errors.New("schedule end date must be on or after the start date")
	}

	rounds := buildRounds(teamIDs)

	totalDays := int(end.Sub(start).Hours() / 24)
	step := 0.0
	if len(rounds) > 1 {
		step = float64(totalDays) / float64(len(rounds)-1)
	}

	fixtures := make([]Fixture, 0, len(teamIDs)*(len(teamIDs)-1)/2)
	for roundIndex, round := range rounds {
		offset := int(math.Round(step * float64(roundIndex)))
		day := start.AddDate(0, 0, offset)
		kickOff := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, day.Location())

		for _, pair := range round {
			pair.KickOff = kickOff
			fixtures = append(fixtures, pair)
		}
	}
	return fixtures, nil
}

const byeTeam = 0

func buildRounds(teamIDs []int) [][]Fixture {
	teams := make([]int, len(teamIDs))
	copy(teams, teamIDs)
	if len(teams)%2 != 0 {
		teams = append(teams, byeTeam)
	}

	total := len(teams)
	rounds := make([][]Fixture, 0, total-1)

	for round := 0; round < total-1; round++ {
		pairs := make([]Fixture, 0, total/2)
		for i := 0; i < total/2; i++ {
			home := teams[i]
			away := teams[total-1-i]
			if home != byeTeam && away != byeTeam {
				pairs = append(pairs, Fixture{HomeTeamID: home, AwayTeamID: away})
			}
		}
		rounds = append(rounds, pairs)
		teams = rotate(teams)
	}
	return rounds
}

// rotate keeps the first element fixed and shifts the rest one position.
func rotate(teams []int) []int {
	rotated := make([]int, 0, len(teams))
	rotated = append(rotated, teams[0], teams[len(teams)-1])
	rotated = append(rotated, teams[1:len(teams)-1]...)
	return rotated
}
