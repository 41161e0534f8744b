package brackets

import (
	"errors"
	"fmt"

	"github.com/soccerhub/league-manager/models"
)

// BracketSize is fixed: two semifinals feeding one final.
const BracketSize = 4

var ErrNotEnoughSeeds = errors.New("not enough ranked teams to seed a playoff bracket")

type Pairing struct {
	HomeTeamID int
	AwayTeamID int
}

// Seeding is the pure output of playoff generation: the ordered seed list
// and the two semifinal pairings derived from it. Persistence and dates
// are the caller's concern.
type Seeding struct {
	Seeds      []int
	Semifinals [2]Pairing
}

// SeedPlayoffs takes standings rows already in rank order and pairs the
// top four as 1v4 and 2v3. The final is left to be resolved from the
// semifinal winners.
func SeedPlayoffs(rows []models.StandingRow) (*Seeding, error) {
	if len(rows) < BracketSize {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughSeeds, BracketSize, len(rows))
	}

	seeds := make([]int, BracketSize)
	for i := 0; i < BracketSize; i++ {
		seeds[i] = rows[i].TeamID
	}

	return &Seeding{
		Seeds: seeds,
		Semifinals: [2]Pairing{
			{HomeTeamID: seeds[0], AwayTeamID: seeds[3]},
			{HomeTeamID: seeds[1], AwayTeamID: seeds[2]},
		},
	}, nil
}

// SemifinalWinner resolves the winner of a completed semifinal. Level
// scores are rejected: playoff matches must not end level, so a draw never
// reaches bracket advancement.
func SemifinalWinner(match *models.Match) (int, error) {
	if match.Status != models.MatchStatusCompleted || match.HomeScore == nil || match.AwayScore == nil {
		return 0, fmt.Errorf("semifinal %d has no recorded result", match.ID)
	}
	if *match.HomeScore == *match.AwayScore {
		return 0, fmt.Errorf("semifinal %d ended level (%d-%d)", match.ID, *match.HomeScore, *match.AwayScore)
	}
	if *match.HomeScore > *match.AwayScore {
		return *match.HomeTeamID, nil
	}
	return *match.AwayTeamID, nil
}
