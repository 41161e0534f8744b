package services

import (
	"context"
	"testing"
	"time"

	"github.com/soccerhub/league-manager/authz"
	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdvancer struct {
	calls []int
	err   error
}

func (a *stubAdvancer) AdvanceBracket(_ context.Context, _ repositories.SQLExecutor, divisionID int) error {
	a.calls = append(a.calls, divisionID)
	return a.err
}

type matchEnv struct {
	service    MatchService
	matchRepo  *fakeMatchRepo
	teamRepo   *fakeTeamRepo
	userRepo   *fakeUserRepo
	standings  StandingsService
	advancer   *stubAdvancer
	transactor *fakeTransactor
	divisionID int
	homeID     int
	awayID     int
}

func newMatchEnv(t *testing.T) *matchEnv {
	t.Helper()

	divisionRepo := newFakeDivisionRepo()
	divisionID := divisionRepo.add("Premier", 1)

	teamRepo := newFakeTeamRepo()
	homeID := teamRepo.add("Ajax", divisionID)
	awayID := teamRepo.add("Breda", divisionID)

	matchRepo := newFakeMatchRepo()
	userRepo := newFakeUserRepo()
	transactor := &fakeTransactor{}
	advancer := &stubAdvancer{}
	standingsSvc := NewStandingsService(divisionRepo, teamRepo, matchRepo)

	service := NewMatchService(
		transactor, matchRepo, teamRepo, newFakeVenueRepo(), userRepo,
		standingsSvc, advancer, NewDivisionLocker(), nil, testLogger(),
	)

	return &matchEnv{
		service:    service,
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		userRepo:   userRepo,
		standings:  standingsSvc,
		advancer:   advancer,
		transactor: transactor,
		divisionID: divisionID,
		homeID:     homeID,
		awayID:     awayID,
	}
}

func (e *matchEnv) createScheduledMatch(t *testing.T) *models.Match {
	t.Helper()
	match, err := e.service.CreateMatch(context.Background(), CreateMatchInput{
		DivisionID: e.divisionID,
		HomeTeamID: e.homeID,
		AwayTeamID: e.awayID,
		MatchDate:  time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC),
	}, organizer)
	require.NoError(t, err)
	return match
}

func TestCreateMatchValidation(t *testing.T) {
	env := newMatchEnv(t)
	ctx := context.Background()
	date := time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)

	t.Run("same team both slots", func(t *testing.T) {
		_, err := env.service.CreateMatch(ctx, CreateMatchInput{
			DivisionID: env.divisionID, HomeTeamID: env.homeID, AwayTeamID: env.homeID, MatchDate: date,
		}, organizer)
		assert.ErrorIs(t, err, ErrSameTeamFixture)
	})

	t.Run("missing date", func(t *testing.T) {
		_, err := env.service.CreateMatch(ctx, CreateMatchInput{
			DivisionID: env.divisionID, HomeTeamID: env.homeID, AwayTeamID: env.awayID,
		}, organizer)
		assert.ErrorIs(t, err, ErrMatchDateRequired)
	})

	t.Run("team from another division", func(t *testing.T) {
		outsiderID := env.teamRepo.add("Outsider", env.divisionID+100)
		_, err := env.service.CreateMatch(ctx, CreateMatchInput{
			DivisionID: env.divisionID, HomeTeamID: env.homeID, AwayTeamID: outsiderID, MatchDate: date,
		}, organizer)
		assert.ErrorIs(t, err, ErrTeamNotInDivision)
	})

	t.Run("referee must hold the referee role", func(t *testing.T) {
		organizerID := env.userRepo.add("boss", models.RoleOrganizer)
		_, err := env.service.CreateMatch(ctx, CreateMatchInput{
			DivisionID: env.divisionID, HomeTeamID: env.homeID, AwayTeamID: env.awayID,
			MatchDate: date, RefereeID: &organizerID,
		}, organizer)
		assert.ErrorIs(t, err, ErrRefereeRoleRequired)
	})

	t.Run("referee denied creation", func(t *testing.T) {
		referee := models.Principal{UserID: 3, Role: models.RoleReferee}
		_, err := env.service.CreateMatch(ctx, CreateMatchInput{
			DivisionID: env.divisionID, HomeTeamID: env.homeID, AwayTeamID: env.awayID, MatchDate: date,
		}, referee)
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})
}

func TestRecordResultCompletesLeagueMatch(t *testing.T) {
	env := newMatchEnv(t)
	ctx := context.Background()
	match := env.createScheduledMatch(t)

	updated, err := env.service.RecordResult(ctx, match.ID, 2, 1, organizer)
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusCompleted, updated.Status)
	require.NotNil(t, updated.HomeScore)
	require.NotNil(t, updated.AwayScore)
	assert.Equal(t, 2, *updated.HomeScore)
	assert.Equal(t, 1, *updated.AwayScore)
	assert.Equal(t, 1, env.transactor.calls)
	assert.Empty(t, env.advancer.calls, "league results never touch the bracket")

	rows, err := env.standings.GetStandings(ctx, env.divisionID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, env.homeID, rows[0].TeamID)
	assert.Equal(t, 3, rows[0].Points)
}

func TestRecordResultValidation(t *testing.T) {
	env := newMatchEnv(t)
	ctx := context.Background()

	t.Run("unknown match", func(t *testing.T) {
		_, err := env.service.RecordResult(ctx, 999, 1, 0, organizer)
		assert.ErrorIs(t, err, ErrMatchNotFound)
	})

	t.Run("negative score", func(t *testing.T) {
		match := env.createScheduledMatch(t)
		_, err := env.service.RecordResult(ctx, match.ID, -1, 0, organizer)
		assert.ErrorIs(t, err, ErrNegativeScore)
	})

	t.Run("cancelled match cannot complete", func(t *testing.T) {
		match := env.createScheduledMatch(t)
		cancelled := models.MatchStatusCancelled
		_, err := env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{Status: &cancelled}, organizer)
		require.NoError(t, err)

		_, err = env.service.RecordResult(ctx, match.ID, 1, 0, organizer)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})
}

func TestRecordResultPlayoffDrawRejected(t *testing.T) {
	env := newMatchEnv(t)
	ctx := context.Background()

	round := models.PlayoffRoundSemifinal
	semifinal := &models.Match{
		DivisionID:   env.divisionID,
		HomeTeamID:   &env.homeID,
		AwayTeamID:   &env.awayID,
		Status:       models.MatchStatusScheduled,
		PlayoffRound: &round,
	}
	require.NoError(t, env.matchRepo.Create(ctx, nil, semifinal))

	_, err := env.service.RecordResult(ctx, semifinal.ID, 1, 1, organizer)
	assert.ErrorIs(t, err, ErrPlayoffDrawNotAllowed)
	assert.Empty(t, env.advancer.calls)

	updated, err := env.service.RecordResult(ctx, semifinal.ID, 2, 1, organizer)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, updated.Status)
	assert.Equal(t, []int{env.divisionID}, env.advancer.calls, "completed semifinal advances the bracket in-transaction")
}

func TestRecordResultRefereeWindow(t *testing.T) {
	env := newMatchEnv(t)
	ctx := context.Background()

	refereeID := env.userRepo.add("ref", models.RoleReferee)
	referee := models.Principal{UserID: refereeID, Role: models.RoleReferee}

	match := env.createScheduledMatch(t)
	_, err := env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{RefereeID: &refereeID}, organizer)
	require.NoError(t, err)

	t.Run("assigned referee records once", func(t *testing.T) {
		updated, err := env.service.RecordResult(ctx, match.ID, 0, 2, referee)
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusCompleted, updated.Status)
	})

	t.Run("window closed after completion", func(t *testing.T) {
		_, err := env.service.RecordResult(ctx, match.ID, 3, 3, referee)
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("organizer corrects the result", func(t *testing.T) {
		updated, err := env.service.RecordResult(ctx, match.ID, 1, 2, organizer)
		require.NoError(t, err)
		assert.Equal(t, 1, *updated.HomeScore)
	})

	t.Run("unassigned referee denied", func(t *testing.T) {
		otherID := env.userRepo.add("other-ref", models.RoleReferee)
		other := models.Principal{UserID: otherID, Role: models.RoleReferee}
		fresh := env.createScheduledMatch(t)
		_, err := env.service.RecordResult(ctx, fresh.ID, 1, 0, other)
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})
}

func TestUpdateMatchStatusRules(t *testing.T) {
	env := newMatchEnv(t)
	ctx := context.Background()

	t.Run("cannot complete via status edit", func(t *testing.T) {
		match := env.createScheduledMatch(t)
		completed := models.MatchStatusCompleted
		_, err := env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{Status: &completed}, organizer)
		assert.ErrorIs(t, err, ErrCompleteViaResultOnly)
	})

	t.Run("invalid status value", func(t *testing.T) {
		match := env.createScheduledMatch(t)
		bogus := models.MatchStatus("FINISHED")
		_, err := env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{Status: &bogus}, organizer)
		assert.ErrorIs(t, err, ErrInvalidMatchStatus)
	})

	t.Run("rewinding a completed match clears the scores", func(t *testing.T) {
		match := env.createScheduledMatch(t)
		_, err := env.service.RecordResult(ctx, match.ID, 2, 0, organizer)
		require.NoError(t, err)

		scheduled := models.MatchStatusScheduled
		updated, err := env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{Status: &scheduled}, organizer)
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusScheduled, updated.Status)
		assert.Nil(t, updated.HomeScore)
		assert.Nil(t, updated.AwayScore)
	})

	t.Run("postponed can return to scheduled", func(t *testing.T) {
		match := env.createScheduledMatch(t)
		postponed := models.MatchStatusPostponed
		_, err := env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{Status: &postponed}, organizer)
		require.NoError(t, err)

		scheduled := models.MatchStatusScheduled
		updated, err := env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{Status: &scheduled}, organizer)
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusScheduled, updated.Status)
	})

	t.Run("postponed cannot jump to in-progress", func(t *testing.T) {
		match := env.createScheduledMatch(t)
		postponed := models.MatchStatusPostponed
		_, err := env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{Status: &postponed}, organizer)
		require.NoError(t, err)

		inProgress := models.MatchStatusInProgress
		_, err = env.service.UpdateMatch(ctx, match.ID, UpdateMatchInput{Status: &inProgress}, organizer)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})
}

func TestDeleteMatchInvalidatesStandings(t *testing.T) {
	env := newMatchEnv(t)
	ctx := context.Background()

	match := env.createScheduledMatch(t)
	_, err := env.service.RecordResult(ctx, match.ID, 2, 0, organizer)
	require.NoError(t, err)

	rows, err := env.standings.GetStandings(ctx, env.divisionID)
	require.NoError(t, err)
	assert.Equal(t, 3, rows[0].Points)

	require.NoError(t, env.service.DeleteMatch(ctx, match.ID, organizer))

	rows, err = env.standings.GetStandings(ctx, env.divisionID)
	require.NoError(t, err)
	for _, row := range rows {
		assert.Zero(t, row.Points, "deleted result must disappear from the table")
	}

	assert.ErrorIs(t, env.service.DeleteMatch(ctx, match.ID, organizer), ErrMatchNotFound)
}
