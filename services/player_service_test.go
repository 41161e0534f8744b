package services

import (
	"context"
	"testing"

	"github.com/soccerhub/league-manager/authz"
	"github.com/soccerhub/league-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playerEnv struct {
	players    PlayerService
	playerRepo *fakePlayerRepo
	teamRepo   *fakeTeamRepo
	teamID     int
}

func newPlayerEnv(t *testing.T) *playerEnv {
	t.Helper()

	teamRepo := newFakeTeamRepo()
	teamID := teamRepo.add("Ajax", 1)
	playerRepo := newFakePlayerRepo()

	return &playerEnv{
		players:    NewPlayerService(playerRepo, teamRepo, testLogger()),
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		teamID:     teamID,
	}
}

func TestCreatePlayerValidation(t *testing.T) {
	env := newPlayerEnv(t)
	ctx := context.Background()

	t.Run("blank name", func(t *testing.T) {
		_, err := env.players.CreatePlayer(ctx, CreatePlayerInput{
			TeamID: env.teamID, FirstName: "  ", LastName: "Cruyff",
		}, organizer)
		assert.ErrorIs(t, err, ErrPlayerNameRequired)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := env.players.CreatePlayer(ctx, CreatePlayerInput{
			TeamID: 999, FirstName: "Johan", LastName: "Cruyff",
		}, organizer)
		assert.ErrorIs(t, err, ErrTeamNotFound)
	})

	t.Run("jersey number out of range", func(t *testing.T) {
		zero := 0
		_, err := env.players.CreatePlayer(ctx, CreatePlayerInput{
			TeamID: env.teamID, FirstName: "Johan", LastName: "Cruyff", JerseyNumber: &zero,
		}, organizer)
		assert.ErrorIs(t, err, ErrInvalidJerseyNumber)
	})

	t.Run("referee denied", func(t *testing.T) {
		referee := models.Principal{UserID: 2, Role: models.RoleReferee}
		_, err := env.players.CreatePlayer(ctx, CreatePlayerInput{
			TeamID: env.teamID, FirstName: "Johan", LastName: "Cruyff",
		}, referee)
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})
}

func TestCreatePlayerJerseyNumberConflict(t *testing.T) {
	env := newPlayerEnv(t)
	ctx := context.Background()

	fourteen := 14
	_, err := env.players.CreatePlayer(ctx, CreatePlayerInput{
		TeamID: env.teamID, FirstName: "Johan", LastName: "Cruyff", JerseyNumber: &fourteen,
	}, organizer)
	require.NoError(t, err)

	_, err = env.players.CreatePlayer(ctx, CreatePlayerInput{
		TeamID: env.teamID, FirstName: "Dennis", LastName: "Bergkamp", JerseyNumber: &fourteen,
	}, organizer)
	assert.ErrorIs(t, err, ErrJerseyNumberConflict)

	// The same number is free on another team.
	otherTeam := env.teamRepo.add("Breda", 1)
	_, err = env.players.CreatePlayer(ctx, CreatePlayerInput{
		TeamID: otherTeam, FirstName: "Dennis", LastName: "Bergkamp", JerseyNumber: &fourteen,
	}, organizer)
	assert.NoError(t, err)
}

func TestListPlayersByTeam(t *testing.T) {
	env := newPlayerEnv(t)
	ctx := context.Background()

	otherTeam := env.teamRepo.add("Breda", 1)
	env.playerRepo.add("Johan", "Cruyff", env.teamID, nil)
	env.playerRepo.add("Dennis", "Bergkamp", env.teamID, nil)
	env.playerRepo.add("Frank", "Rijkaard", otherTeam, nil)

	all, err := env.players.ListPlayers(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	roster, err := env.players.ListPlayers(ctx, &env.teamID)
	require.NoError(t, err)
	assert.Len(t, roster, 2)
	for _, player := range roster {
		assert.Equal(t, env.teamID, player.TeamID)
	}

	unknown := 999
	_, err = env.players.ListPlayers(ctx, &unknown)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestUpdatePlayer(t *testing.T) {
	env := newPlayerEnv(t)
	ctx := context.Background()

	playerID := env.playerRepo.add("Johan", "Cruyff", env.teamID, nil)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		position := "Forward"
		fourteen := 14
		updated, err := env.players.UpdatePlayer(ctx, playerID, UpdatePlayerInput{
			Position: &position, JerseyNumber: &fourteen,
		}, organizer)
		require.NoError(t, err)
		assert.Equal(t, "Johan", updated.FirstName)
		assert.Equal(t, "Forward", *updated.Position)
		assert.Equal(t, 14, *updated.JerseyNumber)
	})

	t.Run("move to unknown team rejected", func(t *testing.T) {
		unknown := 999
		_, err := env.players.UpdatePlayer(ctx, playerID, UpdatePlayerInput{TeamID: &unknown}, organizer)
		assert.ErrorIs(t, err, ErrTeamNotFound)
	})

	t.Run("unknown player", func(t *testing.T) {
		name := "Marco"
		_, err := env.players.UpdatePlayer(ctx, 999, UpdatePlayerInput{FirstName: &name}, organizer)
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})
}

func TestDeletePlayer(t *testing.T) {
	env := newPlayerEnv(t)
	ctx := context.Background()

	playerID := env.playerRepo.add("Johan", "Cruyff", env.teamID, nil)

	require.NoError(t, env.players.DeletePlayer(ctx, playerID, organizer))
	assert.ErrorIs(t, env.players.DeletePlayer(ctx, playerID, organizer), ErrPlayerNotFound)

	referee := models.Principal{UserID: 2, Role: models.RoleReferee}
	assert.ErrorIs(t, env.players.DeletePlayer(ctx, playerID, referee), authz.ErrForbidden)
}
