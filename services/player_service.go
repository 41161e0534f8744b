package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soccerhub/league-manager/authz"
	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
)

type CreatePlayerInput struct {
	TeamID       int     `json:"team_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	JerseyNumber *int    `json:"jersey_number"`
	Position     *string `json:"position"`
}

type UpdatePlayerInput struct {
	TeamID       *int    `json:"team_id,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	JerseyNumber *int    `json:"jersey_number,omitempty"`
	Position     *string `json:"position,omitempty"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput, actor models.Principal) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context, teamID *int) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput, actor models.Principal) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int, actor models.Principal) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	logger     *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		logger:     logger,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput, actor models.Principal) (*models.Player, error) {
	if err := authz.Authorize(actor, authz.ActionPlayerCreate, authz.Resource{}); err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrPlayerNameRequired
	}
	if err := validateJerseyNumber(input.JerseyNumber); err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, input.TeamID); err != nil {
		return nil, err
	}

	player := &models.Player{
		TeamID:       input.TeamID,
		FirstName:    firstName,
		LastName:     lastName,
		JerseyNumber: input.JerseyNumber,
		Position:     input.Position,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, mapPlayerRepoError(err)
	}

	s.logger.Info("player added to roster",
		slog.Int("player_id", player.ID),
		slog.Int("team_id", player.TeamID))
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, teamID *int) ([]*models.Player, error) {
	if teamID != nil {
		if err := s.checkTeam(ctx, *teamID); err != nil {
			return nil, err
		}
	}

	players, err := s.playerRepo.List(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput, actor models.Principal) (*models.Player, error) {
	if err := authz.Authorize(actor, authz.ActionPlayerUpdate, authz.Resource{}); err != nil {
		return nil, err
	}

	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}

	if input.FirstName != nil {
		firstName := strings.TrimSpace(*input.FirstName)
		if firstName == "" {
			return nil, ErrPlayerNameRequired
		}
		player.FirstName = firstName
	}
	if input.LastName != nil {
		lastName := strings.TrimSpace(*input.LastName)
		if lastName == "" {
			return nil, ErrPlayerNameRequired
		}
		player.LastName = lastName
	}
	if input.JerseyNumber != nil {
		if err := validateJerseyNumber(input.JerseyNumber); err != nil {
			return nil, err
		}
		player.JerseyNumber = input.JerseyNumber
	}
	if input.Position != nil {
		player.Position = input.Position
	}
	if input.TeamID != nil && *input.TeamID != player.TeamID {
		if err := s.checkTeam(ctx, *input.TeamID); err != nil {
			return nil, err
		}
		player.TeamID = *input.TeamID
	}

	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int, actor models.Principal) error {
	if err := authz.Authorize(actor, authz.ActionPlayerDelete, authz.Resource{}); err != nil {
		return err
	}

	if err := s.playerRepo.Delete(ctx, nil, id); err != nil {
		return mapPlayerRepoError(err)
	}

	s.logger.Info("player removed from roster", slog.Int("player_id", id))
	return nil
}

func (s *playerService) checkTeam(ctx context.Context, teamID int) error {
	if _, err := s.teamRepo.GetByID(ctx, nil, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to verify team %d: %w", teamID, err)
	}
	return nil
}

func validateJerseyNumber(number *int) error {
	if number == nil {
		return nil
	}
	if *number < 1 || *number > 99 {
		return fmt.Errorf("%w: got %d", ErrInvalidJerseyNumber, *number)
	}
	return nil
}

func mapPlayerRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerNumberConflict):
		return ErrJerseyNumberConflict
	case errors.Is(err, repositories.ErrPlayerTeamInvalid):
		return ErrTeamNotFound
	default:
		return err
	}
}
