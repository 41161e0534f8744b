package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soccerhub/league-manager/authz"
	"github.com/soccerhub/league-manager/brackets"
	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
)

type CreateDivisionInput struct {
	Name         string `json:"name"`
	TournamentID int    `json:"tournament_id"`
}

type UpdateDivisionInput struct {
	Name *string `json:"name,omitempty"`
}

type DivisionService interface {
	CreateDivision(ctx context.Context, input CreateDivisionInput, actor models.Principal) (*models.Division, error)
	GetDivision(ctx context.Context, id int) (*models.Division, error)
	ListDivisions(ctx context.Context, tournamentID *int) ([]*models.Division, error)
	UpdateDivision(ctx context.Context, id int, input UpdateDivisionInput, actor models.Principal) (*models.Division, error)
	DeleteDivision(ctx context.Context, id int, actor models.Principal) error
	GenerateSchedule(ctx context.Context, divisionID int, actor models.Principal) ([]*models.Match, error)
}

type divisionService struct {
	transactor     repositories.Transactor
	divisionRepo   repositories.DivisionRepository
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	venueRepo      repositories.VenueRepository
	standings      StandingsService
	locker         *DivisionLocker
	logger         *slog.Logger
}

func NewDivisionService(
	transactor repositories.Transactor,
	divisionRepo repositories.DivisionRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	venueRepo repositories.VenueRepository,
	standingsSvc StandingsService,
	locker *DivisionLocker,
	logger *slog.Logger,
) DivisionService {
	return &divisionService{
		transactor:     transactor,
		divisionRepo:   divisionRepo,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		venueRepo:      venueRepo,
		standings:      standingsSvc,
		locker:         locker,
		logger:         logger,
	}
}

func (s *divisionService) CreateDivision(ctx context.Context, input CreateDivisionInput, actor models.Principal) (*models.Division, error) {
	if err := authz.Authorize(actor, authz.ActionDivisionCreate, authz.Resource{}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: division name is required", ErrValidationFailed)
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, input.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to verify tournament %d: %w", input.TournamentID, err)
	}

	division := &models.Division{Name: name, TournamentID: input.TournamentID}
	if err := s.divisionRepo.Create(ctx, nil, division); err != nil {
		return nil, fmt.Errorf("failed to create division: %w", err)
	}

	s.logger.Info("division created",
		slog.Int("division_id", division.ID),
		slog.Int("tournament_id", division.TournamentID))
	return division, nil
}

func (s *divisionService) GetDivision(ctx context.Context, id int) (*models.Division, error) {
	division, err := s.divisionRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, err
	}
	return division, nil
}

func (s *divisionService) ListDivisions(ctx context.Context, tournamentID *int) ([]*models.Division, error) {
	divisions, err := s.divisionRepo.List(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list divisions: %w", err)
	}
	return divisions, nil
}

func (s *divisionService) UpdateDivision(ctx context.Context, id int, input UpdateDivisionInput, actor models.Principal) (*models.Division, error) {
	if err := authz.Authorize(actor, authz.ActionDivisionUpdate, authz.Resource{}); err != nil {
		return nil, err
	}

	division, err := s.GetDivision(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: division name is required", ErrValidationFailed)
		}
		division.Name = name
	}

	if err := s.divisionRepo.Update(ctx, nil, division); err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to update division %d: %w", id, err)
	}
	return division, nil
}

func (s *divisionService) DeleteDivision(ctx context.Context, id int, actor models.Principal) error {
	if err := authz.Authorize(actor, authz.ActionDivisionDelete, authz.Resource{}); err != nil {
		return err
	}

	unlock := s.locker.lock(id)
	defer unlock()

	if err := s.divisionRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return ErrDivisionNotFound
		}
		return fmt.Errorf("failed to delete division %d: %w", id, err)
	}

	s.standings.Invalidate(id)
	s.logger.Info("division deleted", slog.Int("division_id", id))
	return nil
}

// GenerateSchedule replaces the division's not-yet-started league fixtures
// with a fresh round-robin spread across the parent tournament's dates.
// Matches that already produced results, and the playoff bracket, are left
// alone.
func (s *divisionService) GenerateSchedule(ctx context.Context, divisionID int, actor models.Principal) ([]*models.Match, error) {
	if err := authz.Authorize(actor, authz.ActionScheduleGenerate, authz.Resource{}); err != nil {
		return nil, err
	}

	division, err := s.GetDivision(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, division.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", division.TournamentID, err)
	}

	unlock := s.locker.lock(divisionID)
	defer unlock()

	teams, err := s.teamRepo.List(ctx, nil, &divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for division %d: %w", divisionID, err)
	}
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughTeamsForSchedule, len(teams))
	}

	teamIDs := make([]int, 0, len(teams))
	for _, team := range teams {
		teamIDs = append(teamIDs, team.ID)
	}

	fixtures, err := brackets.RoundRobinSchedule(teamIDs, tournament.StartDate, tournament.EndDate)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrNotEnoughTeamsForSchedule
		}
		return nil, err
	}

	venues, err := s.venueRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	created := make([]*models.Match, 0, len(fixtures))
	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		replaced, err := s.matchRepo.DeleteScheduledLeagueByDivision(ctx, exec, divisionID)
		if err != nil {
			return fmt.Errorf("failed to clear scheduled fixtures for division %d: %w", divisionID, err)
		}
		if replaced > 0 {
			s.logger.Info("replaced scheduled fixtures",
				slog.Int("division_id", divisionID),
				slog.Int("count", replaced))
		}

		for i, fixture := range fixtures {
			home, away := fixture.HomeTeamID, fixture.AwayTeamID
			kickOff := fixture.KickOff
			match := &models.Match{
				DivisionID: divisionID,
				HomeTeamID: &home,
				AwayTeamID: &away,
				MatchDate:  &kickOff,
				Status:     models.MatchStatusScheduled,
			}
			if len(venues) > 0 {
				venueID := venues[i%len(venues)].ID
				match.VenueID = &venueID
			}
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return mapMatchRepoError(err)
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.standings.Invalidate(divisionID)
	s.logger.Info("schedule generated",
		slog.Int("division_id", divisionID),
		slog.Int("fixtures", len(created)))
	return created, nil
}
