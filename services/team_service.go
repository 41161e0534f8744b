package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/soccerhub/league-manager/authz"
	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
	"github.com/soccerhub/league-manager/storage"
)

type CreateTeamInput struct {
	Name       string `json:"name"`
	DivisionID int    `json:"division_id"`
}

type UpdateTeamInput struct {
	Name       *string `json:"name,omitempty"`
	DivisionID *int    `json:"division_id,omitempty"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput, actor models.Principal) (*models.Team, error)
	GetTeam(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context, divisionID *int) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id int, input UpdateTeamInput, actor models.Principal) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int, cascade bool, actor models.Principal) error
	UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader, actor models.Principal) (*models.Team, error)
}

type teamService struct {
	transactor   repositories.Transactor
	teamRepo     repositories.TeamRepository
	divisionRepo repositories.DivisionRepository
	matchRepo    repositories.MatchRepository
	playerRepo   repositories.PlayerRepository
	standings    StandingsService
	uploader     storage.FileUploader
	locker       *DivisionLocker
	logger       *slog.Logger
}

func NewTeamService(
	transactor repositories.Transactor,
	teamRepo repositories.TeamRepository,
	divisionRepo repositories.DivisionRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	standingsSvc StandingsService,
	uploader storage.FileUploader,
	locker *DivisionLocker,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		transactor:   transactor,
		teamRepo:     teamRepo,
		divisionRepo: divisionRepo,
		matchRepo:    matchRepo,
		playerRepo:   playerRepo,
		standings:    standingsSvc,
		uploader:     uploader,
		locker:       locker,
		logger:       logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput, actor models.Principal) (*models.Team, error) {
	if err := authz.Authorize(actor, authz.ActionTeamCreate, authz.Resource{}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if _, err := s.divisionRepo.GetByID(ctx, nil, input.DivisionID); err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to verify division %d: %w", input.DivisionID, err)
	}

	team := &models.Team{Name: name, DivisionID: input.DivisionID}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, mapTeamRepoError(err)
	}

	s.logger.Info("team created", slog.Int("team_id", team.ID), slog.Int("division_id", team.DivisionID))
	s.attachLogoURL(team)
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	s.attachLogoURL(team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, divisionID *int) ([]*models.Team, error) {
	if divisionID != nil {
		if _, err := s.divisionRepo.GetByID(ctx, nil, *divisionID); err != nil {
			if errors.Is(err, repositories.ErrDivisionNotFound) {
				return nil, ErrDivisionNotFound
			}
			return nil, fmt.Errorf("failed to verify division %d: %w", *divisionID, err)
		}
	}

	teams, err := s.teamRepo.List(ctx, nil, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for _, team := range teams {
		s.attachLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id int, input UpdateTeamInput, actor models.Principal) (*models.Team, error) {
	if err := authz.Authorize(actor, authz.ActionTeamUpdate, authz.Resource{}); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	unlock := s.locker.lock(team.DivisionID)
	defer unlock()

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.DivisionID != nil && *input.DivisionID != team.DivisionID {
		// Moving a team between divisions would orphan its played
		// matches, so it is only allowed while none exist.
		count, err := s.matchRepo.CountByTeam(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count matches for team %d: %w", id, err)
		}
		if count > 0 {
			return nil, ErrTeamHasMatches
		}
		if _, err := s.divisionRepo.GetByID(ctx, nil, *input.DivisionID); err != nil {
			if errors.Is(err, repositories.ErrDivisionNotFound) {
				return nil, ErrDivisionNotFound
			}
			return nil, fmt.Errorf("failed to verify division %d: %w", *input.DivisionID, err)
		}
		team.DivisionID = *input.DivisionID
	}

	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		return nil, mapTeamRepoError(err)
	}

	s.standings.Invalidate(team.DivisionID)
	s.attachLogoURL(team)
	return team, nil
}

// DeleteTeam refuses to remove a team that still appears in matches
// unless the caller explicitly opts into the cascade, which removes the
// matches in the same transaction. The roster is owned by the team and
// goes with it either way.
func (s *teamService) DeleteTeam(ctx context.Context, id int, cascade bool, actor models.Principal) error {
	if err := authz.Authorize(actor, authz.ActionTeamDelete, authz.Resource{}); err != nil {
		return err
	}

	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return mapTeamRepoError(err)
	}

	unlock := s.locker.lock(team.DivisionID)
	defer unlock()

	count, err := s.matchRepo.CountByTeam(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count matches for team %d: %w", id, err)
	}
	if count > 0 && !cascade {
		return ErrTeamHasMatches
	}

	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if count > 0 {
			removed, err := s.matchRepo.DeleteByTeam(ctx, exec, id)
			if err != nil {
				return fmt.Errorf("failed to cascade matches for team %d: %w", id, err)
			}
			s.logger.Info("cascaded match deletion",
				slog.Int("team_id", id),
				slog.Int("matches_removed", removed))
		}
		if _, err := s.playerRepo.DeleteByTeam(ctx, exec, id); err != nil {
			return fmt.Errorf("failed to remove roster for team %d: %w", id, err)
		}
		if err := s.teamRepo.Delete(ctx, exec, id); err != nil {
			return mapTeamRepoError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if team.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			s.logger.Warn("failed to delete team logo",
				slog.Int("team_id", id),
				slog.String("error", err.Error()))
		}
	}

	s.standings.Invalidate(team.DivisionID)
	s.logger.Info("team deleted", slog.Int("team_id", id), slog.Bool("cascade", cascade))
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader, actor models.Principal) (*models.Team, error) {
	if err := authz.Authorize(actor, authz.ActionTeamUpdate, authz.Resource{}); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	key := path.Join("team-logos", strconv.Itoa(id), strconv.FormatInt(time.Now().UnixNano(), 10)+extensionFor(contentType))
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", id, err)
	}

	oldKey := team.LogoKey
	if err := s.teamRepo.UpdateLogoKey(ctx, nil, id, &result.Key); err != nil {
		return nil, mapTeamRepoError(err)
	}
	team.LogoKey = &result.Key

	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete replaced team logo",
				slog.Int("team_id", id),
				slog.String("error", err.Error()))
		}
	}

	s.attachLogoURL(team)
	return team, nil
}

func (s *teamService) attachLogoURL(team *models.Team) {
	if team.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	team.LogoURL = &url
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamDivisionInvalid):
		return ErrDivisionNotFound
	case errors.Is(err, repositories.ErrTeamStillReferenced):
		return ErrTeamHasMatches
	default:
		return err
	}
}
