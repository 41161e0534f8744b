package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soccerhub/league-manager/authz"
	"github.com/soccerhub/league-manager/brackets"
	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
)

// BracketAdvancer is the slice of the playoff service the match lifecycle
// needs: advancing the bracket inside the same transaction that completed
// a semifinal.
type BracketAdvancer interface {
	AdvanceBracket(ctx context.Context, exec repositories.SQLExecutor, divisionID int) error
}

type CreateMatchInput struct {
	DivisionID int       `json:"division_id"`
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	VenueID    *int      `json:"venue_id"`
	MatchDate  time.Time `json:"match_date"`
	RefereeID  *int      `json:"referee_id"`
}

type UpdateMatchInput struct {
	VenueID   *int                `json:"venue_id"`
	MatchDate *time.Time          `json:"match_date"`
	RefereeID *int                `json:"referee_id"`
	Status    *models.MatchStatus `json:"status"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput, actor models.Principal) (*models.Match, error)
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error)
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput, actor models.Principal) (*models.Match, error)
	RecordResult(ctx context.Context, id, homeScore, awayScore int, actor models.Principal) (*models.Match, error)
	DeleteMatch(ctx context.Context, id int, actor models.Principal) error
}

type matchService struct {
	transactor repositories.Transactor
	matchRepo  repositories.MatchRepository
	teamRepo   repositories.TeamRepository
	venueRepo  repositories.VenueRepository
	userRepo   repositories.UserRepository
	standings  StandingsService
	bracket    BracketAdvancer
	locker     *DivisionLocker
	hub        *brackets.Hub
	logger     *slog.Logger
}

func NewMatchService(
	transactor repositories.Transactor,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	venueRepo repositories.VenueRepository,
	userRepo repositories.UserRepository,
	standingsSvc StandingsService,
	bracket BracketAdvancer,
	locker *DivisionLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		transactor: transactor,
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		venueRepo:  venueRepo,
		userRepo:   userRepo,
		standings:  standingsSvc,
		bracket:    bracket,
		locker:     locker,
		hub:        hub,
		logger:     logger,
	}
}

// Administrative status edits allowed through UpdateMatch. Completion is
// deliberately absent: a match only becomes COMPLETED through RecordResult
// so scores and status can never diverge.
var allowedTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchStatusScheduled:  {models.MatchStatusInProgress, models.MatchStatusPostponed, models.MatchStatusCancelled},
	models.MatchStatusInProgress: {models.MatchStatusPostponed, models.MatchStatusCancelled},
	models.MatchStatusPostponed:  {models.MatchStatusScheduled, models.MatchStatusCancelled},
	models.MatchStatusCancelled:  {models.MatchStatusScheduled},
	models.MatchStatusCompleted:  {models.MatchStatusScheduled, models.MatchStatusInProgress, models.MatchStatusPostponed, models.MatchStatusCancelled},
}

func canTransition(from, to models.MatchStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput, actor models.Principal) (*models.Match, error) {
	if err := authz.Authorize(actor, authz.ActionMatchCreate, authz.Resource{}); err != nil {
		return nil, err
	}

	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrSameTeamFixture
	}
	if input.MatchDate.IsZero() {
		return nil, ErrMatchDateRequired
	}

	if err := s.checkTeamMembership(ctx, input.DivisionID, input.HomeTeamID, input.AwayTeamID); err != nil {
		return nil, err
	}
	if input.VenueID != nil {
		if _, err := s.venueRepo.GetByID(ctx, nil, *input.VenueID); err != nil {
			if errors.Is(err, repositories.ErrVenueNotFound) {
				return nil, ErrVenueNotFound
			}
			return nil, err
		}
	}
	if input.RefereeID != nil {
		if err := s.checkReferee(ctx, *input.RefereeID); err != nil {
			return nil, err
		}
	}

	unlock := s.locker.lock(input.DivisionID)
	defer unlock()

	match := &models.Match{
		DivisionID: input.DivisionID,
		HomeTeamID: &input.HomeTeamID,
		AwayTeamID: &input.AwayTeamID,
		VenueID:    input.VenueID,
		MatchDate:  &input.MatchDate,
		Status:     models.MatchStatusScheduled,
		RefereeID:  input.RefereeID,
	}
	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.logger.Info("match scheduled",
		slog.Int("match_id", match.ID),
		slog.Int("division_id", match.DivisionID))
	s.broadcast(match.DivisionID, brackets.EventMatchUpdated, match)
	return match, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput, actor models.Principal) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	if err := authz.Authorize(actor, authz.ActionMatchUpdate, authz.Resource{Match: match}); err != nil {
		return nil, err
	}

	unlock := s.locker.lock(match.DivisionID)
	defer unlock()

	// Re-read under the division lock so the edit applies to the latest
	// committed state.
	match, err = s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	wasCompleted := match.Status == models.MatchStatusCompleted
	scoresCleared := false

	if input.Status != nil {
		next := *input.Status
		if !next.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMatchStatus, next)
		}
		if next == models.MatchStatusCompleted && !wasCompleted {
			return nil, ErrCompleteViaResultOnly
		}
		if !canTransition(match.Status, next) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, match.Status, next)
		}
		if wasCompleted && next != models.MatchStatusCompleted {
			match.HomeScore = nil
			match.AwayScore = nil
			scoresCleared = true
		}
		match.Status = next
	}
	if input.VenueID != nil {
		if _, err := s.venueRepo.GetByID(ctx, nil, *input.VenueID); err != nil {
			if errors.Is(err, repositories.ErrVenueNotFound) {
				return nil, ErrVenueNotFound
			}
			return nil, err
		}
		match.VenueID = input.VenueID
	}
	if input.MatchDate != nil {
		match.MatchDate = input.MatchDate
	}
	if input.RefereeID != nil {
		if err := s.checkReferee(ctx, *input.RefereeID); err != nil {
			return nil, err
		}
		match.RefereeID = input.RefereeID
	}

	if scoresCleared && match.IsPlayoff() {
		// Rewinding a semifinal invalidates the final's pairing; both
		// writes must commit together.
		err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.matchRepo.Update(ctx, exec, match); err != nil {
				return mapMatchRepoError(err)
			}
			return s.bracket.AdvanceBracket(ctx, exec, match.DivisionID)
		})
		if err != nil {
			return nil, err
		}
	} else if err := s.matchRepo.Update(ctx, nil, match); err != nil {
		return nil, mapMatchRepoError(err)
	}

	if scoresCleared {
		if match.IsPlayoff() {
			s.broadcast(match.DivisionID, brackets.EventBracketUpdated, map[string]int{"division_id": match.DivisionID})
		} else {
			s.standings.Invalidate(match.DivisionID)
			s.broadcast(match.DivisionID, brackets.EventStandingsUpdated, map[string]int{"division_id": match.DivisionID})
		}
	}
	s.broadcast(match.DivisionID, brackets.EventMatchUpdated, match)
	return match, nil
}

func (s *matchService) RecordResult(ctx context.Context, id, homeScore, awayScore int, actor models.Principal) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	unlock := s.locker.lock(match.DivisionID)
	defer unlock()

	match, err = s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	// The gate sees the current status: a referee's window closes the
	// moment their match completes, while organizers may correct freely.
	if err := authz.Authorize(actor, authz.ActionMatchRecordResult, authz.Resource{Match: match}); err != nil {
		return nil, err
	}

	if homeScore < 0 || awayScore < 0 {
		return nil, ErrNegativeScore
	}
	switch match.Status {
	case models.MatchStatusScheduled, models.MatchStatusInProgress, models.MatchStatusCompleted:
	default:
		return nil, fmt.Errorf("%w: cannot complete a %s match; reschedule it first", ErrInvalidStatusTransition, match.Status)
	}
	if match.HomeTeamID == nil || match.AwayTeamID == nil {
		return nil, fmt.Errorf("%w: both team slots must be resolved before a result can be recorded", ErrValidationFailed)
	}
	if match.IsPlayoff() && homeScore == awayScore {
		return nil, ErrPlayoffDrawNotAllowed
	}

	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match.HomeScore = &homeScore
		match.AwayScore = &awayScore
		match.Status = models.MatchStatusCompleted
		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return mapMatchRepoError(err)
		}
		if match.IsPlayoff() {
			return s.bracket.AdvanceBracket(ctx, exec, match.DivisionID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("division_id", match.DivisionID),
		slog.Int("home_score", homeScore),
		slog.Int("away_score", awayScore),
		slog.Int("actor_id", actor.UserID))

	if match.IsPlayoff() {
		s.broadcast(match.DivisionID, brackets.EventBracketUpdated, map[string]int{"division_id": match.DivisionID})
	} else {
		s.standings.Invalidate(match.DivisionID)
		s.broadcast(match.DivisionID, brackets.EventStandingsUpdated, map[string]int{"division_id": match.DivisionID})
	}
	s.broadcast(match.DivisionID, brackets.EventMatchUpdated, match)
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id int, actor models.Principal) error {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return mapMatchRepoError(err)
	}

	if err := authz.Authorize(actor, authz.ActionMatchDelete, authz.Resource{Match: match}); err != nil {
		return err
	}

	unlock := s.locker.lock(match.DivisionID)
	defer unlock()

	if match.PlayoffRound != nil && *match.PlayoffRound == models.PlayoffRoundSemifinal {
		// A deleted semifinal takes its winner out of the final.
		err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.matchRepo.Delete(ctx, exec, id); err != nil {
				return mapMatchRepoError(err)
			}
			return s.bracket.AdvanceBracket(ctx, exec, match.DivisionID)
		})
		if err != nil {
			return err
		}
	} else if err := s.matchRepo.Delete(ctx, nil, id); err != nil {
		return mapMatchRepoError(err)
	}

	s.logger.Info("match deleted",
		slog.Int("match_id", id),
		slog.Int("division_id", match.DivisionID))

	if match.IsPlayoff() {
		s.broadcast(match.DivisionID, brackets.EventBracketUpdated, map[string]int{"division_id": match.DivisionID})
	} else {
		s.standings.Invalidate(match.DivisionID)
		s.broadcast(match.DivisionID, brackets.EventStandingsUpdated, map[string]int{"division_id": match.DivisionID})
	}
	return nil
}

func (s *matchService) checkTeamMembership(ctx context.Context, divisionID int, teamIDs ...int) error {
	for _, teamID := range teamIDs {
		team, err := s.teamRepo.GetByID(ctx, nil, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return err
		}
		if team.DivisionID != divisionID {
			return fmt.Errorf("%w: team %d belongs to division %d", ErrTeamNotInDivision, teamID, team.DivisionID)
		}
	}
	return nil
}

func (s *matchService) checkReferee(ctx context.Context, refereeID int) error {
	user, err := s.userRepo.GetByID(ctx, nil, refereeID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Role != models.RoleReferee {
		return ErrRefereeRoleRequired
	}
	return nil
}

func (s *matchService) broadcast(divisionID int, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(divisionRoom(divisionID), eventType, payload)
}

func mapMatchRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchTeamInvalid):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrMatchVenueInvalid):
		return ErrVenueNotFound
	case errors.Is(err, repositories.ErrMatchRefereeInvalid):
		return ErrUserNotFound
	default:
		return err
	}
}
