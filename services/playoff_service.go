package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/soccerhub/league-manager/authz"
	"github.com/soccerhub/league-manager/brackets"
	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
	"golang.org/x/sync/errgroup"
)

type PlayoffService interface {
	GeneratePlayoffs(ctx context.Context, divisionID int, actor models.Principal) (*models.PlayoffBracket, error)
	ClearPlayoffs(ctx context.Context, divisionID int, actor models.Principal) error
	GetBracket(ctx context.Context, divisionID int) (*models.PlayoffBracket, error)
	AdvanceBracket(ctx context.Context, exec repositories.SQLExecutor, divisionID int) error
}

type playoffService struct {
	transactor   repositories.Transactor
	divisionRepo repositories.DivisionRepository
	matchRepo    repositories.MatchRepository
	standings    StandingsService
	locker       *DivisionLocker
	hub          *brackets.Hub
	logger       *slog.Logger
}

func NewPlayoffService(
	transactor repositories.Transactor,
	divisionRepo repositories.DivisionRepository,
	matchRepo repositories.MatchRepository,
	standingsSvc StandingsService,
	locker *DivisionLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) PlayoffService {
	return &playoffService{
		transactor:   transactor,
		divisionRepo: divisionRepo,
		matchRepo:    matchRepo,
		standings:    standingsSvc,
		locker:       locker,
		hub:          hub,
		logger:       logger,
	}
}

// GeneratePlayoffs seeds a bracket from the division's current standings:
// 1v4 and 2v3 as semifinals, plus a final with both team slots left
// unresolved until the semifinal winners are known. Regeneration over an
// existing bracket is a conflict; the organizer must clear it first.
func (s *playoffService) GeneratePlayoffs(ctx context.Context, divisionID int, actor models.Principal) (*models.PlayoffBracket, error) {
	if err := authz.Authorize(actor, authz.ActionPlayoffGenerate, authz.Resource{}); err != nil {
		return nil, err
	}

	unlock := s.locker.lock(divisionID)
	defer unlock()

	existing, err := s.matchRepo.List(ctx, nil, repositories.MatchFilter{
		DivisionID:  &divisionID,
		PlayoffOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bracket for division %d: %w", divisionID, err)
	}
	if len(existing) > 0 {
		return nil, ErrBracketAlreadyExists
	}

	rows, err := s.standings.GetStandings(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	seeding, err := brackets.SeedPlayoffs(rows)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughSeeds) {
			return nil, fmt.Errorf("%w: %d ranked", ErrNotEnoughRankedTeams, len(rows))
		}
		return nil, err
	}

	semifinalRound := models.PlayoffRoundSemifinal
	finalRound := models.PlayoffRoundFinal

	created := make([]models.Match, 0, 3)
	var finalMatch *models.Match

	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, pairing := range seeding.Semifinals {
			home, away := pairing.HomeTeamID, pairing.AwayTeamID
			match := &models.Match{
				DivisionID:   divisionID,
				HomeTeamID:   &home,
				AwayTeamID:   &away,
				Status:       models.MatchStatusScheduled,
				PlayoffRound: &semifinalRound,
			}
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return mapMatchRepoError(err)
			}
			created = append(created, *match)
		}

		finalMatch = &models.Match{
			DivisionID:   divisionID,
			Status:       models.MatchStatusScheduled,
			PlayoffRound: &finalRound,
		}
		if err := s.matchRepo.Create(ctx, exec, finalMatch); err != nil {
			return mapMatchRepoError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("playoff bracket generated",
		slog.Int("division_id", divisionID),
		slog.Any("seeds", seeding.Seeds))
	s.broadcast(divisionID)

	return &models.PlayoffBracket{
		DivisionID: divisionID,
		Seeds:      seeding.Seeds,
		Semifinals: created,
		Final:      finalMatch,
	}, nil
}

func (s *playoffService) ClearPlayoffs(ctx context.Context, divisionID int, actor models.Principal) error {
	if err := authz.Authorize(actor, authz.ActionPlayoffClear, authz.Resource{}); err != nil {
		return err
	}

	unlock := s.locker.lock(divisionID)
	defer unlock()

	deleted, err := s.matchRepo.DeletePlayoffsByDivision(ctx, nil, divisionID)
	if err != nil {
		return fmt.Errorf("failed to clear bracket for division %d: %w", divisionID, err)
	}
	if deleted == 0 {
		return ErrBracketNotFound
	}

	s.logger.Info("playoff bracket cleared",
		slog.Int("division_id", divisionID),
		slog.Int("matches_removed", deleted))
	s.broadcast(divisionID)
	return nil
}

// GetBracket assembles the derived bracket view. The seed order is
// reconstructed from the semifinal pairings (1v4, 2v3), so it does not
// need separate persistence.
func (s *playoffService) GetBracket(ctx context.Context, divisionID int) (*models.PlayoffBracket, error) {
	var semifinals, finals []*models.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.divisionRepo.GetByID(gCtx, nil, divisionID); err != nil {
			if errors.Is(err, repositories.ErrDivisionNotFound) {
				return ErrDivisionNotFound
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		round := models.PlayoffRoundSemifinal
		matches, err := s.matchRepo.List(gCtx, nil, repositories.MatchFilter{
			DivisionID:   &divisionID,
			PlayoffRound: &round,
		})
		if err != nil {
			return fmt.Errorf("failed to list semifinals for division %d: %w", divisionID, err)
		}
		semifinals = matches
		return nil
	})
	g.Go(func() error {
		round := models.PlayoffRoundFinal
		matches, err := s.matchRepo.List(gCtx, nil, repositories.MatchFilter{
			DivisionID:   &divisionID,
			PlayoffRound: &round,
		})
		if err != nil {
			return fmt.Errorf("failed to list final for division %d: %w", divisionID, err)
		}
		finals = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(semifinals) == 0 && len(finals) == 0 {
		return nil, ErrBracketNotFound
	}

	// List orders by match date; bracket positions follow creation order,
	// so re-sort by id before reading pairings out of the slots.
	sortMatchesByID(semifinals)
	sortMatchesByID(finals)

	bracket := &models.PlayoffBracket{
		DivisionID: divisionID,
		Semifinals: make([]models.Match, 0, len(semifinals)),
	}
	for _, m := range semifinals {
		bracket.Semifinals = append(bracket.Semifinals, *m)
	}
	if len(finals) > 0 {
		bracket.Final = finals[0]
	}
	bracket.Seeds = reconstructSeeds(semifinals)
	return bracket, nil
}

// AdvanceBracket reconciles the final with the semifinal results. Once
// both semifinals are COMPLETED it fills the final's team slots with the
// winners; while either semifinal lacks a result it clears any stale
// pairing instead, so a rewound or deleted semifinal cannot leave a
// phantom finalist. It runs inside the caller's transaction so the
// semifinal change and the final's new state commit atomically. A
// COMPLETED final is immutable here; only organizer-initiated deletion
// and regeneration can change it.
func (s *playoffService) AdvanceBracket(ctx context.Context, exec repositories.SQLExecutor, divisionID int) error {
	semifinalRound := models.PlayoffRoundSemifinal
	semifinals, err := s.matchRepo.List(ctx, exec, repositories.MatchFilter{
		DivisionID:   &divisionID,
		PlayoffRound: &semifinalRound,
	})
	if err != nil {
		return fmt.Errorf("failed to list semifinals for division %d: %w", divisionID, err)
	}
	sortMatchesByID(semifinals)
	if len(semifinals) < 2 {
		return s.clearStaleFinal(ctx, exec, divisionID)
	}

	winners := make([]int, 0, 2)
	for _, semifinal := range semifinals {
		if semifinal.Status != models.MatchStatusCompleted || semifinal.HomeScore == nil || semifinal.AwayScore == nil {
			return s.clearStaleFinal(ctx, exec, divisionID)
		}
		winner, err := brackets.SemifinalWinner(semifinal)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPlayoffDrawNotAllowed, err)
		}
		winners = append(winners, winner)
	}

	finalRound := models.PlayoffRoundFinal
	finals, err := s.matchRepo.List(ctx, exec, repositories.MatchFilter{
		DivisionID:   &divisionID,
		PlayoffRound: &finalRound,
	})
	if err != nil {
		return fmt.Errorf("failed to list final for division %d: %w", divisionID, err)
	}
	sortMatchesByID(finals)

	if len(finals) == 0 {
		// The final was removed by an organizer; recreate it so the
		// bracket can conclude.
		finalMatch := &models.Match{
			DivisionID:   divisionID,
			HomeTeamID:   &winners[0],
			AwayTeamID:   &winners[1],
			Status:       models.MatchStatusScheduled,
			PlayoffRound: &finalRound,
		}
		if err := s.matchRepo.Create(ctx, exec, finalMatch); err != nil {
			return mapMatchRepoError(err)
		}
		return nil
	}

	finalMatch := finals[0]
	if finalMatch.Status == models.MatchStatusCompleted {
		return nil
	}

	finalMatch.HomeTeamID = &winners[0]
	finalMatch.AwayTeamID = &winners[1]
	if err := s.matchRepo.Update(ctx, exec, finalMatch); err != nil {
		return mapMatchRepoError(err)
	}
	return nil
}

// clearStaleFinal empties the final's team slots when the semifinal
// results no longer support a pairing. A COMPLETED final stays untouched.
func (s *playoffService) clearStaleFinal(ctx context.Context, exec repositories.SQLExecutor, divisionID int) error {
	finalRound := models.PlayoffRoundFinal
	finals, err := s.matchRepo.List(ctx, exec, repositories.MatchFilter{
		DivisionID:   &divisionID,
		PlayoffRound: &finalRound,
	})
	if err != nil {
		return fmt.Errorf("failed to list final for division %d: %w", divisionID, err)
	}
	sortMatchesByID(finals)
	if len(finals) == 0 {
		return nil
	}

	finalMatch := finals[0]
	if finalMatch.Status == models.MatchStatusCompleted {
		return nil
	}
	if finalMatch.HomeTeamID == nil && finalMatch.AwayTeamID == nil {
		return nil
	}

	finalMatch.HomeTeamID = nil
	finalMatch.AwayTeamID = nil
	if err := s.matchRepo.Update(ctx, exec, finalMatch); err != nil {
		return mapMatchRepoError(err)
	}
	return nil
}

// reconstructSeeds expects the semifinals in id order: the 1v4 pairing is
// created before the 2v3 pairing, and ids are the only stable record of
// that.
func reconstructSeeds(semifinals []*models.Match) []int {
	if len(semifinals) < 2 {
		return nil
	}
	first, second := semifinals[0], semifinals[1]
	if first.HomeTeamID == nil || first.AwayTeamID == nil || second.HomeTeamID == nil || second.AwayTeamID == nil {
		return nil
	}
	return []int{*first.HomeTeamID, *second.HomeTeamID, *second.AwayTeamID, *first.AwayTeamID}
}

func sortMatchesByID(matches []*models.Match) {
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
}

func (s *playoffService) broadcast(divisionID int) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(divisionRoom(divisionID), brackets.EventBracketUpdated, map[string]int{"division_id": divisionID})
}
