package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
	"github.com/soccerhub/league-manager/standings"
)

// StandingsService serves the derived league table for a division. The
// table is always the result of a full recompute over the division's
// completed league matches; the cache is a pure memoization keyed by
// division id and is invalidated wholesale whenever any of the division's
// matches change. Rank is derived at read time, never stored.
type StandingsService interface {
	GetStandings(ctx context.Context, divisionID int) ([]models.StandingRow, error)
	Invalidate(divisionID int)
}

type standingsService struct {
	divisionRepo repositories.DivisionRepository
	teamRepo     repositories.TeamRepository
	matchRepo    repositories.MatchRepository

	mu    sync.RWMutex
	cache map[int][]models.StandingRow
}

func NewStandingsService(
	divisionRepo repositories.DivisionRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		divisionRepo: divisionRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		cache:        make(map[int][]models.StandingRow),
	}
}

func (s *standingsService) GetStandings(ctx context.Context, divisionID int) ([]models.StandingRow, error) {
	s.mu.RLock()
	cached, ok := s.cache[divisionID]
	s.mu.RUnlock()
	if ok {
		return copyRows(cached), nil
	}

	if _, err := s.divisionRepo.GetByID(ctx, nil, divisionID); err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to load division %d: %w", divisionID, err)
	}

	teams, err := s.teamRepo.List(ctx, nil, &divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for division %d: %w", divisionID, err)
	}

	completed := models.MatchStatusCompleted
	matches, err := s.matchRepo.List(ctx, nil, repositories.MatchFilter{
		DivisionID: &divisionID,
		Status:     &completed,
		LeagueOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches for division %d: %w", divisionID, err)
	}

	rows := standings.Compute(teams, matches)

	s.mu.Lock()
	s.cache[divisionID] = rows
	s.mu.Unlock()

	return copyRows(rows), nil
}

func (s *standingsService) Invalidate(divisionID int) {
	s.mu.Lock()
	delete(s.cache, divisionID)
	s.mu.Unlock()
}

func copyRows(rows []models.StandingRow) []models.StandingRow {
	out := make([]models.StandingRow, len(rows))
	copy(out, rows)
	return out
}
