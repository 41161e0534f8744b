package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/soccerhub/league-manager/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchTeamInvalid    = errors.New("match team conflict or invalid")
	ErrMatchVenueInvalid   = errors.New("match venue conflict or invalid")
	ErrMatchRefereeInvalid = errors.New("match referee conflict or invalid")
)

// MatchFilter narrows List results. Nil fields are not applied.
type MatchFilter struct {
	DivisionID   *int
	Status       *models.MatchStatus
	TeamID       *int
	PlayoffRound *models.PlayoffRound
	LeagueOnly   bool // playoff_round IS NULL
	PlayoffOnly  bool // playoff_round IS NOT NULL
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error)
	DeletePlayoffsByDivision(ctx context.Context, exec SQLExecutor, divisionID int) (int, error)
	DeleteScheduledLeagueByDivision(ctx context.Context, exec SQLExecutor, divisionID int) (int, error)
	CountByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, division_id, home_team_id, away_team_id, venue_id, match_date,
	home_score, away_score, status, referee_id, playoff_round, created_at, updated_at`

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.DivisionID, &m.HomeTeamID, &m.AwayTeamID, &m.VenueID, &m.MatchDate,
		&m.HomeScore, &m.AwayScore, &m.Status, &m.RefereeID, &m.PlayoffRound,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(division_id, home_team_id, away_team_id, venue_id, match_date,
			 home_score, away_score, status, referee_id, playoff_round)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		match.DivisionID,
		match.HomeTeamID,
		match.AwayTeamID,
		match.VenueID,
		match.MatchDate,
		match.HomeScore,
		match.AwayScore,
		match.Status,
		match.RefereeID,
		match.PlayoffRound,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	return handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error) {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE 1=1`)

	args := []interface{}{}
	placeholder := 1

	appendFilter := func(clause string, value interface{}) {
		queryBuilder.WriteString(" AND " + clause + " $" + strconv.Itoa(placeholder))
		args = append(args, value)
		placeholder++
	}

	if filter.DivisionID != nil {
		appendFilter("division_id =", *filter.DivisionID)
	}
	if filter.Status != nil {
		appendFilter("status =", *filter.Status)
	}
	if filter.PlayoffRound != nil {
		appendFilter("playoff_round =", *filter.PlayoffRound)
	}
	if filter.TeamID != nil {
		queryBuilder.WriteString(" AND (home_team_id = $" + strconv.Itoa(placeholder) +
			" OR away_team_id = $" + strconv.Itoa(placeholder) + ")")
		args = append(args, *filter.TeamID)
		placeholder++
	}
	if filter.LeagueOnly {
		queryBuilder.WriteString(" AND playoff_round IS NULL")
	}
	if filter.PlayoffOnly {
		queryBuilder.WriteString(" AND playoff_round IS NOT NULL")
	}

	queryBuilder.WriteString(" ORDER BY match_date ASC NULLS LAST, id ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET division_id = $1, home_team_id = $2, away_team_id = $3, venue_id = $4,
		    match_date = $5, home_score = $6, away_score = $7, status = $8,
		    referee_id = $9, playoff_round = $10, updated_at = NOW()
		WHERE id = $11`

	result, err := executor.ExecContext(ctx, query,
		match.DivisionID,
		match.HomeTeamID,
		match.AwayTeamID,
		match.VenueID,
		match.MatchDate,
		match.HomeScore,
		match.AwayScore,
		match.Status,
		match.RefereeID,
		match.PlayoffRound,
		match.ID,
	)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM matches WHERE home_team_id = $1 OR away_team_id = $1`, teamID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (r *postgresMatchRepository) DeletePlayoffsByDivision(ctx context.Context, exec SQLExecutor, divisionID int) (int, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM matches WHERE division_id = $1 AND playoff_round IS NOT NULL`, divisionID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (r *postgresMatchRepository) DeleteScheduledLeagueByDivision(ctx context.Context, exec SQLExecutor, divisionID int) (int, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM matches WHERE division_id = $1 AND playoff_round IS NULL AND status = $2`,
		divisionID, models.MatchStatusScheduled)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (r *postgresMatchRepository) CountByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE home_team_id = $1 OR away_team_id = $1`, teamID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for team %d: %w", teamID, err)
	}
	return count, nil
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
		switch {
		case strings.Contains(pqErr.Constraint, "team"):
			return ErrMatchTeamInvalid
		case strings.Contains(pqErr.Constraint, "venue"):
			return ErrMatchVenueInvalid
		case strings.Contains(pqErr.Constraint, "referee"):
			return ErrMatchRefereeInvalid
		}
	}
	return err
}
