package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/soccerhub/league-manager/models"
)

var ErrDivisionNotFound = errors.New("division not found")

type DivisionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, division *models.Division) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Division, error)
	List(ctx context.Context, exec SQLExecutor, tournamentID *int) ([]*models.Division, error)
	Update(ctx context.Context, exec SQLExecutor, division *models.Division) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresDivisionRepository struct {
	db *sql.DB
}

func NewPostgresDivisionRepository(db *sql.DB) DivisionRepository {
	return &postgresDivisionRepository{db: db}
}

func (r *postgresDivisionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresDivisionRepository) Create(ctx context.Context, exec SQLExecutor, division *models.Division) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO divisions (name, tournament_id)
		VALUES ($1, $2)
		RETURNING id, created_at`
	return executor.QueryRowContext(ctx, query, division.Name, division.TournamentID).
		Scan(&division.ID, &division.CreatedAt)
}

func (r *postgresDivisionRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Division, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, tournament_id, created_at FROM divisions WHERE id = $1`

	division := &models.Division{}
	err := executor.QueryRowContext(ctx, query, id).
		Scan(&division.ID, &division.Name, &division.TournamentID, &division.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to scan division by id %d: %w", id, err)
	}
	return division, nil
}

func (r *postgresDivisionRepository) List(ctx context.Context, exec SQLExecutor, tournamentID *int) ([]*models.Division, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, tournament_id, created_at FROM divisions`
	args := []interface{}{}
	if tournamentID != nil {
		query += ` WHERE tournament_id = $1`
		args = append(args, *tournamentID)
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query divisions: %w", err)
	}
	defer rows.Close()

	divisions := make([]*models.Division, 0)
	for rows.Next() {
		var d models.Division
		if scanErr := rows.Scan(&d.ID, &d.Name, &d.TournamentID, &d.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan division row: %w", scanErr)
		}
		divisions = append(divisions, &d)
	}
	return divisions, rows.Err()
}

func (r *postgresDivisionRepository) Update(ctx context.Context, exec SQLExecutor, division *models.Division) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE divisions SET name = $1, tournament_id = $2 WHERE id = $3`,
		division.Name, division.TournamentID, division.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDivisionNotFound)
}

func (r *postgresDivisionRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM divisions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDivisionNotFound)
}
