package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/soccerhub/league-manager/models"
)

var ErrVenueNotFound = errors.New("venue not found")

type VenueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, venue *models.Venue) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Venue, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Venue, error)
	Update(ctx context.Context, exec SQLExecutor, venue *models.Venue) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresVenueRepository struct {
	db *sql.DB
}

func NewPostgresVenueRepository(db *sql.DB) VenueRepository {
	return &postgresVenueRepository{db: db}
}

func (r *postgresVenueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresVenueRepository) Create(ctx context.Context, exec SQLExecutor, venue *models.Venue) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO venues (name, address, city, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return executor.QueryRowContext(ctx, query,
		venue.Name, venue.Address, venue.City, venue.Capacity).
		Scan(&venue.ID, &venue.CreatedAt)
}

func (r *postgresVenueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Venue, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, address, city, capacity, created_at FROM venues WHERE id = $1`

	v := &models.Venue{}
	err := executor.QueryRowContext(ctx, query, id).
		Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.Capacity, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("failed to scan venue by id %d: %w", id, err)
	}
	return v, nil
}

func (r *postgresVenueRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Venue, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id, name, address, city, capacity, created_at FROM venues ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	venues := make([]*models.Venue, 0)
	for rows.Next() {
		var v models.Venue
		if scanErr := rows.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.Capacity, &v.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan venue row: %w", scanErr)
		}
		venues = append(venues, &v)
	}
	return venues, rows.Err()
}

func (r *postgresVenueRepository) Update(ctx context.Context, exec SQLExecutor, venue *models.Venue) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE venues SET name = $1, address = $2, city = $3, capacity = $4 WHERE id = $5`,
		venue.Name, venue.Address, venue.City, venue.Capacity, venue.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}

func (r *postgresVenueRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}
