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

type CreateVenueInput struct {
	Name     string  `json:"name"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

type UpdateVenueInput struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

type VenueService interface {
	CreateVenue(ctx context.Context, input CreateVenueInput, actor models.Principal) (*models.Venue, error)
	GetVenue(ctx context.Context, id int) (*models.Venue, error)
	ListVenues(ctx context.Context) ([]*models.Venue, error)
	UpdateVenue(ctx context.Context, id int, input UpdateVenueInput, actor models.Principal) (*models.Venue, error)
	DeleteVenue(ctx context.Context, id int, actor models.Principal) error
}

type venueService struct {
	venueRepo repositories.VenueRepository
	logger    *slog.Logger
}

func NewVenueService(venueRepo repositories.VenueRepository, logger *slog.Logger) VenueService {
	return &venueService{venueRepo: venueRepo, logger: logger}
}

func (s *venueService) CreateVenue(ctx context.Context, input CreateVenueInput, actor models.Principal) (*models.Venue, error) {
	if err := authz.Authorize(actor, authz.ActionVenueCreate, authz.Resource{}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: venue name is required", ErrValidationFailed)
	}
	if input.Capacity != nil && *input.Capacity < 0 {
		return nil, fmt.Errorf("%w: venue capacity must be non-negative", ErrValidationFailed)
	}

	venue := &models.Venue{
		Name:     name,
		Address:  input.Address,
		City:     input.City,
		Capacity: input.Capacity,
	}
	if err := s.venueRepo.Create(ctx, nil, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	s.logger.Info("venue created", slog.Int("venue_id", venue.ID))
	return venue, nil
}

func (s *venueService) GetVenue(ctx context.Context, id int) (*models.Venue, error) {
	venue, err := s.venueRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVenueNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return venue, nil
}

func (s *venueService) ListVenues(ctx context.Context) ([]*models.Venue, error) {
	venues, err := s.venueRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}

func (s *venueService) UpdateVenue(ctx context.Context, id int, input UpdateVenueInput, actor models.Principal) (*models.Venue, error) {
	if err := authz.Authorize(actor, authz.ActionVenueUpdate, authz.Resource{}); err != nil {
		return nil, err
	}

	venue, err := s.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: venue name is required", ErrValidationFailed)
		}
		venue.Name = name
	}
	if input.Address != nil {
		venue.Address = input.Address
	}
	if input.City != nil {
		venue.City = input.City
	}
	if input.Capacity != nil {
		if *input.Capacity < 0 {
			return nil, fmt.Errorf("%w: venue capacity must be non-negative", ErrValidationFailed)
		}
		venue.Capacity = input.Capacity
	}

	if err := s.venueRepo.Update(ctx, nil, venue); err != nil {
		if errors.Is(err, repositories.ErrVenueNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("failed to update venue %d: %w", id, err)
	}
	return venue, nil
}

func (s *venueService) DeleteVenue(ctx context.Context, id int, actor models.Principal) error {
	if err := authz.Authorize(actor, authz.ActionVenueDelete, authz.Resource{}); err != nil {
		return err
	}

	if err := s.venueRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrVenueNotFound) {
			return ErrVenueNotFound
		}
		return fmt.Errorf("failed to delete venue %d: %w", id, err)
	}

	s.logger.Info("venue deleted", slog.Int("venue_id", id))
	return nil
}
