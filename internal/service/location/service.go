package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/logger"
)

type locationServiceImpl struct {
	locationRepo location.LocationRepository
	logger       *slog.Logger
}

func NewLocationService(locationRepo location.LocationRepository, log *slog.Logger) location.LocationService {
	if log == nil {
		log = logger.Discard()
	}
	return &locationServiceImpl{
		locationRepo: locationRepo,
		logger:       log,
	}
}

// Create implements location.LocationService.
func (s *locationServiceImpl) Create(ctx context.Context, req location.CreateLocationRequest) (location.LocationResponse, error) {
	if err := req.Validate(); err != nil {
		return location.LocationResponse{}, err
	}

	created, err := s.locationRepo.Create(ctx, req.Location())
	if err != nil {
		return location.LocationResponse{}, fmt.Errorf("failed to create location: %w", err)
	}

	s.logger.InfoContext(ctx, "location created",
		slog.String("location_id", created.ID),
		slog.Float64("radius_km", created.RadiusKm),
	)

	return location.NewLocationResponse(created), nil
}

// GetByID implements location.LocationService.
func (s *locationServiceImpl) GetByID(ctx context.Context, id string) (location.LocationResponse, error) {
	found, err := s.locationRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return location.LocationResponse{}, location.ErrLocationNotFound
		}
		return location.LocationResponse{}, fmt.Errorf("failed to get location: %w", err)
	}

	return location.NewLocationResponse(found), nil
}

// List implements location.LocationService.
func (s *locationServiceImpl) List(ctx context.Context) ([]location.LocationResponse, error) {
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	responses := make([]location.LocationResponse, 0, len(locations))
	for _, l := range locations {
		responses = append(responses, location.NewLocationResponse(l))
	}
	return responses, nil
}

// Update implements location.LocationService.
func (s *locationServiceImpl) Update(ctx context.Context, req location.UpdateLocationRequest) (location.LocationResponse, error) {
	if err := req.Validate(); err != nil {
		return location.LocationResponse{}, err
	}

	updated, err := s.locationRepo.Update(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, location.ErrLocationNotFound):
			return location.LocationResponse{}, location.ErrLocationNotFound
		case errors.Is(err, location.ErrLocationInUse):
			return location.LocationResponse{}, location.ErrLocationInUse
		}
		return location.LocationResponse{}, fmt.Errorf("failed to update location: %w", err)
	}

	return location.NewLocationResponse(updated), nil
}

// Delete implements location.LocationService.
func (s *locationServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.locationRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, location.ErrLocationNotFound):
			return location.ErrLocationNotFound
		case errors.Is(err, location.ErrLocationInUse):
			return location.ErrLocationInUse
		}
		return fmt.Errorf("failed to delete location: %w", err)
	}

	s.logger.InfoContext(ctx, "location deleted", slog.String("location_id", id))
	return nil
}
