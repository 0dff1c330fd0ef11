package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
)

type LocationRepository struct {
	s *Store
}

var _ location.LocationRepository = (*LocationRepository)(nil)

// Get implements location.LocationRepository.
func (r *LocationRepository) Get(ctx context.Context, id string) (location.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.locations[id]
	if !ok {
		return location.Location{}, location.ErrLocationNotFound
	}
	return l, nil
}

// Create implements location.LocationRepository.
func (r *LocationRepository) Create(ctx context.Context, l location.Location) (location.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.timestamp()
	l.ID = r.s.newID()
	l.CreatedAt = now
	l.UpdatedAt = now
	r.s.locations[l.ID] = l

	return l, nil
}

// List implements location.LocationRepository.
func (r *LocationRepository) List(ctx context.Context) ([]location.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	locations := make([]location.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		locations = append(locations, l)
	}
	slices.SortFunc(locations, func(a, b location.Location) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return locations, nil
}

// Update implements location.LocationRepository.
func (r *LocationRepository) Update(ctx context.Context, req location.UpdateLocationRequest) (location.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.locations[req.ID]
	if !ok {
		return location.Location{}, location.ErrLocationNotFound
	}

	if req.MovesGeofence(current) && r.s.locationInUse(req.ID) {
		return location.Location{}, location.ErrLocationInUse
	}

	updated := req.Apply(current)
	updated.UpdatedAt = r.s.timestamp()
	r.s.locations[req.ID] = updated

	return updated, nil
}

// Delete implements location.LocationRepository.
func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.locations[id]; !ok {
		return location.ErrLocationNotFound
	}

	if r.s.locationInUse(id) {
		return location.ErrLocationInUse
	}

	delete(r.s.locations, id)
	return nil
}
