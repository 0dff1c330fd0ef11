package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/interval"
)

type ShiftRepository struct {
	s *Store
}

var _ shift.ShiftStore = (*ShiftRepository)(nil)

func sortShifts(shifts []shift.Shift) {
	slices.SortFunc(shifts, func(a, b shift.Shift) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// ListByEmployee implements shift.ShiftStore.
func (r *ShiftRepository) ListByEmployee(ctx context.Context, employeeID string) ([]shift.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shifts := []shift.Shift{}
	for _, sh := range r.s.shifts {
		if sh.EmployeeID == employeeID {
			shifts = append(shifts, sh)
		}
	}
	sortShifts(shifts)
	return shifts, nil
}

// Create implements shift.ShiftStore. Overlapping shifts of one employee are rejected with
// *shift.ConflictError, the same way the database exclusion constraint does.
func (r *ShiftRepository) Create(ctx context.Context, draft shift.ShiftDraft) (shift.Shift, error) {
	if err := interval.Validate(draft.StartTime, draft.EndTime); err != nil {
		return shift.Shift{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.hasEmployee(draft.EmployeeID) {
		return shift.Shift{}, employee.ErrEmployeeNotFound
	}
	if _, ok := r.s.locations[draft.LocationID]; !ok {
		return shift.Shift{}, location.ErrLocationNotFound
	}

	for _, existing := range r.s.shifts {
		if existing.EmployeeID != draft.EmployeeID {
			continue
		}
		if overlaps, _ := interval.Overlaps(draft.StartTime, draft.EndTime, existing.StartTime, existing.EndTime); overlaps {
			return shift.Shift{}, &shift.ConflictError{}
		}
	}

	now := r.s.timestamp()
	created := shift.Shift{
		ID:         r.s.newID(),
		EmployeeID: draft.EmployeeID,
		LocationID: draft.LocationID,
		StartTime:  draft.StartTime,
		EndTime:    draft.EndTime,
		Notes:      draft.Notes,
		Status:     shift.StatusScheduled,
		CreatedBy:  draft.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.s.shifts[created.ID] = created

	return created, nil
}

// GetByID implements shift.ShiftStore.
func (r *ShiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sh, ok := r.s.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return sh, nil
}

// List implements shift.ShiftStore.
func (r *ShiftRepository) List(ctx context.Context, filter shift.ShiftFilter) ([]shift.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shifts := []shift.Shift{}
	for _, sh := range r.s.shifts {
		if filter.EmployeeID != nil && sh.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.LocationID != nil && sh.LocationID != *filter.LocationID {
			continue
		}
		if filter.From != nil && sh.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !sh.StartTime.Before(*filter.To) {
			continue
		}
		shifts = append(shifts, sh)
	}
	sortShifts(shifts)
	return shifts, nil
}

// Update implements shift.ShiftStore.
func (r *ShiftRepository) Update(ctx context.Context, next shift.Shift) (shift.Shift, error) {
	if err := interval.Validate(next.StartTime, next.EndTime); err != nil {
		return shift.Shift{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.shifts[next.ID]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	if !r.s.hasEmployee(next.EmployeeID) {
		return shift.Shift{}, employee.ErrEmployeeNotFound
	}
	if _, ok := r.s.locations[next.LocationID]; !ok {
		return shift.Shift{}, location.ErrLocationNotFound
	}

	for _, existing := range r.s.shifts {
		if existing.ID == next.ID || existing.EmployeeID != next.EmployeeID {
			continue
		}
		if overlaps, _ := interval.Overlaps(next.StartTime, next.EndTime, existing.StartTime, existing.EndTime); overlaps {
			return shift.Shift{}, &shift.ConflictError{}
		}
	}

	next.CreatedBy = stored.CreatedBy
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = r.s.timestamp()
	r.s.shifts[next.ID] = next

	return next, nil
}

// Delete implements shift.ShiftStore.
func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shifts[id]; !ok {
		return shift.ErrShiftNotFound
	}
	delete(r.s.shifts, id)
	return nil
}

// SetStatus changes the status of a stored shift.
func (r *ShiftRepository) SetStatus(id string, status shift.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sh, ok := r.s.shifts[id]
	if !ok {
		return shift.ErrShiftNotFound
	}
	sh.Status = status
	sh.UpdatedAt = r.s.timestamp()
	r.s.shifts[id] = sh
	return nil
}
