package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
)

type AttendanceRepository struct {
	s *Store
}

var _ attendance.AttendanceRepository = (*AttendanceRepository)(nil)

// Create implements attendance.AttendanceRepository.
func (r *AttendanceRepository) Create(ctx context.Context, e attendance.Event) (attendance.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.hasEmployee(e.EmployeeID) {
		return attendance.Event{}, employee.ErrEmployeeNotFound
	}
	if _, ok := r.s.locations[e.LocationID]; !ok {
		return attendance.Event{}, location.ErrLocationNotFound
	}

	e.ID = r.s.newID()
	e.CreatedAt = r.s.timestamp()
	r.s.events = append(r.s.events, e)

	return e, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]attendance.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	events := []attendance.Event{}
	for _, e := range r.s.events {
		if e.EmployeeID != employeeID {
			continue
		}
		if from != nil && e.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && !e.OccurredAt.Before(*to) {
			continue
		}
		events = append(events, e)
	}

	// newest first
	slices.SortFunc(events, func(a, b attendance.Event) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return events, nil
}
