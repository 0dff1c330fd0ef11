// Package memory keeps every repository in process memory behind one lock. It mirrors the
// constraints of the PostgreSQL schema (foreign keys, the per-employee shift exclusion) so
// the services behave the same on either backend.
package memory

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	shifts      map[string]shift.Shift
	locations   map[string]location.Location
	events      []attendance.Event
	employees   map[string]struct{}
	anyEmployee bool

	now func() time.Time
}

type Option func(*Store)

// WithEmployees restricts the store to the given employee ids.
// Without it every employee id is accepted.
func WithEmployees(ids ...string) Option {
	return func(s *Store) {
		s.anyEmployee = false
		for _, id := range ids {
			s.employees[id] = struct{}{}
		}
	}
}

// WithClock replaces time.Now for created_at and updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		shifts:      make(map[string]shift.Shift),
		locations:   make(map[string]location.Location),
		employees:   make(map[string]struct{}),
		anyEmployee: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// AddEmployee registers an employee id; the store stops accepting unknown ids afterwards.
func (s *Store) AddEmployee(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.anyEmployee = false
	s.employees[id] = struct{}{}
}

func (s *Store) hasEmployee(id string) bool {
	if s.anyEmployee {
		return true
	}
	_, ok := s.employees[id]
	return ok
}

// locationInUse reports whether a shift or attendance event refers to the location.
// Callers hold s.mu.
func (s *Store) locationInUse(id string) bool {
	for _, sh := range s.shifts {
		if sh.LocationID == id {
			return true
		}
	}
	for _, e := range s.events {
		if e.LocationID == id {
			return true
		}
	}
	return false
}

func (s *Store) Shifts() *ShiftRepository {
	return &ShiftRepository{s: s}
}

func (s *Store) Locations() *LocationRepository {
	return &LocationRepository{s: s}
}

func (s *Store) Attendance() *AttendanceRepository {
	return &AttendanceRepository{s: s}
}

func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{s: s}
}
