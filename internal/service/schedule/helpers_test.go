package schedule

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/events"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/lock"
	"github.com/cmlabs-hris/shift-engine-go/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	location  location.Location
	publisher *events.Recorder
}

func newFixture(t *testing.T, opts ...memory.Option) *fixture {
	t.Helper()

	store := memory.NewStore(opts...)
	loc, err := store.Locations().Create(context.Background(), location.Location{
		Name:      "Main Store",
		Latitude:  -6.2,
		Longitude: 106.8,
		RadiusKm:  0.5,
	})
	require.NoError(t, err)

	return &fixture{store: store, location: loc, publisher: &events.Recorder{}}
}

// service builds a schedule service over the fixture, optionally wrapping the shift store.
func (f *fixture) service(opts Options, wrap ...func(shift.ShiftStore) shift.ShiftStore) shift.ScheduleService {
	var store shift.ShiftStore = f.store.Shifts()
	for _, w := range wrap {
		store = w(store)
	}
	if opts.Publisher == nil {
		opts.Publisher = f.publisher
	}
	return NewScheduleService(store, f.store.Locations(), f.store.Employees(), opts)
}

func (f *fixture) seedShift(t *testing.T, employeeID string, start, end time.Time) shift.Shift {
	t.Helper()

	s, err := f.store.Shifts().Create(context.Background(), shift.ShiftDraft{
		EmployeeID: employeeID,
		LocationID: f.location.ID,
		StartTime:  start,
		EndTime:    end,
	})
	require.NoError(t, err)
	return s
}

func june(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

// failingStore lets a test decide, per draft, whether Create fails before reaching the store.
type failingStore struct {
	shift.ShiftStore
	failOn func(shift.ShiftDraft) error
}

func (s *failingStore) Create(ctx context.Context, draft shift.ShiftDraft) (shift.Shift, error) {
	if err := s.failOn(draft); err != nil {
		return shift.Shift{}, err
	}
	return s.ShiftStore.Create(ctx, draft)
}

func failWhen(fn func(shift.ShiftDraft) error) func(shift.ShiftStore) shift.ShiftStore {
	return func(inner shift.ShiftStore) shift.ShiftStore {
		return &failingStore{ShiftStore: inner, failOn: fn}
	}
}

// staleStore hides existing shifts from the first ListByEmployee call, simulating a writer
// that committed between the conflict check and the insert.
type staleStore struct {
	shift.ShiftStore

	mu    sync.Mutex
	stale bool
}

func (s *staleStore) ListByEmployee(ctx context.Context, employeeID string) ([]shift.Shift, error) {
	s.mu.Lock()
	stale := s.stale
	s.stale = false
	s.mu.Unlock()

	if stale {
		return []shift.Shift{}, nil
	}
	return s.ShiftStore.ListByEmployee(ctx, employeeID)
}

func staleOnce(inner shift.ShiftStore) shift.ShiftStore {
	return &staleStore{ShiftStore: inner, stale: true}
}

// brokenLocker stands in for a lock backend that cannot be reached.
type brokenLocker struct {
	mu    sync.Mutex
	calls int
}

func (l *brokenLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return nil, fmt.Errorf("%w: %s: connection refused", lock.ErrLockUnavailable, key)
}

func (l *brokenLocker) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
