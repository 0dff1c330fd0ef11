package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/events"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/lock"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/shift-engine-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchRequest(locationID string, employeeIDs ...string) shift.BatchScheduleRequest {
	return shift.BatchScheduleRequest{
		EmployeeIDs:    employeeIDs,
		LocationID:     locationID,
		StartDate:      "2024-06-03",
		EndDate:        "2024-06-05",
		StartTimeOfDay: "09:00",
		EndTimeOfDay:   "17:00",
		Repeat:         "daily",
	}
}

func TestScheduleService_ScheduleBatch_Daily(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	result, err := svc.ScheduleBatch(ctx, batchRequest(f.location.ID, "emp-a", "emp-b"))
	require.NoError(t, err)

	assert.Equal(t, 6, result.CreatedCount)
	assert.Equal(t, 0, result.SkippedConflictCount)
	assert.Equal(t, 0, result.SkippedFailedCount)
	assert.Empty(t, result.Conflicts)
	require.Len(t, result.CreatedShiftIDs, 6)

	// employees in request order, each employee's dates in calendar order
	wantEmployees := []string{"emp-a", "emp-a", "emp-a", "emp-b", "emp-b", "emp-b"}
	wantDays := []int{3, 4, 5, 3, 4, 5}
	for i, id := range result.CreatedShiftIDs {
		sh, err := f.store.Shifts().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, wantEmployees[i], sh.EmployeeID)
		assert.True(t, sh.StartTime.Equal(june(wantDays[i], 9, 0)), "shift %d starts at %s", i, sh.StartTime)
		assert.True(t, sh.EndTime.Equal(june(wantDays[i], 17, 0)))
		assert.Equal(t, shift.StatusScheduled, sh.Status)
	}

	assert.Len(t, f.publisher.Events(), 6)
	for _, typ := range f.publisher.Types() {
		assert.Equal(t, events.TypeShiftCreated, typ)
	}
}

func TestScheduleService_ScheduleBatch_WeeklyWithExistingShift(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	existing := f.seedShift(t, "emp-1", june(5, 9, 0), june(5, 17, 0))

	req := batchRequest(f.location.ID, "emp-1")
	req.EndDate = "2024-06-09"
	req.Repeat = "weekly"
	req.DaysOfWeek = []int{1, 3}

	result, err := svc.ScheduleBatch(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 1, result.SkippedConflictCount)
	require.Len(t, result.Conflicts, 1)

	conflict := result.Conflicts[0]
	assert.Equal(t, "emp-1", conflict.EmployeeID)
	assert.Equal(t, "2024-06-05", conflict.Date.Format("2006-01-02"))
	assert.Equal(t, existing.ID, conflict.ConflictingShiftID)

	created, err := f.store.Shifts().GetByID(ctx, result.CreatedShiftIDs[0])
	require.NoError(t, err)
	assert.True(t, created.StartTime.Equal(june(3, 9, 0)))
}

func TestScheduleService_ScheduleBatch_NoMatchingDays(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})

	req := batchRequest(f.location.ID, "emp-1")
	req.Repeat = "weekly"
	req.DaysOfWeek = []int{int(time.Saturday)}

	result, err := svc.ScheduleBatch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0, result.CreatedCount)
	assert.NotNil(t, result.CreatedShiftIDs)
	assert.NotNil(t, result.Conflicts)
	assert.Empty(t, f.publisher.Events())
}

func TestScheduleService_ScheduleBatch_DuplicateEmployees(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})

	result, err := svc.ScheduleBatch(context.Background(), batchRequest(f.location.ID, "emp-1", "emp-1"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.CreatedCount)
	assert.Equal(t, 0, result.SkippedConflictCount)
}

func TestScheduleService_ScheduleBatch_OvernightSlotRejected(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})

	req := batchRequest(f.location.ID, "emp-1")
	req.StartTimeOfDay = "22:00"
	req.EndTimeOfDay = "06:00"

	_, err := svc.ScheduleBatch(context.Background(), req)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "end_time")
}

func TestScheduleService_ScheduleBatch_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	req := shift.BatchScheduleRequest{
		EmployeeIDs:    []string{},
		LocationID:     f.location.ID,
		StartDate:      "2024-06-09",
		EndDate:        "2024-06-03",
		StartTimeOfDay: "17:00",
		EndTimeOfDay:   "09:00",
		Repeat:         "monthly",
	}

	result, err := svc.ScheduleBatch(ctx, req)
	require.Error(t, err)
	assert.Zero(t, result.CreatedCount)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	for _, field := range []string{"employee_ids", "end_date", "end_time", "repeat"} {
		assert.Contains(t, fields, field)
	}
	assert.Contains(t, fields["repeat"], "daily")

	shifts, err := f.store.Shifts().List(ctx, shift.ShiftFilter{})
	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestScheduleService_ScheduleBatch_UnknownReferences(t *testing.T) {
	f := newFixture(t, memory.WithEmployees("emp-1", "emp-2"))
	svc := f.service(Options{})
	ctx := context.Background()

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.ScheduleBatch(ctx, batchRequest(f.location.ID, "emp-1", "emp-404", "emp-2"))

		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Contains(t, verrs.ToMap(), "employee_ids[1]")
	})

	t.Run("unknown location", func(t *testing.T) {
		_, err := svc.ScheduleBatch(ctx, batchRequest("missing", "emp-1"))

		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Contains(t, verrs.ToMap(), "location_id")
	})

	shifts, err := f.store.Shifts().List(ctx, shift.ShiftFilter{})
	require.NoError(t, err)
	assert.Empty(t, shifts, "nothing is written when a reference is unknown")
}

func TestScheduleService_ScheduleBatch_IndividualFailuresAreCounted(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{}, failWhen(func(d shift.ShiftDraft) error {
		if d.EmployeeID == "emp-b" && d.StartTime.Day() == 4 {
			return errors.New("row rejected")
		}
		return nil
	}))

	result, err := svc.ScheduleBatch(context.Background(), batchRequest(f.location.ID, "emp-a", "emp-b"))
	require.NoError(t, err)

	assert.Equal(t, 5, result.CreatedCount)
	assert.Equal(t, 0, result.SkippedConflictCount)
	assert.Equal(t, 1, result.SkippedFailedCount)
}

func TestScheduleService_ScheduleBatch_StoreUnavailableAborts(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{BatchConcurrency: 1}, failWhen(func(d shift.ShiftDraft) error {
		if d.StartTime.Day() == 4 {
			return fmt.Errorf("insert shift: %w", shift.ErrStoreUnavailable)
		}
		return nil
	}))

	result, err := svc.ScheduleBatch(context.Background(), batchRequest(f.location.ID, "emp-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shift.ErrStoreUnavailable)

	// the shift written before the outage is reported
	assert.Equal(t, 1, result.CreatedCount)
	require.Len(t, result.CreatedShiftIDs, 1)
	_, getErr := f.store.Shifts().GetByID(context.Background(), result.CreatedShiftIDs[0])
	assert.NoError(t, getErr)
}

func TestScheduleService_ScheduleBatch_LockUnavailableAborts(t *testing.T) {
	f := newFixture(t)
	locker := &brokenLocker{}
	svc := f.service(Options{BatchConcurrency: 1, Locker: locker})

	result, err := svc.ScheduleBatch(context.Background(), batchRequest(f.location.ID, "emp-1", "emp-2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, lock.ErrLockUnavailable)

	assert.Zero(t, result.CreatedCount)
	assert.Zero(t, result.SkippedConflictCount)
	assert.Zero(t, result.SkippedFailedCount)
	// the batch stops at the first failure instead of retrying the backend for every date
	assert.LessOrEqual(t, locker.Calls(), 2)

	stored, err := f.store.Shifts().List(context.Background(), shift.ShiftFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestScheduleService_ScheduleBatch_CancelledContext(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.ScheduleBatch(ctx, batchRequest(f.location.ID, "emp-1", "emp-2"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.CreatedCount)
}

func TestScheduleService_ScheduleBatch_TimeZone(t *testing.T) {
	f := newFixture(t)
	wib := time.FixedZone("WIB", 7*60*60)
	svc := f.service(Options{TimeZone: wib})

	req := batchRequest(f.location.ID, "emp-1")
	req.EndDate = req.StartDate

	result, err := svc.ScheduleBatch(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.CreatedShiftIDs, 1)

	sh, err := f.store.Shifts().GetByID(context.Background(), result.CreatedShiftIDs[0])
	require.NoError(t, err)
	assert.True(t, sh.StartTime.Equal(june(3, 2, 0)), "09:00 WIB is 02:00 UTC, got %s", sh.StartTime.UTC())
}

func TestScheduleService_ScheduleBatch_Deterministic(t *testing.T) {
	type projected struct {
		employeeID string
		start      time.Time
	}

	run := func(concurrency int) (shift.BatchScheduleResult, []projected) {
		f := newFixture(t)
		f.seedShift(t, "emp-2", june(4, 12, 0), june(4, 13, 0))
		f.seedShift(t, "emp-4", june(6, 8, 0), june(6, 10, 0))
		f.seedShift(t, "emp-4", june(8, 16, 0), june(8, 20, 0))

		svc := f.service(Options{BatchConcurrency: concurrency})
		req := batchRequest(f.location.ID, "emp-1", "emp-2", "emp-3", "emp-4", "emp-5")
		req.EndDate = "2024-06-09"

		result, err := svc.ScheduleBatch(context.Background(), req)
		require.NoError(t, err)

		created := make([]projected, 0, len(result.CreatedShiftIDs))
		for _, id := range result.CreatedShiftIDs {
			sh, err := f.store.Shifts().GetByID(context.Background(), id)
			require.NoError(t, err)
			created = append(created, projected{employeeID: sh.EmployeeID, start: sh.StartTime})
		}
		return result, created
	}

	sequential, sequentialCreated := run(1)
	concurrent, concurrentCreated := run(5)

	assert.Equal(t, 32, sequential.CreatedCount)
	assert.Equal(t, 3, sequential.SkippedConflictCount)

	assert.Equal(t, sequential.CreatedCount, concurrent.CreatedCount)
	assert.Equal(t, sequential.SkippedConflictCount, concurrent.SkippedConflictCount)
	assert.Equal(t, sequentialCreated, concurrentCreated)

	require.Len(t, concurrent.Conflicts, len(sequential.Conflicts))
	for i := range sequential.Conflicts {
		assert.Equal(t, sequential.Conflicts[i].EmployeeID, concurrent.Conflicts[i].EmployeeID)
		assert.True(t, sequential.Conflicts[i].Date.Equal(concurrent.Conflicts[i].Date))
	}
	assert.Equal(t, "emp-2", concurrent.Conflicts[0].EmployeeID)
	assert.Equal(t, "emp-4", concurrent.Conflicts[1].EmployeeID)
	assert.Equal(t, "2024-06-06", concurrent.Conflicts[1].Date.Format("2006-01-02"))
}

func TestAtClock(t *testing.T) {
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	clock := time.Date(0, 1, 1, 16, 30, 0, 0, time.UTC)

	got := atClock(date, clock, time.UTC)
	assert.True(t, got.Equal(june(3, 16, 30)))
}
