package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/events"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/shift-engine-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shiftRequest(employeeID, locationID, start, end string) shift.CreateShiftRequest {
	return shift.CreateShiftRequest{
		EmployeeID: employeeID,
		LocationID: locationID,
		StartTime:  start,
		EndTime:    end,
	}
}

func TestScheduleService_ScheduleSingleShift_Success(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	createdBy := "user-1"
	req := shiftRequest("emp-1", f.location.ID, "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z")
	req.CreatedBy = &createdBy

	resp, err := svc.ScheduleSingleShift(ctx, req)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "emp-1", resp.EmployeeID)
	assert.Equal(t, string(shift.StatusScheduled), resp.Status)
	assert.Equal(t, "2024-06-03T09:00:00Z", resp.StartTime)
	assert.Equal(t, "2024-06-03T17:00:00Z", resp.EndTime)
	require.NotNil(t, resp.CreatedBy)
	assert.Equal(t, "user-1", *resp.CreatedBy)

	stored, err := f.store.Shifts().GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(june(3, 9, 0)))

	assert.Equal(t, []string{events.TypeShiftCreated}, f.publisher.Types())
}

func TestScheduleService_ScheduleSingleShift_Conflict(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	first, err := svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", f.location.ID, "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z"))
	require.NoError(t, err)

	_, err = svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", f.location.ID, "2024-06-03T16:00:00Z", "2024-06-03T18:00:00Z"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shift.ErrShiftConflict)

	var conflictErr *shift.ConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.NotNil(t, conflictErr.ConflictingShift)
	assert.Equal(t, first.ID, conflictErr.ConflictingShift.ID)

	shifts, err := f.store.Shifts().ListByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, shifts, 1)
	assert.Len(t, f.publisher.Events(), 1)
}

func TestScheduleService_ScheduleSingleShift_BackToBack(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	_, err := svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", f.location.ID, "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z"))
	require.NoError(t, err)

	_, err = svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", f.location.ID, "2024-06-03T17:00:00Z", "2024-06-03T21:00:00Z"))
	assert.NoError(t, err)

	_, err = svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", f.location.ID, "2024-06-03T05:00:00Z", "2024-06-03T09:00:00Z"))
	assert.NoError(t, err)
}

func TestScheduleService_ScheduleSingleShift_OtherEmployeeSameSlot(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	_, err := svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", f.location.ID, "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z"))
	require.NoError(t, err)

	_, err = svc.ScheduleSingleShift(ctx, shiftRequest("emp-2", f.location.ID, "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z"))
	assert.NoError(t, err)
}

func TestScheduleService_ScheduleSingleShift_Validation(t *testing.T) {
	tests := []struct {
		name   string
		req    shift.CreateShiftRequest
		fields []string
	}{
		{
			name:   "missing fields",
			req:    shift.CreateShiftRequest{},
			fields: []string{"employee_id", "location_id", "start_time", "end_time"},
		},
		{
			name:   "end before start",
			req:    shiftRequest("emp-1", "loc", "2024-06-03T17:00:00Z", "2024-06-03T09:00:00Z"),
			fields: []string{"end_time"},
		},
		{
			name:   "zero length",
			req:    shiftRequest("emp-1", "loc", "2024-06-03T09:00:00Z", "2024-06-03T09:00:00Z"),
			fields: []string{"end_time"},
		},
		{
			name:   "malformed timestamp",
			req:    shiftRequest("emp-1", "loc", "yesterday", "2024-06-03T09:00:00Z"),
			fields: []string{"start_time"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := f.service(Options{})

			_, err := svc.ScheduleSingleShift(context.Background(), tt.req)
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			fields := verrs.ToMap()
			for _, field := range tt.fields {
				assert.Contains(t, fields, field)
			}

			shifts, err := f.store.Shifts().List(context.Background(), shift.ShiftFilter{})
			require.NoError(t, err)
			assert.Empty(t, shifts)
			assert.Empty(t, f.publisher.Events())
		})
	}
}

func TestScheduleService_ScheduleSingleShift_UnknownReferences(t *testing.T) {
	f := newFixture(t, memory.WithEmployees("emp-1"))
	svc := f.service(Options{})
	ctx := context.Background()

	_, err := svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", "missing-location", "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z"))
	assert.ErrorIs(t, err, location.ErrLocationNotFound)

	_, err = svc.ScheduleSingleShift(ctx, shiftRequest("emp-404", f.location.ID, "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z"))
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	shifts, err := f.store.Shifts().List(ctx, shift.ShiftFilter{})
	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestScheduleService_ScheduleSingleShift_StoreConstraintConflict(t *testing.T) {
	f := newFixture(t)
	existing := f.seedShift(t, "emp-1", june(3, 9, 0), june(3, 17, 0))

	svc := f.service(Options{}, staleOnce)

	_, err := svc.ScheduleSingleShift(context.Background(), shiftRequest("emp-1", f.location.ID, "2024-06-03T16:00:00Z", "2024-06-03T18:00:00Z"))

	var conflictErr *shift.ConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.NotNil(t, conflictErr.ConflictingShift)
	assert.Equal(t, existing.ID, conflictErr.ConflictingShift.ID)
	assert.Empty(t, f.publisher.Events())
}

func TestScheduleService_ScheduleSingleShift_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", f.location.ID, "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, shift.ErrShiftConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)

	shifts, err := f.store.Shifts().ListByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, shifts, 1)
}

func TestScheduleService_GetShift(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	seeded := f.seedShift(t, "emp-1", june(3, 9, 0), june(3, 17, 0))

	resp, err := svc.GetShift(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, resp.ID)

	_, err = svc.GetShift(ctx, "missing")
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
}

func TestScheduleService_ListShifts(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	f.seedShift(t, "emp-1", june(3, 9, 0), june(3, 17, 0))
	f.seedShift(t, "emp-1", june(5, 9, 0), june(5, 17, 0))
	f.seedShift(t, "emp-2", june(4, 9, 0), june(4, 17, 0))

	t.Run("by employee and dates", func(t *testing.T) {
		resp, err := svc.ListShifts(ctx, shift.ListShiftsRequest{
			EmployeeID: "emp-1",
			StartDate:  "2024-06-01",
			EndDate:    "2024-06-04",
		})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "2024-06-03T09:00:00Z", resp[0].StartTime)
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		resp, err := svc.ListShifts(ctx, shift.ListShiftsRequest{StartDate: "2024-06-05", EndDate: "2024-06-05"})
		require.NoError(t, err)
		assert.Len(t, resp, 1)
	})

	t.Run("all in start order", func(t *testing.T) {
		resp, err := svc.ListShifts(ctx, shift.ListShiftsRequest{})
		require.NoError(t, err)
		require.Len(t, resp, 3)
		assert.Equal(t, "emp-1", resp[0].EmployeeID)
		assert.Equal(t, "emp-2", resp[1].EmployeeID)
		assert.Equal(t, "emp-1", resp[2].EmployeeID)
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := svc.ListShifts(ctx, shift.ListShiftsRequest{StartDate: "2024-06-05", EndDate: "2024-06-01"})
		var verrs validator.ValidationErrors
		assert.True(t, errors.As(err, &verrs))
	})
}

func TestScheduleService_CancelShift(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{})
	ctx := context.Background()

	scheduled := f.seedShift(t, "emp-1", june(3, 9, 0), june(3, 17, 0))
	completed := f.seedShift(t, "emp-1", june(2, 9, 0), june(2, 17, 0))
	require.NoError(t, f.store.Shifts().SetStatus(completed.ID, shift.StatusCompleted))

	t.Run("scheduled shift", func(t *testing.T) {
		err := svc.CancelShift(ctx, scheduled.ID)
		require.NoError(t, err)

		_, err = f.store.Shifts().GetByID(ctx, scheduled.ID)
		assert.ErrorIs(t, err, shift.ErrShiftNotFound)
		assert.Equal(t, []string{events.TypeShiftCancelled}, f.publisher.Types())
	})

	t.Run("completed shift", func(t *testing.T) {
		err := svc.CancelShift(ctx, completed.ID)
		assert.ErrorIs(t, err, shift.ErrShiftNotCancellable)
	})

	t.Run("missing shift", func(t *testing.T) {
		err := svc.CancelShift(ctx, "missing")
		assert.ErrorIs(t, err, shift.ErrShiftNotFound)
	})

	t.Run("slot is free again", func(t *testing.T) {
		_, err := svc.ScheduleSingleShift(ctx, shiftRequest("emp-1", f.location.ID, "2024-06-03T10:00:00Z", "2024-06-03T12:00:00Z"))
		assert.NoError(t, err)
	})
}

func TestScheduleService_PublishFailureDoesNotFailScheduling(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Options{Publisher: failingPublisher{}})

	_, err := svc.ScheduleSingleShift(context.Background(), shiftRequest("emp-1", f.location.ID, "2024-06-03T09:00:00Z", "2024-06-03T17:00:00Z"))
	assert.NoError(t, err)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error {
	return errors.New("broker down")
}

func (failingPublisher) Close() error { return nil }
