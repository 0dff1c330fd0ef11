package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/events"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/lock"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/logger"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
)

const defaultBatchConcurrency = 4

type Options struct {
	// TimeZone is used to turn batch dates and times of day into instants. Defaults to UTC.
	TimeZone *time.Location
	// BatchConcurrency bounds how many employees a batch processes at once.
	BatchConcurrency int
	Locker           lock.Locker
	Publisher        events.Publisher
	Logger           *slog.Logger
}

type scheduleServiceImpl struct {
	shift.ShiftStore
	location.LocationRepository
	employee.EmployeeRepository

	detector    *ConflictDetector
	locker      lock.Locker
	publisher   events.Publisher
	logger      *slog.Logger
	timeZone    *time.Location
	concurrency int
}

func NewScheduleService(
	shiftStore shift.ShiftStore,
	locationRepo location.LocationRepository,
	employeeRepo employee.EmployeeRepository,
	opts Options,
) shift.ScheduleService {
	s := &scheduleServiceImpl{
		ShiftStore:         shiftStore,
		LocationRepository: locationRepo,
		EmployeeRepository: employeeRepo,
		detector:           NewConflictDetector(shiftStore),
		locker:             opts.Locker,
		publisher:          opts.Publisher,
		logger:             opts.Logger,
		timeZone:           opts.TimeZone,
		concurrency:        opts.BatchConcurrency,
	}
	if s.locker == nil {
		s.locker = lock.NewLocalLocker()
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	if s.timeZone == nil {
		s.timeZone = time.UTC
	}
	if s.concurrency < 1 {
		s.concurrency = defaultBatchConcurrency
	}
	return s
}

// ScheduleSingleShift implements shift.ScheduleService.
func (s *scheduleServiceImpl) ScheduleSingleShift(ctx context.Context, req shift.CreateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	if _, err := s.LocationRepository.Get(ctx, req.LocationID); err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return shift.ShiftResponse{}, location.ErrLocationNotFound
		}
		return shift.ShiftResponse{}, fmt.Errorf("failed to get location: %w", err)
	}

	exists, err := s.EmployeeRepository.Exists(ctx, req.EmployeeID)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return shift.ShiftResponse{}, employee.ErrEmployeeNotFound
	}

	start, end := req.Interval()
	created, err := s.createShift(ctx, shift.ShiftDraft{
		EmployeeID: req.EmployeeID,
		LocationID: req.LocationID,
		StartTime:  start,
		EndTime:    end,
		Notes:      req.Notes,
		CreatedBy:  req.CreatedBy,
	})
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	return shift.NewShiftResponse(created), nil
}

// createShift runs check-then-create for one draft while holding the employee lock and
// publishes shift.created once the lock is released.
// A detected overlap is returned as *shift.ConflictError carrying the blocking shift.
func (s *scheduleServiceImpl) createShift(ctx context.Context, draft shift.ShiftDraft) (shift.Shift, error) {
	release, err := s.locker.Lock(ctx, lock.EmployeeKey(draft.EmployeeID))
	if err != nil {
		return shift.Shift{}, err
	}

	created, err := s.createLocked(ctx, draft)
	release()
	if err != nil {
		return shift.Shift{}, err
	}

	s.publish(ctx, events.TypeShiftCreated, shift.NewShiftResponse(created))

	return created, nil
}

func (s *scheduleServiceImpl) createLocked(ctx context.Context, draft shift.ShiftDraft) (shift.Shift, error) {
	conflict, err := s.detector.FindConflict(ctx, draft.EmployeeID, draft.StartTime, draft.EndTime)
	if err != nil {
		return shift.Shift{}, err
	}
	if conflict != nil {
		return shift.Shift{}, &shift.ConflictError{ConflictingShift: conflict}
	}

	created, err := s.ShiftStore.Create(ctx, draft)
	if err != nil {
		var conflictErr *shift.ConflictError
		if errors.As(err, &conflictErr) && conflictErr.ConflictingShift == nil {
			// rejected by the storage constraint: another writer got there first
			conflictErr.ConflictingShift = s.lookupConflict(ctx, draft.EmployeeID, draft.StartTime, draft.EndTime, "")
			return shift.Shift{}, conflictErr
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return created, nil
}

// lookupConflict fetches the row behind a constraint rejection. The conflict is reported
// either way, so a failed lookup only costs the caller the blocking shift's details.
func (s *scheduleServiceImpl) lookupConflict(ctx context.Context, employeeID string, start, end time.Time, excludeID string) *shift.Shift {
	conflict, err := s.detector.FindConflictExcluding(ctx, employeeID, start, end, excludeID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to look up conflicting shift",
			slog.String("employee_id", employeeID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return conflict
}

func (s *scheduleServiceImpl) publish(ctx context.Context, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event",
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
	}
}

// GetShift implements shift.ScheduleService.
func (s *scheduleServiceImpl) GetShift(ctx context.Context, id string) (shift.ShiftResponse, error) {
	found, err := s.getShift(ctx, id)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	return shift.NewShiftResponse(found), nil
}

// ListShifts implements shift.ScheduleService.
func (s *scheduleServiceImpl) ListShifts(ctx context.Context, req shift.ListShiftsRequest) ([]shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	shifts, err := s.ShiftStore.List(ctx, req.Filter(s.timeZone))
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	responses := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		responses = append(responses, shift.NewShiftResponse(sh))
	}
	return responses, nil
}

// UpdateShift implements shift.ScheduleService.
func (s *scheduleServiceImpl) UpdateShift(ctx context.Context, req shift.UpdateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	current, err := s.getShift(ctx, req.ID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	if req.LocationID != nil && *req.LocationID != current.LocationID {
		if _, err := s.LocationRepository.Get(ctx, *req.LocationID); err != nil {
			if errors.Is(err, location.ErrLocationNotFound) {
				return shift.ShiftResponse{}, location.ErrLocationNotFound
			}
			return shift.ShiftResponse{}, fmt.Errorf("failed to get location: %w", err)
		}
	}

	if req.EmployeeID != nil && *req.EmployeeID != current.EmployeeID {
		exists, err := s.EmployeeRepository.Exists(ctx, *req.EmployeeID)
		if err != nil {
			return shift.ShiftResponse{}, fmt.Errorf("failed to check employee: %w", err)
		}
		if !exists {
			return shift.ShiftResponse{}, employee.ErrEmployeeNotFound
		}
	}

	keys := []string{lock.EmployeeKey(current.EmployeeID)}
	if req.EmployeeID != nil && *req.EmployeeID != current.EmployeeID {
		keys = append(keys, lock.EmployeeKey(*req.EmployeeID))
	}
	release, err := s.lockAll(ctx, keys)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	updated, err := s.updateLocked(ctx, current.EmployeeID, req)
	release()
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	s.logger.InfoContext(ctx, "shift updated",
		slog.String("shift_id", updated.ID),
		slog.String("employee_id", updated.EmployeeID),
	)
	s.publish(ctx, events.TypeShiftUpdated, shift.NewShiftResponse(updated))

	return shift.NewShiftResponse(updated), nil
}

// updateLocked re-reads the shift under the locks of both its current and target employee,
// then checks the new interval against every other shift of the target employee.
func (s *scheduleServiceImpl) updateLocked(ctx context.Context, lockedEmployeeID string, req shift.UpdateShiftRequest) (shift.Shift, error) {
	stored, err := s.getShift(ctx, req.ID)
	if err != nil {
		return shift.Shift{}, err
	}
	if stored.EmployeeID != lockedEmployeeID {
		return shift.Shift{}, shift.ErrShiftReassigned
	}

	next := req.Apply(stored)
	if !next.StartTime.Before(next.EndTime) {
		return shift.Shift{}, validator.ValidationErrors{{
			Field:   "end_time",
			Message: "end_time must be after start_time",
		}}
	}

	rescheduled := next.EmployeeID != stored.EmployeeID ||
		!next.StartTime.Equal(stored.StartTime) ||
		!next.EndTime.Equal(stored.EndTime)
	if rescheduled {
		conflict, err := s.detector.FindConflictExcluding(ctx, next.EmployeeID, next.StartTime, next.EndTime, next.ID)
		if err != nil {
			return shift.Shift{}, err
		}
		if conflict != nil {
			return shift.Shift{}, &shift.ConflictError{ConflictingShift: conflict}
		}
	}

	updated, err := s.ShiftStore.Update(ctx, next)
	if err != nil {
		var conflictErr *shift.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			if conflictErr.ConflictingShift == nil {
				conflictErr.ConflictingShift = s.lookupConflict(ctx, next.EmployeeID, next.StartTime, next.EndTime, next.ID)
			}
			return shift.Shift{}, conflictErr
		case errors.Is(err, shift.ErrShiftNotFound):
			return shift.Shift{}, shift.ErrShiftNotFound
		case errors.Is(err, location.ErrLocationNotFound):
			return shift.Shift{}, location.ErrLocationNotFound
		case errors.Is(err, employee.ErrEmployeeNotFound):
			return shift.Shift{}, employee.ErrEmployeeNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to update shift: %w", err)
	}

	return updated, nil
}

// lockAll takes the keys in sorted order so two updates swapping employees cannot deadlock.
func (s *scheduleServiceImpl) lockAll(ctx context.Context, keys []string) (func(), error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	releases := make([]func(), 0, len(keys))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, key := range keys {
		release, err := s.locker.Lock(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}

	return releaseAll, nil
}

func (s *scheduleServiceImpl) getShift(ctx context.Context, id string) (shift.Shift, error) {
	found, err := s.ShiftStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	return found, nil
}

// CancelShift implements shift.ScheduleService.
func (s *scheduleServiceImpl) CancelShift(ctx context.Context, id string) error {
	found, err := s.getShift(ctx, id)
	if err != nil {
		return err
	}

	if found.Status != shift.StatusScheduled {
		return shift.ErrShiftNotCancellable
	}

	release, err := s.locker.Lock(ctx, lock.EmployeeKey(found.EmployeeID))
	if err != nil {
		return err
	}

	err = s.ShiftStore.Delete(ctx, id)
	release()
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return shift.ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}

	s.logger.InfoContext(ctx, "shift cancelled",
		slog.String("shift_id", id),
		slog.String("employee_id", found.EmployeeID),
	)
	s.publish(ctx, events.TypeShiftCancelled, shift.NewShiftResponse(found))

	return nil
}
