package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/lock"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/recurrence"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// employeeOutcome is the part of a batch result produced by one employee.
type employeeOutcome struct {
	createdIDs []string
	conflicts  []shift.BatchConflict
	failed     int
}

// ScheduleBatch implements shift.ScheduleService.
//
// Employees are processed concurrently, each employee's dates sequentially in calendar order.
// Per-employee outcomes are merged in request order, so the result only depends on the
// request and the shifts already stored. Conflicts and individual store failures are
// reported in the result; validation errors, shift.ErrStoreUnavailable, lock.ErrLockUnavailable
// and context cancellation abort the batch, in which case the partial result is returned with
// the error.
func (s *scheduleServiceImpl) ScheduleBatch(ctx context.Context, req shift.BatchScheduleRequest) (shift.BatchScheduleResult, error) {
	if err := req.Validate(); err != nil {
		return shift.BatchScheduleResult{}, err
	}

	employeeIDs := req.UniqueEmployeeIDs()
	if err := s.validateBatchReferences(ctx, req.LocationID, employeeIDs); err != nil {
		return shift.BatchScheduleResult{}, err
	}

	startDate, endDate := req.DateRange()
	dates, err := recurrence.Expand(startDate, endDate, req.Pattern())
	if err != nil {
		return shift.BatchScheduleResult{}, err
	}

	startClock, endClock := req.ClockRange()
	outcomes := make([]employeeOutcome, len(employeeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, employeeID := range employeeIDs {
		g.Go(func() error {
			template := shift.ShiftDraft{
				EmployeeID: employeeID,
				LocationID: req.LocationID,
				Notes:      req.Notes,
				CreatedBy:  req.CreatedBy,
			}
			outcome, err := s.scheduleEmployee(gctx, template, dates, startClock, endClock)
			outcomes[i] = outcome
			return err
		})
	}
	waitErr := g.Wait()

	result := mergeOutcomes(outcomes)

	if waitErr != nil {
		s.logger.ErrorContext(ctx, "batch scheduling aborted",
			slog.String("location_id", req.LocationID),
			slog.Int("created", result.CreatedCount),
			slog.String("error", waitErr.Error()),
		)
		return result, waitErr
	}

	s.logger.InfoContext(ctx, "batch scheduling finished",
		slog.String("location_id", req.LocationID),
		slog.Int("employees", len(employeeIDs)),
		slog.Int("dates", dates.Len()),
		slog.Int("created", result.CreatedCount),
		slog.Int("skipped_conflict", result.SkippedConflictCount),
		slog.Int("skipped_failed", result.SkippedFailedCount),
	)

	return result, nil
}

// validateBatchReferences checks the location and every employee before any shift is written.
func (s *scheduleServiceImpl) validateBatchReferences(ctx context.Context, locationID string, employeeIDs []string) error {
	var errs validator.ValidationErrors

	if _, err := s.LocationRepository.Get(ctx, locationID); err != nil {
		if !errors.Is(err, location.ErrLocationNotFound) {
			return fmt.Errorf("failed to get location: %w", err)
		}
		errs = append(errs, validator.ValidationError{
			Field:   "location_id",
			Message: location.ErrLocationNotFound.Error(),
		})
	}

	for i, id := range employeeIDs {
		exists, err := s.EmployeeRepository.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check employee: %w", err)
		}
		if !exists {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("employee_ids[%d]", i),
				Message: fmt.Sprintf("employee %s not found", id),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *scheduleServiceImpl) scheduleEmployee(
	ctx context.Context,
	template shift.ShiftDraft,
	dates recurrence.Sequence,
	startClock, endClock time.Time,
) (employeeOutcome, error) {
	var outcome employeeOutcome

	for date := range dates.All() {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		draft := template
		draft.StartTime = atClock(date, startClock, s.timeZone)
		draft.EndTime = atClock(date, endClock, s.timeZone)

		created, err := s.createShift(ctx, draft)
		if err == nil {
			outcome.createdIDs = append(outcome.createdIDs, created.ID)
			continue
		}

		var conflictErr *shift.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			c := shift.BatchConflict{EmployeeID: draft.EmployeeID, Date: date}
			if conflictErr.ConflictingShift != nil {
				c.ConflictingShiftID = conflictErr.ConflictingShift.ID
			}
			outcome.conflicts = append(outcome.conflicts, c)
		case errors.Is(err, shift.ErrStoreUnavailable), errors.Is(err, lock.ErrLockUnavailable):
			return outcome, err
		case ctx.Err() != nil:
			return outcome, ctx.Err()
		default:
			outcome.failed++
			s.logger.WarnContext(ctx, "batch shift skipped",
				slog.String("employee_id", draft.EmployeeID),
				slog.String("date", date.Format("2006-01-02")),
				slog.String("error", err.Error()),
			)
		}
	}

	return outcome, nil
}

func mergeOutcomes(outcomes []employeeOutcome) shift.BatchScheduleResult {
	result := shift.BatchScheduleResult{
		CreatedShiftIDs: []string{},
		Conflicts:       []shift.BatchConflict{},
	}
	for _, o := range outcomes {
		result.CreatedShiftIDs = append(result.CreatedShiftIDs, o.createdIDs...)
		result.Conflicts = append(result.Conflicts, o.conflicts...)
		result.SkippedFailedCount += o.failed
	}
	result.CreatedCount = len(result.CreatedShiftIDs)
	result.SkippedConflictCount = len(result.Conflicts)
	return result
}

// atClock places the time of day of clock on the calendar date of date, in loc.
func atClock(date, clock time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
}
