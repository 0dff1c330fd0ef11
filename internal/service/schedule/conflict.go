package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/interval"
)

// ConflictDetector finds the existing shift, if any, that a candidate interval would overlap.
// It does not lock; callers hold the employee lock across FindConflict and the create.
type ConflictDetector struct {
	store shift.ShiftStore
}

func NewConflictDetector(store shift.ShiftStore) *ConflictDetector {
	return &ConflictDetector{store: store}
}

// FindConflict returns the first stored shift of employeeID overlapping [start, end),
// or nil when the slot is free.
func (d *ConflictDetector) FindConflict(ctx context.Context, employeeID string, start, end time.Time) (*shift.Shift, error) {
	return d.FindConflictExcluding(ctx, employeeID, start, end, "")
}

// FindConflictExcluding is FindConflict ignoring the stored shift with id excludeID, so a
// shift being rescheduled never collides with itself.
func (d *ConflictDetector) FindConflictExcluding(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (*shift.Shift, error) {
	if err := interval.Validate(start, end); err != nil {
		return nil, err
	}

	shifts, err := d.store.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts for employee %s: %w", employeeID, err)
	}

	for i := range shifts {
		if excludeID != "" && shifts[i].ID == excludeID {
			continue
		}
		overlaps, err := interval.Overlaps(start, end, shifts[i].StartTime, shifts[i].EndTime)
		if err != nil {
			return nil, fmt.Errorf("stored shift %s: %w", shifts[i].ID, err)
		}
		if overlaps {
			found := shifts[i]
			return &found, nil
		}
	}

	return nil, nil
}
