package shift

import (
	"errors"
	"fmt"
)

var (
	ErrShiftNotFound       = errors.New("shift not found")
	ErrShiftConflict       = errors.New("shift overlaps an existing shift for this employee")
	ErrShiftNotCancellable = errors.New("only scheduled shifts can be cancelled")
	ErrShiftReassigned     = errors.New("shift was reassigned while the update waited, retry the update")

	// ErrStoreUnavailable marks failures where the shift store could not be reached at all.
	ErrStoreUnavailable = errors.New("shift store unavailable")
)

// ConflictError carries the existing shift that blocks a candidate shift.
// ConflictingShift is nil when the store rejected the write through its exclusion
// constraint and the blocking row has not been fetched yet.
type ConflictError struct {
	ConflictingShift *Shift
}

func (e *ConflictError) Error() string {
	if e.ConflictingShift == nil {
		return ErrShiftConflict.Error()
	}
	return fmt.Sprintf("%s (shift %s, %s - %s)",
		ErrShiftConflict.Error(),
		e.ConflictingShift.ID,
		e.ConflictingShift.StartTime.Format("2006-01-02 15:04"),
		e.ConflictingShift.EndTime.Format("2006-01-02 15:04"),
	)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrShiftConflict
}
