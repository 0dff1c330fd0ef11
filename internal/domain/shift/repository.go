package shift

import (
	"context"
	"time"
)

// ShiftStore is the persistence boundary of the scheduling engine.
//
// ListByEmployee returns shifts in a stable stored order (start time, then id).
// Create returns *ConflictError when a storage-level exclusion constraint rejects the row
// and wraps ErrStoreUnavailable when the backend cannot be reached.
type ShiftStore interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]Shift, error)
	Create(ctx context.Context, draft ShiftDraft) (Shift, error)
	GetByID(ctx context.Context, id string) (Shift, error)
	List(ctx context.Context, filter ShiftFilter) ([]Shift, error)
	// Update overwrites the stored shift with the same ID. An overlap with another shift of
	// the employee fails with *ConflictError.
	Update(ctx context.Context, s Shift) (Shift, error)
	Delete(ctx context.Context, id string) error
}

type ShiftFilter struct {
	EmployeeID *string
	LocationID *string
	From       *time.Time // start_time >= From
	To         *time.Time // start_time < To
}
