package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	Create(ctx context.Context, event Event) (Event, error)
	// ListByEmployee returns events in [from, to) newest first. Nil bounds are open.
	ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]Event, error)
}
