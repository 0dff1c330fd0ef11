package lock

import (
	"context"
	"errors"
)

// ErrLockUnavailable is returned when a key could not be acquired before the context ended
// or the lock backend failed.
var ErrLockUnavailable = errors.New("lock unavailable")

// Locker serializes work on a key. Lock blocks until the key is held or ctx is done.
// The returned release func may be called more than once; only the first call counts.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// EmployeeKey is the key guarding check-then-create of one employee's shifts.
func EmployeeKey(employeeID string) string {
	return "shift-engine:lock:employee:" + employeeID
}
