package employee

import "context"

type EmployeeRepository interface {
	// Exists reports whether an active employee with the id exists.
	Exists(ctx context.Context, id string) (bool, error)
}
