package memory

import (
	"context"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
)

type EmployeeRepository struct {
	s *Store
}

var _ employee.EmployeeRepository = (*EmployeeRepository)(nil)

// Exists implements employee.EmployeeRepository.
func (r *EmployeeRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.hasEmployee(id), nil
}
