package user

type Role string

const (
	RoleOwner    Role = "owner"    // Full access
	RoleManager  Role = "manager"  // Schedules shifts and manages locations
	RoleEmployee Role = "employee" // Works shifts and records own attendance
)

// Principal is the authenticated caller as read from the access token.
type Principal struct {
	UserID     string
	EmployeeID string
	Role       Role
}

// IsManager checks if the caller is manager or owner
func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleOwner
}

// CanViewEmployee reports whether the caller may read another employee's shifts or attendance.
func (p Principal) CanViewEmployee(employeeID string) bool {
	return p.IsManager() || (p.EmployeeID != "" && p.EmployeeID == employeeID)
}
