package user

type Permission string

const (
	// Shift Management
	PermissionShiftViewOwn  Permission = "shift.view_own"
	PermissionShiftViewAll  Permission = "shift.view_all"
	PermissionShiftSchedule Permission = "shift.schedule"
	PermissionShiftCancel   Permission = "shift.cancel"

	// Location Management
	PermissionLocationView   Permission = "location.view"
	PermissionLocationManage Permission = "location.manage"

	// Attendance Management
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionShiftViewOwn,
		PermissionShiftViewAll,
		PermissionShiftSchedule,
		PermissionShiftCancel,
		PermissionLocationView,
		PermissionLocationManage,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionAttendanceViewAll,
	},
	RoleManager: {
		PermissionShiftViewOwn,
		PermissionShiftViewAll,
		PermissionShiftSchedule,
		PermissionShiftCancel,
		PermissionLocationView,
		PermissionLocationManage,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionAttendanceViewAll,
	},
	RoleEmployee: {
		PermissionShiftViewOwn,
		PermissionLocationView,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
