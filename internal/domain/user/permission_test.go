package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleOwner, PermissionShiftSchedule))
	assert.True(t, HasPermission(RoleManager, PermissionLocationManage))
	assert.True(t, HasPermission(RoleEmployee, PermissionAttendanceCreate))
	assert.False(t, HasPermission(RoleEmployee, PermissionShiftSchedule))
	assert.False(t, HasPermission(RoleEmployee, PermissionAttendanceViewAll))
	assert.False(t, HasPermission(Role("guest"), PermissionLocationView))
}

func TestPrincipal_CanViewEmployee(t *testing.T) {
	employee := Principal{EmployeeID: "emp-1", Role: RoleEmployee}
	assert.True(t, employee.CanViewEmployee("emp-1"))
	assert.False(t, employee.CanViewEmployee("emp-2"))
	assert.False(t, Principal{Role: RoleEmployee}.CanViewEmployee(""))

	manager := Principal{Role: RoleManager}
	assert.True(t, manager.IsManager())
	assert.True(t, manager.CanViewEmployee("emp-2"))
}
