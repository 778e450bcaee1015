package user

type Permission string

const (
	// Attendance
	PermissionAttendancePunch   Permission = "attendance.punch"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceImport  Permission = "attendance.import"
	PermissionAttendanceReview  Permission = "attendance.review"

	// Salary
	PermissionSalaryCompute Permission = "salary.compute"
	PermissionSalaryConfirm Permission = "salary.confirm"
	PermissionSalaryArchive Permission = "salary.archive"

	// Activity telemetry
	PermissionActivityReport  Permission = "activity.report"
	PermissionActivityViewAll Permission = "activity.view_all"

	// Employees
	PermissionEmployeeManage Permission = "employee.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionAttendancePunch,
		PermissionAttendanceViewAll,
		PermissionAttendanceImport,
		PermissionAttendanceReview,
		PermissionSalaryCompute,
		PermissionSalaryConfirm,
		PermissionSalaryArchive,
		PermissionActivityReport,
		PermissionActivityViewAll,
		PermissionEmployeeManage,
	},
	RoleManager: {
		PermissionAttendancePunch,
		PermissionAttendanceViewAll,
		PermissionAttendanceImport,
		PermissionAttendanceReview,
		PermissionSalaryCompute,
		PermissionSalaryConfirm,
		PermissionActivityReport,
		PermissionActivityViewAll,
	},
	RoleEmployee: {
		PermissionAttendancePunch,
		PermissionActivityReport,
	},
	RolePending: {},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
