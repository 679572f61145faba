package policy

// Role names. Keep these stable; they are part of auth contracts.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Permission tokens an operation may require.
const (
	PermViewCourses          = "view_courses"
	PermAccessCourseMaterial = "access_course_material"
	PermMakePayments         = "make_payments"
	PermUpdateProgress       = "update_progress"
	PermCreateCourses        = "create_courses"
	PermUpdateCourses        = "update_courses"
	PermManageClasses        = "manage_classes"
	PermViewStudentProgress  = "view_student_progress"
	PermManageAllCourses     = "manage_all_courses"
	PermManageUsers          = "manage_users"
	PermManagePrivileges     = "manage_privileges"
)

// rolePermissions maps each role to its permission set. Admin additionally
// bypasses all checks in Authorize; its explicit set only matters when a
// permission list is displayed or exported.
var rolePermissions = map[string][]string{
	RoleStudent: {
		PermViewCourses,
		PermAccessCourseMaterial,
		PermMakePayments,
		PermUpdateProgress,
	},
	RoleTeacher: {
		PermCreateCourses,
		PermUpdateCourses,
		PermManageClasses,
		PermViewStudentProgress,
	},
	RoleAdmin: {
		PermManageAllCourses,
		PermManageUsers,
		PermManagePrivileges,
	},
}

func IsAdmin(role string) bool { return role == RoleAdmin }

// PermissionsForRole returns a copy of the role's permission set. Unknown
// roles have no permissions.
func PermissionsForRole(role string) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
