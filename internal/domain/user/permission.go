package user

import (
	"fmt"
	"sort"
)

// Permission is a capability drawn from a closed catalog. Values outside
// Catalog are rejected by ParsePermission.
type Permission string

type Category string

const (
	CategoryStudents   Category = "students"
	CategoryGroups     Category = "groups"
	CategoryAttendance Category = "attendance"
	CategoryPayments   Category = "payments"
	CategoryReports    Category = "reports"
)

const (
	// Students
	PermissionStudentsViewOwn Permission = "students.view_own"
	PermissionStudentsCreate  Permission = "students.create"
	PermissionStudentsEdit    Permission = "students.edit"
	PermissionStudentsDelete  Permission = "students.delete"

	// Groups
	PermissionGroupsView           Permission = "groups.view"
	PermissionGroupsManage         Permission = "groups.manage"
	PermissionGroupsAssignStudents Permission = "groups.assign_students"

	// Attendance
	PermissionAttendanceView   Permission = "attendance.view"
	PermissionAttendanceManage Permission = "attendance.manage"

	// Payments
	PermissionPaymentsView   Permission = "payments.view"
	PermissionPaymentsManage Permission = "payments.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// CatalogEntry describes one permission for display.
type CatalogEntry struct {
	Permission Permission
	Category   Category
	Label      string
}

// Catalog lists every permission, grouped by category in display order.
var Catalog = []CatalogEntry{
	{PermissionStudentsViewOwn, CategoryStudents, "View own students"},
	{PermissionStudentsCreate, CategoryStudents, "Add students"},
	{PermissionStudentsEdit, CategoryStudents, "Edit students"},
	{PermissionStudentsDelete, CategoryStudents, "Delete students"},
	{PermissionGroupsView, CategoryGroups, "View groups"},
	{PermissionGroupsManage, CategoryGroups, "Manage groups"},
	{PermissionGroupsAssignStudents, CategoryGroups, "Assign students to groups"},
	{PermissionAttendanceView, CategoryAttendance, "View attendance"},
	{PermissionAttendanceManage, CategoryAttendance, "Manage attendance"},
	{PermissionPaymentsView, CategoryPayments, "View payments"},
	{PermissionPaymentsManage, CategoryPayments, "Manage payments"},
	{PermissionReportsView, CategoryReports, "View reports"},
}

var catalogIndex = func() map[Permission]int {
	m := make(map[Permission]int, len(Catalog))
	for i, e := range Catalog {
		m[e.Permission] = i
	}
	return m
}()

// AllPermissions returns every permission in catalog order.
func AllPermissions() []Permission {
	all := make([]Permission, len(Catalog))
	for i, e := range Catalog {
		all[i] = e.Permission
	}
	return all
}

// ParsePermission returns the catalog permission named s.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if _, ok := catalogIndex[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

// ParsePermissions parses names and returns a de-duplicated set in catalog order.
func ParsePermissions(names []string) ([]Permission, error) {
	seen := make(map[Permission]struct{}, len(names))
	out := make([]Permission, 0, len(names))
	for _, n := range names {
		p, err := ParsePermission(n)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	SortPermissions(out)
	return out, nil
}

// SortPermissions orders ps by catalog position.
func SortPermissions(ps []Permission) {
	sort.Slice(ps, func(i, j int) bool {
		return catalogIndex[ps[i]] < catalogIndex[ps[j]]
	})
}

// Template is a named preset of assistant permissions.
type Template struct {
	Name        string
	Description string
	Permissions []Permission
}

var Templates = []Template{
	{
		Name:        "Basic Assistant",
		Description: "Read-only access to the teacher's students, groups and attendance",
		Permissions: []Permission{PermissionStudentsViewOwn, PermissionGroupsView, PermissionAttendanceView},
	},
	{
		Name:        "Attendance Assistant",
		Description: "Takes attendance for the teacher's groups",
		Permissions: []Permission{PermissionStudentsViewOwn, PermissionGroupsView, PermissionAttendanceView, PermissionAttendanceManage},
	},
	{
		Name:        "Finance Assistant",
		Description: "Collects and tracks student payments",
		Permissions: []Permission{PermissionStudentsViewOwn, PermissionPaymentsView, PermissionPaymentsManage, PermissionReportsView},
	},
	{
		Name:        "Full Assistant",
		Description: "Everything the teacher can do",
		Permissions: AllPermissions(),
	},
}

// TemplateByName looks a template up by its exact name.
func TemplateByName(name string) (Template, bool) {
	for _, t := range Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// RolePermissions maps roles to the permissions they hold without explicit grants.
var RolePermissions = map[Role][]Permission{
	RoleCenterAdmin: AllPermissions(),
	RoleTeacher:     AllPermissions(),
	RoleAssistant:   {},
	RoleAdmin:       {},
}

// HasPermission checks the role defaults first, then the explicit grants.
func HasPermission(role Role, granted []Permission, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	for _, p := range granted {
		if p == permission {
			return true
		}
	}
	return false
}
