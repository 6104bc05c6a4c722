package user

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"        // Platform operator - plans, upgrade requests
	RoleCenterAdmin Role = "center_admin" // Center owner - full access to the center
	RoleTeacher     Role = "teacher"      // Teaches groups, owns students
	RoleAssistant   Role = "assistant"    // Helps one teacher, explicit permissions only
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCenterAdmin, RoleTeacher, RoleAssistant:
		return true
	}
	return false
}

type User struct {
	ID           string
	CenterID     *string
	TeacherID    *string // set for assistants: the teacher they assist
	Name         string
	Email        string
	Phone        *string
	PasswordHash *string
	Role         Role
	GoogleID     *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	Permissions []Permission
}

// IsAdmin checks if user operates the platform
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCenterAdmin checks if user owns a center
func (u *User) IsCenterAdmin() bool {
	return u.Role == RoleCenterAdmin
}

// IsStaff checks if user is a teacher or an assistant
func (u *User) IsStaff() bool {
	return u.Role == RoleTeacher || u.Role == RoleAssistant
}
