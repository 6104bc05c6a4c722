// Package tenant carries the caller's center context. A Scope is built once per
// request from the verified token and passed explicitly to every service call
// that reads or writes center data.
package tenant

import (
	"errors"

	"github.com/tutora/tutora-backend/internal/domain/user"
)

var (
	ErrNoCenter  = errors.New("no center associated with this user")
	ErrForbidden = errors.New("forbidden")
)

type Scope struct {
	CenterID    string
	UserID      string
	Role        user.Role
	TeacherID   *string // assistants: the teacher they work for
	Permissions []user.Permission
}

func (s Scope) IsPlatformAdmin() bool { return s.Role == user.RoleAdmin }
func (s Scope) IsCenterAdmin() bool   { return s.Role == user.RoleCenterAdmin }
func (s Scope) IsTeacher() bool       { return s.Role == user.RoleTeacher }
func (s Scope) IsAssistant() bool     { return s.Role == user.RoleAssistant }

// OwnerTeacherID narrows teacher-owned rows (students, groups) to the caller's
// teacher. Nil means the caller sees the whole center.
func (s Scope) OwnerTeacherID() *string {
	switch s.Role {
	case user.RoleTeacher:
		id := s.UserID
		return &id
	case user.RoleAssistant:
		return s.TeacherID
	}
	return nil
}

// OwnsTeacherRow reports whether a row owned by teacherID is visible to the caller.
func (s Scope) OwnsTeacherRow(teacherID string) bool {
	owner := s.OwnerTeacherID()
	return owner == nil || *owner == teacherID
}

func (s Scope) Can(p user.Permission) bool {
	return user.HasPermission(s.Role, s.Permissions, p)
}

// Require fails with user.ErrInsufficientPermissions unless the scope holds p.
func (s Scope) Require(p user.Permission) error {
	if err := s.RequireCenter(); err != nil {
		return err
	}
	if !s.Can(p) {
		return user.ErrInsufficientPermissions
	}
	return nil
}

func (s Scope) RequireCenter() error {
	if s.CenterID == "" {
		return ErrNoCenter
	}
	return nil
}

func (s Scope) RequireCenterAdmin() error {
	if err := s.RequireCenter(); err != nil {
		return err
	}
	if !s.IsCenterAdmin() {
		return user.ErrCenterAdminRequired
	}
	return nil
}
