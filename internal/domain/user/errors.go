package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrCenterAdminRequired     = errors.New("center admin access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCenterIDRequired        = errors.New("center ID is required")
	ErrUnknownPermission       = errors.New("unknown permission")
	ErrUnknownTemplate         = errors.New("unknown permission template")
	ErrNotAnAssistant          = errors.New("permissions can only be assigned to assistants")
	ErrTeacherRequired         = errors.New("assistant must be bound to a teacher of this center")
)
