package upgrade

import "errors"

var (
	ErrRequestNotFound = errors.New("upgrade request not found")
	ErrAlreadyHandled  = errors.New("request already handled")
	ErrPendingExists   = errors.New("a pending upgrade request already exists")
	ErrSamePlan        = errors.New("requested plan is the current plan")
	ErrPlanUnavailable = errors.New("requested plan is not available")
	ErrInvalidStatus   = errors.New("status must be one of pending, approved, rejected")
)
