package plan

import "errors"

var (
	ErrPlanNotFound                = errors.New("plan not found")
	ErrPlanNameExists              = errors.New("plan with this name already exists")
	ErrNoDefaultPlan               = errors.New("no default plan configured")
	ErrCannotDeleteDefaultPlan     = errors.New("cannot delete the default plan")
	ErrCannotDeactivateDefaultPlan = errors.New("cannot deactivate the default plan")
	ErrPlanInUse                   = errors.New("plan has active subscriptions")
	ErrPlanReferenced              = errors.New("plan is referenced by past subscriptions or upgrade requests, deactivate it instead")
	ErrPlanInactive                = errors.New("plan is not active")
	ErrDefaultPlanChanged          = errors.New("default plan was changed concurrently, retry")
	ErrInvalidResourceKind         = errors.New("resource kind must be one of student, teacher, assistant")
)
