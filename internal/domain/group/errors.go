package group

import "errors"

var (
	ErrGroupNotFound         = errors.New("group not found")
	ErrGroupNameExists       = errors.New("group with this name already exists")
	ErrGroupFull             = errors.New("group would exceed its maximum number of students")
	ErrAcademicYearMismatch  = errors.New("student academic year does not match the group")
	ErrStudentInAnotherGroup = errors.New("student already belongs to another group")
	ErrStudentNotInGroup     = errors.New("student is not in this group")
	ErrTeacherRequired       = errors.New("teacher_id is required")
	ErrMaxBelowCurrent       = errors.New("max_students cannot be below the current number of students")
)
