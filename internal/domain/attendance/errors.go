package attendance

import "errors"

var (
	ErrDuplicateEntry    = errors.New("a student appears more than once in the batch")
	ErrStudentNotInGroup = errors.New("student is not in this group")
	ErrInvalidDateRange  = errors.New("from must not be after to")
)
