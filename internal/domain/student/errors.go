package student

import "errors"

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrTeacherRequired = errors.New("teacher_id is required")
)
