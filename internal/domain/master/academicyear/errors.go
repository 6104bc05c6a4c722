package academicyear

import "errors"

var (
	ErrAcademicYearNotFound   = errors.New("academic year not found")
	ErrAcademicYearNameExists = errors.New("academic year with this name already exists")
	ErrAcademicYearInUse      = errors.New("academic year is used by groups or students")
)
