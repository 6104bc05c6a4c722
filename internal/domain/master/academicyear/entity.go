package academicyear

import "time"

// AcademicYear is a school grade level (e.g. "Grade 3 Secondary") that groups
// and students can be scoped to.
type AcademicYear struct {
	ID        int
	Name      string
	SortOrder int
	CreatedAt time.Time
}
