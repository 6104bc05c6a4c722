package student

import "time"

// Student belongs to one teacher of a center and to at most one group.
type Student struct {
	ID             string
	CenterID       string
	TeacherID      string
	GroupID        *string
	AcademicYearID *int
	Name           string
	Phone          *string
	ParentPhone    *string
	Notes          *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined data
	GroupName *string
}
