package attendance

import "time"

// Attendance is one student's presence in a group's session. There is one
// row per (student, group, date).
type Attendance struct {
	ID         string
	CenterID   string
	StudentID  string
	GroupID    string
	Date       time.Time
	IsPresent  bool
	Notes      *string
	RecordedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined data
	StudentName string
	GroupName   string
}

// StudentSummary counts one student's sessions over a period.
type StudentSummary struct {
	StudentID   string
	StudentName string
	Present     int
	Absent      int
}
