package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Upsert writes the row keyed by (student, group, date), replacing
	// presence and notes of an existing row.
	Upsert(ctx context.Context, a Attendance) (Attendance, error)
	ListByGroupDate(ctx context.Context, centerID, groupID string, date time.Time) ([]Attendance, error)
	ListByStudent(ctx context.Context, centerID, studentID string, r DateRange) ([]Attendance, error)
	SummaryByGroup(ctx context.Context, centerID, groupID string, r DateRange) ([]StudentSummary, error)
	// CountForDate returns present and total rows of the center on date.
	CountForDate(ctx context.Context, centerID string, date time.Time) (present int, total int, err error)
}
