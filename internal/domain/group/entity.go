package group

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeMonthly    PaymentType = "monthly"
	PaymentTypePerSession PaymentType = "per_session"
)

var PaymentTypeValues = []string{
	string(PaymentTypeMonthly),
	string(PaymentTypePerSession),
}

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeMonthly || t == PaymentTypePerSession
}

type Group struct {
	ID             string
	CenterID       string
	TeacherID      string
	Name           string
	Description    *string
	AcademicYearID *int
	MaxStudents    int
	PaymentType    PaymentType
	StudentPrice   decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined data
	TeacherName  string
	StudentCount int
	Schedules    []Schedule
}

// BillsPerSession reports whether attendance drives this group's payments.
func (g Group) BillsPerSession() bool {
	return g.PaymentType == PaymentTypePerSession
}

// HasRoomFor reports whether n more students fit under MaxStudents.
func (g Group) HasRoomFor(n int) bool {
	return g.StudentCount+n <= g.MaxStudents
}

// Schedule is a weekly slot. Times are "HH:MM".
type Schedule struct {
	ID        string
	GroupID   string
	DayOfWeek int // 0=Sunday, ..., 6=Saturday
	StartTime string
	EndTime   string
}
