package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResourceKind names a capped resource.
type ResourceKind string

const (
	ResourceStudent   ResourceKind = "student"
	ResourceTeacher   ResourceKind = "teacher"
	ResourceAssistant ResourceKind = "assistant"
)

func (k ResourceKind) IsValid() bool {
	switch k {
	case ResourceStudent, ResourceTeacher, ResourceAssistant:
		return true
	}
	return false
}

type Plan struct {
	ID            string
	Name          string
	Description   *string
	MaxStudents   int
	MaxTeachers   int
	MaxAssistants int
	Price         decimal.Decimal
	DurationDays  int
	IsActive      bool
	IsDefault     bool
	IsTrial       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Cap returns the plan's limit for kind. Unknown kinds are capped at zero.
func (p Plan) Cap(kind ResourceKind) int {
	switch kind {
	case ResourceStudent:
		return p.MaxStudents
	case ResourceTeacher:
		return p.MaxTeachers
	case ResourceAssistant:
		return p.MaxAssistants
	}
	return 0
}

// EndDate is the end of a subscription window starting at start.
func (p Plan) EndDate(start time.Time) time.Time {
	return start.AddDate(0, 0, p.DurationDays)
}
