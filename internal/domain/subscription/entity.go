package subscription

import (
	"time"

	"github.com/tutora/tutora-backend/internal/domain/plan"
)

// Subscription binds a center to a plan for a time window. A center has at
// most one active subscription.
type Subscription struct {
	ID          string
	CenterID    string
	PlanID      string
	MaxStudents int // mirrors plan.MaxStudents for older clients
	StartDate   time.Time
	EndDate     *time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined data
	Plan *plan.Plan
}

// New starts an active subscription on p at start. Trial and paid plans alike
// end after the plan's duration.
func New(centerID string, p plan.Plan, start time.Time) Subscription {
	end := p.EndDate(start)
	return Subscription{
		CenterID:    centerID,
		PlanID:      p.ID,
		MaxStudents: p.MaxStudents,
		StartDate:   start,
		EndDate:     &end,
		IsActive:    true,
	}
}

// IsExpired reports whether the window closed before now.
func (s Subscription) IsExpired(now time.Time) bool {
	return s.EndDate != nil && s.EndDate.Before(now)
}

// Usage is the number of capped resources a center currently holds.
type Usage struct {
	Students   int
	Teachers   int
	Assistants int
}

func (u Usage) Of(kind plan.ResourceKind) int {
	switch kind {
	case plan.ResourceStudent:
		return u.Students
	case plan.ResourceTeacher:
		return u.Teachers
	case plan.ResourceAssistant:
		return u.Assistants
	}
	return 0
}
