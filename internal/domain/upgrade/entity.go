package upgrade

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// PlanUpgradeRequest moves from pending to approved or rejected exactly once.
type PlanUpgradeRequest struct {
	ID              string
	CenterID        string
	UserID          string
	CurrentPlanID   *string
	RequestedPlanID string
	Status          Status
	Notes           *string
	AdminNotes      *string
	HandledBy       *string
	HandledAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined data
	CenterName        string
	UserName          string
	UserEmail         string
	CurrentPlanName   *string
	RequestedPlanName string
}

func (r PlanUpgradeRequest) IsPending() bool {
	return r.Status == StatusPending
}
