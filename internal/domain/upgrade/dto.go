package upgrade

import (
	"time"

	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

type CreateUpgradeRequest struct {
	RequestedPlanID string  `json:"requested_plan_id" validate:"required,uuid"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *CreateUpgradeRequest) Validate() error {
	return validator.Struct(r)
}

// DecisionRequest carries the admin's notes for approve and reject.
type DecisionRequest struct {
	ID         string  `json:"-"`
	AdminNotes *string `json:"admin_notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *DecisionRequest) Validate() error {
	return validator.Struct(r)
}

type UpgradeFilter struct {
	Status *Status
}

type UpgradeRequestResponse struct {
	ID                string  `json:"id"`
	CenterID          string  `json:"center_id"`
	CenterName        string  `json:"center_name,omitempty"`
	UserID            string  `json:"user_id"`
	UserName          string  `json:"user_name,omitempty"`
	CurrentPlanID     *string `json:"current_plan_id,omitempty"`
	CurrentPlanName   *string `json:"current_plan_name,omitempty"`
	RequestedPlanID   string  `json:"requested_plan_id"`
	RequestedPlanName string  `json:"requested_plan_name,omitempty"`
	Status            Status  `json:"status"`
	Notes             *string `json:"notes,omitempty"`
	AdminNotes        *string `json:"admin_notes,omitempty"`
	HandledBy         *string `json:"handled_by,omitempty"`
	HandledAt         *string `json:"handled_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func (r *PlanUpgradeRequest) ToResponse() UpgradeRequestResponse {
	resp := UpgradeRequestResponse{
		ID:                r.ID,
		CenterID:          r.CenterID,
		CenterName:        r.CenterName,
		UserID:            r.UserID,
		UserName:          r.UserName,
		CurrentPlanID:     r.CurrentPlanID,
		CurrentPlanName:   r.CurrentPlanName,
		RequestedPlanID:   r.RequestedPlanID,
		RequestedPlanName: r.RequestedPlanName,
		Status:            r.Status,
		Notes:             r.Notes,
		AdminNotes:        r.AdminNotes,
		HandledBy:         r.HandledBy,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
	if r.HandledAt != nil {
		t := r.HandledAt.Format(time.RFC3339)
		resp.HandledAt = &t
	}
	return resp
}

func ToResponses(reqs []PlanUpgradeRequest) []UpgradeRequestResponse {
	out := make([]UpgradeRequestResponse, len(reqs))
	for i := range reqs {
		out[i] = reqs[i].ToResponse()
	}
	return out
}
