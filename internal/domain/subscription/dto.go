package subscription

import (
	"time"

	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

// ==================== Request DTOs ====================

// ChangePlanRequest moves a center onto another plan (platform admin)
type ChangePlanRequest struct {
	CenterID string `json:"-"`
	PlanID   string `json:"plan_id" validate:"required,uuid"`
}

func (r *ChangePlanRequest) Validate() error {
	return validator.Struct(r)
}

// ==================== Response DTOs ====================

type UsageItem struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

type UsageResponse struct {
	Students   UsageItem `json:"students"`
	Teachers   UsageItem `json:"teachers"`
	Assistants UsageItem `json:"assistants"`
}

type SubscriptionResponse struct {
	ID          string            `json:"id"`
	CenterID    string            `json:"center_id"`
	Plan        plan.PlanResponse `json:"plan"`
	MaxStudents int               `json:"max_students"`
	StartDate   string            `json:"start_date"`
	EndDate     *string           `json:"end_date,omitempty"`
	IsActive    bool              `json:"is_active"`
	Usage       *UsageResponse    `json:"usage,omitempty"`
}

func (s *Subscription) ToResponse(usage *Usage) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:          s.ID,
		CenterID:    s.CenterID,
		MaxStudents: s.MaxStudents,
		StartDate:   s.StartDate.Format(time.RFC3339),
		IsActive:    s.IsActive,
	}
	if s.EndDate != nil {
		t := s.EndDate.Format(time.RFC3339)
		resp.EndDate = &t
	}
	if s.Plan != nil {
		resp.Plan = s.Plan.ToResponse()
		if usage != nil {
			resp.Usage = &UsageResponse{
				Students:   UsageItem{Used: usage.Students, Limit: s.Plan.MaxStudents},
				Teachers:   UsageItem{Used: usage.Teachers, Limit: s.Plan.MaxTeachers},
				Assistants: UsageItem{Used: usage.Assistants, Limit: s.Plan.MaxAssistants},
			}
		}
	}
	return resp
}

type LimitResultResponse struct {
	Allowed        bool                `json:"allowed"`
	Kind           plan.ResourceKind   `json:"kind"`
	Reason         string              `json:"reason,omitempty"`
	Current        int                 `json:"current"`
	Limit          int                 `json:"limit"`
	Remaining      *int                `json:"remaining,omitempty"`
	SuggestedPlans []plan.PlanResponse `json:"suggested_plans,omitempty"`
}

func (r LimitResult) ToResponse() LimitResultResponse {
	resp := LimitResultResponse{
		Allowed: r.Allowed,
		Kind:    r.Kind,
		Reason:  r.Reason,
		Current: r.Current,
		Limit:   r.Limit,
	}
	if r.Allowed {
		remaining := r.Remaining
		resp.Remaining = &remaining
	} else {
		resp.SuggestedPlans = plan.ToResponses(r.SuggestedPlans)
	}
	return resp
}
