package plan

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

// ==================== Request DTOs ====================

type CreatePlanRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Description   *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	MaxStudents   int             `json:"max_students" validate:"gte=0"`
	MaxTeachers   int             `json:"max_teachers" validate:"gte=0"`
	MaxAssistants int             `json:"max_assistants" validate:"gte=0"`
	Price         decimal.Decimal `json:"price"`
	DurationDays  int             `json:"duration_days" validate:"gte=1"`
	IsActive      *bool           `json:"is_active,omitempty"`
	IsDefault     bool            `json:"is_default"`
	IsTrial       bool            `json:"is_trial"`
}

func (r *CreatePlanRequest) Validate() error {
	errs, err := validator.StructErrors(r)
	if err != nil {
		return err
	}
	if r.Price.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "price", Message: "price must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePlanRequest struct {
	ID            string           `json:"-"`
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	MaxStudents   *int             `json:"max_students,omitempty" validate:"omitempty,gte=0"`
	MaxTeachers   *int             `json:"max_teachers,omitempty" validate:"omitempty,gte=0"`
	MaxAssistants *int             `json:"max_assistants,omitempty" validate:"omitempty,gte=0"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	DurationDays  *int             `json:"duration_days,omitempty" validate:"omitempty,gte=1"`
	IsActive      *bool            `json:"is_active,omitempty"`
	IsTrial       *bool            `json:"is_trial,omitempty"`
}

func (r *UpdatePlanRequest) Validate() error {
	errs, err := validator.StructErrors(r)
	if err != nil {
		return err
	}
	if r.Price != nil && r.Price.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "price", Message: "price must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ==================== Response DTOs ====================

type PlanResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	MaxStudents   int             `json:"max_students"`
	MaxTeachers   int             `json:"max_teachers"`
	MaxAssistants int             `json:"max_assistants"`
	Price         decimal.Decimal `json:"price"`
	DurationDays  int             `json:"duration_days"`
	IsActive      bool            `json:"is_active"`
	IsDefault     bool            `json:"is_default"`
	IsTrial       bool            `json:"is_trial"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

func (p *Plan) ToResponse() PlanResponse {
	return PlanResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		MaxStudents:   p.MaxStudents,
		MaxTeachers:   p.MaxTeachers,
		MaxAssistants: p.MaxAssistants,
		Price:         p.Price,
		DurationDays:  p.DurationDays,
		IsActive:      p.IsActive,
		IsDefault:     p.IsDefault,
		IsTrial:       p.IsTrial,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

func ToResponses(plans []Plan) []PlanResponse {
	out := make([]PlanResponse, len(plans))
	for i := range plans {
		out[i] = plans[i].ToResponse()
	}
	return out
}
