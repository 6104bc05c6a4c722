package group

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

// ==================== Request DTOs ====================

type ScheduleRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

// CreateGroupRequest creates a group. TeacherID is required for center
// admins; teachers and assistants always create for their own teacher.
type CreateGroupRequest struct {
	TeacherID      *string           `json:"teacher_id,omitempty" validate:"omitempty,uuid"`
	Name           string            `json:"name" validate:"required,max=255"`
	Description    *string           `json:"description,omitempty" validate:"omitempty,max=1000"`
	AcademicYearID *int              `json:"academic_year_id,omitempty" validate:"omitempty,gte=1"`
	MaxStudents    int               `json:"max_students" validate:"gte=1"`
	PaymentType    PaymentType       `json:"payment_type" validate:"required,oneof=monthly per_session"`
	StudentPrice   decimal.Decimal   `json:"student_price"`
	IsActive       *bool             `json:"is_active,omitempty"`
	Schedules      []ScheduleRequest `json:"schedules,omitempty" validate:"omitempty,dive"`
}

func (r *CreateGroupRequest) Validate() error {
	errs, err := validator.StructErrors(r)
	if err != nil {
		return err
	}
	if r.StudentPrice.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "student_price", Message: "student_price must not be negative"})
	}
	errs = append(errs, validateSchedules(r.Schedules)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateGroupRequest updates a group. A non-nil Schedules replaces every slot.
type UpdateGroupRequest struct {
	ID             string             `json:"-"`
	Name           *string            `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description    *string            `json:"description,omitempty" validate:"omitempty,max=1000"`
	AcademicYearID *int               `json:"academic_year_id,omitempty" validate:"omitempty,gte=1"`
	MaxStudents    *int               `json:"max_students,omitempty" validate:"omitempty,gte=1"`
	PaymentType    *PaymentType       `json:"payment_type,omitempty" validate:"omitempty,oneof=monthly per_session"`
	StudentPrice   *decimal.Decimal   `json:"student_price,omitempty"`
	IsActive       *bool              `json:"is_active,omitempty"`
	Schedules      *[]ScheduleRequest `json:"schedules,omitempty" validate:"omitempty,dive"`
}

func (r *UpdateGroupRequest) Validate() error {
	errs, err := validator.StructErrors(r)
	if err != nil {
		return err
	}
	if r.StudentPrice != nil && r.StudentPrice.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "student_price", Message: "student_price must not be negative"})
	}
	if r.Schedules != nil {
		errs = append(errs, validateSchedules(*r.Schedules)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateSchedules(schedules []ScheduleRequest) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for i, s := range schedules {
		if validator.IsValidClock(s.StartTime) && validator.IsValidClock(s.EndTime) && s.EndTime <= s.StartTime {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("schedules[%d].end_time", i),
				Message: "end_time must be after start_time",
			})
		}
	}
	return errs
}

type AssignStudentsRequest struct {
	GroupID    string   `json:"-"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,uuid"`
}

func (r *AssignStudentsRequest) Validate() error {
	return validator.Struct(r)
}

type GroupFilter struct {
	TeacherID      *string
	AcademicYearID *int
	IsActive       *bool
}

// ==================== Response DTOs ====================

type ScheduleResponse struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type GroupResponse struct {
	ID             string             `json:"id"`
	TeacherID      string             `json:"teacher_id"`
	TeacherName    string             `json:"teacher_name,omitempty"`
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	AcademicYearID *int               `json:"academic_year_id,omitempty"`
	MaxStudents    int                `json:"max_students"`
	StudentCount   int                `json:"student_count"`
	PaymentType    PaymentType        `json:"payment_type"`
	StudentPrice   decimal.Decimal    `json:"student_price"`
	IsActive       bool               `json:"is_active"`
	Schedules      []ScheduleResponse `json:"schedules"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

func (g *Group) ToResponse() GroupResponse {
	schedules := make([]ScheduleResponse, len(g.Schedules))
	for i, s := range g.Schedules {
		schedules[i] = ScheduleResponse{ID: s.ID, DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime}
	}
	return GroupResponse{
		ID:             g.ID,
		TeacherID:      g.TeacherID,
		TeacherName:    g.TeacherName,
		Name:           g.Name,
		Description:    g.Description,
		AcademicYearID: g.AcademicYearID,
		MaxStudents:    g.MaxStudents,
		StudentCount:   g.StudentCount,
		PaymentType:    g.PaymentType,
		StudentPrice:   g.StudentPrice,
		IsActive:       g.IsActive,
		Schedules:      schedules,
		CreatedAt:      g.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      g.UpdatedAt.Format(time.RFC3339),
	}
}

func ToSchedules(reqs []ScheduleRequest) []Schedule {
	out := make([]Schedule, len(reqs))
	for i, r := range reqs {
		out[i] = Schedule{DayOfWeek: r.DayOfWeek, StartTime: r.StartTime, EndTime: r.EndTime}
	}
	return out
}
