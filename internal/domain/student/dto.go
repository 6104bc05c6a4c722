package student

import (
	"time"

	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

// CreateStudentRequest creates a student. TeacherID is required for center
// admins and ignored for teachers and assistants.
type CreateStudentRequest struct {
	TeacherID      *string `json:"teacher_id,omitempty" validate:"omitempty,uuid"`
	GroupID        *string `json:"group_id,omitempty" validate:"omitempty,uuid"`
	AcademicYearID *int    `json:"academic_year_id,omitempty" validate:"omitempty,gte=1"`
	Name           string  `json:"name" validate:"required,max=255"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,phone"`
	ParentPhone    *string `json:"parent_phone,omitempty" validate:"omitempty,phone"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *CreateStudentRequest) Validate() error {
	return validator.Struct(r)
}

type UpdateStudentRequest struct {
	ID             string  `json:"-"`
	AcademicYearID *int    `json:"academic_year_id,omitempty" validate:"omitempty,gte=1"`
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,phone"`
	ParentPhone    *string `json:"parent_phone,omitempty" validate:"omitempty,phone"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func (r *UpdateStudentRequest) Validate() error {
	return validator.Struct(r)
}

type StudentFilter struct {
	TeacherID      *string
	GroupID        *string
	AcademicYearID *int
	Search         *string
	Page           int
	Limit          int
}

// Normalize applies paging defaults.
func (f *StudentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (f StudentFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type StudentResponse struct {
	ID             string  `json:"id"`
	TeacherID      string  `json:"teacher_id"`
	GroupID        *string `json:"group_id,omitempty"`
	GroupName      *string `json:"group_name,omitempty"`
	AcademicYearID *int    `json:"academic_year_id,omitempty"`
	Name           string  `json:"name"`
	Phone          *string `json:"phone,omitempty"`
	ParentPhone    *string `json:"parent_phone,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func (s *Student) ToResponse() StudentResponse {
	return StudentResponse{
		ID:             s.ID,
		TeacherID:      s.TeacherID,
		GroupID:        s.GroupID,
		GroupName:      s.GroupName,
		AcademicYearID: s.AcademicYearID,
		Name:           s.Name,
		Phone:          s.Phone,
		ParentPhone:    s.ParentPhone,
		Notes:          s.Notes,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
}

type ListStudentResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Students   []StudentResponse `json:"students"`
}
