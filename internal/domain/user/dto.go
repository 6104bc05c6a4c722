package user

import (
	"time"

	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID          string   `json:"id"`
	CenterID    *string  `json:"center_id,omitempty"`
	TeacherID   *string  `json:"teacher_id,omitempty"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       *string  `json:"phone,omitempty"`
	Role        string   `json:"role"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func (u *User) ToResponse() UserResponse {
	perms := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		perms[i] = string(p)
	}
	return UserResponse{
		ID:          u.ID,
		CenterID:    u.CenterID,
		TeacherID:   u.TeacherID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		Permissions: perms,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateTeacherRequest represents request to add a teacher to a center
type CreateTeacherRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,phone"`
}

func (r *CreateTeacherRequest) Validate() error {
	return validator.Struct(r)
}

// CreateAssistantRequest represents request to add an assistant. TeacherID is
// required when a center admin creates the assistant and ignored for teachers.
type CreateAssistantRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Email       string   `json:"email" validate:"required,email,max=254"`
	Password    string   `json:"password" validate:"required,min=8,max=255"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,phone"`
	TeacherID   *string  `json:"teacher_id,omitempty" validate:"omitempty,uuid"`
	Permissions []string `json:"permissions,omitempty"`
	Template    *string  `json:"template,omitempty"`
}

func (r *CreateAssistantRequest) Validate() error {
	errs, err := validator.StructErrors(r)
	if err != nil {
		return err
	}

	if len(r.Permissions) > 0 && r.Template != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "template",
			Message: "provide either permissions or template, not both",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateStaffRequest represents request to update a teacher or assistant
type UpdateStaffRequest struct {
	ID       string  `json:"-"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=255"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r *UpdateStaffRequest) Validate() error {
	return validator.Struct(r)
}

// StaffFilter narrows staff listings.
type StaffFilter struct {
	Role      *Role
	TeacherID *string
}

// SyncPermissionsRequest replaces a user's permissions with exactly this set
type SyncPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

func (r *SyncPermissionsRequest) Validate() error {
	return validator.Struct(r)
}

// ApplyTemplateRequest replaces a user's permissions with a template's list
type ApplyTemplateRequest struct {
	Template string `json:"template" validate:"required"`
}

func (r *ApplyTemplateRequest) Validate() error {
	return validator.Struct(r)
}

type PermissionsResponse struct {
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
}

type CatalogCategoryResponse struct {
	Category    string                 `json:"category"`
	Permissions []CatalogEntryResponse `json:"permissions"`
}

type CatalogEntryResponse struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type TemplateResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func PermissionNames(ps []Permission) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}
