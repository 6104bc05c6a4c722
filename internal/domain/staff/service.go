// Package staff declares the operations on a center's teachers and assistants
// and on assistant permissions.
package staff

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
)

type StaffService interface {
	CreateTeacher(ctx context.Context, scope tenant.Scope, req user.CreateTeacherRequest) (user.UserResponse, error)
	CreateAssistant(ctx context.Context, scope tenant.Scope, req user.CreateAssistantRequest) (user.UserResponse, error)
	List(ctx context.Context, scope tenant.Scope, filter user.StaffFilter) ([]user.UserResponse, error)
	GetByID(ctx context.Context, scope tenant.Scope, id string) (user.UserResponse, error)
	Update(ctx context.Context, scope tenant.Scope, req user.UpdateStaffRequest) (user.UserResponse, error)
	Delete(ctx context.Context, scope tenant.Scope, id string) error
}

type PermissionService interface {
	GetPermissions(ctx context.Context, scope tenant.Scope, userID string) (user.PermissionsResponse, error)
	// SyncPermissions makes perms the user's exact permission set.
	SyncPermissions(ctx context.Context, scope tenant.Scope, userID string, req user.SyncPermissionsRequest) (user.PermissionsResponse, error)
	ApplyTemplate(ctx context.Context, scope tenant.Scope, userID string, req user.ApplyTemplateRequest) (user.PermissionsResponse, error)
	ListCatalog() []user.CatalogCategoryResponse
	ListTemplates() []user.TemplateResponse
}
