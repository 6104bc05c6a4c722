package staff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/staff"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type PermissionServiceImpl struct {
	tx       database.Transactor
	userRepo user.UserRepository
}

func NewPermissionService(tx database.Transactor, userRepo user.UserRepository) staff.PermissionService {
	return &PermissionServiceImpl{tx: tx, userRepo: userRepo}
}

// GetPermissions implements staff.PermissionService. Center admins read any
// user of their center; everyone else reads only their own set.
func (p *PermissionServiceImpl) GetPermissions(ctx context.Context, scope tenant.Scope, userID string) (user.PermissionsResponse, error) {
	if err := scope.RequireCenter(); err != nil {
		return user.PermissionsResponse{}, err
	}
	if !scope.IsCenterAdmin() && userID != scope.UserID {
		return user.PermissionsResponse{}, user.ErrCenterAdminRequired
	}

	target, err := p.userRepo.GetInCenter(ctx, scope.CenterID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.PermissionsResponse{}, user.ErrUserNotFound
		}
		return user.PermissionsResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	perms := target.Permissions
	if target.Role != user.RoleAssistant {
		perms = user.RolePermissions[target.Role]
	}
	return user.PermissionsResponse{UserID: target.ID, Permissions: user.PermissionNames(perms)}, nil
}

// SyncPermissions implements staff.PermissionService.
func (p *PermissionServiceImpl) SyncPermissions(ctx context.Context, scope tenant.Scope, userID string, req user.SyncPermissionsRequest) (user.PermissionsResponse, error) {
	if err := req.Validate(); err != nil {
		return user.PermissionsResponse{}, err
	}
	perms, err := user.ParsePermissions(req.Permissions)
	if err != nil {
		return user.PermissionsResponse{}, err
	}
	return p.replace(ctx, scope, userID, perms)
}

// ApplyTemplate implements staff.PermissionService.
func (p *PermissionServiceImpl) ApplyTemplate(ctx context.Context, scope tenant.Scope, userID string, req user.ApplyTemplateRequest) (user.PermissionsResponse, error) {
	if err := req.Validate(); err != nil {
		return user.PermissionsResponse{}, err
	}
	t, ok := user.TemplateByName(req.Template)
	if !ok {
		return user.PermissionsResponse{}, user.ErrUnknownTemplate
	}
	perms := append([]user.Permission(nil), t.Permissions...)
	user.SortPermissions(perms)
	return p.replace(ctx, scope, userID, perms)
}

// replace makes perms the exact permission set of an assistant in the
// caller's center.
func (p *PermissionServiceImpl) replace(ctx context.Context, scope tenant.Scope, userID string, perms []user.Permission) (user.PermissionsResponse, error) {
	if err := scope.RequireCenterAdmin(); err != nil {
		return user.PermissionsResponse{}, err
	}

	err := p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		target, err := p.userRepo.GetInCenter(ctx, scope.CenterID, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return user.ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		if target.Role != user.RoleAssistant {
			return user.ErrNotAnAssistant
		}
		return p.userRepo.ReplacePermissions(ctx, target.ID, perms)
	})
	if err != nil {
		return user.PermissionsResponse{}, err
	}

	slog.Info("permissions replaced", "center_id", scope.CenterID, "user_id", userID, "count", len(perms))
	return user.PermissionsResponse{UserID: userID, Permissions: user.PermissionNames(perms)}, nil
}

// ListCatalog implements staff.PermissionService.
func (p *PermissionServiceImpl) ListCatalog() []user.CatalogCategoryResponse {
	var out []user.CatalogCategoryResponse
	for _, e := range user.Catalog {
		if len(out) == 0 || out[len(out)-1].Category != string(e.Category) {
			out = append(out, user.CatalogCategoryResponse{Category: string(e.Category)})
		}
		last := &out[len(out)-1]
		last.Permissions = append(last.Permissions, user.CatalogEntryResponse{
			Name:  string(e.Permission),
			Label: e.Label,
		})
	}
	return out
}

// ListTemplates implements staff.PermissionService.
func (p *PermissionServiceImpl) ListTemplates() []user.TemplateResponse {
	out := make([]user.TemplateResponse, len(user.Templates))
	for i, t := range user.Templates {
		out[i] = user.TemplateResponse{
			Name:        t.Name,
			Description: t.Description,
			Permissions: user.PermissionNames(t.Permissions),
		}
	}
	return out
}
