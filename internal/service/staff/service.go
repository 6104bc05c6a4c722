package staff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/auth"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/staff"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/database"
	authservice "github.com/tutora/tutora-backend/internal/service/auth"
)

type StaffServiceImpl struct {
	tx         database.Transactor
	userRepo   user.UserRepository
	tokenRepo  auth.RefreshTokenRepository
	limitGuard subscription.LimitGuard
}

func NewStaffService(
	tx database.Transactor,
	userRepo user.UserRepository,
	tokenRepo auth.RefreshTokenRepository,
	limitGuard subscription.LimitGuard,
) staff.StaffService {
	return &StaffServiceImpl{
		tx:         tx,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		limitGuard: limitGuard,
	}
}

// CreateTeacher implements staff.StaffService.
func (s *StaffServiceImpl) CreateTeacher(ctx context.Context, scope tenant.Scope, req user.CreateTeacherRequest) (user.UserResponse, error) {
	if err := scope.RequireCenterAdmin(); err != nil {
		return user.UserResponse{}, err
	}
	req.Email = authservice.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := authservice.HashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var created user.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.limitGuard.Reserve(ctx, scope.CenterID, plan.ResourceTeacher, 1); err != nil {
			return err
		}
		created, err = s.userRepo.Create(ctx, user.User{
			CenterID:     &scope.CenterID,
			Name:         strings.TrimSpace(req.Name),
			Email:        req.Email,
			Phone:        req.Phone,
			PasswordHash: &hash,
			Role:         user.RoleTeacher,
			IsActive:     true,
		})
		return err
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("teacher created", "center_id", scope.CenterID, "user_id", created.ID)
	return created.ToResponse(), nil
}

// CreateAssistant implements staff.StaffService. Teachers always create
// assistants for themselves; center admins name the teacher.
func (s *StaffServiceImpl) CreateAssistant(ctx context.Context, scope tenant.Scope, req user.CreateAssistantRequest) (user.UserResponse, error) {
	if err := scope.RequireCenter(); err != nil {
		return user.UserResponse{}, err
	}
	req.Email = authservice.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	if !scope.IsTeacher() && !scope.IsCenterAdmin() {
		return user.UserResponse{}, user.ErrInsufficientPermissions
	}
	teacherID, err := ResolveTeacher(ctx, s.userRepo, scope, req.TeacherID, user.ErrTeacherRequired)
	if err != nil {
		return user.UserResponse{}, err
	}

	perms, err := initialPermissions(req)
	if err != nil {
		return user.UserResponse{}, err
	}

	hash, err := authservice.HashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var created user.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.limitGuard.Reserve(ctx, scope.CenterID, plan.ResourceAssistant, 1); err != nil {
			return err
		}
		created, err = s.userRepo.Create(ctx, user.User{
			CenterID:     &scope.CenterID,
			TeacherID:    &teacherID,
			Name:         strings.TrimSpace(req.Name),
			Email:        req.Email,
			Phone:        req.Phone,
			PasswordHash: &hash,
			Role:         user.RoleAssistant,
			IsActive:     true,
		})
		if err != nil {
			return err
		}
		if len(perms) > 0 {
			if err := s.userRepo.ReplacePermissions(ctx, created.ID, perms); err != nil {
				return fmt.Errorf("failed to grant permissions: %w", err)
			}
		}
		created.Permissions = perms
		return nil
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("assistant created", "center_id", scope.CenterID, "user_id", created.ID, "teacher_id", teacherID)
	return created.ToResponse(), nil
}

func initialPermissions(req user.CreateAssistantRequest) ([]user.Permission, error) {
	if req.Template != nil {
		t, ok := user.TemplateByName(*req.Template)
		if !ok {
			return nil, user.ErrUnknownTemplate
		}
		perms := append([]user.Permission(nil), t.Permissions...)
		user.SortPermissions(perms)
		return perms, nil
	}
	return user.ParsePermissions(req.Permissions)
}

// List implements staff.StaffService.
func (s *StaffServiceImpl) List(ctx context.Context, scope tenant.Scope, filter user.StaffFilter) ([]user.UserResponse, error) {
	if err := scope.RequireCenter(); err != nil {
		return nil, err
	}
	switch {
	case scope.IsCenterAdmin():
	case scope.IsTeacher():
		filter.TeacherID = &scope.UserID
	default:
		return nil, user.ErrInsufficientPermissions
	}

	users, err := s.userRepo.List(ctx, scope.CenterID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]user.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return out, nil
}

// GetByID implements staff.StaffService.
func (s *StaffServiceImpl) GetByID(ctx context.Context, scope tenant.Scope, id string) (user.UserResponse, error) {
	u, err := s.getVisible(ctx, scope, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return u.ToResponse(), nil
}

// Update implements staff.StaffService.
func (s *StaffServiceImpl) Update(ctx context.Context, scope tenant.Scope, req user.UpdateStaffRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	u, err := s.getManaged(ctx, scope, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Password != nil {
		hash, err := authservice.HashPassword(*req.Password)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = &hash
	}
	deactivated := req.IsActive != nil && !*req.IsActive && u.IsActive
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Update(ctx, u); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return user.ErrUserNotFound
			}
			return err
		}
		if deactivated || req.Password != nil {
			return s.tokenRepo.RevokeAllForUser(ctx, u.ID)
		}
		return nil
	})
	if err != nil {
		return user.UserResponse{}, err
	}
	return u.ToResponse(), nil
}

// Delete implements staff.StaffService. A teacher's assistants, groups and
// students are removed with the teacher.
func (s *StaffServiceImpl) Delete(ctx context.Context, scope tenant.Scope, id string) error {
	u, err := s.getManaged(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, scope.CenterID, u.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrUserNotFound
		}
		return err
	}
	slog.Info("staff member deleted", "center_id", scope.CenterID, "user_id", u.ID, "role", u.Role)
	return nil
}

// getVisible loads a staff member the caller may see: anyone on staff for a
// center admin; themselves and their own assistants for a teacher.
func (s *StaffServiceImpl) getVisible(ctx context.Context, scope tenant.Scope, id string) (user.User, error) {
	if err := scope.RequireCenter(); err != nil {
		return user.User{}, err
	}
	if !scope.IsCenterAdmin() && !scope.IsTeacher() {
		return user.User{}, user.ErrInsufficientPermissions
	}

	u, err := s.userRepo.GetInCenter(ctx, scope.CenterID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !u.IsStaff() {
		return user.User{}, user.ErrUserNotFound
	}
	if scope.IsTeacher() && u.ID != scope.UserID && (u.TeacherID == nil || *u.TeacherID != scope.UserID) {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// getManaged is getVisible narrowed to the rows the caller may change. A
// teacher manages only their own assistants.
func (s *StaffServiceImpl) getManaged(ctx context.Context, scope tenant.Scope, id string) (user.User, error) {
	u, err := s.getVisible(ctx, scope, id)
	if err != nil {
		return user.User{}, err
	}
	if scope.IsTeacher() && u.ID == scope.UserID {
		return user.User{}, user.ErrCenterAdminRequired
	}
	return u, nil
}
