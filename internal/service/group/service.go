package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/database"
	"github.com/tutora/tutora-backend/internal/service/staff"
)

type GroupServiceImpl struct {
	tx               database.Transactor
	groupRepo        group.GroupRepository
	studentRepo      student.StudentRepository
	userRepo         user.UserRepository
	academicYearRepo academicyear.AcademicYearRepository
}

func NewGroupService(
	tx database.Transactor,
	groupRepo group.GroupRepository,
	studentRepo student.StudentRepository,
	userRepo user.UserRepository,
	academicYearRepo academicyear.AcademicYearRepository,
) group.GroupService {
	return &GroupServiceImpl{
		tx:               tx,
		groupRepo:        groupRepo,
		studentRepo:      studentRepo,
		userRepo:         userRepo,
		academicYearRepo: academicYearRepo,
	}
}

// Create implements group.GroupService.
func (s *GroupServiceImpl) Create(ctx context.Context, scope tenant.Scope, req group.CreateGroupRequest) (group.GroupResponse, error) {
	if err := scope.Require(user.PermissionGroupsManage); err != nil {
		return group.GroupResponse{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return group.GroupResponse{}, err
	}

	teacherID, err := staff.ResolveTeacher(ctx, s.userRepo, scope, req.TeacherID, group.ErrTeacherRequired)
	if err != nil {
		return group.GroupResponse{}, err
	}
	if err := s.ensureAcademicYear(ctx, req.AcademicYearID); err != nil {
		return group.GroupResponse{}, err
	}

	newGroup := group.Group{
		CenterID:       scope.CenterID,
		TeacherID:      teacherID,
		Name:           req.Name,
		Description:    req.Description,
		AcademicYearID: req.AcademicYearID,
		MaxStudents:    req.MaxStudents,
		PaymentType:    req.PaymentType,
		StudentPrice:   req.StudentPrice,
		IsActive:       true,
	}
	if req.IsActive != nil {
		newGroup.IsActive = *req.IsActive
	}

	var id string
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.groupRepo.Create(ctx, newGroup)
		if err != nil {
			return err
		}
		id = created.ID
		if len(req.Schedules) > 0 {
			if _, err := s.groupRepo.ReplaceSchedules(ctx, id, group.ToSchedules(req.Schedules)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return group.GroupResponse{}, err
	}

	g, err := s.groupRepo.GetByID(ctx, scope.CenterID, id)
	if err != nil {
		return group.GroupResponse{}, fmt.Errorf("failed to reload group: %w", err)
	}
	return g.ToResponse(), nil
}

// GetByID implements group.GroupService.
func (s *GroupServiceImpl) GetByID(ctx context.Context, scope tenant.Scope, id string) (group.GroupResponse, error) {
	if err := scope.Require(user.PermissionGroupsView); err != nil {
		return group.GroupResponse{}, err
	}
	g, err := s.get(ctx, scope, id)
	if err != nil {
		return group.GroupResponse{}, err
	}
	return g.ToResponse(), nil
}

// List implements group.GroupService.
func (s *GroupServiceImpl) List(ctx context.Context, scope tenant.Scope, filter group.GroupFilter) ([]group.GroupResponse, error) {
	if err := scope.Require(user.PermissionGroupsView); err != nil {
		return nil, err
	}
	if owner := scope.OwnerTeacherID(); owner != nil {
		filter.TeacherID = owner
	}

	groups, err := s.groupRepo.List(ctx, scope.CenterID, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]group.GroupResponse, len(groups))
	for i := range groups {
		resp[i] = groups[i].ToResponse()
	}
	return resp, nil
}

// Update implements group.GroupService.
func (s *GroupServiceImpl) Update(ctx context.Context, scope tenant.Scope, req group.UpdateGroupRequest) (group.GroupResponse, error) {
	if err := scope.Require(user.PermissionGroupsManage); err != nil {
		return group.GroupResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return group.GroupResponse{}, err
	}
	if err := s.ensureAcademicYear(ctx, req.AcademicYearID); err != nil {
		return group.GroupResponse{}, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		g, err := s.getForUpdate(ctx, scope, req.ID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			g.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			g.Description = req.Description
		}
		if req.MaxStudents != nil {
			if *req.MaxStudents < g.StudentCount {
				return group.ErrMaxBelowCurrent
			}
			g.MaxStudents = *req.MaxStudents
		}
		if req.AcademicYearID != nil && (g.AcademicYearID == nil || *g.AcademicYearID != *req.AcademicYearID) {
			members, err := s.studentRepo.ListByGroup(ctx, scope.CenterID, g.ID)
			if err != nil {
				return err
			}
			for _, m := range members {
				if m.AcademicYearID != nil && *m.AcademicYearID != *req.AcademicYearID {
					return group.ErrAcademicYearMismatch
				}
			}
			g.AcademicYearID = req.AcademicYearID
		}
		if req.PaymentType != nil {
			g.PaymentType = *req.PaymentType
		}
		if req.StudentPrice != nil {
			g.StudentPrice = *req.StudentPrice
		}
		if req.IsActive != nil {
			g.IsActive = *req.IsActive
		}

		if err := s.groupRepo.Update(ctx, g); err != nil {
			return err
		}
		if req.Schedules != nil {
			if _, err := s.groupRepo.ReplaceSchedules(ctx, g.ID, group.ToSchedules(*req.Schedules)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return group.GroupResponse{}, err
	}

	g, err := s.groupRepo.GetByID(ctx, scope.CenterID, req.ID)
	if err != nil {
		return group.GroupResponse{}, fmt.Errorf("failed to reload group: %w", err)
	}
	return g.ToResponse(), nil
}

// Delete implements group.GroupService. Members are kept and left without a group.
func (s *GroupServiceImpl) Delete(ctx context.Context, scope tenant.Scope, id string) error {
	if err := scope.Require(user.PermissionGroupsManage); err != nil {
		return err
	}
	g, err := s.get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, scope.CenterID, g.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group.ErrGroupNotFound
		}
		return err
	}

	slog.Info("group deleted", "center_id", scope.CenterID, "group_id", g.ID, "students", g.StudentCount)
	return nil
}

// AssignStudents implements group.GroupService. Either every student joins
// the group or none does.
func (s *GroupServiceImpl) AssignStudents(ctx context.Context, scope tenant.Scope, req group.AssignStudentsRequest) (group.GroupResponse, error) {
	if err := scope.Require(user.PermissionGroupsAssignStudents); err != nil {
		return group.GroupResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return group.GroupResponse{}, err
	}
	ids := dedupe(req.StudentIDs)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		g, err := s.getForUpdate(ctx, scope, req.GroupID)
		if err != nil {
			return err
		}

		students, err := s.studentRepo.GetByIDs(ctx, scope.CenterID, ids)
		if err != nil {
			return err
		}
		if len(students) != len(ids) {
			return student.ErrStudentNotFound
		}

		joining := 0
		for _, st := range students {
			if st.TeacherID != g.TeacherID {
				return student.ErrStudentNotFound
			}
			if st.GroupID != nil {
				if *st.GroupID == g.ID {
					continue
				}
				return group.ErrStudentInAnotherGroup
			}
			if g.AcademicYearID != nil && st.AcademicYearID != nil && *st.AcademicYearID != *g.AcademicYearID {
				return group.ErrAcademicYearMismatch
			}
			joining++
		}
		if !g.HasRoomFor(joining) {
			return group.ErrGroupFull
		}

		return s.studentRepo.SetGroup(ctx, scope.CenterID, ids, &g.ID)
	})
	if err != nil {
		return group.GroupResponse{}, err
	}

	g, err := s.groupRepo.GetByID(ctx, scope.CenterID, req.GroupID)
	if err != nil {
		return group.GroupResponse{}, fmt.Errorf("failed to reload group: %w", err)
	}
	return g.ToResponse(), nil
}

// RemoveStudent implements group.GroupService.
func (s *GroupServiceImpl) RemoveStudent(ctx context.Context, scope tenant.Scope, groupID, studentID string) error {
	if err := scope.Require(user.PermissionGroupsAssignStudents); err != nil {
		return err
	}
	g, err := s.get(ctx, scope, groupID)
	if err != nil {
		return err
	}

	st, err := s.studentRepo.GetByID(ctx, scope.CenterID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.ErrStudentNotFound
		}
		return fmt.Errorf("failed to get student: %w", err)
	}
	if st.GroupID == nil || *st.GroupID != g.ID {
		return group.ErrStudentNotInGroup
	}

	return s.studentRepo.SetGroup(ctx, scope.CenterID, []string{st.ID}, nil)
}

func (s *GroupServiceImpl) get(ctx context.Context, scope tenant.Scope, id string) (group.Group, error) {
	g, err := s.groupRepo.GetByID(ctx, scope.CenterID, id)
	return s.visible(scope, g, err)
}

func (s *GroupServiceImpl) getForUpdate(ctx context.Context, scope tenant.Scope, id string) (group.Group, error) {
	g, err := s.groupRepo.GetByIDForUpdate(ctx, scope.CenterID, id)
	return s.visible(scope, g, err)
}

// visible hides groups of other centers and other teachers behind not found.
func (s *GroupServiceImpl) visible(scope tenant.Scope, g group.Group, err error) (group.Group, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group.Group{}, group.ErrGroupNotFound
		}
		return group.Group{}, fmt.Errorf("failed to get group: %w", err)
	}
	if !scope.OwnsTeacherRow(g.TeacherID) {
		return group.Group{}, group.ErrGroupNotFound
	}
	return g, nil
}

func (s *GroupServiceImpl) ensureAcademicYear(ctx context.Context, id *int) error {
	if id == nil {
		return nil
	}
	if _, err := s.academicYearRepo.GetByID(ctx, *id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return academicyear.ErrAcademicYearNotFound
		}
		return fmt.Errorf("failed to get academic year: %w", err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
