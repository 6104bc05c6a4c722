package student

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/database"
	"github.com/tutora/tutora-backend/internal/service/staff"
)

type StudentServiceImpl struct {
	tx               database.Transactor
	studentRepo      student.StudentRepository
	groupRepo        group.GroupRepository
	userRepo         user.UserRepository
	academicYearRepo academicyear.AcademicYearRepository
	limitGuard       subscription.LimitGuard
}

func NewStudentService(
	tx database.Transactor,
	studentRepo student.StudentRepository,
	groupRepo group.GroupRepository,
	userRepo user.UserRepository,
	academicYearRepo academicyear.AcademicYearRepository,
	limitGuard subscription.LimitGuard,
) student.StudentService {
	return &StudentServiceImpl{
		tx:               tx,
		studentRepo:      studentRepo,
		groupRepo:        groupRepo,
		userRepo:         userRepo,
		academicYearRepo: academicYearRepo,
		limitGuard:       limitGuard,
	}
}

// Create implements student.StudentService. The plan limit is reserved and
// the optional group checked for room inside the same transaction as the insert.
func (s *StudentServiceImpl) Create(ctx context.Context, scope tenant.Scope, req student.CreateStudentRequest) (student.StudentResponse, error) {
	if err := scope.Require(user.PermissionStudentsCreate); err != nil {
		return student.StudentResponse{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return student.StudentResponse{}, err
	}

	teacherID, err := staff.ResolveTeacher(ctx, s.userRepo, scope, req.TeacherID, student.ErrTeacherRequired)
	if err != nil {
		return student.StudentResponse{}, err
	}
	if err := s.ensureAcademicYear(ctx, req.AcademicYearID); err != nil {
		return student.StudentResponse{}, err
	}

	var created student.Student
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.limitGuard.Reserve(ctx, scope.CenterID, plan.ResourceStudent, 1); err != nil {
			return err
		}

		newStudent := student.Student{
			CenterID:       scope.CenterID,
			TeacherID:      teacherID,
			AcademicYearID: req.AcademicYearID,
			Name:           req.Name,
			Phone:          req.Phone,
			ParentPhone:    req.ParentPhone,
			Notes:          req.Notes,
			IsActive:       true,
		}

		if req.GroupID != nil {
			g, err := s.groupRepo.GetByIDForUpdate(ctx, scope.CenterID, *req.GroupID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return group.ErrGroupNotFound
				}
				return fmt.Errorf("failed to get group: %w", err)
			}
			if g.TeacherID != teacherID {
				return group.ErrGroupNotFound
			}
			year, err := matchAcademicYear(g, newStudent.AcademicYearID)
			if err != nil {
				return err
			}
			if !g.HasRoomFor(1) {
				return group.ErrGroupFull
			}
			newStudent.GroupID = &g.ID
			newStudent.AcademicYearID = year
		}

		inserted, err := s.studentRepo.Create(ctx, newStudent)
		if err != nil {
			return err
		}
		created, err = s.studentRepo.GetByID(ctx, scope.CenterID, inserted.ID)
		return err
	})
	if err != nil {
		return student.StudentResponse{}, err
	}
	return created.ToResponse(), nil
}

// GetByID implements student.StudentService.
func (s *StudentServiceImpl) GetByID(ctx context.Context, scope tenant.Scope, id string) (student.StudentResponse, error) {
	if err := scope.Require(user.PermissionStudentsViewOwn); err != nil {
		return student.StudentResponse{}, err
	}
	st, err := s.get(ctx, scope, id)
	if err != nil {
		return student.StudentResponse{}, err
	}
	return st.ToResponse(), nil
}

// List implements student.StudentService.
func (s *StudentServiceImpl) List(ctx context.Context, scope tenant.Scope, filter student.StudentFilter) (student.ListStudentResponse, error) {
	if err := scope.Require(user.PermissionStudentsViewOwn); err != nil {
		return student.ListStudentResponse{}, err
	}
	if owner := scope.OwnerTeacherID(); owner != nil {
		filter.TeacherID = owner
	}
	filter.Normalize()

	students, total, err := s.studentRepo.List(ctx, scope.CenterID, filter)
	if err != nil {
		return student.ListStudentResponse{}, err
	}

	resp := student.ListStudentResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Students:   make([]student.StudentResponse, len(students)),
	}
	for i := range students {
		resp.Students[i] = students[i].ToResponse()
	}
	return resp, nil
}

// Update implements student.StudentService.
func (s *StudentServiceImpl) Update(ctx context.Context, scope tenant.Scope, req student.UpdateStudentRequest) (student.StudentResponse, error) {
	if err := scope.Require(user.PermissionStudentsEdit); err != nil {
		return student.StudentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return student.StudentResponse{}, err
	}

	st, err := s.get(ctx, scope, req.ID)
	if err != nil {
		return student.StudentResponse{}, err
	}

	if req.AcademicYearID != nil {
		if err := s.ensureAcademicYear(ctx, req.AcademicYearID); err != nil {
			return student.StudentResponse{}, err
		}
		if st.GroupID != nil {
			g, err := s.groupRepo.GetByID(ctx, scope.CenterID, *st.GroupID)
			if err != nil {
				return student.StudentResponse{}, fmt.Errorf("failed to get group: %w", err)
			}
			if _, err := matchAcademicYear(g, req.AcademicYearID); err != nil {
				return student.StudentResponse{}, err
			}
		}
		st.AcademicYearID = req.AcademicYearID
	}
	if req.Name != nil {
		st.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		st.Phone = req.Phone
	}
	if req.ParentPhone != nil {
		st.ParentPhone = req.ParentPhone
	}
	if req.Notes != nil {
		st.Notes = req.Notes
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}

	if err := s.studentRepo.Update(ctx, st); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.StudentResponse{}, student.ErrStudentNotFound
		}
		return student.StudentResponse{}, err
	}
	return st.ToResponse(), nil
}

// Delete implements student.StudentService.
func (s *StudentServiceImpl) Delete(ctx context.Context, scope tenant.Scope, id string) error {
	if err := scope.Require(user.PermissionStudentsDelete); err != nil {
		return err
	}
	st, err := s.get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, scope.CenterID, st.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.ErrStudentNotFound
		}
		return err
	}
	return nil
}

// get loads a student of the caller's center that the caller's teacher owns.
// Rows of other centers or teachers are reported as not found.
func (s *StudentServiceImpl) get(ctx context.Context, scope tenant.Scope, id string) (student.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, scope.CenterID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.Student{}, student.ErrStudentNotFound
		}
		return student.Student{}, fmt.Errorf("failed to get student: %w", err)
	}
	if !scope.OwnsTeacherRow(st.TeacherID) {
		return student.Student{}, student.ErrStudentNotFound
	}
	return st, nil
}

func (s *StudentServiceImpl) ensureAcademicYear(ctx context.Context, id *int) error {
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

// matchAcademicYear checks a student's year against the group's. A student
// without a year takes the group's.
func matchAcademicYear(g group.Group, year *int) (*int, error) {
	if g.AcademicYearID == nil {
		return year, nil
	}
	if year == nil {
		return g.AcademicYearID, nil
	}
	if *year != *g.AcademicYearID {
		return nil, group.ErrAcademicYearMismatch
	}
	return year, nil
}
