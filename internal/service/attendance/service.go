package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type AttendanceServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	groupRepo      group.GroupRepository
	studentRepo    student.StudentRepository
	paymentRepo    payment.PaymentRepository
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	groupRepo group.GroupRepository,
	studentRepo student.StudentRepository,
	paymentRepo payment.PaymentRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		groupRepo:      groupRepo,
		studentRepo:    studentRepo,
		paymentRepo:    paymentRepo,
	}
}

// Record implements attendance.AttendanceService. Every entry is checked
// before anything is written. A present student in a per-session group gets
// one payment for the session; re-recording the same session never adds a
// second one.
func (a *AttendanceServiceImpl) Record(ctx context.Context, scope tenant.Scope, req attendance.RecordAttendanceRequest) (attendance.RecordAttendanceResponse, error) {
	if err := scope.Require(user.PermissionAttendanceManage); err != nil {
		return attendance.RecordAttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.RecordAttendanceResponse{}, err
	}
	date := req.SessionDate()

	g, err := a.getGroup(ctx, scope, req.GroupID)
	if err != nil {
		return attendance.RecordAttendanceResponse{}, err
	}

	ids := make([]string, len(req.Entries))
	for i, e := range req.Entries {
		ids[i] = e.StudentID
	}
	students, err := a.studentRepo.GetByIDs(ctx, scope.CenterID, ids)
	if err != nil {
		return attendance.RecordAttendanceResponse{}, err
	}
	members := make(map[string]bool, len(students))
	for _, st := range students {
		members[st.ID] = st.GroupID != nil && *st.GroupID == g.ID
	}
	for _, id := range ids {
		inGroup, found := members[id]
		if !found {
			return attendance.RecordAttendanceResponse{}, student.ErrStudentNotFound
		}
		if !inGroup {
			return attendance.RecordAttendanceResponse{}, attendance.ErrStudentNotInGroup
		}
	}

	resp := attendance.RecordAttendanceResponse{
		GroupID:     g.ID,
		Date:        date.Format("2006-01-02"),
		Attendances: make([]attendance.AttendanceResponse, 0, len(req.Entries)),
	}
	recordedBy := scope.UserID

	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		resp.PaymentsCreated = 0
		resp.Attendances = resp.Attendances[:0]

		for _, e := range req.Entries {
			row, err := a.attendanceRepo.Upsert(ctx, attendance.Attendance{
				CenterID:   scope.CenterID,
				StudentID:  e.StudentID,
				GroupID:    g.ID,
				Date:       date,
				IsPresent:  e.IsPresent,
				Notes:      e.Notes,
				RecordedBy: &recordedBy,
			})
			if err != nil {
				return err
			}
			resp.Attendances = append(resp.Attendances, row.ToResponse())

			p, ok := payment.SessionPayment(g, e.StudentID, date, e.IsPresent)
			if !ok {
				continue
			}
			created, err := a.paymentRepo.EnsureSessionPayment(ctx, p)
			if err != nil {
				return err
			}
			if created {
				resp.PaymentsCreated++
			}
		}
		return nil
	})
	if err != nil {
		return attendance.RecordAttendanceResponse{}, err
	}
	resp.Recorded = len(resp.Attendances)

	slog.Info("attendance recorded",
		"center_id", scope.CenterID,
		"group_id", g.ID,
		"date", resp.Date,
		"recorded", resp.Recorded,
		"payments_created", resp.PaymentsCreated,
	)
	return resp, nil
}

// ListByGroupDate implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListByGroupDate(ctx context.Context, scope tenant.Scope, groupID string, date time.Time) ([]attendance.AttendanceResponse, error) {
	if err := scope.Require(user.PermissionAttendanceView); err != nil {
		return nil, err
	}
	g, err := a.getGroup(ctx, scope, groupID)
	if err != nil {
		return nil, err
	}
	rows, err := a.attendanceRepo.ListByGroupDate(ctx, scope.CenterID, g.ID, date)
	if err != nil {
		return nil, err
	}
	return attendance.ToResponses(rows), nil
}

// ListByStudent implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListByStudent(ctx context.Context, scope tenant.Scope, studentID string, r attendance.DateRange) ([]attendance.AttendanceResponse, error) {
	if err := scope.Require(user.PermissionAttendanceView); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	st, err := a.studentRepo.GetByID(ctx, scope.CenterID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, student.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if !scope.OwnsTeacherRow(st.TeacherID) {
		return nil, student.ErrStudentNotFound
	}

	rows, err := a.attendanceRepo.ListByStudent(ctx, scope.CenterID, st.ID, r)
	if err != nil {
		return nil, err
	}
	return attendance.ToResponses(rows), nil
}

func (a *AttendanceServiceImpl) getGroup(ctx context.Context, scope tenant.Scope, id string) (group.Group, error) {
	g, err := a.groupRepo.GetByID(ctx, scope.CenterID, id)
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
