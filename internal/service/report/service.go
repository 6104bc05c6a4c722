package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/report"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
)

type ReportServiceImpl struct {
	paymentRepo    payment.PaymentRepository
	attendanceRepo attendance.AttendanceRepository
	groupRepo      group.GroupRepository
}

func NewReportService(
	paymentRepo payment.PaymentRepository,
	attendanceRepo attendance.AttendanceRepository,
	groupRepo group.GroupRepository,
) report.ReportService {
	return &ReportServiceImpl{
		paymentRepo:    paymentRepo,
		attendanceRepo: attendanceRepo,
		groupRepo:      groupRepo,
	}
}

// MonthlyIncome reports paid totals for every month of the year, zero-filled.
func (s *ReportServiceImpl) MonthlyIncome(ctx context.Context, scope tenant.Scope, req report.MonthlyIncomeRequest) (report.MonthlyIncomeReport, error) {
	if err := scope.Require(user.PermissionReportsView); err != nil {
		return report.MonthlyIncomeReport{}, err
	}
	if err := req.Validate(); err != nil {
		return report.MonthlyIncomeReport{}, err
	}

	totals, err := s.paymentRepo.MonthlyIncome(ctx, scope.CenterID, scope.OwnerTeacherID(), req.Year)
	if err != nil {
		return report.MonthlyIncomeReport{}, fmt.Errorf("failed to get monthly income: %w", err)
	}

	result := report.MonthlyIncomeReport{
		Year:  req.Year,
		Total: decimal.Zero,
		Rows:  make([]report.MonthlyIncomeRow, 12),
	}
	for i := range result.Rows {
		result.Rows[i] = report.MonthlyIncomeRow{Month: i + 1, Total: decimal.Zero}
	}
	for _, t := range totals {
		if t.Month < 1 || t.Month > 12 {
			continue
		}
		result.Rows[t.Month-1].Total = t.Total
		result.Rows[t.Month-1].Payments = t.Count
		result.Total = result.Total.Add(t.Total)
	}
	return result, nil
}

// AttendanceSummary counts present and absent sessions per student of a group.
func (s *ReportServiceImpl) AttendanceSummary(ctx context.Context, scope tenant.Scope, req report.AttendanceSummaryRequest) (report.AttendanceSummaryReport, error) {
	if err := scope.Require(user.PermissionReportsView); err != nil {
		return report.AttendanceSummaryReport{}, err
	}
	if err := req.Range.Validate(); err != nil {
		return report.AttendanceSummaryReport{}, report.ErrInvalidDateRange
	}

	g, err := s.groupRepo.GetByID(ctx, scope.CenterID, req.GroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.AttendanceSummaryReport{}, group.ErrGroupNotFound
		}
		return report.AttendanceSummaryReport{}, fmt.Errorf("failed to get group: %w", err)
	}
	if !scope.OwnsTeacherRow(g.TeacherID) {
		return report.AttendanceSummaryReport{}, group.ErrGroupNotFound
	}

	rows, err := s.attendanceRepo.SummaryByGroup(ctx, scope.CenterID, g.ID, req.Range)
	if err != nil {
		return report.AttendanceSummaryReport{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}

	result := report.AttendanceSummaryReport{
		GroupID:  g.ID,
		Students: make([]attendance.StudentSummaryResponse, len(rows)),
	}
	if req.Range.From != nil {
		from := req.Range.From.Format("2006-01-02")
		result.From = &from
	}
	if req.Range.To != nil {
		to := req.Range.To.Format("2006-01-02")
		result.To = &to
	}
	for i, r := range rows {
		result.Students[i] = attendance.StudentSummaryResponse{
			StudentID:   r.StudentID,
			StudentName: r.StudentName,
			Present:     r.Present,
			Absent:      r.Absent,
		}
	}
	return result, nil
}
