package report

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// Paid payments per month of a year
	MonthlyIncome(ctx context.Context, scope tenant.Scope, req MonthlyIncomeRequest) (MonthlyIncomeReport, error)

	// Present/absent totals per student of a group
	AttendanceSummary(ctx context.Context, scope tenant.Scope, req AttendanceSummaryRequest) (AttendanceSummaryReport, error)
}
