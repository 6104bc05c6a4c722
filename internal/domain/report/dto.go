package report

import (
	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/domain/attendance"
)

// ========== MONTHLY INCOME ==========

type MonthlyIncomeRequest struct {
	Year int
}

func (r MonthlyIncomeRequest) Validate() error {
	if r.Year < 2000 || r.Year > 2100 {
		return ErrInvalidYear
	}
	return nil
}

type MonthlyIncomeRow struct {
	Month    int             `json:"month"`
	Payments int             `json:"payments"`
	Total    decimal.Decimal `json:"total"`
}

// MonthlyIncomeReport lists paid totals for all twelve months of a year
type MonthlyIncomeReport struct {
	Year  int                `json:"year"`
	Total decimal.Decimal    `json:"total"`
	Rows  []MonthlyIncomeRow `json:"rows"`
}

// ========== ATTENDANCE SUMMARY ==========

type AttendanceSummaryRequest struct {
	GroupID string
	Range   attendance.DateRange
}

type AttendanceSummaryReport struct {
	GroupID  string                              `json:"group_id"`
	From     *string                             `json:"from,omitempty"`
	To       *string                             `json:"to,omitempty"`
	Students []attendance.StudentSummaryResponse `json:"students"`
}
