package payment

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/domain/group"
)

// Payment is a fee owed by a student for a group. Per-session payments carry
// the session date in RelatedDate; monthly payments carry the first day of the
// month.
type Payment struct {
	ID          string
	CenterID    string
	StudentID   string
	GroupID     string
	PaymentType group.PaymentType
	RelatedDate time.Time
	Amount      decimal.Decimal
	IsPaid      bool
	PaidAt      *time.Time
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined data
	StudentName string
	GroupName   string
}

// SessionPayment returns the payment a present attendance in g on date must
// produce. ok is false when the session bills nothing: the student was absent
// or the group is billed monthly.
func SessionPayment(g group.Group, studentID string, date time.Time, present bool) (p Payment, ok bool) {
	if !present || !g.BillsPerSession() {
		return Payment{}, false
	}
	return Payment{
		CenterID:    g.CenterID,
		StudentID:   studentID,
		GroupID:     g.ID,
		PaymentType: group.PaymentTypePerSession,
		RelatedDate: date,
		Amount:      g.StudentPrice,
	}, true
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyTotal is the paid amount collected in one month.
type MonthlyTotal struct {
	Month int
	Total decimal.Decimal
	Count int
}
