package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	GetByID(ctx context.Context, centerID, id string) (Payment, error)
	List(ctx context.Context, centerID string, filter PaymentFilter) ([]Payment, int64, error)
	// EnsureSessionPayment inserts p unless a per-session payment for the same
	// (student, group, date) exists. created is false when the row was there.
	EnsureSessionPayment(ctx context.Context, p Payment) (created bool, err error)
	// CreateMonthly fails with ErrPaymentExists on a duplicate (student, group, month).
	CreateMonthly(ctx context.Context, p Payment) (Payment, error)
	SetPaid(ctx context.Context, centerID, id string, paidAt *time.Time) error
	Delete(ctx context.Context, centerID, id string) error
	// GenerateMonthlyDues creates the missing monthly dues of month for every
	// student of every active monthly group.
	GenerateMonthlyDues(ctx context.Context, month time.Time) (int64, error)

	UnpaidTotal(ctx context.Context, centerID string, teacherID *string) (decimal.Decimal, int, error)
	MonthlyIncome(ctx context.Context, centerID string, teacherID *string, year int) ([]MonthlyTotal, error)
}
