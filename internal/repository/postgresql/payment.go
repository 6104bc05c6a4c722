package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type paymentRepositoryImpl struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payment.PaymentRepository {
	return &paymentRepositoryImpl{db: db}
}

const paymentSelect = `
	SELECT p.id, p.center_id, p.student_id, p.group_id, p.payment_type, p.related_date, p.amount,
		p.is_paid, p.paid_at, p.notes, p.created_at, p.updated_at, s.name, g.name
	FROM payments p
	JOIN students s ON s.id = p.student_id
	JOIN groups g ON g.id = p.group_id
`

func scanPayment(row pgx.Row) (payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.CenterID, &p.StudentID, &p.GroupID, &p.PaymentType, &p.RelatedDate, &p.Amount,
		&p.IsPaid, &p.PaidAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt, &p.StudentName, &p.GroupName,
	)
	return p, err
}

// GetByID implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) GetByID(ctx context.Context, centerID, id string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)
	return scanPayment(q.QueryRow(ctx, paymentSelect+` WHERE p.id = $1 AND p.center_id = $2`, id, centerID))
}

// List implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) List(ctx context.Context, centerID string, filter payment.PaymentFilter) ([]payment.Payment, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := ` WHERE p.center_id = $1`
	args := []interface{}{centerID}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		where += fmt.Sprintf(" AND p.student_id = $%d", len(args))
	}
	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		where += fmt.Sprintf(" AND p.group_id = $%d", len(args))
	}
	if filter.PaymentType != nil {
		args = append(args, *filter.PaymentType)
		where += fmt.Sprintf(" AND p.payment_type = $%d", len(args))
	}
	if filter.IsPaid != nil {
		args = append(args, *filter.IsPaid)
		where += fmt.Sprintf(" AND p.is_paid = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND p.related_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND p.related_date <= $%d", len(args))
	}
	if filter.TeacherID != nil {
		args = append(args, *filter.TeacherID)
		where += fmt.Sprintf(" AND g.teacher_id = $%d", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM payments p JOIN groups g ON g.id = p.group_id` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := paymentSelect + where + fmt.Sprintf(" ORDER BY p.related_date DESC, s.name LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// EnsureSessionPayment implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) EnsureSessionPayment(ctx context.Context, p payment.Payment) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payments (center_id, student_id, group_id, payment_type, related_date, amount, notes)
		VALUES ($1, $2, $3, 'per_session', $4, $5, $6)
		ON CONFLICT (student_id, group_id, related_date) WHERE payment_type = 'per_session' DO NOTHING
	`
	tag, err := q.Exec(ctx, query, p.CenterID, p.StudentID, p.GroupID, p.RelatedDate, p.Amount, p.Notes)
	if err != nil {
		return false, fmt.Errorf("failed to create session payment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CreateMonthly implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) CreateMonthly(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payments (center_id, student_id, group_id, payment_type, related_date, amount, notes)
		VALUES ($1, $2, $3, 'monthly', $4, $5, $6)
		RETURNING id, is_paid, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, p.CenterID, p.StudentID, p.GroupID, p.RelatedDate, p.Amount, p.Notes).
		Scan(&p.ID, &p.IsPaid, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolationOn(err, "payments_one_per_month") {
			return payment.Payment{}, payment.ErrPaymentExists
		}
		return payment.Payment{}, fmt.Errorf("failed to create monthly payment: %w", err)
	}
	return p, nil
}

// SetPaid implements payment.PaymentRepository. A nil paidAt marks the payment unpaid.
func (r *paymentRepositoryImpl) SetPaid(ctx context.Context, centerID, id string, paidAt *time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payments SET is_paid = $1, paid_at = $2, updated_at = NOW()
		WHERE id = $3 AND center_id = $4
	`, paidAt != nil, paidAt, id, centerID)
	if err != nil {
		return fmt.Errorf("failed to update payment with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) Delete(ctx context.Context, centerID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payments WHERE id = $1 AND center_id = $2`, id, centerID)
	if err != nil {
		return fmt.Errorf("failed to delete payment with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GenerateMonthlyDues implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) GenerateMonthlyDues(ctx context.Context, month time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payments (center_id, student_id, group_id, payment_type, related_date, amount)
		SELECT g.center_id, s.id, g.id, 'monthly', $1, g.student_price
		FROM groups g
		JOIN students s ON s.group_id = g.id AND s.is_active
		WHERE g.is_active AND g.payment_type = 'monthly'
		ON CONFLICT (student_id, group_id, related_date) WHERE payment_type = 'monthly' DO NOTHING
	`
	tag, err := q.Exec(ctx, query, payment.MonthStart(month))
	if err != nil {
		return 0, fmt.Errorf("failed to generate monthly dues: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UnpaidTotal implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) UnpaidTotal(ctx context.Context, centerID string, teacherID *string) (decimal.Decimal, int, error) {
	q := GetQuerier(ctx, r.db)

	var total decimal.Decimal
	var count int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(p.amount), 0), COUNT(*)
		FROM payments p
		JOIN groups g ON g.id = p.group_id
		WHERE p.center_id = $1 AND NOT p.is_paid
		  AND ($2::uuid IS NULL OR g.teacher_id = $2)
	`, centerID, teacherID).Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to sum unpaid payments: %w", err)
	}
	return total, count, nil
}

// MonthlyIncome implements payment.PaymentRepository. Income is counted in the
// month the payment was collected.
func (r *paymentRepositoryImpl) MonthlyIncome(ctx context.Context, centerID string, teacherID *string, year int) ([]payment.MonthlyTotal, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT EXTRACT(MONTH FROM p.paid_at)::int AS month, SUM(p.amount), COUNT(*)
		FROM payments p
		JOIN groups g ON g.id = p.group_id
		WHERE p.center_id = $1 AND p.is_paid
		  AND EXTRACT(YEAR FROM p.paid_at)::int = $2
		  AND ($3::uuid IS NULL OR g.teacher_id = $3)
		GROUP BY month
		ORDER BY month
	`, centerID, year, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly income: %w", err)
	}
	defer rows.Close()

	var totals []payment.MonthlyTotal
	for rows.Next() {
		var t payment.MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Total, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
