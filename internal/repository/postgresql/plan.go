package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type planRepositoryImpl struct {
	db *database.DB
}

func NewPlanRepository(db *database.DB) plan.PlanRepository {
	return &planRepositoryImpl{db: db}
}

const planColumns = `id, name, description, max_students, max_teachers, max_assistants, price, duration_days, is_active, is_default, is_trial, created_at, updated_at`

func scanPlan(row pgx.Row) (plan.Plan, error) {
	var p plan.Plan
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.MaxStudents,
		&p.MaxTeachers,
		&p.MaxAssistants,
		&p.Price,
		&p.DurationDays,
		&p.IsActive,
		&p.IsDefault,
		&p.IsTrial,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectPlans(rows pgx.Rows) ([]plan.Plan, error) {
	defer rows.Close()
	var plans []plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetByID implements plan.PlanRepository.
func (r *planRepositoryImpl) GetByID(ctx context.Context, id string) (plan.Plan, error) {
	q := GetQuerier(ctx, r.db)
	return scanPlan(q.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
}

// GetDefault implements plan.PlanRepository.
func (r *planRepositoryImpl) GetDefault(ctx context.Context) (plan.Plan, error) {
	q := GetQuerier(ctx, r.db)
	return scanPlan(q.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE is_default AND is_active`))
}

// List implements plan.PlanRepository.
func (r *planRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]plan.Plan, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + planColumns + ` FROM plans`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY price, name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return collectPlans(rows)
}

// ListCovering implements plan.PlanRepository.
func (r *planRepositoryImpl) ListCovering(ctx context.Context, kind plan.ResourceKind, need int) ([]plan.Plan, error) {
	var column string
	switch kind {
	case plan.ResourceStudent:
		column = "max_students"
	case plan.ResourceTeacher:
		column = "max_teachers"
	case plan.ResourceAssistant:
		column = "max_assistants"
	default:
		return nil, plan.ErrInvalidResourceKind
	}

	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + planColumns + ` FROM plans WHERE is_active AND ` + column + ` >= $1 ORDER BY price, ` + column
	rows, err := q.Query(ctx, query, need)
	if err != nil {
		return nil, fmt.Errorf("failed to list covering plans: %w", err)
	}
	return collectPlans(rows)
}

// Create implements plan.PlanRepository.
func (r *planRepositoryImpl) Create(ctx context.Context, newPlan plan.Plan) (plan.Plan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO plans (name, description, max_students, max_teachers, max_assistants, price, duration_days, is_active, is_default, is_trial)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + planColumns

	created, err := scanPlan(q.QueryRow(ctx, query,
		newPlan.Name,
		newPlan.Description,
		newPlan.MaxStudents,
		newPlan.MaxTeachers,
		newPlan.MaxAssistants,
		newPlan.Price,
		newPlan.DurationDays,
		newPlan.IsActive,
		newPlan.IsDefault,
		newPlan.IsTrial,
	))
	if err != nil {
		if isUniqueViolationOn(err, "plans_name_key") {
			return plan.Plan{}, plan.ErrPlanNameExists
		}
		return plan.Plan{}, fmt.Errorf("failed to create plan: %w", err)
	}
	return created, nil
}

// Update implements plan.PlanRepository.
func (r *planRepositoryImpl) Update(ctx context.Context, req plan.UpdatePlanRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.MaxStudents != nil {
		updates["max_students"] = *req.MaxStudents
	}
	if req.MaxTeachers != nil {
		updates["max_teachers"] = *req.MaxTeachers
	}
	if req.MaxAssistants != nil {
		updates["max_assistants"] = *req.MaxAssistants
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DurationDays != nil {
		updates["duration_days"] = *req.DurationDays
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsTrial != nil {
		updates["is_trial"] = *req.IsTrial
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	args = append(args, req.ID)

	sql := "UPDATE plans SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", i)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolationOn(err, "plans_name_key") {
			return plan.ErrPlanNameExists
		}
		return fmt.Errorf("failed to update plan with id %s: %w", req.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete implements plan.PlanRepository.
func (r *planRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return plan.ErrPlanReferenced
		}
		return fmt.Errorf("failed to delete plan with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ClearDefault implements plan.PlanRepository.
func (r *planRepositoryImpl) ClearDefault(ctx context.Context) error {
	q := GetQuerier(ctx, r.db)

	// Concurrent callers queue on the current default row.
	rows, err := q.Query(ctx, `SELECT id FROM plans WHERE is_default FOR UPDATE`)
	if err != nil {
		return fmt.Errorf("failed to lock default plan: %w", err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to lock default plan: %w", err)
	}

	_, err = q.Exec(ctx, `UPDATE plans SET is_default = FALSE, updated_at = NOW() WHERE is_default`)
	return err
}

// MarkDefault implements plan.PlanRepository.
func (r *planRepositoryImpl) MarkDefault(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE plans SET is_default = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		if isUniqueViolationOn(err, "plans_single_default") {
			return plan.ErrDefaultPlanChanged
		}
		return fmt.Errorf("failed to mark plan %s default: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountActiveSubscriptions implements plan.PlanRepository.
func (r *planRepositoryImpl) CountActiveSubscriptions(ctx context.Context, planID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE plan_id = $1 AND is_active`, planID).Scan(&count)
	return count, err
}
