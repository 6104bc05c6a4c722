package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type subscriptionRepositoryImpl struct {
	db *database.DB
}

func NewSubscriptionRepository(db *database.DB) subscription.SubscriptionRepository {
	return &subscriptionRepositoryImpl{db: db}
}

// GetActiveByCenter implements subscription.SubscriptionRepository.
func (r *subscriptionRepositoryImpl) GetActiveByCenter(ctx context.Context, centerID string) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.center_id, s.plan_id, s.max_students, s.start_date, s.end_date, s.is_active, s.created_at, s.updated_at,
			p.id, p.name, p.description, p.max_students, p.max_teachers, p.max_assistants, p.price, p.duration_days,
			p.is_active, p.is_default, p.is_trial, p.created_at, p.updated_at
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.center_id = $1 AND s.is_active
	`

	var s subscription.Subscription
	var p plan.Plan
	err := q.QueryRow(ctx, query, centerID).Scan(
		&s.ID, &s.CenterID, &s.PlanID, &s.MaxStudents, &s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		&p.ID, &p.Name, &p.Description, &p.MaxStudents, &p.MaxTeachers, &p.MaxAssistants, &p.Price, &p.DurationDays,
		&p.IsActive, &p.IsDefault, &p.IsTrial, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return subscription.Subscription{}, err
	}
	s.Plan = &p
	return s, nil
}

// Create implements subscription.SubscriptionRepository.
func (r *subscriptionRepositoryImpl) Create(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO subscriptions (center_id, plan_id, max_students, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, sub.CenterID, sub.PlanID, sub.MaxStudents, sub.StartDate, sub.EndDate, sub.IsActive).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

// DeactivateByCenter implements subscription.SubscriptionRepository.
func (r *subscriptionRepositoryImpl) DeactivateByCenter(ctx context.Context, centerID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE subscriptions SET is_active = FALSE, updated_at = NOW() WHERE center_id = $1 AND is_active`, centerID)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscriptions: %w", err)
	}
	return nil
}

// UpdatePlan implements subscription.SubscriptionRepository.
func (r *subscriptionRepositoryImpl) UpdatePlan(ctx context.Context, id, planID string, maxStudents int, start time.Time, end *time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET plan_id = $1, max_students = $2, start_date = $3, end_date = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := q.Exec(ctx, query, planID, maxStudents, start, end, id)
	if err != nil {
		return fmt.Errorf("failed to update subscription plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ExpireOverdue implements subscription.SubscriptionRepository.
func (r *subscriptionRepositoryImpl) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE subscriptions
		SET is_active = FALSE, updated_at = NOW()
		WHERE is_active AND end_date IS NOT NULL AND end_date < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountResources implements subscription.SubscriptionRepository.
func (r *subscriptionRepositoryImpl) CountResources(ctx context.Context, centerID string, kind plan.ResourceKind) (int, error) {
	var query string
	switch kind {
	case plan.ResourceStudent:
		query = `SELECT COUNT(*) FROM students WHERE center_id = $1`
	case plan.ResourceTeacher:
		query = `SELECT COUNT(*) FROM users WHERE center_id = $1 AND role = 'teacher'`
	case plan.ResourceAssistant:
		query = `SELECT COUNT(*) FROM users WHERE center_id = $1 AND role = 'assistant'`
	default:
		return 0, plan.ErrInvalidResourceKind
	}

	q := GetQuerier(ctx, r.db)
	var count int
	if err := q.QueryRow(ctx, query, centerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %ss: %w", kind, err)
	}
	return count, nil
}
