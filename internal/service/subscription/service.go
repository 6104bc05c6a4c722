package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type subscriptionService struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         plan.PlanRepository
	tx               database.Transactor
	now              func() time.Time
}

func NewSubscriptionService(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo plan.PlanRepository,
	tx database.Transactor,
) subscription.SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		tx:               tx,
		now:              time.Now,
	}
}

// ==================== Subscription Operations ====================

func (s *subscriptionService) GetMySubscription(ctx context.Context, scope tenant.Scope) (subscription.SubscriptionResponse, error) {
	if err := scope.RequireCenter(); err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	sub, err := s.subscriptionRepo.GetActiveByCenter(ctx, scope.CenterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.SubscriptionResponse{}, subscription.ErrSubscriptionNotFound
		}
		return subscription.SubscriptionResponse{}, fmt.Errorf("get subscription: %w", err)
	}

	usage, err := usageOf(ctx, s.subscriptionRepo, scope.CenterID)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}
	return sub.ToResponse(&usage), nil
}

func (s *subscriptionService) CheckLimit(ctx context.Context, scope tenant.Scope, kind plan.ResourceKind, increment int) (subscription.LimitResult, error) {
	if err := scope.RequireCenter(); err != nil {
		return subscription.LimitResult{}, err
	}
	if !kind.IsValid() {
		return subscription.LimitResult{}, plan.ErrInvalidResourceKind
	}
	return check(ctx, s.subscriptionRepo, s.planRepo, scope.CenterID, kind, increment, s.now())
}

func (s *subscriptionService) ChangePlan(ctx context.Context, req subscription.ChangePlanRequest) (subscription.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	p, err := s.planRepo.GetByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.SubscriptionResponse{}, plan.ErrPlanNotFound
		}
		return subscription.SubscriptionResponse{}, fmt.Errorf("get plan: %w", err)
	}
	if !p.IsActive {
		return subscription.SubscriptionResponse{}, plan.ErrPlanInactive
	}

	var created subscription.Subscription
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.subscriptionRepo.GetActiveByCenter(ctx, req.CenterID)
		switch {
		case err == nil:
			if current.PlanID == p.ID {
				return subscription.ErrSamePlan
			}
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("get current subscription: %w", err)
		}

		if err := s.subscriptionRepo.DeactivateByCenter(ctx, req.CenterID); err != nil {
			return fmt.Errorf("deactivate subscription: %w", err)
		}
		created, err = s.subscriptionRepo.Create(ctx, subscription.New(req.CenterID, p, s.now()))
		if err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	slog.Info("subscription plan changed", "center_id", req.CenterID, "plan", p.Name)
	created.Plan = &p
	return created.ToResponse(nil), nil
}

// ExpireOverdue is run by the scheduler.
func (s *subscriptionService) ExpireOverdue(ctx context.Context) (int64, error) {
	count, err := s.subscriptionRepo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	if count > 0 {
		slog.Info("expired overdue subscriptions", "count", count)
	}
	return count, nil
}

// ==================== Helpers ====================

func usageOf(ctx context.Context, repo subscription.SubscriptionRepository, centerID string) (subscription.Usage, error) {
	var usage subscription.Usage
	for _, k := range []struct {
		kind plan.ResourceKind
		dst  *int
	}{
		{plan.ResourceStudent, &usage.Students},
		{plan.ResourceTeacher, &usage.Teachers},
		{plan.ResourceAssistant, &usage.Assistants},
	} {
		n, err := repo.CountResources(ctx, centerID, k.kind)
		if err != nil {
			return subscription.Usage{}, fmt.Errorf("count %ss: %w", k.kind, err)
		}
		*k.dst = n
	}
	return usage, nil
}

// check counts the center's resources of kind and evaluates the increment
// against its active subscription. A subscription past its end date is
// treated as inactive even before the expiry job flips it.
func check(
	ctx context.Context,
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo plan.PlanRepository,
	centerID string,
	kind plan.ResourceKind,
	increment int,
	now time.Time,
) (subscription.LimitResult, error) {
	var active *subscription.Subscription
	sub, err := subscriptionRepo.GetActiveByCenter(ctx, centerID)
	switch {
	case err == nil:
		if !sub.IsExpired(now) {
			active = &sub
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return subscription.LimitResult{}, fmt.Errorf("get subscription: %w", err)
	}

	current, err := subscriptionRepo.CountResources(ctx, centerID, kind)
	if err != nil {
		return subscription.LimitResult{}, fmt.Errorf("count %ss: %w", kind, err)
	}

	var suggestErr error
	result := subscription.Evaluate(active, kind, current, increment, func(need int) []plan.Plan {
		plans, err := planRepo.ListCovering(ctx, kind, need)
		if err != nil {
			suggestErr = err
			return nil
		}
		return plans
	})
	if suggestErr != nil {
		return subscription.LimitResult{}, fmt.Errorf("suggest plans: %w", suggestErr)
	}
	return result, nil
}
