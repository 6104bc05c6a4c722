package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
)

type limitGuard struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         plan.PlanRepository
	centerRepo       center.CenterRepository
	now              func() time.Time
}

// NewLimitGuard returns the guard creates of capped resources call inside
// their transaction.
func NewLimitGuard(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo plan.PlanRepository,
	centerRepo center.CenterRepository,
) subscription.LimitGuard {
	return &limitGuard{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		centerRepo:       centerRepo,
		now:              time.Now,
	}
}

// Reserve implements subscription.LimitGuard. The center row lock is held
// until the caller's transaction ends, so the count it takes stays valid for
// the insert that follows.
func (g *limitGuard) Reserve(ctx context.Context, centerID string, kind plan.ResourceKind, increment int) error {
	if err := g.centerRepo.LockForUpdate(ctx, centerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return center.ErrCenterNotFound
		}
		return fmt.Errorf("lock center: %w", err)
	}

	result, err := check(ctx, g.subscriptionRepo, g.planRepo, centerID, kind, increment, g.now())
	if err != nil {
		return err
	}
	if !result.Allowed {
		return &subscription.LimitExceededError{Result: result}
	}
	return nil
}
