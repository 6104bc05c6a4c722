package subscription

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type SubscriptionService interface {
	GetMySubscription(ctx context.Context, scope tenant.Scope) (SubscriptionResponse, error)
	// CheckLimit is read-only.
	CheckLimit(ctx context.Context, scope tenant.Scope, kind plan.ResourceKind, increment int) (LimitResult, error)
	ChangePlan(ctx context.Context, req ChangePlanRequest) (SubscriptionResponse, error)
	ExpireOverdue(ctx context.Context) (int64, error)
}

// LimitGuard reserves capacity for a create. It must run inside the creating
// transaction: it locks the center row so concurrent creators serialize, and
// returns *LimitExceededError when the create would pass the plan's cap.
type LimitGuard interface {
	Reserve(ctx context.Context, centerID string, kind plan.ResourceKind, increment int) error
}
