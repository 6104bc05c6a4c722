package subscription

import (
	"context"
	"time"

	"github.com/tutora/tutora-backend/internal/domain/plan"
)

type SubscriptionRepository interface {
	// GetActiveByCenter retrieves the center's active subscription with its plan
	GetActiveByCenter(ctx context.Context, centerID string) (Subscription, error)

	// Create inserts a new subscription
	Create(ctx context.Context, sub Subscription) (Subscription, error)

	// DeactivateByCenter turns off every active subscription of the center
	DeactivateByCenter(ctx context.Context, centerID string) error

	// UpdatePlan moves a subscription onto planID with a new window
	UpdatePlan(ctx context.Context, id, planID string, maxStudents int, start time.Time, end *time.Time) error

	// ExpireOverdue deactivates active subscriptions whose end date is before now
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	// CountResources counts the center's rows of kind
	CountResources(ctx context.Context, centerID string, kind plan.ResourceKind) (int, error)
}
