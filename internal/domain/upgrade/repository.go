package upgrade

import (
	"context"
	"time"
)

type UpgradeRepository interface {
	GetByID(ctx context.Context, id string) (PlanUpgradeRequest, error)
	// GetByIDForUpdate row-locks the request until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (PlanUpgradeRequest, error)
	Create(ctx context.Context, req PlanUpgradeRequest) (PlanUpgradeRequest, error)
	HasPending(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, filter UpgradeFilter) ([]PlanUpgradeRequest, error)
	ListByCenter(ctx context.Context, centerID string) ([]PlanUpgradeRequest, error)
	// Resolve moves a pending request to status, stamping handled_at with at
	// when set. It reports false when the request was no longer pending.
	Resolve(ctx context.Context, id string, status Status, adminID string, adminNotes *string, at *time.Time) (bool, error)
}
