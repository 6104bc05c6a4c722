package upgrade

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type UpgradeService interface {
	Create(ctx context.Context, scope tenant.Scope, req CreateUpgradeRequest) (UpgradeRequestResponse, error)
	ListMine(ctx context.Context, scope tenant.Scope) ([]UpgradeRequestResponse, error)
	List(ctx context.Context, filter UpgradeFilter) ([]UpgradeRequestResponse, error)
	GetByID(ctx context.Context, id string) (UpgradeRequestResponse, error)
	Approve(ctx context.Context, adminID string, req DecisionRequest) (UpgradeRequestResponse, error)
	Reject(ctx context.Context, adminID string, req DecisionRequest) (UpgradeRequestResponse, error)
}
