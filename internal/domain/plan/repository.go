package plan

import "context"

type PlanRepository interface {
	GetByID(ctx context.Context, id string) (Plan, error)
	GetDefault(ctx context.Context) (Plan, error)
	List(ctx context.Context, activeOnly bool) ([]Plan, error)
	// ListCovering returns active plans whose cap for kind is at least need, cheapest first.
	ListCovering(ctx context.Context, kind ResourceKind, need int) ([]Plan, error)
	Create(ctx context.Context, newPlan Plan) (Plan, error)
	Update(ctx context.Context, req UpdatePlanRequest) error
	Delete(ctx context.Context, id string) error

	ClearDefault(ctx context.Context) error
	MarkDefault(ctx context.Context, id string) error
	CountActiveSubscriptions(ctx context.Context, planID string) (int, error)
}
