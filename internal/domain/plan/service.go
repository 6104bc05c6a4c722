package plan

import "context"

type PlanService interface {
	ListActive(ctx context.Context) ([]PlanResponse, error)
	List(ctx context.Context) ([]PlanResponse, error)
	GetByID(ctx context.Context, id string) (PlanResponse, error)
	Create(ctx context.Context, req CreatePlanRequest) (PlanResponse, error)
	Update(ctx context.Context, req UpdatePlanRequest) (PlanResponse, error)
	// SetDefault leaves id as the only default plan.
	SetDefault(ctx context.Context, id string) (PlanResponse, error)
	Delete(ctx context.Context, id string) error
}
