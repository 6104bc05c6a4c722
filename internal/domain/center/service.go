package center

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type CenterService interface {
	GetMyCenter(ctx context.Context, scope tenant.Scope) (CenterResponse, error)
	UpdateMyCenter(ctx context.Context, scope tenant.Scope, req UpdateCenterRequest) (CenterResponse, error)
	List(ctx context.Context) ([]CenterResponse, error)
	Delete(ctx context.Context, id string) error
}
