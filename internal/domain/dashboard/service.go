package dashboard

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type DashboardService interface {
	GetDashboard(ctx context.Context, scope tenant.Scope) (DashboardResponse, error)
}
