package payment

import (
	"context"
	"time"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type PaymentService interface {
	List(ctx context.Context, scope tenant.Scope, filter PaymentFilter) (ListPaymentResponse, error)
	GetByID(ctx context.Context, scope tenant.Scope, id string) (PaymentResponse, error)
	CreateMonthly(ctx context.Context, scope tenant.Scope, req CreateMonthlyRequest) (PaymentResponse, error)
	MarkPaid(ctx context.Context, scope tenant.Scope, id string) (PaymentResponse, error)
	MarkUnpaid(ctx context.Context, scope tenant.Scope, id string) (PaymentResponse, error)
	Delete(ctx context.Context, scope tenant.Scope, id string) error
	GenerateMonthlyDues(ctx context.Context, month time.Time) (int64, error)
}
