package student

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type StudentService interface {
	Create(ctx context.Context, scope tenant.Scope, req CreateStudentRequest) (StudentResponse, error)
	GetByID(ctx context.Context, scope tenant.Scope, id string) (StudentResponse, error)
	List(ctx context.Context, scope tenant.Scope, filter StudentFilter) (ListStudentResponse, error)
	Update(ctx context.Context, scope tenant.Scope, req UpdateStudentRequest) (StudentResponse, error)
	Delete(ctx context.Context, scope tenant.Scope, id string) error
}
