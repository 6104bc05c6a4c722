package group

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type GroupService interface {
	Create(ctx context.Context, scope tenant.Scope, req CreateGroupRequest) (GroupResponse, error)
	GetByID(ctx context.Context, scope tenant.Scope, id string) (GroupResponse, error)
	List(ctx context.Context, scope tenant.Scope, filter GroupFilter) ([]GroupResponse, error)
	Update(ctx context.Context, scope tenant.Scope, req UpdateGroupRequest) (GroupResponse, error)
	Delete(ctx context.Context, scope tenant.Scope, id string) error
	// AssignStudents is all-or-nothing.
	AssignStudents(ctx context.Context, scope tenant.Scope, req AssignStudentsRequest) (GroupResponse, error)
	RemoveStudent(ctx context.Context, scope tenant.Scope, groupID, studentID string) error
}
