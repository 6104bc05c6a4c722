package group

import "context"

type GroupRepository interface {
	// GetByID returns the group with its schedules and student count.
	GetByID(ctx context.Context, centerID, id string) (Group, error)
	// GetByIDForUpdate row-locks the group until the transaction ends.
	GetByIDForUpdate(ctx context.Context, centerID, id string) (Group, error)
	Create(ctx context.Context, g Group) (Group, error)
	Update(ctx context.Context, g Group) error
	Delete(ctx context.Context, centerID, id string) error
	List(ctx context.Context, centerID string, filter GroupFilter) ([]Group, error)
	ReplaceSchedules(ctx context.Context, groupID string, schedules []Schedule) ([]Schedule, error)
	// ListActiveMonthly returns active monthly groups across every center.
	ListActiveMonthly(ctx context.Context) ([]Group, error)
}
