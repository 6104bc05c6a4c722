package center

import "context"

type CenterRepository interface {
	GetByID(ctx context.Context, id string) (Center, error)
	Create(ctx context.Context, newCenter Center) (Center, error)
	Update(ctx context.Context, id string, req UpdateCenterRequest) error
	SetOwner(ctx context.Context, id, ownerID string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Center, error)
	// LockForUpdate row-locks the center until the surrounding transaction ends.
	LockForUpdate(ctx context.Context, id string) error
}
