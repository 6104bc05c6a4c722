package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// GetInCenter returns the user only when it belongs to centerID.
	GetInCenter(ctx context.Context, centerID, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, centerID, id string) error
	List(ctx context.Context, centerID string, filter StaffFilter) ([]User, error)
	CountByRole(ctx context.Context, centerID string, role Role) (int, error)
	LinkGoogleAccount(ctx context.Context, id, googleID string) error

	GetPermissions(ctx context.Context, userID string) ([]Permission, error)
	// ReplacePermissions makes perms the user's exact permission set.
	ReplacePermissions(ctx context.Context, userID string, perms []Permission) error
}
