package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
)

// ResolveTeacher returns the teacher a new teacher-owned row (student, group)
// belongs to. Teachers and assistants always create for their own teacher.
// Center admins must name a teacher of their center; errRequired is returned
// when they do not.
func ResolveTeacher(ctx context.Context, users user.UserRepository, scope tenant.Scope, teacherID *string, errRequired error) (string, error) {
	if owner := scope.OwnerTeacherID(); owner != nil {
		return *owner, nil
	}
	if teacherID == nil {
		return "", errRequired
	}

	t, err := users.GetInCenter(ctx, scope.CenterID, *teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errRequired
		}
		return "", fmt.Errorf("failed to get teacher: %w", err)
	}
	if t.Role != user.RoleTeacher {
		return "", errRequired
	}
	return t.ID, nil
}
