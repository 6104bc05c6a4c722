package postgresql_test

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepository_CreateAndGetByEmail(t *testing.T) {
	ctx := requireDB(t)
	f := seedCenter(t, ctx, 10)
	repo := postgresql.NewUserRepository(testDB)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := string(hash)

	created, err := repo.Create(ctx, user.User{
		CenterID:     &f.Center.ID,
		Name:         "Owner",
		Email:        "owner@example.com",
		PasswordHash: &hashed,
		Role:         user.RoleCenterAdmin,
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	t.Run("lookup ignores case", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "OWNER@Example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, user.RoleCenterAdmin, got.Role)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, user.User{
			CenterID: &f.Center.ID,
			Name:     "Other",
			Email:    "owner@example.com",
			Role:     user.RoleTeacher,
			IsActive: true,
		})
		assert.ErrorIs(t, err, user.ErrUserEmailExists)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("foreign center is invisible", func(t *testing.T) {
		other := seedCenter(t, ctx, 5)
		_, err := repo.GetInCenter(ctx, other.Center.ID, created.ID)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})
}

func TestUserRepository_ReplacePermissions(t *testing.T) {
	ctx := requireDB(t)
	f := seedCenter(t, ctx, 10)
	repo := postgresql.NewUserRepository(testDB)

	assistant, err := repo.Create(ctx, user.User{
		CenterID:  &f.Center.ID,
		TeacherID: &f.Teacher.ID,
		Name:      "Assistant",
		Email:     "assistant@example.com",
		Role:      user.RoleAssistant,
		IsActive:  true,
	})
	require.NoError(t, err)

	first := []user.Permission{user.PermissionStudentsViewOwn, user.PermissionAttendanceManage}
	require.NoError(t, repo.ReplacePermissions(ctx, assistant.ID, first))

	second := []user.Permission{user.PermissionPaymentsView}
	require.NoError(t, repo.ReplacePermissions(ctx, assistant.ID, second))

	got, err := repo.GetPermissions(ctx, assistant.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, second, got)

	require.NoError(t, repo.ReplacePermissions(ctx, assistant.ID, nil))
	got, err = repo.GetPermissions(ctx, assistant.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
