package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, center_id, teacher_id, name, email, phone, password_hash, role, google_id, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.CenterID,
		&u.TeacherID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.Role,
		&u.GoogleID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		return user.User{}, err
	}
	return r.withPermissions(ctx, u)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		return user.User{}, err
	}
	return r.withPermissions(ctx, u)
}

// GetInCenter implements user.UserRepository.
func (r *userRepositoryImpl) GetInCenter(ctx context.Context, centerID, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND center_id = $2`
	u, err := scanUser(q.QueryRow(ctx, query, id, centerID))
	if err != nil {
		return user.User{}, err
	}
	return r.withPermissions(ctx, u)
}

func (r *userRepositoryImpl) withPermissions(ctx context.Context, u user.User) (user.User, error) {
	if u.Role != user.RoleAssistant {
		return u, nil
	}
	perms, err := r.GetPermissions(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}
	u.Permissions = perms
	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (center_id, teacher_id, name, email, phone, password_hash, role, google_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.CenterID,
		newUser.TeacherID,
		newUser.Name,
		newUser.Email,
		newUser.Phone,
		newUser.PasswordHash,
		newUser.Role,
		newUser.GoogleID,
		newUser.IsActive,
	))
	if err != nil {
		if isUniqueViolationOn(err, "users_email_key") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET name = $1, phone = $2, password_hash = $3, is_active = $4, teacher_id = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := q.Exec(ctx, query, u.Name, u.Phone, u.PasswordHash, u.IsActive, u.TeacherID, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user with id %s: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete implements user.UserRepository.
func (r *userRepositoryImpl) Delete(ctx context.Context, centerID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1 AND center_id = $2`, id, centerID)
	if err != nil {
		return fmt.Errorf("failed to delete user with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, centerID string, filter user.StaffFilter) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE center_id = $1 AND role IN ('teacher', 'assistant')`
	args := []interface{}{centerID}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.TeacherID != nil {
		args = append(args, *filter.TeacherID)
		query += fmt.Sprintf(" AND (teacher_id = $%d OR id = $%d)", len(args), len(args))
	}
	query += " ORDER BY role DESC, name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		if users[i], err = r.withPermissions(ctx, users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// CountByRole implements user.UserRepository.
func (r *userRepositoryImpl) CountByRole(ctx context.Context, centerID string, role user.Role) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE center_id = $1 AND role = $2`, centerID, role).Scan(&count)
	return count, err
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, id, googleID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE users SET google_id = $1, updated_at = NOW() WHERE id = $2`, googleID, id)
	return err
}

// GetPermissions implements user.UserRepository.
func (r *userRepositoryImpl) GetPermissions(ctx context.Context, userID string) ([]user.Permission, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT permission FROM user_permissions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions: %w", err)
	}
	perms, err := pgx.CollectRows(rows, pgx.RowTo[user.Permission])
	if err != nil {
		return nil, err
	}
	user.SortPermissions(perms)
	return perms, nil
}

// ReplacePermissions implements user.UserRepository. Callers run it inside a
// transaction so the delete and insert land together.
func (r *userRepositoryImpl) ReplacePermissions(ctx context.Context, userID string, perms []user.Permission) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear permissions: %w", err)
	}
	if len(perms) == 0 {
		return nil
	}

	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	_, err := q.Exec(ctx, `
		INSERT INTO user_permissions (user_id, permission)
		SELECT $1, UNNEST($2::text[])
	`, userID, names)
	if err != nil {
		return fmt.Errorf("failed to insert permissions: %w", err)
	}
	return nil
}
