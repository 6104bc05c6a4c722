package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type groupRepositoryImpl struct {
	db *database.DB
}

func NewGroupRepository(db *database.DB) group.GroupRepository {
	return &groupRepositoryImpl{db: db}
}

const groupSelect = `
	SELECT g.id, g.center_id, g.teacher_id, g.name, g.description, g.academic_year_id, g.max_students,
		g.payment_type, g.student_price, g.is_active, g.created_at, g.updated_at,
		t.name,
		(SELECT COUNT(*) FROM students s WHERE s.group_id = g.id)
	FROM groups g
	JOIN users t ON t.id = g.teacher_id
`

func scanGroup(row pgx.Row) (group.Group, error) {
	var g group.Group
	err := row.Scan(
		&g.ID, &g.CenterID, &g.TeacherID, &g.Name, &g.Description, &g.AcademicYearID, &g.MaxStudents,
		&g.PaymentType, &g.StudentPrice, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
		&g.TeacherName,
		&g.StudentCount,
	)
	return g, err
}

func collectGroups(rows pgx.Rows) ([]group.Group, error) {
	defer rows.Close()
	var groups []group.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetByID implements group.GroupRepository.
func (r *groupRepositoryImpl) GetByID(ctx context.Context, centerID, id string) (group.Group, error) {
	q := GetQuerier(ctx, r.db)

	g, err := scanGroup(q.QueryRow(ctx, groupSelect+` WHERE g.id = $1 AND g.center_id = $2`, id, centerID))
	if err != nil {
		return group.Group{}, err
	}
	if err := r.attachSchedules(ctx, []*group.Group{&g}); err != nil {
		return group.Group{}, err
	}
	return g, nil
}

// GetByIDForUpdate implements group.GroupRepository.
func (r *groupRepositoryImpl) GetByIDForUpdate(ctx context.Context, centerID, id string) (group.Group, error) {
	q := GetQuerier(ctx, r.db)

	var locked string
	err := q.QueryRow(ctx, `SELECT id FROM groups WHERE id = $1 AND center_id = $2 FOR UPDATE`, id, centerID).Scan(&locked)
	if err != nil {
		return group.Group{}, err
	}

	// A separate statement so the member count is read after the lock is
	// granted and includes students committed by the previous holder.
	return scanGroup(q.QueryRow(ctx, groupSelect+` WHERE g.id = $1`, locked))
}

// Create implements group.GroupRepository.
func (r *groupRepositoryImpl) Create(ctx context.Context, g group.Group) (group.Group, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO groups (center_id, teacher_id, name, description, academic_year_id, max_students, payment_type, student_price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		g.CenterID, g.TeacherID, g.Name, g.Description, g.AcademicYearID, g.MaxStudents, g.PaymentType, g.StudentPrice, g.IsActive,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if isUniqueViolationOn(err, "groups_teacher_name_key") {
			return group.Group{}, group.ErrGroupNameExists
		}
		return group.Group{}, fmt.Errorf("failed to create group: %w", err)
	}
	return g, nil
}

// Update implements group.GroupRepository.
func (r *groupRepositoryImpl) Update(ctx context.Context, g group.Group) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE groups
		SET name = $1, description = $2, academic_year_id = $3, max_students = $4, payment_type = $5,
			student_price = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8 AND center_id = $9
	`
	tag, err := q.Exec(ctx, query,
		g.Name, g.Description, g.AcademicYearID, g.MaxStudents, g.PaymentType, g.StudentPrice, g.IsActive, g.ID, g.CenterID)
	if err != nil {
		if isUniqueViolationOn(err, "groups_teacher_name_key") {
			return group.ErrGroupNameExists
		}
		return fmt.Errorf("failed to update group with id %s: %w", g.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete implements group.GroupRepository.
func (r *groupRepositoryImpl) Delete(ctx context.Context, centerID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM groups WHERE id = $1 AND center_id = $2`, id, centerID)
	if err != nil {
		return fmt.Errorf("failed to delete group with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List implements group.GroupRepository.
func (r *groupRepositoryImpl) List(ctx context.Context, centerID string, filter group.GroupFilter) ([]group.Group, error) {
	q := GetQuerier(ctx, r.db)

	query := groupSelect + ` WHERE g.center_id = $1`
	args := []interface{}{centerID}
	if filter.TeacherID != nil {
		args = append(args, *filter.TeacherID)
		query += fmt.Sprintf(" AND g.teacher_id = $%d", len(args))
	}
	if filter.AcademicYearID != nil {
		args = append(args, *filter.AcademicYearID)
		query += fmt.Sprintf(" AND g.academic_year_id = $%d", len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(" AND g.is_active = $%d", len(args))
	}
	query += " ORDER BY g.name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	groups, err := collectGroups(rows)
	if err != nil {
		return nil, err
	}

	ptrs := make([]*group.Group, len(groups))
	for i := range groups {
		ptrs[i] = &groups[i]
	}
	if err := r.attachSchedules(ctx, ptrs); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListActiveMonthly implements group.GroupRepository.
func (r *groupRepositoryImpl) ListActiveMonthly(ctx context.Context) ([]group.Group, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, groupSelect+` WHERE g.is_active AND g.payment_type = 'monthly' ORDER BY g.center_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly groups: %w", err)
	}
	return collectGroups(rows)
}

// ReplaceSchedules implements group.GroupRepository.
func (r *groupRepositoryImpl) ReplaceSchedules(ctx context.Context, groupID string, schedules []group.Schedule) ([]group.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM group_schedules WHERE group_id = $1`, groupID); err != nil {
		return nil, fmt.Errorf("failed to clear schedules: %w", err)
	}

	out := make([]group.Schedule, 0, len(schedules))
	for _, s := range schedules {
		s.GroupID = groupID
		err := q.QueryRow(ctx, `
			INSERT INTO group_schedules (group_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, $3::time, $4::time)
			RETURNING id
		`, groupID, s.DayOfWeek, s.StartTime, s.EndTime).Scan(&s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert schedule: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *groupRepositoryImpl) attachSchedules(ctx context.Context, groups []*group.Group) error {
	if len(groups) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	ids := make([]string, len(groups))
	byID := make(map[string]*group.Group, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
		byID[g.ID] = g
		g.Schedules = []group.Schedule{}
	}

	rows, err := q.Query(ctx, `
		SELECT id, group_id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM group_schedules
		WHERE group_id = ANY($1::uuid[])
		ORDER BY day_of_week, start_time
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s group.Schedule
		if err := rows.Scan(&s.ID, &s.GroupID, &s.DayOfWeek, &s.StartTime, &s.EndTime); err != nil {
			return err
		}
		if g, ok := byID[s.GroupID]; ok {
			g.Schedules = append(g.Schedules, s)
		}
	}
	return rows.Err()
}
