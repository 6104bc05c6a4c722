package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type studentRepositoryImpl struct {
	db *database.DB
}

func NewStudentRepository(db *database.DB) student.StudentRepository {
	return &studentRepositoryImpl{db: db}
}

const studentSelect = `
	SELECT s.id, s.center_id, s.teacher_id, s.group_id, s.academic_year_id, s.name, s.phone, s.parent_phone,
		s.notes, s.is_active, s.created_at, s.updated_at, g.name
	FROM students s
	LEFT JOIN groups g ON g.id = s.group_id
`

func scanStudent(row pgx.Row) (student.Student, error) {
	var s student.Student
	err := row.Scan(
		&s.ID, &s.CenterID, &s.TeacherID, &s.GroupID, &s.AcademicYearID, &s.Name, &s.Phone, &s.ParentPhone,
		&s.Notes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt, &s.GroupName,
	)
	return s, err
}

func collectStudents(rows pgx.Rows) ([]student.Student, error) {
	defer rows.Close()
	var students []student.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// GetByID implements student.StudentRepository.
func (r *studentRepositoryImpl) GetByID(ctx context.Context, centerID, id string) (student.Student, error) {
	q := GetQuerier(ctx, r.db)
	return scanStudent(q.QueryRow(ctx, studentSelect+` WHERE s.id = $1 AND s.center_id = $2`, id, centerID))
}

// GetByIDs implements student.StudentRepository.
func (r *studentRepositoryImpl) GetByIDs(ctx context.Context, centerID string, ids []string) ([]student.Student, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, studentSelect+` WHERE s.id = ANY($1::uuid[]) AND s.center_id = $2`, ids, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get students: %w", err)
	}
	return collectStudents(rows)
}

// Create implements student.StudentRepository.
func (r *studentRepositoryImpl) Create(ctx context.Context, s student.Student) (student.Student, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO students (center_id, teacher_id, group_id, academic_year_id, name, phone, parent_phone, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		s.CenterID, s.TeacherID, s.GroupID, s.AcademicYearID, s.Name, s.Phone, s.ParentPhone, s.Notes, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return student.Student{}, fmt.Errorf("failed to create student: %w", err)
	}
	return s, nil
}

// Update implements student.StudentRepository.
func (r *studentRepositoryImpl) Update(ctx context.Context, s student.Student) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE students
		SET academic_year_id = $1, name = $2, phone = $3, parent_phone = $4, notes = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7 AND center_id = $8
	`
	tag, err := q.Exec(ctx, query, s.AcademicYearID, s.Name, s.Phone, s.ParentPhone, s.Notes, s.IsActive, s.ID, s.CenterID)
	if err != nil {
		return fmt.Errorf("failed to update student with id %s: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete implements student.StudentRepository.
func (r *studentRepositoryImpl) Delete(ctx context.Context, centerID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM students WHERE id = $1 AND center_id = $2`, id, centerID)
	if err != nil {
		return fmt.Errorf("failed to delete student with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List implements student.StudentRepository.
func (r *studentRepositoryImpl) List(ctx context.Context, centerID string, filter student.StudentFilter) ([]student.Student, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := ` WHERE s.center_id = $1`
	args := []interface{}{centerID}
	if filter.TeacherID != nil {
		args = append(args, *filter.TeacherID)
		where += fmt.Sprintf(" AND s.teacher_id = $%d", len(args))
	}
	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		where += fmt.Sprintf(" AND s.group_id = $%d", len(args))
	}
	if filter.AcademicYearID != nil {
		args = append(args, *filter.AcademicYearID)
		where += fmt.Sprintf(" AND s.academic_year_id = $%d", len(args))
	}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+*filter.Search+"%")
		where += fmt.Sprintf(" AND (s.name ILIKE $%d OR s.phone ILIKE $%d OR s.parent_phone ILIKE $%d)", len(args), len(args), len(args))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM students s`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := studentSelect + where + fmt.Sprintf(" ORDER BY s.name LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	students, err := collectStudents(rows)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// SetGroup implements student.StudentRepository.
func (r *studentRepositoryImpl) SetGroup(ctx context.Context, centerID string, ids []string, groupID *string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE students SET group_id = $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[]) AND center_id = $3
	`, groupID, ids, centerID)
	if err != nil {
		return fmt.Errorf("failed to set student group: %w", err)
	}
	return nil
}

// ListByGroup implements student.StudentRepository.
func (r *studentRepositoryImpl) ListByGroup(ctx context.Context, centerID, groupID string) ([]student.Student, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, studentSelect+` WHERE s.group_id = $1 AND s.center_id = $2 ORDER BY s.name`, groupID, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group students: %w", err)
	}
	return collectStudents(rows)
}
