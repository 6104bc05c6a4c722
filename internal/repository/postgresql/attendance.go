package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceSelect = `
	SELECT a.id, a.center_id, a.student_id, a.group_id, a.date, a.is_present, a.notes, a.recorded_by,
		a.created_at, a.updated_at, s.name, g.name
	FROM attendances a
	JOIN students s ON s.id = a.student_id
	JOIN groups g ON g.id = a.group_id
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.CenterID, &a.StudentID, &a.GroupID, &a.Date, &a.IsPresent, &a.Notes, &a.RecordedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.StudentName, &a.GroupName,
	)
	return a, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()
	var list []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// rangeClause appends the optional date bounds of r to where.
func rangeClause(where string, args []interface{}, column string, r attendance.DateRange) (string, []interface{}) {
	if r.From != nil {
		args = append(args, *r.From)
		where += fmt.Sprintf(" AND %s >= $%d", column, len(args))
	}
	if r.To != nil {
		args = append(args, *r.To)
		where += fmt.Sprintf(" AND %s <= $%d", column, len(args))
	}
	return where, args
}

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepository) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (center_id, student_id, group_id, date, is_present, notes, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT attendances_session_key DO UPDATE
		SET is_present = EXCLUDED.is_present,
			notes = EXCLUDED.notes,
			recorded_by = EXCLUDED.recorded_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		a.CenterID, a.StudentID, a.GroupID, a.Date, a.IsPresent, a.Notes, a.RecordedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return a, nil
}

// ListByGroupDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByGroupDate(ctx context.Context, centerID, groupID string, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, attendanceSelect+`
		WHERE a.center_id = $1 AND a.group_id = $2 AND a.date = $3
		ORDER BY s.name
	`, centerID, groupID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list group attendance: %w", err)
	}
	return collectAttendances(rows)
}

// ListByStudent implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByStudent(ctx context.Context, centerID, studentID string, dr attendance.DateRange) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	where, args := rangeClause(` WHERE a.center_id = $1 AND a.student_id = $2`, []interface{}{centerID, studentID}, "a.date", dr)
	rows, err := q.Query(ctx, attendanceSelect+where+` ORDER BY a.date DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list student attendance: %w", err)
	}
	return collectAttendances(rows)
}

// SummaryByGroup implements attendance.AttendanceRepository.
func (r *attendanceRepository) SummaryByGroup(ctx context.Context, centerID, groupID string, dr attendance.DateRange) ([]attendance.StudentSummary, error) {
	q := GetQuerier(ctx, r.db)

	where, args := rangeClause(` WHERE a.center_id = $1 AND a.group_id = $2`, []interface{}{centerID, groupID}, "a.date", dr)
	query := `
		SELECT a.student_id, s.name,
			COUNT(*) FILTER (WHERE a.is_present),
			COUNT(*) FILTER (WHERE NOT a.is_present)
		FROM attendances a
		JOIN students s ON s.id = a.student_id
	` + where + `
		GROUP BY a.student_id, s.name
		ORDER BY s.name
	`
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attendance: %w", err)
	}
	defer rows.Close()

	var summary []attendance.StudentSummary
	for rows.Next() {
		var s attendance.StudentSummary
		if err := rows.Scan(&s.StudentID, &s.StudentName, &s.Present, &s.Absent); err != nil {
			return nil, err
		}
		summary = append(summary, s)
	}
	return summary, rows.Err()
}

// CountForDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) CountForDate(ctx context.Context, centerID string, date time.Time) (int, int, error) {
	q := GetQuerier(ctx, r.db)

	var present, total int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_present), COUNT(*)
		FROM attendances
		WHERE center_id = $1 AND date = $2
	`, centerID, date).Scan(&present, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return present, total, nil
}
