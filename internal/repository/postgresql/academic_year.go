package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type academicYearRepositoryImpl struct {
	db *database.DB
}

func NewAcademicYearRepository(db *database.DB) academicyear.AcademicYearRepository {
	return &academicYearRepositoryImpl{db: db}
}

// Create implements academicyear.AcademicYearRepository.
func (r *academicYearRepositoryImpl) Create(ctx context.Context, year academicyear.AcademicYear) (academicyear.AcademicYear, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO academic_years (name, sort_order)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query, year.Name, year.SortOrder).Scan(&year.ID, &year.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return academicyear.AcademicYear{}, academicyear.ErrAcademicYearNameExists
		}
		return academicyear.AcademicYear{}, fmt.Errorf("failed to create academic year: %w", err)
	}
	return year, nil
}

// GetByID implements academicyear.AcademicYearRepository.
func (r *academicYearRepositoryImpl) GetByID(ctx context.Context, id int) (academicyear.AcademicYear, error) {
	q := GetQuerier(ctx, r.db)

	var year academicyear.AcademicYear
	err := q.QueryRow(ctx, `SELECT id, name, sort_order, created_at FROM academic_years WHERE id = $1`, id).
		Scan(&year.ID, &year.Name, &year.SortOrder, &year.CreatedAt)
	if err != nil {
		return academicyear.AcademicYear{}, err
	}
	return year, nil
}

// List implements academicyear.AcademicYearRepository.
func (r *academicYearRepositoryImpl) List(ctx context.Context) ([]academicyear.AcademicYear, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, name, sort_order, created_at FROM academic_years ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list academic years: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[academicyear.AcademicYear])
}

// Delete implements academicyear.AcademicYearRepository.
func (r *academicYearRepositoryImpl) Delete(ctx context.Context, id int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM academic_years WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return academicyear.ErrAcademicYearInUse
		}
		return fmt.Errorf("failed to delete academic year %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
