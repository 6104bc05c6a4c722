package academicyear

import "context"

type AcademicYearRepository interface {
	Create(ctx context.Context, year AcademicYear) (AcademicYear, error)
	GetByID(ctx context.Context, id int) (AcademicYear, error)
	List(ctx context.Context) ([]AcademicYear, error)
	Delete(ctx context.Context, id int) error
}
