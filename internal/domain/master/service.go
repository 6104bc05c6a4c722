package master

import (
	"context"

	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
)

type MasterService interface {
	// Governorate operations
	ListGovernorates(ctx context.Context) ([]governorate.GovernorateResponse, error)

	// Academic year operations
	CreateAcademicYear(ctx context.Context, req academicyear.CreateAcademicYearRequest) (academicyear.AcademicYearResponse, error)
	ListAcademicYears(ctx context.Context) ([]academicyear.AcademicYearResponse, error)
	DeleteAcademicYear(ctx context.Context, id int) error
}
