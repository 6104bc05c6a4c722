package master

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/master"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
)

type masterServiceImpl struct {
	governorateRepo  governorate.GovernorateRepository
	academicYearRepo academicyear.AcademicYearRepository
}

func NewMasterService(
	governorateRepo governorate.GovernorateRepository,
	academicYearRepo academicyear.AcademicYearRepository,
) master.MasterService {
	return &masterServiceImpl{
		governorateRepo:  governorateRepo,
		academicYearRepo: academicYearRepo,
	}
}

// ==================== GOVERNORATE OPERATIONS ====================

func (s *masterServiceImpl) ListGovernorates(ctx context.Context) ([]governorate.GovernorateResponse, error) {
	govs, err := s.governorateRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]governorate.GovernorateResponse, len(govs))
	for i := range govs {
		responses[i] = govs[i].ToResponse()
	}
	return responses, nil
}

// ==================== ACADEMIC YEAR OPERATIONS ====================

func (s *masterServiceImpl) CreateAcademicYear(ctx context.Context, req academicyear.CreateAcademicYearRequest) (academicyear.AcademicYearResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return academicyear.AcademicYearResponse{}, err
	}

	created, err := s.academicYearRepo.Create(ctx, academicyear.AcademicYear{
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, academicyear.ErrAcademicYearNameExists) {
			return academicyear.AcademicYearResponse{}, err
		}
		return academicyear.AcademicYearResponse{}, fmt.Errorf("failed to create academic year: %w", err)
	}
	return created.ToResponse(), nil
}

func (s *masterServiceImpl) ListAcademicYears(ctx context.Context) ([]academicyear.AcademicYearResponse, error) {
	years, err := s.academicYearRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]academicyear.AcademicYearResponse, len(years))
	for i := range years {
		responses[i] = years[i].ToResponse()
	}
	return responses, nil
}

func (s *masterServiceImpl) DeleteAcademicYear(ctx context.Context, id int) error {
	if err := s.academicYearRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return academicyear.ErrAcademicYearNotFound
		}
		return err
	}
	return nil
}
