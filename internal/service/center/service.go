package center

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
)

type CenterServiceImpl struct {
	center.CenterRepository
	governorateRepo governorate.GovernorateRepository
}

func NewCenterService(centerRepo center.CenterRepository, governorateRepo governorate.GovernorateRepository) center.CenterService {
	return &CenterServiceImpl{
		CenterRepository: centerRepo,
		governorateRepo:  governorateRepo,
	}
}

// GetMyCenter implements center.CenterService.
func (c *CenterServiceImpl) GetMyCenter(ctx context.Context, scope tenant.Scope) (center.CenterResponse, error) {
	if err := scope.RequireCenter(); err != nil {
		return center.CenterResponse{}, err
	}

	data, err := c.CenterRepository.GetByID(ctx, scope.CenterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return center.CenterResponse{}, center.ErrCenterNotFound
		}
		return center.CenterResponse{}, fmt.Errorf("failed to get center by ID: %w", err)
	}
	return data.ToResponse(), nil
}

// UpdateMyCenter implements center.CenterService.
func (c *CenterServiceImpl) UpdateMyCenter(ctx context.Context, scope tenant.Scope, req center.UpdateCenterRequest) (center.CenterResponse, error) {
	if err := scope.RequireCenterAdmin(); err != nil {
		return center.CenterResponse{}, err
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return center.CenterResponse{}, center.ErrInvalidCenterName
		}
		req.Name = &trimmed
	}
	if err := req.Validate(); err != nil {
		return center.CenterResponse{}, err
	}

	if req.GovernorateID != nil {
		ok, err := c.governorateRepo.Exists(ctx, *req.GovernorateID)
		if err != nil {
			return center.CenterResponse{}, err
		}
		if !ok {
			return center.CenterResponse{}, governorate.ErrGovernorateNotFound
		}
	}

	if err := c.CenterRepository.Update(ctx, scope.CenterID, req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return center.CenterResponse{}, center.ErrCenterNotFound
		}
		return center.CenterResponse{}, fmt.Errorf("failed to update center: %w", err)
	}
	return c.GetMyCenter(ctx, scope)
}

// List implements center.CenterService.
func (c *CenterServiceImpl) List(ctx context.Context) ([]center.CenterResponse, error) {
	centers, err := c.CenterRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	out := make([]center.CenterResponse, len(centers))
	for i := range centers {
		out[i] = centers[i].ToResponse()
	}
	return out, nil
}

// Delete implements center.CenterService. Every tenant row goes with the center.
func (c *CenterServiceImpl) Delete(ctx context.Context, id string) error {
	if err := c.CenterRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return center.ErrCenterNotFound
		}
		return fmt.Errorf("failed to delete center: %w", err)
	}
	slog.Info("center deleted", "center_id", id)
	return nil
}
