package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type PlanServiceImpl struct {
	planRepo plan.PlanRepository
	tx       database.Transactor
}

func NewPlanService(planRepo plan.PlanRepository, tx database.Transactor) plan.PlanService {
	return &PlanServiceImpl{planRepo: planRepo, tx: tx}
}

// ListActive implements plan.PlanService.
func (s *PlanServiceImpl) ListActive(ctx context.Context) ([]plan.PlanResponse, error) {
	plans, err := s.planRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plan.ToResponses(plans), nil
}

// List implements plan.PlanService.
func (s *PlanServiceImpl) List(ctx context.Context) ([]plan.PlanResponse, error) {
	plans, err := s.planRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plan.ToResponses(plans), nil
}

// GetByID implements plan.PlanService.
func (s *PlanServiceImpl) GetByID(ctx context.Context, id string) (plan.PlanResponse, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return plan.PlanResponse{}, err
	}
	return p.ToResponse(), nil
}

// Create implements plan.PlanService.
func (s *PlanServiceImpl) Create(ctx context.Context, req plan.CreatePlanRequest) (plan.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return plan.PlanResponse{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	if req.IsDefault && !isActive {
		return plan.PlanResponse{}, plan.ErrCannotDeactivateDefaultPlan
	}

	var created plan.Plan
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.planRepo.Create(ctx, plan.Plan{
			Name:          req.Name,
			Description:   req.Description,
			MaxStudents:   req.MaxStudents,
			MaxTeachers:   req.MaxTeachers,
			MaxAssistants: req.MaxAssistants,
			Price:         req.Price,
			DurationDays:  req.DurationDays,
			IsActive:      isActive,
			IsTrial:       req.IsTrial,
		})
		if err != nil {
			return err
		}
		if req.IsDefault {
			if err := s.makeDefault(ctx, created.ID); err != nil {
				return err
			}
			created.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return plan.PlanResponse{}, err
	}
	return created.ToResponse(), nil
}

// Update implements plan.PlanService.
func (s *PlanServiceImpl) Update(ctx context.Context, req plan.UpdatePlanRequest) (plan.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return plan.PlanResponse{}, err
	}

	current, err := s.get(ctx, req.ID)
	if err != nil {
		return plan.PlanResponse{}, err
	}
	if current.IsDefault && req.IsActive != nil && !*req.IsActive {
		return plan.PlanResponse{}, plan.ErrCannotDeactivateDefaultPlan
	}

	if err := s.planRepo.Update(ctx, req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.PlanResponse{}, plan.ErrPlanNotFound
		}
		return plan.PlanResponse{}, err
	}
	return s.GetByID(ctx, req.ID)
}

// SetDefault implements plan.PlanService.
func (s *PlanServiceImpl) SetDefault(ctx context.Context, id string) (plan.PlanResponse, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return plan.PlanResponse{}, err
	}
	if !p.IsActive {
		return plan.PlanResponse{}, plan.ErrPlanInactive
	}

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.makeDefault(ctx, id)
	}); err != nil {
		return plan.PlanResponse{}, err
	}

	slog.Info("default plan changed", "plan_id", id, "plan", p.Name)
	p.IsDefault = true
	return p.ToResponse(), nil
}

// Delete implements plan.PlanService.
func (s *PlanServiceImpl) Delete(ctx context.Context, id string) error {
	p, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if p.IsDefault {
		return plan.ErrCannotDeleteDefaultPlan
	}

	active, err := s.planRepo.CountActiveSubscriptions(ctx, id)
	if err != nil {
		return fmt.Errorf("count subscriptions: %w", err)
	}
	if active > 0 {
		return plan.ErrPlanInUse
	}

	if err := s.planRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.ErrPlanNotFound
		}
		return err
	}
	return nil
}

// makeDefault clears every default flag, then sets id. Must run in a transaction.
func (s *PlanServiceImpl) makeDefault(ctx context.Context, id string) error {
	if err := s.planRepo.ClearDefault(ctx); err != nil {
		return fmt.Errorf("clear default plan: %w", err)
	}
	if err := s.planRepo.MarkDefault(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.ErrPlanNotFound
		}
		return fmt.Errorf("mark default plan: %w", err)
	}
	return nil
}

func (s *PlanServiceImpl) get(ctx context.Context, id string) (plan.Plan, error) {
	p, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.Plan{}, plan.ErrPlanNotFound
		}
		return plan.Plan{}, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}
