package upgrade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/upgrade"
	"github.com/tutora/tutora-backend/internal/pkg/database"
	"github.com/tutora/tutora-backend/internal/pkg/email"
)

type UpgradeServiceImpl struct {
	tx               database.Transactor
	upgradeRepo      upgrade.UpgradeRepository
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         plan.PlanRepository
	emailService     email.EmailService
	now              func() time.Time
}

func NewUpgradeService(
	tx database.Transactor,
	upgradeRepo upgrade.UpgradeRepository,
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo plan.PlanRepository,
	emailService email.EmailService,
) upgrade.UpgradeService {
	return &UpgradeServiceImpl{
		tx:               tx,
		upgradeRepo:      upgradeRepo,
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		emailService:     emailService,
		now:              time.Now,
	}
}

// Create implements upgrade.UpgradeService. A user holds at most one pending request.
func (s *UpgradeServiceImpl) Create(ctx context.Context, scope tenant.Scope, req upgrade.CreateUpgradeRequest) (upgrade.UpgradeRequestResponse, error) {
	if err := scope.RequireCenterAdmin(); err != nil {
		return upgrade.UpgradeRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return upgrade.UpgradeRequestResponse{}, err
	}

	pending, err := s.upgradeRepo.HasPending(ctx, scope.UserID)
	if err != nil {
		return upgrade.UpgradeRequestResponse{}, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return upgrade.UpgradeRequestResponse{}, upgrade.ErrPendingExists
	}

	requested, err := s.activePlan(ctx, req.RequestedPlanID)
	if err != nil {
		return upgrade.UpgradeRequestResponse{}, err
	}

	var currentPlanID *string
	sub, err := s.subscriptionRepo.GetActiveByCenter(ctx, scope.CenterID)
	switch {
	case err == nil:
		if sub.PlanID == requested.ID {
			return upgrade.UpgradeRequestResponse{}, upgrade.ErrSamePlan
		}
		currentPlanID = &sub.PlanID
	case !errors.Is(err, pgx.ErrNoRows):
		return upgrade.UpgradeRequestResponse{}, fmt.Errorf("failed to get subscription: %w", err)
	}

	created, err := s.upgradeRepo.Create(ctx, upgrade.PlanUpgradeRequest{
		CenterID:        scope.CenterID,
		UserID:          scope.UserID,
		CurrentPlanID:   currentPlanID,
		RequestedPlanID: requested.ID,
		Status:          upgrade.StatusPending,
		Notes:           req.Notes,
	})
	if err != nil {
		return upgrade.UpgradeRequestResponse{}, err
	}

	slog.Info("plan upgrade requested", "center_id", scope.CenterID, "request_id", created.ID, "plan_id", requested.ID)
	return s.GetByID(ctx, created.ID)
}

// ListMine implements upgrade.UpgradeService.
func (s *UpgradeServiceImpl) ListMine(ctx context.Context, scope tenant.Scope) ([]upgrade.UpgradeRequestResponse, error) {
	if err := scope.RequireCenterAdmin(); err != nil {
		return nil, err
	}
	reqs, err := s.upgradeRepo.ListByCenter(ctx, scope.CenterID)
	if err != nil {
		return nil, err
	}
	return upgrade.ToResponses(reqs), nil
}

// List implements upgrade.UpgradeService.
func (s *UpgradeServiceImpl) List(ctx context.Context, filter upgrade.UpgradeFilter) ([]upgrade.UpgradeRequestResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, upgrade.ErrInvalidStatus
	}
	reqs, err := s.upgradeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return upgrade.ToResponses(reqs), nil
}

// GetByID implements upgrade.UpgradeService.
func (s *UpgradeServiceImpl) GetByID(ctx context.Context, id string) (upgrade.UpgradeRequestResponse, error) {
	r, err := s.upgradeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return upgrade.UpgradeRequestResponse{}, upgrade.ErrRequestNotFound
		}
		return upgrade.UpgradeRequestResponse{}, fmt.Errorf("failed to get upgrade request: %w", err)
	}
	return r.ToResponse(), nil
}

// Approve implements upgrade.UpgradeService. The requester's active
// subscription moves onto the requested plan with a fresh window starting
// now; a center without one gets a new subscription.
func (s *UpgradeServiceImpl) Approve(ctx context.Context, adminID string, req upgrade.DecisionRequest) (upgrade.UpgradeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return upgrade.UpgradeRequestResponse{}, err
	}
	now := s.now().UTC()

	var (
		handled upgrade.PlanUpgradeRequest
		end     time.Time
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.pendingForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		p, err := s.activePlan(ctx, r.RequestedPlanID)
		if err != nil {
			return err
		}
		end = p.EndDate(now)

		sub, err := s.subscriptionRepo.GetActiveByCenter(ctx, r.CenterID)
		switch {
		case err == nil:
			if err := s.subscriptionRepo.UpdatePlan(ctx, sub.ID, p.ID, p.MaxStudents, now, &end); err != nil {
				return err
			}
		case errors.Is(err, pgx.ErrNoRows):
			if _, err := s.subscriptionRepo.Create(ctx, subscription.New(r.CenterID, p, now)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("failed to get subscription: %w", err)
		}

		ok, err := s.upgradeRepo.Resolve(ctx, r.ID, upgrade.StatusApproved, adminID, req.AdminNotes, &now)
		if err != nil {
			return err
		}
		if !ok {
			return upgrade.ErrAlreadyHandled
		}
		handled = r
		return nil
	})
	if err != nil {
		return upgrade.UpgradeRequestResponse{}, err
	}

	slog.Info("plan upgrade approved", "request_id", handled.ID, "center_id", handled.CenterID, "admin_id", adminID)
	s.notify(handled, true, req.AdminNotes, end.Format("2006-01-02"))
	return s.GetByID(ctx, handled.ID)
}

// Reject implements upgrade.UpgradeService. The subscription is left untouched.
func (s *UpgradeServiceImpl) Reject(ctx context.Context, adminID string, req upgrade.DecisionRequest) (upgrade.UpgradeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return upgrade.UpgradeRequestResponse{}, err
	}

	var handled upgrade.PlanUpgradeRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.pendingForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		ok, err := s.upgradeRepo.Resolve(ctx, r.ID, upgrade.StatusRejected, adminID, req.AdminNotes, nil)
		if err != nil {
			return err
		}
		if !ok {
			return upgrade.ErrAlreadyHandled
		}
		handled = r
		return nil
	})
	if err != nil {
		return upgrade.UpgradeRequestResponse{}, err
	}

	slog.Info("plan upgrade rejected", "request_id", handled.ID, "center_id", handled.CenterID, "admin_id", adminID)
	s.notify(handled, false, req.AdminNotes, "")
	return s.GetByID(ctx, handled.ID)
}

func (s *UpgradeServiceImpl) pendingForUpdate(ctx context.Context, id string) (upgrade.PlanUpgradeRequest, error) {
	r, err := s.upgradeRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return upgrade.PlanUpgradeRequest{}, upgrade.ErrRequestNotFound
		}
		return upgrade.PlanUpgradeRequest{}, fmt.Errorf("failed to get upgrade request: %w", err)
	}
	if !r.IsPending() {
		return upgrade.PlanUpgradeRequest{}, upgrade.ErrAlreadyHandled
	}
	return r, nil
}

func (s *UpgradeServiceImpl) activePlan(ctx context.Context, id string) (plan.Plan, error) {
	p, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.Plan{}, upgrade.ErrPlanUnavailable
		}
		return plan.Plan{}, fmt.Errorf("failed to get plan: %w", err)
	}
	if !p.IsActive {
		return plan.Plan{}, upgrade.ErrPlanUnavailable
	}
	return p, nil
}

// notify mails the requester. Failures are logged and never undo the decision.
func (s *UpgradeServiceImpl) notify(r upgrade.PlanUpgradeRequest, approved bool, notes *string, endDate string) {
	if s.emailService == nil || r.UserEmail == "" {
		return
	}
	data := email.UpgradeDecision{
		UserName:   r.UserName,
		CenterName: r.CenterName,
		PlanName:   r.RequestedPlanName,
		Approved:   approved,
		EndDate:    endDate,
	}
	if notes != nil {
		data.AdminNotes = *notes
	}
	if err := s.emailService.SendUpgradeDecision(r.UserEmail, data); err != nil {
		slog.Error("failed to send upgrade decision email", "request_id", r.ID, "error", err)
	}
}
