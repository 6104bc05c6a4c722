package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
)

type PaymentServiceImpl struct {
	paymentRepo payment.PaymentRepository
	groupRepo   group.GroupRepository
	studentRepo student.StudentRepository
	now         func() time.Time
}

func NewPaymentService(paymentRepo payment.PaymentRepository, groupRepo group.GroupRepository, studentRepo student.StudentRepository) payment.PaymentService {
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		groupRepo:   groupRepo,
		studentRepo: studentRepo,
		now:         time.Now,
	}
}

// List implements payment.PaymentService.
func (s *PaymentServiceImpl) List(ctx context.Context, scope tenant.Scope, filter payment.PaymentFilter) (payment.ListPaymentResponse, error) {
	if err := scope.Require(user.PermissionPaymentsView); err != nil {
		return payment.ListPaymentResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return payment.ListPaymentResponse{}, err
	}
	if owner := scope.OwnerTeacherID(); owner != nil {
		filter.TeacherID = owner
	}
	filter.Normalize()

	payments, total, err := s.paymentRepo.List(ctx, scope.CenterID, filter)
	if err != nil {
		return payment.ListPaymentResponse{}, err
	}

	resp := payment.ListPaymentResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Payments:   make([]payment.PaymentResponse, len(payments)),
	}
	for i := range payments {
		resp.Payments[i] = payments[i].ToResponse()
	}
	return resp, nil
}

// GetByID implements payment.PaymentService.
func (s *PaymentServiceImpl) GetByID(ctx context.Context, scope tenant.Scope, id string) (payment.PaymentResponse, error) {
	if err := scope.Require(user.PermissionPaymentsView); err != nil {
		return payment.PaymentResponse{}, err
	}
	p, err := s.get(ctx, scope, id)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return p.ToResponse(), nil
}

// CreateMonthly implements payment.PaymentService.
func (s *PaymentServiceImpl) CreateMonthly(ctx context.Context, scope tenant.Scope, req payment.CreateMonthlyRequest) (payment.PaymentResponse, error) {
	if err := scope.Require(user.PermissionPaymentsManage); err != nil {
		return payment.PaymentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payment.PaymentResponse{}, err
	}

	g, err := s.getGroup(ctx, scope, req.GroupID)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	if g.PaymentType != group.PaymentTypeMonthly {
		return payment.PaymentResponse{}, payment.ErrNotMonthlyGroup
	}

	st, err := s.studentRepo.GetByID(ctx, scope.CenterID, req.StudentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.PaymentResponse{}, student.ErrStudentNotFound
		}
		return payment.PaymentResponse{}, fmt.Errorf("failed to get student: %w", err)
	}
	if st.TeacherID != g.TeacherID {
		return payment.PaymentResponse{}, student.ErrStudentNotFound
	}

	amount := g.StudentPrice
	if req.Amount != nil {
		amount = *req.Amount
	}

	created, err := s.paymentRepo.CreateMonthly(ctx, payment.Payment{
		CenterID:    scope.CenterID,
		StudentID:   st.ID,
		GroupID:     g.ID,
		PaymentType: group.PaymentTypeMonthly,
		RelatedDate: payment.MonthStart(req.MonthDate()),
		Amount:      amount,
		Notes:       req.Notes,
	})
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	created.StudentName = st.Name
	created.GroupName = g.Name
	return created.ToResponse(), nil
}

// MarkPaid implements payment.PaymentService.
func (s *PaymentServiceImpl) MarkPaid(ctx context.Context, scope tenant.Scope, id string) (payment.PaymentResponse, error) {
	return s.setPaid(ctx, scope, id, true)
}

// MarkUnpaid implements payment.PaymentService.
func (s *PaymentServiceImpl) MarkUnpaid(ctx context.Context, scope tenant.Scope, id string) (payment.PaymentResponse, error) {
	return s.setPaid(ctx, scope, id, false)
}

func (s *PaymentServiceImpl) setPaid(ctx context.Context, scope tenant.Scope, id string, paid bool) (payment.PaymentResponse, error) {
	if err := scope.Require(user.PermissionPaymentsManage); err != nil {
		return payment.PaymentResponse{}, err
	}
	p, err := s.get(ctx, scope, id)
	if err != nil {
		return payment.PaymentResponse{}, err
	}

	var paidAt *time.Time
	switch {
	case paid && p.IsPaid:
		return payment.PaymentResponse{}, payment.ErrAlreadyPaid
	case !paid && !p.IsPaid:
		return payment.PaymentResponse{}, payment.ErrNotPaid
	case paid:
		now := s.now().UTC()
		paidAt = &now
	}

	if err := s.paymentRepo.SetPaid(ctx, scope.CenterID, p.ID, paidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.PaymentResponse{}, payment.ErrPaymentNotFound
		}
		return payment.PaymentResponse{}, err
	}
	p.IsPaid = paid
	p.PaidAt = paidAt
	return p.ToResponse(), nil
}

// Delete implements payment.PaymentService.
func (s *PaymentServiceImpl) Delete(ctx context.Context, scope tenant.Scope, id string) error {
	if err := scope.Require(user.PermissionPaymentsManage); err != nil {
		return err
	}
	p, err := s.get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.paymentRepo.Delete(ctx, scope.CenterID, p.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.ErrPaymentNotFound
		}
		return err
	}
	return nil
}

// GenerateMonthlyDues implements payment.PaymentService. It runs from the
// scheduler and is safe to repeat within a month.
func (s *PaymentServiceImpl) GenerateMonthlyDues(ctx context.Context, month time.Time) (int64, error) {
	n, err := s.paymentRepo.GenerateMonthlyDues(ctx, payment.MonthStart(month))
	if err != nil {
		return 0, fmt.Errorf("failed to generate monthly dues: %w", err)
	}
	slog.Info("monthly dues generated", "month", payment.MonthStart(month).Format("2006-01"), "created", n)
	return n, nil
}

// get loads a payment whose group the caller may see.
func (s *PaymentServiceImpl) get(ctx context.Context, scope tenant.Scope, id string) (payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, scope.CenterID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	if scope.OwnerTeacherID() != nil {
		if _, err := s.getGroup(ctx, scope, p.GroupID); err != nil {
			if errors.Is(err, group.ErrGroupNotFound) {
				return payment.Payment{}, payment.ErrPaymentNotFound
			}
			return payment.Payment{}, err
		}
	}
	return p, nil
}

func (s *PaymentServiceImpl) getGroup(ctx context.Context, scope tenant.Scope, id string) (group.Group, error) {
	g, err := s.groupRepo.GetByID(ctx, scope.CenterID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group.Group{}, group.ErrGroupNotFound
		}
		return group.Group{}, fmt.Errorf("failed to get group: %w", err)
	}
	if !scope.OwnsTeacherRow(g.TeacherID) {
		return group.Group{}, group.ErrGroupNotFound
	}
	return g, nil
}
