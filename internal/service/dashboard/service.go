package dashboard

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/domain/dashboard"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	attendanceRepo      attendance.AttendanceRepository
	paymentRepo         payment.PaymentRepository
	subscriptionService subscription.SubscriptionService
	now                 func() time.Time
}

func NewDashboardService(
	repo dashboard.DashboardRepository,
	attendanceRepo attendance.AttendanceRepository,
	paymentRepo payment.PaymentRepository,
	subscriptionService subscription.SubscriptionService,
) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		attendanceRepo:      attendanceRepo,
		paymentRepo:         paymentRepo,
		subscriptionService: subscriptionService,
		now:                 time.Now,
	}
}

// GetDashboard gathers the dashboard sections concurrently. Teachers and
// assistants see their teacher's numbers; the subscription section is shown
// to center admins only.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, scope tenant.Scope) (dashboard.DashboardResponse, error) {
	if err := scope.RequireCenter(); err != nil {
		return dashboard.DashboardResponse{}, err
	}
	owner := scope.OwnerTeacherID()
	today := s.now().UTC().Truncate(24 * time.Hour)

	var resp dashboard.DashboardResponse
	resp.Attendance.Date = today.Format("2006-01-02")

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Entity counts
	g.Go(func() error {
		counts, err := s.GetCounts(gCtx, scope.CenterID, owner)
		if err != nil {
			return err
		}
		resp.Counts = dashboard.CountsResponse{
			Students:   counts.Students,
			Groups:     counts.Groups,
			Teachers:   counts.Teachers,
			Assistants: counts.Assistants,
		}
		return nil
	})

	// 2. Today's attendance
	g.Go(func() error {
		present, total, err := s.attendanceRepo.CountForDate(gCtx, scope.CenterID, today)
		if err != nil {
			return err
		}
		resp.Attendance.Present = present
		resp.Attendance.Total = total
		if total > 0 {
			resp.Attendance.RatePercent = math.Round(float64(present)/float64(total)*10000) / 100
		}
		return nil
	})

	// 3. Outstanding payments
	g.Go(func() error {
		total, count, err := s.paymentRepo.UnpaidTotal(gCtx, scope.CenterID, owner)
		if err != nil {
			return err
		}
		resp.Unpaid = dashboard.UnpaidResponse{Count: count, Total: total}
		return nil
	})

	// 4. Subscription and usage
	if scope.IsCenterAdmin() {
		g.Go(func() error {
			sub, err := s.subscriptionService.GetMySubscription(gCtx, scope)
			if err != nil {
				if errors.Is(err, subscription.ErrSubscriptionNotFound) {
					return nil
				}
				return err
			}
			resp.Subscription = &sub
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dashboard.DashboardResponse{}, err
	}
	return resp, nil
}
