package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
	serviceSubscription "github.com/tutora/tutora-backend/internal/service/subscription"
)

func TestDashboardService_GetDashboard(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	basic := store.AddPlan(plan.Plan{
		Name: "Basic", MaxStudents: 10, MaxTeachers: 2, MaxAssistants: 2,
		Price: decimal.NewFromInt(100), DurationDays: 30, IsActive: true,
	})
	c, owner := store.AddCenter("Nile Center", &basic)
	hassan := store.AddUser(user.User{CenterID: &c.ID, Name: "Mr. Hassan", Role: user.RoleTeacher})
	noha := store.AddUser(user.User{CenterID: &c.ID, Name: "Ms. Noha", Role: user.RoleTeacher})
	store.AddUser(user.User{CenterID: &c.ID, TeacherID: &hassan.ID, Name: "Sara", Role: user.RoleAssistant})

	physics := store.AddGroup(group.Group{
		CenterID: c.ID, TeacherID: hassan.ID, Name: "Physics", MaxStudents: 10,
		PaymentType: group.PaymentTypePerSession, StudentPrice: decimal.NewFromInt(50),
	})
	store.AddGroup(group.Group{
		CenterID: c.ID, TeacherID: noha.ID, Name: "Math", MaxStudents: 10,
		PaymentType: group.PaymentTypeMonthly, StudentPrice: decimal.NewFromInt(300),
	})
	omar := store.AddStudent(student.Student{CenterID: c.ID, TeacherID: hassan.ID, GroupID: &physics.ID, Name: "Omar"})
	karim := store.AddStudent(student.Student{CenterID: c.ID, TeacherID: hassan.ID, GroupID: &physics.ID, Name: "Karim"})
	store.AddStudent(student.Student{CenterID: c.ID, TeacherID: noha.ID, Name: "Mona"})

	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, a := range []attendance.Attendance{
		{CenterID: c.ID, StudentID: omar.ID, GroupID: physics.ID, Date: today, IsPresent: true},
		{CenterID: c.ID, StudentID: karim.ID, GroupID: physics.ID, Date: today, IsPresent: false},
		{CenterID: c.ID, StudentID: karim.ID, GroupID: physics.ID, Date: today.AddDate(0, 0, -7), IsPresent: true},
	} {
		_, err := store.Attendances().Upsert(ctx, a)
		require.NoError(t, err)
	}
	_, err := store.Payments().EnsureSessionPayment(ctx, payment.Payment{
		CenterID: c.ID, StudentID: omar.ID, GroupID: physics.ID,
		PaymentType: group.PaymentTypePerSession, RelatedDate: today, Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	svc := NewDashboardService(store.Dashboard(), store.Attendances(), store.Payments(),
		serviceSubscription.NewSubscriptionService(store.Subscriptions(), store.Plans(), store)).(*DashboardServiceImpl)
	svc.now = func() time.Time { return today.Add(15 * time.Hour) }

	t.Run("center admin", func(t *testing.T) {
		resp, err := svc.GetDashboard(ctx, servicetest.ScopeOf(owner))
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Counts.Students)
		assert.Equal(t, 2, resp.Counts.Groups)
		assert.Equal(t, 2, resp.Counts.Teachers)
		assert.Equal(t, 1, resp.Counts.Assistants)

		assert.Equal(t, "2026-03-02", resp.Attendance.Date)
		assert.Equal(t, 1, resp.Attendance.Present)
		assert.Equal(t, 2, resp.Attendance.Total)
		assert.InDelta(t, 50.0, resp.Attendance.RatePercent, 0.001)

		assert.Equal(t, 1, resp.Unpaid.Count)
		assert.True(t, resp.Unpaid.Total.Equal(decimal.NewFromInt(50)))

		require.NotNil(t, resp.Subscription)
		assert.Equal(t, "Basic", resp.Subscription.Plan.Name)
	})

	t.Run("teacher sees own numbers", func(t *testing.T) {
		resp, err := svc.GetDashboard(ctx, servicetest.ScopeOf(noha))
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Counts.Students)
		assert.Equal(t, 1, resp.Counts.Groups)
		assert.Equal(t, 1, resp.Counts.Teachers)
		assert.Zero(t, resp.Counts.Assistants)
		assert.Zero(t, resp.Unpaid.Count)
		assert.Nil(t, resp.Subscription)
	})

	t.Run("no center", func(t *testing.T) {
		_, err := svc.GetDashboard(ctx, tenant.Scope{UserID: "platform", Role: user.RoleAdmin})
		assert.ErrorIs(t, err, tenant.ErrNoCenter)
	})
}

func TestDashboardService_NoSubscription(t *testing.T) {
	store := servicetest.NewStore()
	_, owner := store.AddCenter("Nile Center", nil)
	svc := NewDashboardService(store.Dashboard(), store.Attendances(), store.Payments(),
		serviceSubscription.NewSubscriptionService(store.Subscriptions(), store.Plans(), store))

	resp, err := svc.GetDashboard(context.Background(), servicetest.ScopeOf(owner))
	require.NoError(t, err)
	assert.Nil(t, resp.Subscription)
	assert.Zero(t, resp.Attendance.RatePercent)
}
