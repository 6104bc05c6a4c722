package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
)

func testPlans(store *servicetest.Store) (basic, advanced plan.Plan) {
	basic = store.AddPlan(plan.Plan{
		Name: "Basic", MaxStudents: 2, MaxTeachers: 1, MaxAssistants: 1,
		Price: decimal.NewFromInt(100), DurationDays: 30, IsActive: true,
	})
	advanced = store.AddPlan(plan.Plan{
		Name: "Advanced", MaxStudents: 50, MaxTeachers: 5, MaxAssistants: 5,
		Price: decimal.NewFromInt(300), DurationDays: 30, IsActive: true,
	})
	return basic, advanced
}

func newTestGuard(store *servicetest.Store) *limitGuard {
	return NewLimitGuard(store.Subscriptions(), store.Plans(), store.Centers()).(*limitGuard)
}

func TestLimitGuard_Reserve_AllowsUpToCap(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	basic, _ := testPlans(store)
	c, _ := store.AddCenter("Nile Center", &basic)
	store.AddStudent(student.Student{CenterID: c.ID, Name: "Ali"})

	err := newTestGuard(store).Reserve(ctx, c.ID, plan.ResourceStudent, 1)
	assert.NoError(t, err)
}

func TestLimitGuard_Reserve_DeniesPastCap(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	basic, advanced := testPlans(store)
	c, _ := store.AddCenter("Nile Center", &basic)
	store.AddStudent(student.Student{CenterID: c.ID, Name: "Ali"})
	store.AddStudent(student.Student{CenterID: c.ID, Name: "Mona"})

	err := newTestGuard(store).Reserve(ctx, c.ID, plan.ResourceStudent, 1)

	var limitErr *subscription.LimitExceededError
	require.True(t, errors.As(err, &limitErr))
	assert.ErrorIs(t, err, subscription.ErrLimitReached)
	assert.Equal(t, 2, limitErr.Result.Current)
	assert.Equal(t, 2, limitErr.Result.Limit)
	assert.Equal(t, "max students reached", limitErr.Result.Reason)
	require.Len(t, limitErr.Result.SuggestedPlans, 1)
	assert.Equal(t, advanced.ID, limitErr.Result.SuggestedPlans[0].ID)
}

func TestLimitGuard_Reserve_NoSubscription(t *testing.T) {
	store := servicetest.NewStore()
	testPlans(store)
	c, _ := store.AddCenter("Nile Center", nil)

	err := newTestGuard(store).Reserve(context.Background(), c.ID, plan.ResourceTeacher, 1)
	assert.ErrorIs(t, err, subscription.ErrNoActiveSubscription)
}

func TestLimitGuard_Reserve_ExpiredCountsAsNone(t *testing.T) {
	store := servicetest.NewStore()
	basic, _ := testPlans(store)
	c, _ := store.AddCenter("Nile Center", &basic)

	guard := newTestGuard(store)
	guard.now = func() time.Time { return time.Now().AddDate(0, 0, basic.DurationDays+1) }

	err := guard.Reserve(context.Background(), c.ID, plan.ResourceStudent, 1)
	assert.ErrorIs(t, err, subscription.ErrNoActiveSubscription)
}

func TestLimitGuard_Reserve_UnknownCenter(t *testing.T) {
	store := servicetest.NewStore()
	err := newTestGuard(store).Reserve(context.Background(), "00000000-0000-0000-0000-000000000000", plan.ResourceStudent, 1)
	assert.ErrorIs(t, err, center.ErrCenterNotFound)
}

func TestSubscriptionService_CheckLimit(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	basic, _ := testPlans(store)
	_, owner := store.AddCenter("Nile Center", &basic)
	svc := NewSubscriptionService(store.Subscriptions(), store.Plans(), store)
	scope := servicetest.ScopeOf(owner)

	t.Run("allowed with remaining", func(t *testing.T) {
		result, err := svc.CheckLimit(ctx, scope, plan.ResourceStudent, 1)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 1, result.Remaining)
	})

	t.Run("increment past cap", func(t *testing.T) {
		result, err := svc.CheckLimit(ctx, scope, plan.ResourceStudent, 3)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.NotEmpty(t, result.SuggestedPlans)
	})

	t.Run("center admin counts as no teacher", func(t *testing.T) {
		result, err := svc.CheckLimit(ctx, scope, plan.ResourceTeacher, 1)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 0, result.Current)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := svc.CheckLimit(ctx, scope, plan.ResourceKind("rooms"), 1)
		assert.ErrorIs(t, err, plan.ErrInvalidResourceKind)
	})
}

func TestSubscriptionService_GetMySubscription(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	basic, _ := testPlans(store)
	c, owner := store.AddCenter("Nile Center", &basic)
	store.AddStudent(student.Student{CenterID: c.ID, Name: "Ali"})
	svc := NewSubscriptionService(store.Subscriptions(), store.Plans(), store)

	resp, err := svc.GetMySubscription(ctx, servicetest.ScopeOf(owner))
	require.NoError(t, err)
	assert.Equal(t, basic.ID, resp.Plan.ID)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 1, resp.Usage.Students.Used)
	assert.Equal(t, 2, resp.Usage.Students.Limit)

	_, bare := store.AddCenter("Empty Center", nil)
	_, err = svc.GetMySubscription(ctx, servicetest.ScopeOf(bare))
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
}

func TestSubscriptionService_ChangePlan(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	basic, advanced := testPlans(store)
	c, _ := store.AddCenter("Nile Center", &basic)
	svc := NewSubscriptionService(store.Subscriptions(), store.Plans(), store)

	resp, err := svc.ChangePlan(ctx, subscription.ChangePlanRequest{CenterID: c.ID, PlanID: advanced.ID})
	require.NoError(t, err)
	assert.Equal(t, advanced.ID, resp.Plan.ID)

	active, ok := store.ActiveSubscription(c.ID)
	require.True(t, ok)
	assert.Equal(t, advanced.ID, active.PlanID)
	assert.Equal(t, advanced.MaxStudents, active.MaxStudents)

	_, err = svc.ChangePlan(ctx, subscription.ChangePlanRequest{CenterID: c.ID, PlanID: advanced.ID})
	assert.ErrorIs(t, err, subscription.ErrSamePlan)
}

func TestSubscriptionService_ExpireOverdue(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	basic, _ := testPlans(store)
	c, _ := store.AddCenter("Nile Center", &basic)

	svc := NewSubscriptionService(store.Subscriptions(), store.Plans(), store).(*subscriptionService)
	count, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	svc.now = func() time.Time { return time.Now().AddDate(0, 0, basic.DurationDays+1) }
	count, err = svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, ok := store.ActiveSubscription(c.ID)
	assert.False(t, ok)
}
