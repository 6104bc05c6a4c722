package staff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/auth"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/staff"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
	serviceSubscription "github.com/tutora/tutora-backend/internal/service/subscription"
)

type staffFixture struct {
	store  *servicetest.Store
	svc    staff.StaffService
	center center.Center
	admin  tenant.Scope
}

func newStaffFixture(t *testing.T, maxTeachers, maxAssistants int) staffFixture {
	t.Helper()
	store := servicetest.NewStore()
	p := store.AddPlan(plan.Plan{
		Name: "Basic", MaxStudents: 10, MaxTeachers: maxTeachers, MaxAssistants: maxAssistants,
		Price: decimal.NewFromInt(100), DurationDays: 30, IsActive: true,
	})
	c, owner := store.AddCenter("Nile Center", &p)
	guard := serviceSubscription.NewLimitGuard(store.Subscriptions(), store.Plans(), store.Centers())
	return staffFixture{
		store:  store,
		svc:    NewStaffService(store, store.Users(), store.RefreshTokens(), guard),
		center: c,
		admin:  servicetest.ScopeOf(owner),
	}
}

func (f staffFixture) createTeacher(t *testing.T, name, email string) user.UserResponse {
	t.Helper()
	resp, err := f.svc.CreateTeacher(context.Background(), f.admin, user.CreateTeacherRequest{
		Name: name, Email: email, Password: "secret-pass",
	})
	require.NoError(t, err)
	return resp
}

func (f staffFixture) scopeOf(t *testing.T, id string) tenant.Scope {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return servicetest.ScopeOf(u)
}

func TestStaffService_CreateTeacher(t *testing.T) {
	ctx := context.Background()
	f := newStaffFixture(t, 1, 1)

	resp := f.createTeacher(t, "Mr. Hassan", "  Hassan@Example.com ")
	assert.Equal(t, "hassan@example.com", resp.Email)
	assert.Equal(t, string(user.RoleTeacher), resp.Role)
	require.NotNil(t, resp.CenterID)
	assert.Equal(t, f.center.ID, *resp.CenterID)

	_, err := f.svc.CreateTeacher(ctx, f.admin, user.CreateTeacherRequest{Name: "Ms. Noha", Email: "noha@example.com", Password: "secret-pass"})
	var limitErr *subscription.LimitExceededError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, plan.ResourceTeacher, limitErr.Result.Kind)

	count, err := f.store.Users().CountByRole(ctx, f.center.ID, user.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStaffService_CreateTeacher_DuplicateEmail(t *testing.T) {
	f := newStaffFixture(t, 5, 5)
	f.createTeacher(t, "Mr. Hassan", "hassan@example.com")

	_, err := f.svc.CreateTeacher(context.Background(), f.admin, user.CreateTeacherRequest{
		Name: "Other", Email: "HASSAN@example.com", Password: "secret-pass",
	})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestStaffService_CreateTeacher_OnlyCenterAdmin(t *testing.T) {
	f := newStaffFixture(t, 5, 5)
	teacher := f.createTeacher(t, "Mr. Hassan", "hassan@example.com")

	_, err := f.svc.CreateTeacher(context.Background(), f.scopeOf(t, teacher.ID), user.CreateTeacherRequest{
		Name: "Other", Email: "other@example.com", Password: "secret-pass",
	})
	assert.ErrorIs(t, err, user.ErrCenterAdminRequired)
}

func TestStaffService_CreateAssistant(t *testing.T) {
	ctx := context.Background()
	f := newStaffFixture(t, 5, 2)
	teacher := f.createTeacher(t, "Mr. Hassan", "hassan@example.com")
	template := "Attendance Assistant"

	resp, err := f.svc.CreateAssistant(ctx, f.scopeOf(t, teacher.ID), user.CreateAssistantRequest{
		Name: "Sara", Email: "sara@example.com", Password: "secret-pass", Template: &template,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.TeacherID)
	assert.Equal(t, teacher.ID, *resp.TeacherID)
	assert.Equal(t, []string{"students.view_own", "groups.view", "attendance.view", "attendance.manage"}, resp.Permissions)

	stored, err := f.store.Users().GetPermissions(ctx, resp.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 4)

	resp, err = f.svc.CreateAssistant(ctx, f.admin, user.CreateAssistantRequest{
		Name: "Nour", Email: "nour@example.com", Password: "secret-pass", TeacherID: &teacher.ID,
		Permissions: []string{"payments.view", "students.view_own", "payments.view"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"students.view_own", "payments.view"}, resp.Permissions)

	_, err = f.svc.CreateAssistant(ctx, f.admin, user.CreateAssistantRequest{
		Name: "Third", Email: "third@example.com", Password: "secret-pass", TeacherID: &teacher.ID,
	})
	assert.ErrorIs(t, err, subscription.ErrLimitReached)
}

func TestStaffService_CreateAssistant_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newStaffFixture(t, 5, 5)
	teacher := f.createTeacher(t, "Mr. Hassan", "hassan@example.com")

	_, err := f.svc.CreateAssistant(ctx, f.admin, user.CreateAssistantRequest{
		Name: "Sara", Email: "sara@example.com", Password: "secret-pass",
	})
	assert.ErrorIs(t, err, user.ErrTeacherRequired)

	_, err = f.svc.CreateAssistant(ctx, f.admin, user.CreateAssistantRequest{
		Name: "Sara", Email: "sara@example.com", Password: "secret-pass", TeacherID: &teacher.ID,
		Permissions: []string{"students.fly"},
	})
	assert.ErrorIs(t, err, user.ErrUnknownPermission)

	bogus := "Night Shift"
	_, err = f.svc.CreateAssistant(ctx, f.admin, user.CreateAssistantRequest{
		Name: "Sara", Email: "sara@example.com", Password: "secret-pass", TeacherID: &teacher.ID, Template: &bogus,
	})
	assert.ErrorIs(t, err, user.ErrUnknownTemplate)

	count, err := f.store.Users().CountByRole(ctx, f.center.ID, user.RoleAssistant)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStaffService_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newStaffFixture(t, 5, 5)
	hassan := f.createTeacher(t, "Mr. Hassan", "hassan@example.com")
	noha := f.createTeacher(t, "Ms. Noha", "noha@example.com")
	assistant, err := f.svc.CreateAssistant(ctx, f.admin, user.CreateAssistantRequest{
		Name: "Sara", Email: "sara@example.com", Password: "secret-pass", TeacherID: &hassan.ID,
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, f.admin, user.StaffFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4, "owner, two teachers and the assistant")

	hassanScope := f.scopeOf(t, hassan.ID)
	mine, err := f.svc.List(ctx, hassanScope, user.StaffFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, assistant.ID, mine[0].ID)

	_, err = f.svc.GetByID(ctx, f.scopeOf(t, noha.ID), assistant.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.svc.List(ctx, f.scopeOf(t, assistant.ID), user.StaffFilter{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, otherOwner := f.store.AddCenter("Delta Center", nil)
	_, err = f.svc.GetByID(ctx, servicetest.ScopeOf(otherOwner), hassan.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestStaffService_Update_DeactivationRevokesTokens(t *testing.T) {
	ctx := context.Background()
	f := newStaffFixture(t, 5, 5)
	teacher := f.createTeacher(t, "Mr. Hassan", "hassan@example.com")
	expires := time.Now().Add(time.Hour).Unix()
	require.NoError(t, f.store.RefreshTokens().CreateRefreshToken(ctx, teacher.ID, "refresh-1", expires, auth.SessionTrackingRequest{}))
	require.Equal(t, 1, f.store.LiveTokens(teacher.ID))

	name := "Mr. Hassan Ali"
	resp, err := f.svc.Update(ctx, f.admin, user.UpdateStaffRequest{ID: teacher.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	assert.Equal(t, 1, f.store.LiveTokens(teacher.ID))

	inactive := false
	resp, err = f.svc.Update(ctx, f.admin, user.UpdateStaffRequest{ID: teacher.ID, IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Zero(t, f.store.LiveTokens(teacher.ID))
}

func TestStaffService_TeacherCannotEditSelf(t *testing.T) {
	ctx := context.Background()
	f := newStaffFixture(t, 5, 5)
	teacher := f.createTeacher(t, "Mr. Hassan", "hassan@example.com")
	scope := f.scopeOf(t, teacher.ID)

	name := "Renamed"
	_, err := f.svc.Update(ctx, scope, user.UpdateStaffRequest{ID: teacher.ID, Name: &name})
	assert.ErrorIs(t, err, user.ErrCenterAdminRequired)
	assert.ErrorIs(t, f.svc.Delete(ctx, scope, teacher.ID), user.ErrCenterAdminRequired)

	self, err := f.svc.GetByID(ctx, scope, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mr. Hassan", self.Name)
}

func TestStaffService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newStaffFixture(t, 5, 5)
	teacher := f.createTeacher(t, "Mr. Hassan", "hassan@example.com")

	require.NoError(t, f.svc.Delete(ctx, f.admin, teacher.ID))
	_, err := f.svc.GetByID(ctx, f.admin, teacher.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	owner := f.admin.UserID
	assert.ErrorIs(t, f.svc.Delete(ctx, f.admin, owner), user.ErrUserNotFound, "the owner is not staff")
}
