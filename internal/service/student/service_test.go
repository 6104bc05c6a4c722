package student

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
	serviceSubscription "github.com/tutora/tutora-backend/internal/service/subscription"
)

type studentFixture struct {
	store   *servicetest.Store
	svc     student.StudentService
	center  center.Center
	admin   tenant.Scope
	teacher user.User
}

func newStudentFixture(t *testing.T, maxStudents int) studentFixture {
	t.Helper()
	store := servicetest.NewStore()
	p := store.AddPlan(plan.Plan{
		Name: "Basic", MaxStudents: maxStudents, MaxTeachers: 2, MaxAssistants: 2,
		Price: decimal.NewFromInt(100), DurationDays: 30, IsActive: true,
	})
	c, owner := store.AddCenter("Nile Center", &p)
	teacher := store.AddUser(user.User{CenterID: &c.ID, Name: "Mr. Hassan", Role: user.RoleTeacher})

	guard := serviceSubscription.NewLimitGuard(store.Subscriptions(), store.Plans(), store.Centers())
	svc := NewStudentService(store, store.Students(), store.Groups(), store.Users(), store.AcademicYears(), guard)

	return studentFixture{store: store, svc: svc, center: c, admin: servicetest.ScopeOf(owner), teacher: teacher}
}

func (f studentFixture) create(t *testing.T, scope tenant.Scope, name string) (student.StudentResponse, error) {
	t.Helper()
	return f.svc.Create(context.Background(), scope, student.CreateStudentRequest{TeacherID: &f.teacher.ID, Name: name})
}

func TestStudentService_Create_UpToPlanLimit(t *testing.T) {
	f := newStudentFixture(t, 2)

	_, err := f.create(t, f.admin, "Ali")
	require.NoError(t, err)
	_, err = f.create(t, f.admin, "Mona")
	require.NoError(t, err)

	_, err = f.create(t, f.admin, "Omar")
	var limitErr *subscription.LimitExceededError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, plan.ResourceStudent, limitErr.Result.Kind)
	assert.Equal(t, 2, f.store.CountStudents(f.center.ID))
}

func TestStudentService_Create_ConcurrentCallsRespectLimit(t *testing.T) {
	f := newStudentFixture(t, 3)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		denied  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.admin, student.CreateStudentRequest{TeacherID: &f.teacher.ID, Name: "Student"})
			mu.Lock()
			defer mu.Unlock()
			var limitErr *subscription.LimitExceededError
			switch {
			case err == nil:
				created++
			case errors.As(err, &limitErr):
				denied++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, created)
	assert.Equal(t, 5, denied)
	assert.Equal(t, 3, f.store.CountStudents(f.center.ID))
}

func TestStudentService_Create_TeacherOwnsStudent(t *testing.T) {
	f := newStudentFixture(t, 10)

	resp, err := f.svc.Create(context.Background(), servicetest.ScopeOf(f.teacher), student.CreateStudentRequest{Name: "Ali"})
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, resp.TeacherID)
}

func TestStudentService_Create_AdminMustNameTeacher(t *testing.T) {
	f := newStudentFixture(t, 10)

	_, err := f.svc.Create(context.Background(), f.admin, student.CreateStudentRequest{Name: "Ali"})
	assert.ErrorIs(t, err, student.ErrTeacherRequired)

	foreign := f.store.AddUser(user.User{Name: "Outsider", Role: user.RoleTeacher})
	_, err = f.svc.Create(context.Background(), f.admin, student.CreateStudentRequest{TeacherID: &foreign.ID, Name: "Ali"})
	assert.ErrorIs(t, err, student.ErrTeacherRequired)
}

func TestStudentService_Create_AssistantNeedsPermission(t *testing.T) {
	f := newStudentFixture(t, 10)
	assistant := f.store.AddUser(user.User{CenterID: &f.center.ID, TeacherID: &f.teacher.ID, Name: "Sara", Role: user.RoleAssistant})

	_, err := f.svc.Create(context.Background(), servicetest.ScopeOf(assistant), student.CreateStudentRequest{Name: "Ali"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	assistant.Permissions = []user.Permission{user.PermissionStudentsCreate}
	resp, err := f.svc.Create(context.Background(), servicetest.ScopeOf(assistant), student.CreateStudentRequest{Name: "Ali"})
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, resp.TeacherID)
}

func TestStudentService_Create_IntoGroup(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture(t, 10)
	year, err := f.store.AcademicYears().Create(ctx, academicyear.AcademicYear{Name: "Grade 1 Secondary", SortOrder: 1})
	require.NoError(t, err)
	g := f.store.AddGroup(group.Group{
		CenterID: f.center.ID, TeacherID: f.teacher.ID, Name: "Physics A", AcademicYearID: &year.ID,
		MaxStudents: 1, PaymentType: group.PaymentTypeMonthly, StudentPrice: decimal.NewFromInt(200),
	})

	resp, err := f.svc.Create(ctx, f.admin, student.CreateStudentRequest{TeacherID: &f.teacher.ID, GroupID: &g.ID, Name: "Ali"})
	require.NoError(t, err)
	require.NotNil(t, resp.GroupID)
	assert.Equal(t, g.ID, *resp.GroupID)
	require.NotNil(t, resp.AcademicYearID)
	assert.Equal(t, year.ID, *resp.AcademicYearID, "student takes the group's year")

	_, err = f.svc.Create(ctx, f.admin, student.CreateStudentRequest{TeacherID: &f.teacher.ID, GroupID: &g.ID, Name: "Mona"})
	assert.ErrorIs(t, err, group.ErrGroupFull)
	assert.Equal(t, 1, f.store.CountStudents(f.center.ID), "a rejected create inserts nothing")
}

func TestStudentService_Create_YearMismatch(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture(t, 10)
	first, err := f.store.AcademicYears().Create(ctx, academicyear.AcademicYear{Name: "Grade 1", SortOrder: 1})
	require.NoError(t, err)
	second, err := f.store.AcademicYears().Create(ctx, academicyear.AcademicYear{Name: "Grade 2", SortOrder: 2})
	require.NoError(t, err)
	g := f.store.AddGroup(group.Group{
		CenterID: f.center.ID, TeacherID: f.teacher.ID, Name: "Math", AcademicYearID: &first.ID,
		MaxStudents: 10, PaymentType: group.PaymentTypeMonthly,
	})

	_, err = f.svc.Create(ctx, f.admin, student.CreateStudentRequest{
		TeacherID: &f.teacher.ID, GroupID: &g.ID, AcademicYearID: &second.ID, Name: "Ali",
	})
	assert.ErrorIs(t, err, group.ErrAcademicYearMismatch)

	missing := 999
	_, err = f.svc.Create(ctx, f.admin, student.CreateStudentRequest{TeacherID: &f.teacher.ID, AcademicYearID: &missing, Name: "Ali"})
	assert.ErrorIs(t, err, academicyear.ErrAcademicYearNotFound)
}

func TestStudentService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture(t, 10)
	created, err := f.create(t, f.admin, "Ali")
	require.NoError(t, err)

	_, otherOwner := f.store.AddCenter("Delta Center", nil)
	foreign := servicetest.ScopeOf(otherOwner)

	_, err = f.svc.GetByID(ctx, foreign, created.ID)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)

	name := "Hijacked"
	_, err = f.svc.Update(ctx, foreign, student.UpdateStudentRequest{ID: created.ID, Name: &name})
	assert.ErrorIs(t, err, student.ErrStudentNotFound)

	err = f.svc.Delete(ctx, foreign, created.ID)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)

	list, err := f.svc.List(ctx, foreign, student.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Students)

	assert.Equal(t, 1, f.store.CountStudents(f.center.ID))
}

func TestStudentService_TeacherSeesOnlyOwnStudents(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture(t, 10)
	created, err := f.create(t, f.admin, "Ali")
	require.NoError(t, err)

	other := f.store.AddUser(user.User{CenterID: &f.center.ID, Name: "Ms. Noha", Role: user.RoleTeacher})
	otherScope := servicetest.ScopeOf(other)

	_, err = f.svc.GetByID(ctx, otherScope, created.ID)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)

	list, err := f.svc.List(ctx, otherScope, student.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Students)

	list, err = f.svc.List(ctx, f.admin, student.StudentFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)
}

func TestStudentService_ListSearchAndPaging(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture(t, 10)
	for _, name := range []string{"Ali Hassan", "Mona Adel", "Omar Ali", "Youssef"} {
		_, err := f.create(t, f.admin, name)
		require.NoError(t, err)
	}

	search := "ali"
	list, err := f.svc.List(ctx, f.admin, student.StudentFilter{Search: &search})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.TotalCount)

	list, err = f.svc.List(ctx, f.admin, student.StudentFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Students, 1)
	assert.Equal(t, "Youssef", list.Students[0].Name)
}

func TestStudentService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture(t, 10)
	created, err := f.create(t, f.admin, "Ali")
	require.NoError(t, err)

	name := "  Ali Mahmoud "
	active := false
	resp, err := f.svc.Update(ctx, f.admin, student.UpdateStudentRequest{ID: created.ID, Name: &name, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, "Ali Mahmoud", resp.Name)
	assert.False(t, resp.IsActive)

	require.NoError(t, f.svc.Delete(ctx, f.admin, created.ID))
	_, err = f.svc.GetByID(ctx, f.admin, created.ID)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)
}
