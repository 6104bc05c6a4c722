package group

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
)

type groupFixture struct {
	store    *servicetest.Store
	svc      group.GroupService
	centerID string
	admin    tenant.Scope
	teacher  user.User
}

func newGroupFixture(t *testing.T) groupFixture {
	t.Helper()
	store := servicetest.NewStore()
	c, owner := store.AddCenter("Nile Center", nil)
	teacher := store.AddUser(user.User{CenterID: &c.ID, Name: "Mr. Hassan", Role: user.RoleTeacher})
	return groupFixture{
		store:    store,
		svc:      NewGroupService(store, store.Groups(), store.Students(), store.Users(), store.AcademicYears()),
		centerID: c.ID,
		admin:    servicetest.ScopeOf(owner),
		teacher:  teacher,
	}
}

func (f groupFixture) createGroup(t *testing.T, name string, maxStudents int) group.GroupResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.admin, group.CreateGroupRequest{
		TeacherID:    &f.teacher.ID,
		Name:         name,
		MaxStudents:  maxStudents,
		PaymentType:  group.PaymentTypePerSession,
		StudentPrice: decimal.NewFromInt(50),
		Schedules: []group.ScheduleRequest{
			{DayOfWeek: 6, StartTime: "16:00", EndTime: "18:00"},
		},
	})
	require.NoError(t, err)
	return resp
}

func (f groupFixture) addStudent(name string) student.Student {
	return f.store.AddStudent(student.Student{CenterID: f.centerID, TeacherID: f.teacher.ID, Name: name})
}

func TestGroupService_Create(t *testing.T) {
	f := newGroupFixture(t)

	resp := f.createGroup(t, "Physics A", 10)
	assert.Equal(t, f.teacher.ID, resp.TeacherID)
	assert.Equal(t, "Mr. Hassan", resp.TeacherName)
	assert.True(t, resp.IsActive)
	require.Len(t, resp.Schedules, 1)
	assert.Equal(t, "16:00", resp.Schedules[0].StartTime)

	_, err := f.svc.Create(context.Background(), f.admin, group.CreateGroupRequest{
		TeacherID: &f.teacher.ID, Name: "Physics A", MaxStudents: 5, PaymentType: group.PaymentTypeMonthly,
	})
	assert.ErrorIs(t, err, group.ErrGroupNameExists)
}

func TestGroupService_Create_RequiresTeacherForAdmin(t *testing.T) {
	f := newGroupFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, group.CreateGroupRequest{
		Name: "Math", MaxStudents: 5, PaymentType: group.PaymentTypeMonthly,
	})
	assert.ErrorIs(t, err, group.ErrTeacherRequired)
}

func TestGroupService_AssignStudents(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	g := f.createGroup(t, "Physics A", 2)
	ali, mona, omar := f.addStudent("Ali"), f.addStudent("Mona"), f.addStudent("Omar")

	resp, err := f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{ali.ID, mona.ID, ali.ID}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.StudentCount)

	_, err = f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{omar.ID}})
	assert.ErrorIs(t, err, group.ErrGroupFull)

	resp, err = f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{ali.ID}})
	require.NoError(t, err, "re-assigning a member needs no room")
	assert.Equal(t, 2, resp.StudentCount)
}

func TestGroupService_AssignStudents_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	first := f.createGroup(t, "Physics A", 10)
	second := f.createGroup(t, "Physics B", 10)
	ali, mona := f.addStudent("Ali"), f.addStudent("Mona")

	_, err := f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: first.ID, StudentIDs: []string{ali.ID}})
	require.NoError(t, err)

	_, err = f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: second.ID, StudentIDs: []string{mona.ID, ali.ID}})
	assert.ErrorIs(t, err, group.ErrStudentInAnotherGroup)

	resp, err := f.svc.GetByID(ctx, f.admin, second.ID)
	require.NoError(t, err)
	assert.Zero(t, resp.StudentCount)
}

func TestGroupService_AssignStudents_RejectsForeignStudents(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	g := f.createGroup(t, "Physics A", 10)

	other, _ := f.store.AddCenter("Delta Center", nil)
	foreign := f.store.AddStudent(student.Student{CenterID: other.ID, TeacherID: f.teacher.ID, Name: "Outsider"})
	_, err := f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{foreign.ID}})
	assert.ErrorIs(t, err, student.ErrStudentNotFound)

	otherTeacher := f.store.AddUser(user.User{CenterID: &f.centerID, Name: "Ms. Noha", Role: user.RoleTeacher})
	theirs := f.store.AddStudent(student.Student{CenterID: f.centerID, TeacherID: otherTeacher.ID, Name: "Karim"})
	_, err = f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{theirs.ID}})
	assert.ErrorIs(t, err, student.ErrStudentNotFound)
}

func TestGroupService_AssignStudents_YearMismatch(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	first, err := f.store.AcademicYears().Create(ctx, academicyear.AcademicYear{Name: "Grade 1", SortOrder: 1})
	require.NoError(t, err)
	second, err := f.store.AcademicYears().Create(ctx, academicyear.AcademicYear{Name: "Grade 2", SortOrder: 2})
	require.NoError(t, err)

	g, err := f.svc.Create(ctx, f.admin, group.CreateGroupRequest{
		TeacherID: &f.teacher.ID, Name: "Math", AcademicYearID: &first.ID, MaxStudents: 5, PaymentType: group.PaymentTypeMonthly,
	})
	require.NoError(t, err)
	st := f.store.AddStudent(student.Student{CenterID: f.centerID, TeacherID: f.teacher.ID, AcademicYearID: &second.ID, Name: "Ali"})

	_, err = f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{st.ID}})
	assert.ErrorIs(t, err, group.ErrAcademicYearMismatch)
}

func TestGroupService_RemoveStudent(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	g := f.createGroup(t, "Physics A", 10)
	ali, mona := f.addStudent("Ali"), f.addStudent("Mona")
	_, err := f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{ali.ID}})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.RemoveStudent(ctx, f.admin, g.ID, mona.ID), group.ErrStudentNotInGroup)
	require.NoError(t, f.svc.RemoveStudent(ctx, f.admin, g.ID, ali.ID))

	resp, err := f.svc.GetByID(ctx, f.admin, g.ID)
	require.NoError(t, err)
	assert.Zero(t, resp.StudentCount)
}

func TestGroupService_Update(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	g := f.createGroup(t, "Physics A", 10)
	ali, mona := f.addStudent("Ali"), f.addStudent("Mona")
	_, err := f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{ali.ID, mona.ID}})
	require.NoError(t, err)

	tooSmall := 1
	_, err = f.svc.Update(ctx, f.admin, group.UpdateGroupRequest{ID: g.ID, MaxStudents: &tooSmall})
	assert.ErrorIs(t, err, group.ErrMaxBelowCurrent)

	name := "Physics Advanced"
	monthly := group.PaymentTypeMonthly
	schedules := []group.ScheduleRequest{
		{DayOfWeek: 1, StartTime: "10:00", EndTime: "11:30"},
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "11:30"},
	}
	resp, err := f.svc.Update(ctx, f.admin, group.UpdateGroupRequest{ID: g.ID, Name: &name, PaymentType: &monthly, Schedules: &schedules})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	assert.Equal(t, group.PaymentTypeMonthly, resp.PaymentType)
	assert.Len(t, resp.Schedules, 2)
}

func TestGroupService_Delete_KeepsStudents(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	g := f.createGroup(t, "Physics A", 10)
	ali := f.addStudent("Ali")
	_, err := f.svc.AssignStudents(ctx, f.admin, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{ali.ID}})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.admin, g.ID))

	st, err := f.store.Students().GetByID(ctx, f.centerID, ali.ID)
	require.NoError(t, err)
	assert.Nil(t, st.GroupID)

	_, err = f.svc.GetByID(ctx, f.admin, g.ID)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}

func TestGroupService_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	g := f.createGroup(t, "Physics A", 10)

	_, otherOwner := f.store.AddCenter("Delta Center", nil)
	_, err := f.svc.GetByID(ctx, servicetest.ScopeOf(otherOwner), g.ID)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)

	otherTeacher := f.store.AddUser(user.User{CenterID: &f.centerID, Name: "Ms. Noha", Role: user.RoleTeacher})
	_, err = f.svc.GetByID(ctx, servicetest.ScopeOf(otherTeacher), g.ID)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)

	list, err := f.svc.List(ctx, servicetest.ScopeOf(otherTeacher), group.GroupFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	assistant := f.store.AddUser(user.User{
		CenterID: &f.centerID, TeacherID: &f.teacher.ID, Name: "Sara", Role: user.RoleAssistant,
		Permissions: []user.Permission{user.PermissionGroupsView},
	})
	list, err = f.svc.List(ctx, servicetest.ScopeOf(assistant), group.GroupFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
