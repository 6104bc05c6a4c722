package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
)

type paymentFixture struct {
	store    *servicetest.Store
	svc      *PaymentServiceImpl
	centerID string
	admin    tenant.Scope
	teacher  user.User
	monthly  group.Group
	student  student.Student
}

func newPaymentFixture(t *testing.T) paymentFixture {
	t.Helper()
	store := servicetest.NewStore()
	c, owner := store.AddCenter("Nile Center", nil)
	teacher := store.AddUser(user.User{CenterID: &c.ID, Name: "Mr. Hassan", Role: user.RoleTeacher})
	monthly := store.AddGroup(group.Group{
		CenterID: c.ID, TeacherID: teacher.ID, Name: "Chemistry", MaxStudents: 20,
		PaymentType: group.PaymentTypeMonthly, StudentPrice: decimal.NewFromInt(300),
	})
	st := store.AddStudent(student.Student{CenterID: c.ID, TeacherID: teacher.ID, GroupID: &monthly.ID, Name: "Ali"})

	svc := NewPaymentService(store.Payments(), store.Groups(), store.Students()).(*PaymentServiceImpl)
	return paymentFixture{
		store: store, svc: svc, centerID: c.ID, admin: servicetest.ScopeOf(owner),
		teacher: teacher, monthly: monthly, student: st,
	}
}

func (f paymentFixture) createMonthly(t *testing.T, month string) payment.PaymentResponse {
	t.Helper()
	resp, err := f.svc.CreateMonthly(context.Background(), f.admin, payment.CreateMonthlyRequest{
		StudentID: f.student.ID, GroupID: f.monthly.ID, Month: month,
	})
	require.NoError(t, err)
	return resp
}

func TestPaymentService_CreateMonthly(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	resp := f.createMonthly(t, "2026-03")
	assert.Equal(t, "2026-03-01", resp.RelatedDate)
	assert.True(t, decimal.NewFromInt(300).Equal(resp.Amount))
	assert.Equal(t, "Ali", resp.StudentName)

	_, err := f.svc.CreateMonthly(ctx, f.admin, payment.CreateMonthlyRequest{
		StudentID: f.student.ID, GroupID: f.monthly.ID, Month: "2026-03",
	})
	assert.ErrorIs(t, err, payment.ErrPaymentExists)

	custom := decimal.NewFromInt(250)
	resp, err = f.svc.CreateMonthly(ctx, f.admin, payment.CreateMonthlyRequest{
		StudentID: f.student.ID, GroupID: f.monthly.ID, Month: "2026-04", Amount: &custom,
	})
	require.NoError(t, err)
	assert.True(t, custom.Equal(resp.Amount))
}

func TestPaymentService_CreateMonthly_PerSessionGroup(t *testing.T) {
	f := newPaymentFixture(t)
	perSession := f.store.AddGroup(group.Group{
		CenterID: f.centerID, TeacherID: f.teacher.ID, Name: "Physics", MaxStudents: 20,
		PaymentType: group.PaymentTypePerSession, StudentPrice: decimal.NewFromInt(50),
	})

	_, err := f.svc.CreateMonthly(context.Background(), f.admin, payment.CreateMonthlyRequest{
		StudentID: f.student.ID, GroupID: perSession.ID, Month: "2026-03",
	})
	assert.ErrorIs(t, err, payment.ErrNotMonthlyGroup)
}

func TestPaymentService_MarkPaidAndUnpaid(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	created := f.createMonthly(t, "2026-03")
	paidAt := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return paidAt }

	resp, err := f.svc.MarkPaid(ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsPaid)
	require.NotNil(t, resp.PaidAt)

	_, err = f.svc.MarkPaid(ctx, f.admin, created.ID)
	assert.ErrorIs(t, err, payment.ErrAlreadyPaid)

	resp, err = f.svc.MarkUnpaid(ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsPaid)
	assert.Nil(t, resp.PaidAt)

	_, err = f.svc.MarkUnpaid(ctx, f.admin, created.ID)
	assert.ErrorIs(t, err, payment.ErrNotPaid)
}

func TestPaymentService_List(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	march := f.createMonthly(t, "2026-03")
	f.createMonthly(t, "2026-04")
	_, err := f.svc.MarkPaid(ctx, f.admin, march.ID)
	require.NoError(t, err)

	list, err := f.svc.List(ctx, f.admin, payment.PaymentFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.TotalCount)
	require.Len(t, list.Payments, 2)
	assert.Equal(t, "2026-04-01", list.Payments[0].RelatedDate, "newest first")

	unpaid := false
	list, err = f.svc.List(ctx, f.admin, payment.PaymentFilter{IsPaid: &unpaid})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)

	otherTeacher := f.store.AddUser(user.User{CenterID: &f.centerID, Name: "Ms. Noha", Role: user.RoleTeacher})
	list, err = f.svc.List(ctx, servicetest.ScopeOf(otherTeacher), payment.PaymentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Payments)
}

func TestPaymentService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	created := f.createMonthly(t, "2026-03")

	_, otherOwner := f.store.AddCenter("Delta Center", nil)
	foreign := servicetest.ScopeOf(otherOwner)

	_, err := f.svc.GetByID(ctx, foreign, created.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
	_, err = f.svc.MarkPaid(ctx, foreign, created.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, foreign, created.ID), payment.ErrPaymentNotFound)

	_, err = f.svc.CreateMonthly(ctx, foreign, payment.CreateMonthlyRequest{
		StudentID: f.student.ID, GroupID: f.monthly.ID, Month: "2026-05",
	})
	assert.ErrorIs(t, err, group.ErrGroupNotFound)

	otherTeacher := f.store.AddUser(user.User{CenterID: &f.centerID, Name: "Ms. Noha", Role: user.RoleTeacher})
	_, err = f.svc.GetByID(ctx, servicetest.ScopeOf(otherTeacher), created.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)

	resp, err := f.svc.GetByID(ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsPaid)
}

func TestPaymentService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	created := f.createMonthly(t, "2026-03")

	require.NoError(t, f.svc.Delete(ctx, f.admin, created.ID))
	_, err := f.svc.GetByID(ctx, f.admin, created.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestPaymentService_GenerateMonthlyDues(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.store.AddStudent(student.Student{CenterID: f.centerID, TeacherID: f.teacher.ID, GroupID: &f.monthly.ID, Name: "Mona"})
	f.createMonthly(t, "2026-03")

	month := time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)
	n, err := f.svc.GenerateMonthlyDues(ctx, month)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "only the student without a due is billed")

	n, err = f.svc.GenerateMonthlyDues(ctx, month)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Len(t, f.store.PaymentsFor(f.student.ID, f.monthly.ID), 1)
}
