package postgresql_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/upgrade"
	"github.com/tutora/tutora-backend/internal/repository/postgresql"
)

func TestAttendanceUpsertAndSessionPayment_AreIdempotent(t *testing.T) {
	ctx := requireDB(t)
	f := seedCenter(t, ctx, 10)
	g := seedGroup(t, ctx, f, group.PaymentTypePerSession, 10)

	s, err := postgresql.NewStudentRepository(testDB).Create(ctx, student.Student{
		CenterID:  f.Center.ID,
		TeacherID: f.Teacher.ID,
		GroupID:   &g.ID,
		Name:      "Mona",
		IsActive:  true,
	})
	require.NoError(t, err)

	attendances := postgresql.NewAttendanceRepository(testDB)
	payments := postgresql.NewPaymentRepository(testDB)
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		_, err := attendances.Upsert(ctx, attendance.Attendance{
			CenterID:  f.Center.ID,
			StudentID: s.ID,
			GroupID:   g.ID,
			Date:      date,
			IsPresent: true,
		})
		require.NoError(t, err)

		p, ok := payment.SessionPayment(g, s.ID, date, true)
		require.True(t, ok)
		created, err := payments.EnsureSessionPayment(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, i == 0, created, "run %d", i)
	}

	rows, err := attendances.ListByGroupDate(ctx, f.Center.ID, g.ID, date)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	list, total, err := payments.List(ctx, f.Center.ID, payment.PaymentFilter{StudentID: &s.ID, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.True(t, g.StudentPrice.Equal(list[0].Amount))

	t.Run("absence keeps the existing payment", func(t *testing.T) {
		_, err := attendances.Upsert(ctx, attendance.Attendance{
			CenterID:  f.Center.ID,
			StudentID: s.ID,
			GroupID:   g.ID,
			Date:      date,
			IsPresent: false,
		})
		require.NoError(t, err)

		_, total, err := payments.List(ctx, f.Center.ID, payment.PaymentFilter{StudentID: &s.ID, Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}

func TestUpgradeRepository_SinglePendingAndResolveOnce(t *testing.T) {
	ctx := requireDB(t)
	f := seedCenter(t, ctx, 10)
	repo := postgresql.NewUpgradeRepository(testDB)

	req, err := repo.Create(ctx, upgrade.PlanUpgradeRequest{
		CenterID:        f.Center.ID,
		UserID:          f.Teacher.ID,
		RequestedPlanID: f.Plan.ID,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, upgrade.PlanUpgradeRequest{
		CenterID:        f.Center.ID,
		UserID:          f.Teacher.ID,
		RequestedPlanID: f.Plan.ID,
	})
	assert.ErrorIs(t, err, upgrade.ErrPendingExists)

	now := nowUTC()
	ok, err := repo.Resolve(ctx, req.ID, upgrade.StatusApproved, f.Teacher.ID, nil, &now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Resolve(ctx, req.ID, upgrade.StatusRejected, f.Teacher.ID, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, upgrade.StatusApproved, got.Status)
	require.NotNil(t, got.HandledAt)

	has, err := repo.HasPending(ctx, f.Teacher.ID)
	require.NoError(t, err)
	assert.False(t, has)
}
