package postgresql_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/repository/postgresql"
	groupService "github.com/tutora/tutora-backend/internal/service/group"
	planService "github.com/tutora/tutora-backend/internal/service/plan"
)

func TestGroupService_ConcurrentAssignNeverOverfillsGroup(t *testing.T) {
	ctx := requireDB(t)
	const capacity, joiners = 2, 6
	f := seedCenter(t, ctx, 20)
	g := seedGroup(t, ctx, f, group.PaymentTypeMonthly, capacity)

	students := postgresql.NewStudentRepository(testDB)
	ids := make([]string, joiners)
	for i := range ids {
		s, err := students.Create(ctx, student.Student{
			CenterID:  f.Center.ID,
			TeacherID: f.Teacher.ID,
			Name:      fmt.Sprintf("Student %d", i),
			IsActive:  true,
		})
		require.NoError(t, err)
		ids[i] = s.ID
	}

	svc := groupService.NewGroupService(
		postgresql.NewTransactor(testDB),
		postgresql.NewGroupRepository(testDB),
		students,
		postgresql.NewUserRepository(testDB),
		postgresql.NewAcademicYearRepository(testDB),
	)
	scope := tenant.Scope{CenterID: f.Center.ID, UserID: f.Teacher.ID, Role: user.RoleTeacher}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		assigned int
		full     int
		other    []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.AssignStudents(ctx, scope, group.AssignStudentsRequest{GroupID: g.ID, StudentIDs: []string{id}})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				assigned++
			case errors.Is(err, group.ErrGroupFull):
				full++
			default:
				other = append(other, err)
			}
		}(id)
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, capacity, assigned)
	assert.Equal(t, joiners-capacity, full)

	reloaded, err := postgresql.NewGroupRepository(testDB).GetByID(ctx, f.Center.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, reloaded.StudentCount)
}

func TestPlanService_ConcurrentSetDefaultLeavesOneDefault(t *testing.T) {
	ctx := requireDB(t)
	repo := postgresql.NewPlanRepository(testDB)
	svc := planService.NewPlanService(repo, postgresql.NewTransactor(testDB))

	const tiers = 5
	ids := make([]string, tiers)
	for i := range ids {
		p, err := repo.Create(ctx, plan.Plan{
			Name:         fmt.Sprintf("Tier %d", i),
			MaxStudents:  10 * (i + 1),
			Price:        decimal.NewFromInt(int64(100 * i)),
			DurationDays: 30,
			IsActive:     true,
		})
		require.NoError(t, err)
		ids[i] = p.ID
	}

	// Twice per plan so runs start with and without an existing default.
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		other []error
	)
	for round := 0; round < 2; round++ {
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := svc.SetDefault(ctx, id)
				if err == nil || errors.Is(err, plan.ErrDefaultPlanChanged) {
					return
				}
				mu.Lock()
				other = append(other, err)
				mu.Unlock()
			}(id)
		}
		wg.Wait()
	}

	require.Empty(t, other)

	plans, err := repo.List(ctx, false)
	require.NoError(t, err)
	defaults := 0
	for _, p := range plans {
		if p.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}
