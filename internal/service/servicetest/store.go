// Package servicetest provides in-memory repositories and a transactor for
// service tests. Reads return pgx.ErrNoRows like the PostgreSQL repositories
// and every transaction is serialized and rolled back on error.
//
// It is test support only; nothing outside _test.go files imports it.
package servicetest

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/domain/auth"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/dashboard"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/student"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/upgrade"
	"github.com/tutora/tutora-backend/internal/domain/user"
)

type data struct {
	users       map[string]user.User
	permissions map[string][]user.Permission
	centers     map[string]center.Center
	plans       map[string]plan.Plan
	subs        map[string]subscription.Subscription
	upgrades    map[string]upgrade.PlanUpgradeRequest
	students    map[string]student.Student
	groups      map[string]group.Group
	attendances map[string]attendance.Attendance
	payments    map[string]payment.Payment
	years       map[int]academicyear.AcademicYear
	nextYearID  int
	tokens      map[string]refreshToken
}

func newData() data {
	return data{
		users:       map[string]user.User{},
		permissions: map[string][]user.Permission{},
		centers:     map[string]center.Center{},
		plans:       map[string]plan.Plan{},
		subs:        map[string]subscription.Subscription{},
		upgrades:    map[string]upgrade.PlanUpgradeRequest{},
		students:    map[string]student.Student{},
		groups:      map[string]group.Group{},
		attendances: map[string]attendance.Attendance{},
		payments:    map[string]payment.Payment{},
		years:       map[int]academicyear.AcademicYear{},
		tokens:      map[string]refreshToken{},
	}
}

func (d data) clone() data {
	c := d
	c.users = maps.Clone(d.users)
	c.permissions = maps.Clone(d.permissions)
	c.centers = maps.Clone(d.centers)
	c.plans = maps.Clone(d.plans)
	c.subs = maps.Clone(d.subs)
	c.upgrades = maps.Clone(d.upgrades)
	c.students = maps.Clone(d.students)
	c.groups = maps.Clone(d.groups)
	c.attendances = maps.Clone(d.attendances)
	c.payments = maps.Clone(d.payments)
	c.years = maps.Clone(d.years)
	c.tokens = maps.Clone(d.tokens)
	return c
}

// Store holds every table. Repositories returned by its accessors share it.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    data
	Now  func() time.Time
}

func NewStore() *Store {
	return &Store{d: newData(), Now: time.Now}
}

func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// errUniqueViolation stands in for the partial unique indexes of the schema.
var errUniqueViolation = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

func newID() string {
	return uuid.NewString()
}

type txKey struct{}

// WithinTransaction implements database.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	unlock := s.lock()
	snapshot := s.d.clone()
	unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		defer s.lock()()
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Store) Users() user.UserRepository                         { return userRepo{s} }
func (s *Store) Centers() center.CenterRepository                   { return centerRepo{s} }
func (s *Store) Plans() plan.PlanRepository                         { return planRepo{s} }
func (s *Store) Subscriptions() subscription.SubscriptionRepository { return subscriptionRepo{s} }
func (s *Store) Upgrades() upgrade.UpgradeRepository                { return upgradeRepo{s} }
func (s *Store) Students() student.StudentRepository                { return studentRepo{s} }
func (s *Store) Groups() group.GroupRepository                      { return groupRepo{s} }
func (s *Store) Attendances() attendance.AttendanceRepository       { return attendanceRepo{s} }
func (s *Store) Payments() payment.PaymentRepository                { return paymentRepo{s} }
func (s *Store) AcademicYears() academicyear.AcademicYearRepository { return academicYearRepo{s} }
func (s *Store) RefreshTokens() auth.RefreshTokenRepository         { return tokenRepo{s} }
func (s *Store) Dashboard() dashboard.DashboardRepository           { return dashboardRepo{s} }

// ==================== Seeding helpers ====================

// AddPlan stores p with a fresh ID and returns it.
func (s *Store) AddPlan(p plan.Plan) plan.Plan {
	defer s.lock()()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = s.Now(), s.Now()
	s.d.plans[p.ID] = p
	return p
}

// AddCenter creates a center with a center admin and, when p is non-nil, an
// active subscription on p starting now.
func (s *Store) AddCenter(name string, p *plan.Plan) (center.Center, user.User) {
	defer s.lock()()
	now := s.Now()

	c := center.Center{ID: newID(), Name: name, CreatedAt: now, UpdatedAt: now}
	owner := user.User{
		ID:        newID(),
		CenterID:  &c.ID,
		Name:      name + " Owner",
		Email:     c.ID[:8] + "@owner.test",
		Role:      user.RoleCenterAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.OwnerID = &owner.ID
	s.d.centers[c.ID] = c
	s.d.users[owner.ID] = owner

	if p != nil {
		sub := subscription.New(c.ID, *p, now)
		sub.ID = newID()
		s.d.subs[sub.ID] = sub
	}
	return c, owner
}

// AddUser stores u with a fresh ID.
func (s *Store) AddUser(u user.User) user.User {
	defer s.lock()()
	u.ID = newID()
	u.IsActive = true
	if u.Email == "" {
		u.Email = u.ID[:8] + "@staff.test"
	}
	u.CreatedAt, u.UpdatedAt = s.Now(), s.Now()
	s.d.users[u.ID] = u
	return u
}

func (s *Store) AddGroup(g group.Group) group.Group {
	defer s.lock()()
	g.ID = newID()
	g.IsActive = true
	s.d.groups[g.ID] = g
	return g
}

func (s *Store) AddStudent(st student.Student) student.Student {
	defer s.lock()()
	st.ID = newID()
	st.IsActive = true
	s.d.students[st.ID] = st
	return st
}

// ActiveSubscription returns the center's active subscription, if any.
func (s *Store) ActiveSubscription(centerID string) (subscription.Subscription, bool) {
	defer s.lock()()
	for _, sub := range s.d.subs {
		if sub.CenterID == centerID && sub.IsActive {
			return sub, true
		}
	}
	return subscription.Subscription{}, false
}

func (s *Store) CountStudents(centerID string) int {
	defer s.lock()()
	n := 0
	for _, st := range s.d.students {
		if st.CenterID == centerID {
			n++
		}
	}
	return n
}

// PaymentsFor returns the payments of a student in a group.
func (s *Store) PaymentsFor(studentID, groupID string) []payment.Payment {
	defer s.lock()()
	var out []payment.Payment
	for _, p := range s.d.payments {
		if p.StudentID == studentID && p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out
}

// DefaultPlans returns the IDs of every plan flagged default.
func (s *Store) DefaultPlans() []string {
	defer s.lock()()
	var ids []string
	for id, p := range s.d.plans {
		if p.IsDefault {
			ids = append(ids, id)
		}
	}
	return ids
}

// ScopeOf builds the request scope the auth middleware would build for u.
func ScopeOf(u user.User) tenant.Scope {
	scope := tenant.Scope{UserID: u.ID, Role: u.Role, TeacherID: u.TeacherID, Permissions: u.Permissions}
	if u.CenterID != nil {
		scope.CenterID = *u.CenterID
	}
	return scope
}
