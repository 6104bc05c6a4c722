package servicetest

import (
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/dashboard"
	"github.com/tutora/tutora-backend/internal/domain/user"
)

type userRepo struct{ s *Store }

func (r userRepo) withPermissions(u user.User) user.User {
	u.Permissions = slices.Clone(r.s.d.permissions[u.ID])
	return u
}

func (r userRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	defer r.s.lock()()
	u, ok := r.s.d.users[id]
	if !ok {
		return user.User{}, pgx.ErrNoRows
	}
	return r.withPermissions(u), nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.d.users {
		if strings.EqualFold(u.Email, email) {
			return r.withPermissions(u), nil
		}
	}
	return user.User{}, pgx.ErrNoRows
}

func (r userRepo) GetInCenter(ctx context.Context, centerID, id string) (user.User, error) {
	defer r.s.lock()()
	u, ok := r.s.d.users[id]
	if !ok || u.CenterID == nil || *u.CenterID != centerID {
		return user.User{}, pgx.ErrNoRows
	}
	return r.withPermissions(u), nil
}

func (r userRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	defer r.s.lock()()
	for _, existing := range r.s.d.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	u.ID = newID()
	u.CreatedAt, u.UpdatedAt = r.s.Now(), r.s.Now()
	r.s.d.users[u.ID] = u
	return u, nil
}

func (r userRepo) Update(ctx context.Context, u user.User) error {
	defer r.s.lock()()
	if _, ok := r.s.d.users[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	u.UpdatedAt = r.s.Now()
	r.s.d.users[u.ID] = u
	return nil
}

func (r userRepo) Delete(ctx context.Context, centerID, id string) error {
	defer r.s.lock()()
	u, ok := r.s.d.users[id]
	if !ok || u.CenterID == nil || *u.CenterID != centerID {
		return pgx.ErrNoRows
	}
	delete(r.s.d.users, id)
	delete(r.s.d.permissions, id)
	return nil
}

func (r userRepo) List(ctx context.Context, centerID string, filter user.StaffFilter) ([]user.User, error) {
	defer r.s.lock()()
	var out []user.User
	for _, u := range r.s.d.users {
		if u.CenterID == nil || *u.CenterID != centerID {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.TeacherID != nil && (u.TeacherID == nil || *u.TeacherID != *filter.TeacherID) {
			continue
		}
		out = append(out, r.withPermissions(u))
	}
	slices.SortFunc(out, func(a, b user.User) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r userRepo) CountByRole(ctx context.Context, centerID string, role user.Role) (int, error) {
	defer r.s.lock()()
	return r.s.countRole(centerID, role), nil
}

func (r userRepo) LinkGoogleAccount(ctx context.Context, id, googleID string) error {
	defer r.s.lock()()
	u, ok := r.s.d.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.GoogleID = &googleID
	r.s.d.users[id] = u
	return nil
}

func (r userRepo) GetPermissions(ctx context.Context, userID string) ([]user.Permission, error) {
	defer r.s.lock()()
	return slices.Clone(r.s.d.permissions[userID]), nil
}

func (r userRepo) ReplacePermissions(ctx context.Context, userID string, perms []user.Permission) error {
	defer r.s.lock()()
	if len(perms) == 0 {
		delete(r.s.d.permissions, userID)
		return nil
	}
	r.s.d.permissions[userID] = slices.Clone(perms)
	return nil
}

// countRole expects s.mu held.
func (s *Store) countRole(centerID string, role user.Role) int {
	n := 0
	for _, u := range s.d.users {
		if u.CenterID != nil && *u.CenterID == centerID && u.Role == role {
			n++
		}
	}
	return n
}

type centerRepo struct{ s *Store }

func (r centerRepo) GetByID(ctx context.Context, id string) (center.Center, error) {
	defer r.s.lock()()
	c, ok := r.s.d.centers[id]
	if !ok {
		return center.Center{}, pgx.ErrNoRows
	}
	return c, nil
}

func (r centerRepo) Create(ctx context.Context, c center.Center) (center.Center, error) {
	defer r.s.lock()()
	c.ID = newID()
	c.CreatedAt, c.UpdatedAt = r.s.Now(), r.s.Now()
	r.s.d.centers[c.ID] = c
	return c, nil
}

func (r centerRepo) Update(ctx context.Context, id string, req center.UpdateCenterRequest) error {
	defer r.s.lock()()
	c, ok := r.s.d.centers[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.GovernorateID != nil {
		c.GovernorateID = req.GovernorateID
	}
	c.UpdatedAt = r.s.Now()
	r.s.d.centers[id] = c
	return nil
}

func (r centerRepo) SetOwner(ctx context.Context, id, ownerID string) error {
	defer r.s.lock()()
	c, ok := r.s.d.centers[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.OwnerID = &ownerID
	r.s.d.centers[id] = c
	return nil
}

func (r centerRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.d.centers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.d.centers, id)
	return nil
}

func (r centerRepo) List(ctx context.Context) ([]center.Center, error) {
	defer r.s.lock()()
	out := make([]center.Center, 0, len(r.s.d.centers))
	for _, c := range r.s.d.centers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b center.Center) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// LockForUpdate only checks existence; transactions are already serialized.
func (r centerRepo) LockForUpdate(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.d.centers[id]; !ok {
		return pgx.ErrNoRows
	}
	return nil
}

type dashboardRepo struct{ s *Store }

func (r dashboardRepo) GetCounts(ctx context.Context, centerID string, teacherID *string) (dashboard.Counts, error) {
	defer r.s.lock()()
	owned := func(id string) bool { return teacherID == nil || id == *teacherID }

	var c dashboard.Counts
	for _, st := range r.s.d.students {
		if st.CenterID == centerID && owned(st.TeacherID) {
			c.Students++
		}
	}
	for _, g := range r.s.d.groups {
		if g.CenterID == centerID && owned(g.TeacherID) {
			c.Groups++
		}
	}
	for _, u := range r.s.d.users {
		if u.CenterID == nil || *u.CenterID != centerID {
			continue
		}
		switch {
		case u.Role == user.RoleTeacher && owned(u.ID):
			c.Teachers++
		case u.Role == user.RoleAssistant && u.TeacherID != nil && owned(*u.TeacherID):
			c.Assistants++
		}
	}
	return c, nil
}
