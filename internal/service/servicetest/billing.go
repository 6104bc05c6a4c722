package servicetest

import (
	"context"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/plan"
	"github.com/tutora/tutora-backend/internal/domain/subscription"
	"github.com/tutora/tutora-backend/internal/domain/upgrade"
	"github.com/tutora/tutora-backend/internal/domain/user"
)

type planRepo struct{ s *Store }

func (r planRepo) GetByID(ctx context.Context, id string) (plan.Plan, error) {
	defer r.s.lock()()
	p, ok := r.s.d.plans[id]
	if !ok {
		return plan.Plan{}, pgx.ErrNoRows
	}
	return p, nil
}

func (r planRepo) GetDefault(ctx context.Context) (plan.Plan, error) {
	defer r.s.lock()()
	for _, p := range r.s.d.plans {
		if p.IsDefault && p.IsActive {
			return p, nil
		}
	}
	return plan.Plan{}, pgx.ErrNoRows
}

func (r planRepo) List(ctx context.Context, activeOnly bool) ([]plan.Plan, error) {
	defer r.s.lock()()
	var out []plan.Plan
	for _, p := range r.s.d.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sortPlans(out)
	return out, nil
}

func (r planRepo) ListCovering(ctx context.Context, kind plan.ResourceKind, need int) ([]plan.Plan, error) {
	defer r.s.lock()()
	var out []plan.Plan
	for _, p := range r.s.d.plans {
		if p.IsActive && p.Cap(kind) >= need {
			out = append(out, p)
		}
	}
	sortPlans(out)
	return out, nil
}

func sortPlans(ps []plan.Plan) {
	slices.SortFunc(ps, func(a, b plan.Plan) int {
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c
		}
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
}

func (r planRepo) Create(ctx context.Context, p plan.Plan) (plan.Plan, error) {
	defer r.s.lock()()
	for _, existing := range r.s.d.plans {
		if existing.Name == p.Name {
			return plan.Plan{}, plan.ErrPlanNameExists
		}
	}
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = r.s.Now(), r.s.Now()
	r.s.d.plans[p.ID] = p
	return p, nil
}

func (r planRepo) Update(ctx context.Context, req plan.UpdatePlanRequest) error {
	defer r.s.lock()()
	p, ok := r.s.d.plans[req.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if req.Name != nil {
		for _, other := range r.s.d.plans {
			if other.ID != p.ID && other.Name == *req.Name {
				return plan.ErrPlanNameExists
			}
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.MaxStudents != nil {
		p.MaxStudents = *req.MaxStudents
	}
	if req.MaxTeachers != nil {
		p.MaxTeachers = *req.MaxTeachers
	}
	if req.MaxAssistants != nil {
		p.MaxAssistants = *req.MaxAssistants
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.DurationDays != nil {
		p.DurationDays = *req.DurationDays
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsTrial != nil {
		p.IsTrial = *req.IsTrial
	}
	p.UpdatedAt = r.s.Now()
	r.s.d.plans[p.ID] = p
	return nil
}

func (r planRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.d.plans[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.d.plans, id)
	return nil
}

func (r planRepo) ClearDefault(ctx context.Context) error {
	defer r.s.lock()()
	for id, p := range r.s.d.plans {
		p.IsDefault = false
		r.s.d.plans[id] = p
	}
	return nil
}

func (r planRepo) MarkDefault(ctx context.Context, id string) error {
	defer r.s.lock()()
	p, ok := r.s.d.plans[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, other := range r.s.d.plans {
		if other.IsDefault && other.ID != id {
			// Mirrors the plans_single_default unique index.
			return errUniqueViolation
		}
	}
	p.IsDefault = true
	r.s.d.plans[id] = p
	return nil
}

func (r planRepo) CountActiveSubscriptions(ctx context.Context, planID string) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, sub := range r.s.d.subs {
		if sub.PlanID == planID && sub.IsActive {
			n++
		}
	}
	return n, nil
}

type subscriptionRepo struct{ s *Store }

func (r subscriptionRepo) GetActiveByCenter(ctx context.Context, centerID string) (subscription.Subscription, error) {
	defer r.s.lock()()
	for _, sub := range r.s.d.subs {
		if sub.CenterID == centerID && sub.IsActive {
			p := r.s.d.plans[sub.PlanID]
			sub.Plan = &p
			return sub, nil
		}
	}
	return subscription.Subscription{}, pgx.ErrNoRows
}

func (r subscriptionRepo) Create(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	defer r.s.lock()()
	if sub.IsActive {
		for _, other := range r.s.d.subs {
			if other.CenterID == sub.CenterID && other.IsActive {
				// Mirrors the subscriptions_one_active unique index.
				return subscription.Subscription{}, errUniqueViolation
			}
		}
	}
	sub.ID = newID()
	sub.CreatedAt, sub.UpdatedAt = r.s.Now(), r.s.Now()
	sub.Plan = nil
	r.s.d.subs[sub.ID] = sub
	return sub, nil
}

func (r subscriptionRepo) DeactivateByCenter(ctx context.Context, centerID string) error {
	defer r.s.lock()()
	for id, sub := range r.s.d.subs {
		if sub.CenterID == centerID && sub.IsActive {
			sub.IsActive = false
			r.s.d.subs[id] = sub
		}
	}
	return nil
}

func (r subscriptionRepo) UpdatePlan(ctx context.Context, id, planID string, maxStudents int, start time.Time, end *time.Time) error {
	defer r.s.lock()()
	sub, ok := r.s.d.subs[id]
	if !ok {
		return pgx.ErrNoRows
	}
	sub.PlanID = planID
	sub.MaxStudents = maxStudents
	sub.StartDate = start
	sub.EndDate = end
	sub.UpdatedAt = r.s.Now()
	r.s.d.subs[id] = sub
	return nil
}

func (r subscriptionRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	defer r.s.lock()()
	var n int64
	for id, sub := range r.s.d.subs {
		if sub.IsActive && sub.IsExpired(now) {
			sub.IsActive = false
			r.s.d.subs[id] = sub
			n++
		}
	}
	return n, nil
}

func (r subscriptionRepo) CountResources(ctx context.Context, centerID string, kind plan.ResourceKind) (int, error) {
	defer r.s.lock()()
	switch kind {
	case plan.ResourceStudent:
		n := 0
		for _, st := range r.s.d.students {
			if st.CenterID == centerID {
				n++
			}
		}
		return n, nil
	case plan.ResourceTeacher:
		return r.s.countRole(centerID, user.RoleTeacher), nil
	case plan.ResourceAssistant:
		return r.s.countRole(centerID, user.RoleAssistant), nil
	}
	return 0, plan.ErrInvalidResourceKind
}

type upgradeRepo struct{ s *Store }

// join fills the display fields; expects s.mu held.
func (r upgradeRepo) join(req upgrade.PlanUpgradeRequest) upgrade.PlanUpgradeRequest {
	req.CenterName = r.s.d.centers[req.CenterID].Name
	u := r.s.d.users[req.UserID]
	req.UserName, req.UserEmail = u.Name, u.Email
	req.RequestedPlanName = r.s.d.plans[req.RequestedPlanID].Name
	if req.CurrentPlanID != nil {
		name := r.s.d.plans[*req.CurrentPlanID].Name
		req.CurrentPlanName = &name
	}
	return req
}

func (r upgradeRepo) GetByID(ctx context.Context, id string) (upgrade.PlanUpgradeRequest, error) {
	defer r.s.lock()()
	req, ok := r.s.d.upgrades[id]
	if !ok {
		return upgrade.PlanUpgradeRequest{}, pgx.ErrNoRows
	}
	return r.join(req), nil
}

func (r upgradeRepo) GetByIDForUpdate(ctx context.Context, id string) (upgrade.PlanUpgradeRequest, error) {
	return r.GetByID(ctx, id)
}

func (r upgradeRepo) Create(ctx context.Context, req upgrade.PlanUpgradeRequest) (upgrade.PlanUpgradeRequest, error) {
	defer r.s.lock()()
	for _, other := range r.s.d.upgrades {
		if other.UserID == req.UserID && other.IsPending() {
			return upgrade.PlanUpgradeRequest{}, upgrade.ErrPendingExists
		}
	}
	req.ID = newID()
	req.Status = upgrade.StatusPending
	req.CreatedAt, req.UpdatedAt = r.s.Now(), r.s.Now()
	r.s.d.upgrades[req.ID] = req
	return r.join(req), nil
}

func (r upgradeRepo) HasPending(ctx context.Context, userID string) (bool, error) {
	defer r.s.lock()()
	for _, req := range r.s.d.upgrades {
		if req.UserID == userID && req.IsPending() {
			return true, nil
		}
	}
	return false, nil
}

func (r upgradeRepo) List(ctx context.Context, filter upgrade.UpgradeFilter) ([]upgrade.PlanUpgradeRequest, error) {
	defer r.s.lock()()
	var out []upgrade.PlanUpgradeRequest
	for _, req := range r.s.d.upgrades {
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, r.join(req))
	}
	sortUpgrades(out)
	return out, nil
}

func (r upgradeRepo) ListByCenter(ctx context.Context, centerID string) ([]upgrade.PlanUpgradeRequest, error) {
	defer r.s.lock()()
	var out []upgrade.PlanUpgradeRequest
	for _, req := range r.s.d.upgrades {
		if req.CenterID == centerID {
			out = append(out, r.join(req))
		}
	}
	sortUpgrades(out)
	return out, nil
}

func sortUpgrades(reqs []upgrade.PlanUpgradeRequest) {
	slices.SortFunc(reqs, func(a, b upgrade.PlanUpgradeRequest) int { return b.CreatedAt.Compare(a.CreatedAt) })
}

func (r upgradeRepo) Resolve(ctx context.Context, id string, status upgrade.Status, adminID string, adminNotes *string, at *time.Time) (bool, error) {
	defer r.s.lock()()
	req, ok := r.s.d.upgrades[id]
	if !ok || !req.IsPending() {
		return false, nil
	}
	req.Status = status
	req.HandledBy = &adminID
	req.AdminNotes = adminNotes
	req.HandledAt = at
	req.UpdatedAt = r.s.Now()
	r.s.d.upgrades[id] = req
	return true, nil
}
