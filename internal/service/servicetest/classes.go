package servicetest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/domain/attendance"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/payment"
	"github.com/tutora/tutora-backend/internal/domain/student"
)

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func page[T any](rows []T, p, limit int) []T {
	start := (p - 1) * limit
	if start < 0 || start >= len(rows) {
		return nil
	}
	return rows[start:min(start+limit, len(rows))]
}

// ==================== Students ====================

type studentRepo struct{ s *Store }

// join fills GroupName; expects s.mu held.
func (r studentRepo) join(st student.Student) student.Student {
	st.GroupName = nil
	if st.GroupID != nil {
		if g, ok := r.s.d.groups[*st.GroupID]; ok {
			name := g.Name
			st.GroupName = &name
		}
	}
	return st
}

func (r studentRepo) GetByID(ctx context.Context, centerID, id string) (student.Student, error) {
	defer r.s.lock()()
	st, ok := r.s.d.students[id]
	if !ok || st.CenterID != centerID {
		return student.Student{}, pgx.ErrNoRows
	}
	return r.join(st), nil
}

func (r studentRepo) GetByIDs(ctx context.Context, centerID string, ids []string) ([]student.Student, error) {
	defer r.s.lock()()
	var out []student.Student
	for _, id := range ids {
		if st, ok := r.s.d.students[id]; ok && st.CenterID == centerID {
			out = append(out, r.join(st))
		}
	}
	return out, nil
}

func (r studentRepo) Create(ctx context.Context, st student.Student) (student.Student, error) {
	defer r.s.lock()()
	st.ID = newID()
	st.CreatedAt, st.UpdatedAt = r.s.Now(), r.s.Now()
	r.s.d.students[st.ID] = st
	return r.join(st), nil
}

func (r studentRepo) Update(ctx context.Context, st student.Student) error {
	defer r.s.lock()()
	cur, ok := r.s.d.students[st.ID]
	if !ok || cur.CenterID != st.CenterID {
		return pgx.ErrNoRows
	}
	cur.AcademicYearID = st.AcademicYearID
	cur.Name = st.Name
	cur.Phone = st.Phone
	cur.ParentPhone = st.ParentPhone
	cur.Notes = st.Notes
	cur.IsActive = st.IsActive
	cur.UpdatedAt = r.s.Now()
	r.s.d.students[st.ID] = cur
	return nil
}

func (r studentRepo) Delete(ctx context.Context, centerID, id string) error {
	defer r.s.lock()()
	st, ok := r.s.d.students[id]
	if !ok || st.CenterID != centerID {
		return pgx.ErrNoRows
	}
	delete(r.s.d.students, id)
	for key, a := range r.s.d.attendances {
		if a.StudentID == id {
			delete(r.s.d.attendances, key)
		}
	}
	for pid, p := range r.s.d.payments {
		if p.StudentID == id {
			delete(r.s.d.payments, pid)
		}
	}
	return nil
}

func (r studentRepo) List(ctx context.Context, centerID string, filter student.StudentFilter) ([]student.Student, int64, error) {
	defer r.s.lock()()
	var rows []student.Student
	for _, st := range r.s.d.students {
		if st.CenterID != centerID {
			continue
		}
		if filter.TeacherID != nil && st.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.GroupID != nil && (st.GroupID == nil || *st.GroupID != *filter.GroupID) {
			continue
		}
		if filter.AcademicYearID != nil && (st.AcademicYearID == nil || *st.AcademicYearID != *filter.AcademicYearID) {
			continue
		}
		if filter.Search != nil && *filter.Search != "" && !matchesStudent(st, *filter.Search) {
			continue
		}
		rows = append(rows, r.join(st))
	}
	sortStudents(rows)
	return page(rows, filter.Page, filter.Limit), int64(len(rows)), nil
}

func matchesStudent(st student.Student, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(st.Name), term) {
		return true
	}
	for _, phone := range []*string{st.Phone, st.ParentPhone} {
		if phone != nil && strings.Contains(strings.ToLower(*phone), term) {
			return true
		}
	}
	return false
}

func sortStudents(rows []student.Student) {
	slices.SortFunc(rows, func(a, b student.Student) int { return strings.Compare(a.Name, b.Name) })
}

func (r studentRepo) SetGroup(ctx context.Context, centerID string, ids []string, groupID *string) error {
	defer r.s.lock()()
	for _, id := range ids {
		st, ok := r.s.d.students[id]
		if !ok || st.CenterID != centerID {
			continue
		}
		st.GroupID = groupID
		st.UpdatedAt = r.s.Now()
		r.s.d.students[id] = st
	}
	return nil
}

func (r studentRepo) ListByGroup(ctx context.Context, centerID, groupID string) ([]student.Student, error) {
	defer r.s.lock()()
	var rows []student.Student
	for _, st := range r.s.d.students {
		if st.CenterID == centerID && st.GroupID != nil && *st.GroupID == groupID {
			rows = append(rows, r.join(st))
		}
	}
	sortStudents(rows)
	return rows, nil
}

// ==================== Groups ====================

type groupRepo struct{ s *Store }

// join fills the teacher name and student count; expects s.mu held.
func (r groupRepo) join(g group.Group) group.Group {
	g.TeacherName = r.s.d.users[g.TeacherID].Name
	g.StudentCount = 0
	for _, st := range r.s.d.students {
		if st.GroupID != nil && *st.GroupID == g.ID {
			g.StudentCount++
		}
	}
	g.Schedules = slices.Clone(g.Schedules)
	return g
}

func (r groupRepo) GetByID(ctx context.Context, centerID, id string) (group.Group, error) {
	defer r.s.lock()()
	g, ok := r.s.d.groups[id]
	if !ok || g.CenterID != centerID {
		return group.Group{}, pgx.ErrNoRows
	}
	return r.join(g), nil
}

func (r groupRepo) GetByIDForUpdate(ctx context.Context, centerID, id string) (group.Group, error) {
	return r.GetByID(ctx, centerID, id)
}

// nameTaken mirrors groups_teacher_name_key; expects s.mu held.
func (r groupRepo) nameTaken(g group.Group) bool {
	for _, other := range r.s.d.groups {
		if other.ID != g.ID && other.TeacherID == g.TeacherID && other.Name == g.Name {
			return true
		}
	}
	return false
}

func (r groupRepo) Create(ctx context.Context, g group.Group) (group.Group, error) {
	defer r.s.lock()()
	if r.nameTaken(g) {
		return group.Group{}, group.ErrGroupNameExists
	}
	g.ID = newID()
	g.Schedules = nil
	g.CreatedAt, g.UpdatedAt = r.s.Now(), r.s.Now()
	r.s.d.groups[g.ID] = g
	return r.join(g), nil
}

func (r groupRepo) Update(ctx context.Context, g group.Group) error {
	defer r.s.lock()()
	cur, ok := r.s.d.groups[g.ID]
	if !ok || cur.CenterID != g.CenterID {
		return pgx.ErrNoRows
	}
	g.TeacherID = cur.TeacherID
	if r.nameTaken(g) {
		return group.ErrGroupNameExists
	}
	cur.Name = g.Name
	cur.Description = g.Description
	cur.AcademicYearID = g.AcademicYearID
	cur.MaxStudents = g.MaxStudents
	cur.PaymentType = g.PaymentType
	cur.StudentPrice = g.StudentPrice
	cur.IsActive = g.IsActive
	cur.UpdatedAt = r.s.Now()
	r.s.d.groups[g.ID] = cur
	return nil
}

func (r groupRepo) Delete(ctx context.Context, centerID, id string) error {
	defer r.s.lock()()
	g, ok := r.s.d.groups[id]
	if !ok || g.CenterID != centerID {
		return pgx.ErrNoRows
	}
	delete(r.s.d.groups, id)
	for sid, st := range r.s.d.students {
		if st.GroupID != nil && *st.GroupID == id {
			st.GroupID = nil
			r.s.d.students[sid] = st
		}
	}
	for key, a := range r.s.d.attendances {
		if a.GroupID == id {
			delete(r.s.d.attendances, key)
		}
	}
	for pid, p := range r.s.d.payments {
		if p.GroupID == id {
			delete(r.s.d.payments, pid)
		}
	}
	return nil
}

func (r groupRepo) List(ctx context.Context, centerID string, filter group.GroupFilter) ([]group.Group, error) {
	defer r.s.lock()()
	var rows []group.Group
	for _, g := range r.s.d.groups {
		if g.CenterID != centerID {
			continue
		}
		if filter.TeacherID != nil && g.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.AcademicYearID != nil && (g.AcademicYearID == nil || *g.AcademicYearID != *filter.AcademicYearID) {
			continue
		}
		if filter.IsActive != nil && g.IsActive != *filter.IsActive {
			continue
		}
		rows = append(rows, r.join(g))
	}
	slices.SortFunc(rows, func(a, b group.Group) int { return strings.Compare(a.Name, b.Name) })
	return rows, nil
}

func (r groupRepo) ReplaceSchedules(ctx context.Context, groupID string, schedules []group.Schedule) ([]group.Schedule, error) {
	defer r.s.lock()()
	g, ok := r.s.d.groups[groupID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := make([]group.Schedule, len(schedules))
	for i, sc := range schedules {
		sc.ID = newID()
		sc.GroupID = groupID
		out[i] = sc
	}
	g.Schedules = out
	r.s.d.groups[groupID] = g
	return slices.Clone(out), nil
}

func (r groupRepo) ListActiveMonthly(ctx context.Context) ([]group.Group, error) {
	defer r.s.lock()()
	var rows []group.Group
	for _, g := range r.s.d.groups {
		if g.IsActive && g.PaymentType == group.PaymentTypeMonthly {
			rows = append(rows, r.join(g))
		}
	}
	return rows, nil
}

// ==================== Attendance ====================

type attendanceRepo struct{ s *Store }

func sessionKey(studentID, groupID string, date time.Time) string {
	return fmt.Sprintf("%s/%s/%s", studentID, groupID, date.Format(time.DateOnly))
}

// join fills student and group names; expects s.mu held.
func (r attendanceRepo) join(a attendance.Attendance) attendance.Attendance {
	a.StudentName = r.s.d.students[a.StudentID].Name
	a.GroupName = r.s.d.groups[a.GroupID].Name
	return a
}

func (r attendanceRepo) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	defer r.s.lock()()
	key := sessionKey(a.StudentID, a.GroupID, a.Date)
	now := r.s.Now()
	if cur, ok := r.s.d.attendances[key]; ok {
		cur.IsPresent = a.IsPresent
		cur.Notes = a.Notes
		cur.RecordedBy = a.RecordedBy
		cur.UpdatedAt = now
		r.s.d.attendances[key] = cur
		return r.join(cur), nil
	}
	a.ID = newID()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.d.attendances[key] = a
	return r.join(a), nil
}

func (r attendanceRepo) ListByGroupDate(ctx context.Context, centerID, groupID string, date time.Time) ([]attendance.Attendance, error) {
	defer r.s.lock()()
	var rows []attendance.Attendance
	for _, a := range r.s.d.attendances {
		if a.CenterID == centerID && a.GroupID == groupID && sameDay(a.Date, date) {
			rows = append(rows, r.join(a))
		}
	}
	slices.SortFunc(rows, func(a, b attendance.Attendance) int { return strings.Compare(a.StudentName, b.StudentName) })
	return rows, nil
}

func (r attendanceRepo) ListByStudent(ctx context.Context, centerID, studentID string, dr attendance.DateRange) ([]attendance.Attendance, error) {
	defer r.s.lock()()
	var rows []attendance.Attendance
	for _, a := range r.s.d.attendances {
		if a.CenterID == centerID && a.StudentID == studentID && inRange(a.Date, dr.From, dr.To) {
			rows = append(rows, r.join(a))
		}
	}
	slices.SortFunc(rows, func(a, b attendance.Attendance) int { return b.Date.Compare(a.Date) })
	return rows, nil
}

func (r attendanceRepo) SummaryByGroup(ctx context.Context, centerID, groupID string, dr attendance.DateRange) ([]attendance.StudentSummary, error) {
	defer r.s.lock()()
	byStudent := map[string]*attendance.StudentSummary{}
	for _, a := range r.s.d.attendances {
		if a.CenterID != centerID || a.GroupID != groupID || !inRange(a.Date, dr.From, dr.To) {
			continue
		}
		sum, ok := byStudent[a.StudentID]
		if !ok {
			sum = &attendance.StudentSummary{StudentID: a.StudentID, StudentName: r.s.d.students[a.StudentID].Name}
			byStudent[a.StudentID] = sum
		}
		if a.IsPresent {
			sum.Present++
		} else {
			sum.Absent++
		}
	}
	out := make([]attendance.StudentSummary, 0, len(byStudent))
	for _, sum := range byStudent {
		out = append(out, *sum)
	}
	slices.SortFunc(out, func(a, b attendance.StudentSummary) int { return strings.Compare(a.StudentName, b.StudentName) })
	return out, nil
}

func (r attendanceRepo) CountForDate(ctx context.Context, centerID string, date time.Time) (int, int, error) {
	defer r.s.lock()()
	present, total := 0, 0
	for _, a := range r.s.d.attendances {
		if a.CenterID == centerID && sameDay(a.Date, date) {
			total++
			if a.IsPresent {
				present++
			}
		}
	}
	return present, total, nil
}

// ==================== Payments ====================

type paymentRepo struct{ s *Store }

// join fills student and group names; expects s.mu held.
func (r paymentRepo) join(p payment.Payment) payment.Payment {
	p.StudentName = r.s.d.students[p.StudentID].Name
	p.GroupName = r.s.d.groups[p.GroupID].Name
	return p
}

// ownedBy reports whether p belongs to a group of teacherID; expects s.mu held.
func (r paymentRepo) ownedBy(p payment.Payment, teacherID *string) bool {
	return teacherID == nil || r.s.d.groups[p.GroupID].TeacherID == *teacherID
}

// find returns the payment of a billing slot; expects s.mu held.
func (r paymentRepo) find(p payment.Payment) (payment.Payment, bool) {
	for _, existing := range r.s.d.payments {
		if existing.StudentID == p.StudentID && existing.GroupID == p.GroupID &&
			existing.PaymentType == p.PaymentType && sameDay(existing.RelatedDate, p.RelatedDate) {
			return existing, true
		}
	}
	return payment.Payment{}, false
}

func (r paymentRepo) insert(p payment.Payment) payment.Payment {
	p.ID = newID()
	p.IsPaid, p.PaidAt = false, nil
	p.CreatedAt, p.UpdatedAt = r.s.Now(), r.s.Now()
	r.s.d.payments[p.ID] = p
	return p
}

func (r paymentRepo) GetByID(ctx context.Context, centerID, id string) (payment.Payment, error) {
	defer r.s.lock()()
	p, ok := r.s.d.payments[id]
	if !ok || p.CenterID != centerID {
		return payment.Payment{}, pgx.ErrNoRows
	}
	return r.join(p), nil
}

func (r paymentRepo) List(ctx context.Context, centerID string, filter payment.PaymentFilter) ([]payment.Payment, int64, error) {
	defer r.s.lock()()
	var rows []payment.Payment
	for _, p := range r.s.d.payments {
		switch {
		case p.CenterID != centerID,
			filter.StudentID != nil && p.StudentID != *filter.StudentID,
			filter.GroupID != nil && p.GroupID != *filter.GroupID,
			filter.PaymentType != nil && p.PaymentType != *filter.PaymentType,
			filter.IsPaid != nil && p.IsPaid != *filter.IsPaid,
			!inRange(p.RelatedDate, filter.From, filter.To),
			!r.ownedBy(p, filter.TeacherID):
			continue
		}
		rows = append(rows, r.join(p))
	}
	slices.SortFunc(rows, func(a, b payment.Payment) int {
		if c := b.RelatedDate.Compare(a.RelatedDate); c != 0 {
			return c
		}
		return strings.Compare(a.StudentName, b.StudentName)
	})
	return page(rows, filter.Page, filter.Limit), int64(len(rows)), nil
}

func (r paymentRepo) EnsureSessionPayment(ctx context.Context, p payment.Payment) (bool, error) {
	defer r.s.lock()()
	if _, ok := r.find(p); ok {
		return false, nil
	}
	r.insert(p)
	return true, nil
}

func (r paymentRepo) CreateMonthly(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	defer r.s.lock()()
	if _, ok := r.find(p); ok {
		return payment.Payment{}, payment.ErrPaymentExists
	}
	return r.join(r.insert(p)), nil
}

func (r paymentRepo) SetPaid(ctx context.Context, centerID, id string, paidAt *time.Time) error {
	defer r.s.lock()()
	p, ok := r.s.d.payments[id]
	if !ok || p.CenterID != centerID {
		return pgx.ErrNoRows
	}
	p.IsPaid = paidAt != nil
	p.PaidAt = paidAt
	p.UpdatedAt = r.s.Now()
	r.s.d.payments[id] = p
	return nil
}

func (r paymentRepo) Delete(ctx context.Context, centerID, id string) error {
	defer r.s.lock()()
	p, ok := r.s.d.payments[id]
	if !ok || p.CenterID != centerID {
		return pgx.ErrNoRows
	}
	delete(r.s.d.payments, id)
	return nil
}

func (r paymentRepo) GenerateMonthlyDues(ctx context.Context, month time.Time) (int64, error) {
	defer r.s.lock()()
	start := payment.MonthStart(month)
	var n int64
	for _, g := range r.s.d.groups {
		if !g.IsActive || g.PaymentType != group.PaymentTypeMonthly {
			continue
		}
		for _, st := range r.s.d.students {
			if !st.IsActive || st.GroupID == nil || *st.GroupID != g.ID {
				continue
			}
			due := payment.Payment{
				CenterID:    g.CenterID,
				StudentID:   st.ID,
				GroupID:     g.ID,
				PaymentType: group.PaymentTypeMonthly,
				RelatedDate: start,
				Amount:      g.StudentPrice,
			}
			if _, ok := r.find(due); ok {
				continue
			}
			r.insert(due)
			n++
		}
	}
	return n, nil
}

func (r paymentRepo) UnpaidTotal(ctx context.Context, centerID string, teacherID *string) (decimal.Decimal, int, error) {
	defer r.s.lock()()
	total, count := decimal.Zero, 0
	for _, p := range r.s.d.payments {
		if p.CenterID == centerID && !p.IsPaid && r.ownedBy(p, teacherID) {
			total = total.Add(p.Amount)
			count++
		}
	}
	return total, count, nil
}

func (r paymentRepo) MonthlyIncome(ctx context.Context, centerID string, teacherID *string, year int) ([]payment.MonthlyTotal, error) {
	defer r.s.lock()()
	byMonth := map[int]*payment.MonthlyTotal{}
	for _, p := range r.s.d.payments {
		if p.CenterID != centerID || !p.IsPaid || p.PaidAt == nil || p.PaidAt.Year() != year || !r.ownedBy(p, teacherID) {
			continue
		}
		m := int(p.PaidAt.Month())
		mt, ok := byMonth[m]
		if !ok {
			mt = &payment.MonthlyTotal{Month: m, Total: decimal.Zero}
			byMonth[m] = mt
		}
		mt.Total = mt.Total.Add(p.Amount)
		mt.Count++
	}
	out := make([]payment.MonthlyTotal, 0, len(byMonth))
	for _, mt := range byMonth {
		out = append(out, *mt)
	}
	slices.SortFunc(out, func(a, b payment.MonthlyTotal) int { return a.Month - b.Month })
	return out, nil
}

// ==================== Academic years ====================

type academicYearRepo struct{ s *Store }

func (r academicYearRepo) Create(ctx context.Context, year academicyear.AcademicYear) (academicyear.AcademicYear, error) {
	defer r.s.lock()()
	for _, y := range r.s.d.years {
		if y.Name == year.Name {
			return academicyear.AcademicYear{}, academicyear.ErrAcademicYearNameExists
		}
	}
	r.s.d.nextYearID++
	year.ID = r.s.d.nextYearID
	year.CreatedAt = r.s.Now()
	r.s.d.years[year.ID] = year
	return year, nil
}

func (r academicYearRepo) GetByID(ctx context.Context, id int) (academicyear.AcademicYear, error) {
	defer r.s.lock()()
	y, ok := r.s.d.years[id]
	if !ok {
		return academicyear.AcademicYear{}, pgx.ErrNoRows
	}
	return y, nil
}

func (r academicYearRepo) List(ctx context.Context) ([]academicyear.AcademicYear, error) {
	defer r.s.lock()()
	out := make([]academicyear.AcademicYear, 0, len(r.s.d.years))
	for _, y := range r.s.d.years {
		out = append(out, y)
	}
	slices.SortFunc(out, func(a, b academicyear.AcademicYear) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (r academicYearRepo) Delete(ctx context.Context, id int) error {
	defer r.s.lock()()
	if _, ok := r.s.d.years[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, g := range r.s.d.groups {
		if g.AcademicYearID != nil && *g.AcademicYearID == id {
			return academicyear.ErrAcademicYearInUse
		}
	}
	for _, st := range r.s.d.students {
		if st.AcademicYearID != nil && *st.AcademicYearID == id {
			return academicyear.ErrAcademicYearInUse
		}
	}
	delete(r.s.d.years, id)
	return nil
}
