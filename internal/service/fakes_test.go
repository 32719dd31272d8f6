package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"HRCore/internal/authz"
	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/queue"
	"HRCore/internal/repository"
	"HRCore/pkg/workday"
	"HRCore/utils"
)

func mustDate(s string) time.Time {
	t, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := mustDate(s)
	return &t
}

func int64Ptr(v int64) *int64 { return &v }

var hrActor = authz.Actor{AccountID: 1, Roles: []authz.Role{authz.RoleHR}}

func employeeActor(accountID, employeeID int64) authz.Actor {
	return authz.Actor{AccountID: accountID, EmployeeID: &employeeID, Roles: []authz.Role{authz.RoleEmployee}}
}

func inRange(start, end time.Time, from, to *time.Time) bool {
	if from != nil && end.Before(*from) {
		return false
	}
	if to != nil && start.After(*to) {
		return false
	}
	return true
}

func hasState(states []leave.State, s leave.State) bool {
	if len(states) == 0 {
		return true
	}
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}

// ---------- employees ----------

type memEmployees struct {
	rows map[int64]model.Employee
}

func newMemEmployees(items ...model.Employee) *memEmployees {
	m := &memEmployees{rows: map[int64]model.Employee{}}
	for _, e := range items {
		m.rows[e.ID] = e
	}
	return m
}

func (m *memEmployees) Get(_ context.Context, id int64) (*model.Employee, error) {
	e, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (m *memEmployees) List(_ context.Context, f repository.EmployeeFilter) ([]model.Employee, int64, error) {
	var out []model.Employee
	for _, e := range m.rows {
		if f.Status == "" || e.Status == f.Status {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memEmployees) Create(_ context.Context, e *model.Employee) error {
	e.ID = int64(len(m.rows) + 1)
	m.rows[e.ID] = *e
	return nil
}

func (m *memEmployees) Update(_ context.Context, e *model.Employee) error {
	m.rows[e.ID] = *e
	return nil
}

func (m *memEmployees) ListForRecompute(_ context.Context, employeeID *int64, activeOnly bool) ([]model.Employee, error) {
	var out []model.Employee
	for _, e := range m.rows {
		if employeeID != nil && e.ID != *employeeID {
			continue
		}
		if activeOnly && e.Status != model.EmployeeActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------- holidays ----------

type fixedHolidays []time.Time

func (h fixedHolidays) Set(context.Context, time.Time, time.Time) (workday.Holidays, error) {
	return workday.NewHolidays(h...), nil
}

// ---------- leave requests ----------

type memLeaves struct {
	mu   sync.Mutex
	rows map[int64]*model.LeaveRequest
	next int64
}

func newMemLeaves() *memLeaves {
	return &memLeaves{rows: map[int64]*model.LeaveRequest{}}
}

func (m *memLeaves) Create(_ context.Context, lr *model.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	lr.ID = m.next
	cp := *lr
	m.rows[lr.ID] = &cp
	return nil
}

func (m *memLeaves) Get(_ context.Context, id int64) (*model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lr, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *lr
	return &cp, nil
}

func (m *memLeaves) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memLeaves) filter(f repository.RequestFilter) []model.LeaveRequest {
	var out []model.LeaveRequest
	for _, lr := range m.rows {
		if f.EmployeeID != nil && lr.EmployeeID != *f.EmployeeID {
			continue
		}
		if !hasState(f.States, lr.Status) || !inRange(lr.StartDate, lr.EndDate, f.From, f.To) {
			continue
		}
		out = append(out, *lr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memLeaves) List(_ context.Context, f repository.RequestFilter) ([]model.LeaveRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(f)
	return out, int64(len(out)), nil
}

func (m *memLeaves) ListOverlapping(_ context.Context, f repository.RequestFilter) ([]model.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(f), nil
}

func (m *memLeaves) Transition(_ context.Context, id int64, from []leave.State, to leave.State, res model.Resolution) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lr, ok := m.rows[id]
	if !ok || !hasState(from, lr.Status) {
		return 0, nil
	}
	by, at := res.By, res.At
	lr.Status, lr.ResolvedBy, lr.ResolvedAt, lr.ResolverComment = to, &by, &at, res.Comment
	return 1, nil
}

func (m *memLeaves) UpdatePending(_ context.Context, lr *model.LeaveRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[lr.ID]
	if !ok || cur.Status != leave.Pending {
		return 0, nil
	}
	cp := *lr
	m.rows[lr.ID] = &cp
	return 1, nil
}

func (m *memLeaves) SumApproved(_ context.Context, employeeID int64, from, to time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, lr := range m.rows {
		if lr.EmployeeID == employeeID && lr.Status == leave.Approved && inRange(lr.StartDate, lr.EndDate, &from, &to) {
			total = total.Add(lr.BusinessDays)
		}
	}
	return total, nil
}

// ---------- permissions ----------

type memPermissions struct {
	types map[int64]*model.PermissionType
	rows  map[int64]*model.Permission
	next  int64
}

func newMemPermissions(types ...model.PermissionType) *memPermissions {
	m := &memPermissions{types: map[int64]*model.PermissionType{}, rows: map[int64]*model.Permission{}}
	for i := range types {
		t := types[i]
		m.types[t.ID] = &t
	}
	return m
}

func (m *memPermissions) GetType(_ context.Context, id int64) (*model.PermissionType, error) {
	t, ok := m.types[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memPermissions) ListTypes(_ context.Context, activeOnly bool) ([]model.PermissionType, error) {
	var out []model.PermissionType
	for _, t := range m.types {
		if !activeOnly || t.Active {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memPermissions) SaveType(_ context.Context, t *model.PermissionType) error {
	if t.ID == 0 {
		t.ID = int64(len(m.types) + 1)
	}
	cp := *t
	m.types[t.ID] = &cp
	return nil
}

func (m *memPermissions) Create(_ context.Context, p *model.Permission) error {
	m.next++
	p.ID = m.next
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPermissions) Get(_ context.Context, id int64) (*model.Permission, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPermissions) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memPermissions) filter(f repository.RequestFilter) []model.Permission {
	var out []model.Permission
	for _, p := range m.rows {
		if f.EmployeeID != nil && p.EmployeeID != *f.EmployeeID {
			continue
		}
		if !hasState(f.States, p.Status) || !inRange(p.StartDate, p.EndDate, f.From, f.To) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memPermissions) List(_ context.Context, f repository.RequestFilter) ([]model.Permission, int64, error) {
	out := m.filter(f)
	return out, int64(len(out)), nil
}

func (m *memPermissions) ListOverlapping(_ context.Context, f repository.RequestFilter) ([]model.Permission, error) {
	return m.filter(f), nil
}

func (m *memPermissions) Transition(_ context.Context, id int64, from []leave.State, to leave.State, res model.Resolution) (int64, error) {
	p, ok := m.rows[id]
	if !ok || !hasState(from, p.Status) {
		return 0, nil
	}
	by, at := res.By, res.At
	p.Status, p.ResolvedBy, p.ResolvedAt, p.ResolverComment = to, &by, &at, res.Comment
	return 1, nil
}

// ---------- policy / balances ----------

type memPolicies []model.VacationPolicyTier

func (m memPolicies) Get(_ context.Context, id int64) (*model.VacationPolicyTier, error) {
	for _, t := range m {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memPolicies) List(_ context.Context, activeOnly bool) ([]model.VacationPolicyTier, error) {
	var out []model.VacationPolicyTier
	for _, t := range m {
		if !activeOnly || t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memPolicies) Save(context.Context, *model.VacationPolicyTier) error {
	return nil
}

type balanceKey struct {
	employeeID int64
	year       int
}

type memBalances struct {
	mu     sync.Mutex
	rows   map[balanceKey]model.AnnualBalance
	writes int
}

func newMemBalances() *memBalances {
	return &memBalances{rows: map[balanceKey]model.AnnualBalance{}}
}

func (m *memBalances) Get(_ context.Context, employeeID int64, year int) (*model.AnnualBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[balanceKey{employeeID, year}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (m *memBalances) Upsert(_ context.Context, b *model.AnnualBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.rows[balanceKey{b.EmployeeID, b.Year}] = *b
	return nil
}

func (m *memBalances) List(_ context.Context, f repository.BalanceFilter) ([]model.AnnualBalance, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AnnualBalance
	for _, b := range m.rows {
		if f.EmployeeID != nil && b.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.Year != nil && b.Year != *f.Year {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (m *memBalances) ListYear(ctx context.Context, year int) ([]model.AnnualBalance, []model.Employee, error) {
	items, _, err := m.List(ctx, repository.BalanceFilter{Year: &year})
	return items, nil, err
}

// ---------- locks / events / queue ----------

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker(held ...string) *memLocker {
	l := &memLocker{held: map[string]bool{}}
	for _, k := range held {
		l.held[k] = true
	}
	return l
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

type publishedEvent struct {
	eventType string
	key       string
	payload   queue.StateChangedPayload
}

type recordingEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingEvents) PublishEvent(_ context.Context, eventType, key string, payload interface{}) error {
	p, ok := payload.(queue.StateChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{eventType: eventType, key: key, payload: p})
	return nil
}

type recordingQueue struct {
	messages []queue.BalanceRecomputeMessage
}

func (q *recordingQueue) RequestRecompute(_ context.Context, msg queue.BalanceRecomputeMessage) (string, error) {
	msg.MessageID = fmt.Sprintf("recompute_%d", len(q.messages)+1)
	q.messages = append(q.messages, msg)
	return msg.MessageID, nil
}
