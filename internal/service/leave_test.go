package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/queue"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/pkg/workday"
)

type leaveFixture struct {
	svc    *LeaveService
	store  *memLeaves
	events *recordingEvents
}

func newLeaveFixture(holidays ...string) leaveFixture {
	var hs fixedHolidays
	for _, h := range holidays {
		hs = append(hs, mustDate(h))
	}
	employees := newMemEmployees(
		model.Employee{BaseModel: model.BaseModel{ID: 7}, Status: model.EmployeeActive},
		model.Employee{
			BaseModel:    model.BaseModel{ID: 8},
			Status:       model.EmployeeActive,
			WorkSchedule: &model.WorkSchedule{WorkMask: 0b1111110}, // 周一至周六
		},
	)
	store := newMemLeaves()
	events := &recordingEvents{}
	return leaveFixture{
		svc:    NewLeaveService(store, employees, hs, events, workday.DefaultMask),
		store:  store,
		events: events,
	}
}

func (f leaveFixture) create(t *testing.T, start, end string) *model.LeaveRequest {
	t.Helper()
	lr, err := f.svc.Create(context.Background(), hrActor, dto.CreateLeaveRequest{
		EmployeeID: int64Ptr(7),
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)
	return lr
}

func TestLeaveCreateCountsBusinessDays(t *testing.T) {
	f := newLeaveFixture("2025-03-05")
	lr := f.create(t, "2025-03-03", "2025-03-09")

	assert.Equal(t, leave.Pending, lr.Status)
	assert.Equal(t, "4", lr.BusinessDays.String())
	assert.Equal(t, int64(1), *lr.CreatedBy)
}

func TestLeaveCreateWeekendOnly(t *testing.T) {
	f := newLeaveFixture()
	_, err := f.svc.Create(context.Background(), hrActor, dto.CreateLeaveRequest{
		EmployeeID: int64Ptr(7),
		StartDate:  "2025-01-11",
		EndDate:    "2025-01-12",
	})
	assert.ErrorIs(t, err, errors.LeaveNoBusinessDays)
}

func TestLeaveCreateRejectsReversedRange(t *testing.T) {
	f := newLeaveFixture()
	_, err := f.svc.Create(context.Background(), hrActor, dto.CreateLeaveRequest{
		EmployeeID: int64Ptr(7),
		StartDate:  "2025-01-10",
		EndDate:    "2025-01-06",
	})
	assert.ErrorIs(t, err, errors.LeaveInvalidRange)
}

func TestLeaveCreateOwnership(t *testing.T) {
	f := newLeaveFixture()
	ctx := context.Background()

	// 普通员工缺省为本人
	lr, err := f.svc.Create(ctx, employeeActor(20, 7), dto.CreateLeaveRequest{StartDate: "2025-01-06", EndDate: "2025-01-07"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), lr.EmployeeID)

	_, err = f.svc.Create(ctx, employeeActor(20, 7), dto.CreateLeaveRequest{
		EmployeeID: int64Ptr(8),
		StartDate:  "2025-01-06",
		EndDate:    "2025-01-07",
	})
	assert.ErrorIs(t, err, errors.Forbidden)
}

func TestLeaveApproveTwiceConflicts(t *testing.T) {
	f := newLeaveFixture()
	ctx := context.Background()
	lr := f.create(t, "2025-03-03", "2025-03-07")

	approved, err := f.svc.Approve(ctx, hrActor, lr.ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, leave.Approved, approved.Status)
	assert.Equal(t, "ok", approved.ResolverComment)
	require.NotNil(t, approved.ResolvedBy)

	_, err = f.svc.Approve(ctx, hrActor, lr.ID, "")
	assert.ErrorIs(t, err, errors.LeaveNotInExpectedState)
}

func TestLeaveApproveThenCancel(t *testing.T) {
	f := newLeaveFixture()
	ctx := context.Background()
	lr := f.create(t, "2025-03-03", "2025-03-07")

	_, err := f.svc.Approve(ctx, hrActor, lr.ID, "")
	require.NoError(t, err)

	// 本人可取消已批准的申请
	cancelled, err := f.svc.Cancel(ctx, employeeActor(20, 7), lr.ID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, leave.Cancelled, cancelled.Status)
}

func TestLeaveRejectThenCancelFails(t *testing.T) {
	f := newLeaveFixture()
	ctx := context.Background()
	lr := f.create(t, "2025-03-03", "2025-03-07")

	_, err := f.svc.Reject(ctx, hrActor, lr.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, hrActor, lr.ID, "")
	assert.ErrorIs(t, err, errors.LeaveNotInExpectedState)
}

func TestLeaveTransitionAuthorization(t *testing.T) {
	f := newLeaveFixture()
	ctx := context.Background()
	lr := f.create(t, "2025-03-03", "2025-03-07")

	_, err := f.svc.Approve(ctx, employeeActor(20, 7), lr.ID, "")
	assert.ErrorIs(t, err, errors.Forbidden)

	_, err = f.svc.Cancel(ctx, employeeActor(21, 8), lr.ID, "")
	assert.ErrorIs(t, err, errors.Forbidden)

	stored, err := f.store.Get(ctx, lr.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.Pending, stored.Status)
}

func TestLeaveTransitionNotFound(t *testing.T) {
	f := newLeaveFixture()
	_, err := f.svc.Approve(context.Background(), hrActor, 404, "")
	assert.ErrorIs(t, err, errors.LeaveNotFound)
}

func TestLeaveTransitionPublishesEvent(t *testing.T) {
	f := newLeaveFixture()
	lr := f.create(t, "2024-12-30", "2025-01-03")

	_, err := f.svc.Approve(context.Background(), hrActor, lr.ID, "")
	require.NoError(t, err)

	require.Len(t, f.events.events, 1)
	evt := f.events.events[0]
	assert.Equal(t, queue.EventLeaveStateChanged, evt.eventType)
	assert.Equal(t, "PEND", evt.payload.From)
	assert.Equal(t, "APROB", evt.payload.To)
	assert.Equal(t, []int{2024, 2025}, evt.payload.Years)
	assert.Equal(t, int64(7), evt.payload.EmployeeID)
}

func TestLeaveUpdatePendingOnly(t *testing.T) {
	f := newLeaveFixture()
	ctx := context.Background()
	lr := f.create(t, "2025-03-03", "2025-03-07")

	updated, err := f.svc.Update(ctx, hrActor, lr.ID, dto.UpdateLeaveRequest{StartDate: "2025-03-03", EndDate: "2025-03-04"})
	require.NoError(t, err)
	assert.Equal(t, "2", updated.BusinessDays.String())

	_, err = f.svc.Approve(ctx, hrActor, lr.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, hrActor, lr.ID, dto.UpdateLeaveRequest{StartDate: "2025-03-03", EndDate: "2025-03-05"})
	assert.ErrorIs(t, err, errors.LeaveNotInExpectedState)
}

func TestLeaveSimulate(t *testing.T) {
	f := newLeaveFixture("2025-01-08")
	ctx := context.Background()

	res, err := f.svc.Simulate(ctx, hrActor, dto.SimulateQuery{Start: "2025-01-06", End: "2025-01-11"})
	require.NoError(t, err)
	assert.Equal(t, "4", res.BusinessDays.String())

	// 员工 8 周六也上班
	res, err = f.svc.Simulate(ctx, hrActor, dto.SimulateQuery{Start: "2025-01-06", End: "2025-01-11", EmployeeID: int64Ptr(8)})
	require.NoError(t, err)
	assert.Equal(t, "5", res.BusinessDays.String())

	res, err = f.svc.Simulate(ctx, hrActor, dto.SimulateQuery{Start: "2025-01-10", End: "2025-01-06"})
	require.NoError(t, err)
	assert.True(t, res.BusinessDays.IsZero())
}

func TestLeaveListScopedToOwnEmployee(t *testing.T) {
	f := newLeaveFixture()
	ctx := context.Background()
	f.create(t, "2025-03-03", "2025-03-07")
	_, err := f.svc.Create(ctx, hrActor, dto.CreateLeaveRequest{EmployeeID: int64Ptr(8), StartDate: "2025-03-03", EndDate: "2025-03-04"})
	require.NoError(t, err)

	items, total, err := f.svc.List(ctx, employeeActor(21, 8), dto.RequestQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(8), items[0].EmployeeID)

	_, _, err = f.svc.List(ctx, employeeActor(21, 8), dto.RequestQuery{EmployeeID: int64Ptr(7)})
	assert.ErrorIs(t, err, errors.Forbidden)
}

type countingHolidays struct {
	mu    sync.Mutex
	calls int
}

func (h *countingHolidays) Set(context.Context, time.Time, time.Time) (workday.Holidays, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	return workday.NewHolidays(), nil
}

func TestLeaveRangeLimit(t *testing.T) {
	holidays := &countingHolidays{}
	employees := newMemEmployees(model.Employee{BaseModel: model.BaseModel{ID: 7}, Status: model.EmployeeActive})
	store := newMemLeaves()
	svc := NewLeaveService(store, employees, holidays, &recordingEvents{}, workday.DefaultMask)
	ctx := context.Background()

	_, err := svc.Create(ctx, hrActor, dto.CreateLeaveRequest{EmployeeID: int64Ptr(7), StartDate: "2025-01-06", EndDate: "2065-01-06"})
	assert.ErrorIs(t, err, errors.LeaveInvalidRange)

	_, err = svc.Simulate(ctx, hrActor, dto.SimulateQuery{Start: "0001-01-01", End: "9999-12-31"})
	assert.ErrorIs(t, err, errors.LeaveInvalidRange)

	assert.Zero(t, holidays.calls)
	_, total, err := store.List(ctx, repository.RequestFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	// 闰年整年 366 天仍可申请
	lr, err := svc.Create(ctx, hrActor, dto.CreateLeaveRequest{EmployeeID: int64Ptr(7), StartDate: "2024-01-01", EndDate: "2024-12-31"})
	require.NoError(t, err)
	assert.Equal(t, "262", lr.BusinessDays.String())

	_, err = svc.Create(ctx, hrActor, dto.CreateLeaveRequest{EmployeeID: int64Ptr(7), StartDate: "2024-01-01", EndDate: "2025-01-01"})
	assert.ErrorIs(t, err, errors.LeaveInvalidRange)
}

func TestLeaveConcurrentApproveReject(t *testing.T) {
	for i := 0; i < 25; i++ {
		f := newLeaveFixture()
		lr := f.create(t, "2025-03-03", "2025-03-07")

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			errs  = make([]error, 2)
		)
		actions := []func() error{
			func() error { _, err := f.svc.Approve(context.Background(), hrActor, lr.ID, ""); return err },
			func() error { _, err := f.svc.Reject(context.Background(), hrActor, lr.ID, ""); return err },
		}
		for j, act := range actions {
			wg.Add(1)
			go func(j int, act func() error) {
				defer wg.Done()
				<-start
				errs[j] = act()
			}(j, act)
		}
		close(start)
		wg.Wait()

		var ok, conflicts int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case stderrors.Is(err, errors.LeaveNotInExpectedState):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, 1, conflicts)

		got, err := f.store.Get(context.Background(), lr.ID)
		require.NoError(t, err)
		assert.Contains(t, []leave.State{leave.Approved, leave.Rejected}, got.Status)
		assert.Len(t, f.events.events, 1)
	}
}
