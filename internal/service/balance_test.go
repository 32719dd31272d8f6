package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HRCore/internal/cache"
	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/pkg/errors"
)

type balanceFixture struct {
	svc      *BalanceService
	balances *memBalances
	leaves   *memLeaves
	locker   *memLocker
	queue    *recordingQueue
}

func newBalanceFixture(employees ...model.Employee) balanceFixture {
	f := balanceFixture{
		balances: newMemBalances(),
		leaves:   newMemLeaves(),
		locker:   newMemLocker(),
		queue:    &recordingQueue{},
	}
	f.svc = NewBalanceService(BalanceDeps{
		Balances:  f.balances,
		Employees: newMemEmployees(employees...),
		Policies: memPolicies{
			{BaseModel: model.BaseModel{ID: 1}, YearsFrom: 1, YearsTo: 4, Days: 6, MaxCarryover: 2, Active: true},
			{BaseModel: model.BaseModel{ID: 2}, YearsFrom: 5, YearsTo: 10, Days: 12, MaxCarryover: 4, Active: true},
		},
		Leaves:  f.leaves,
		Locker:  f.locker,
		Queue:   f.queue,
		Workers: 4,
	})
	return f
}

func hired(id int64, date string) model.Employee {
	return model.Employee{BaseModel: model.BaseModel{ID: id}, Status: model.EmployeeActive, HireDate: datePtr(date)}
}

func (f balanceFixture) approved(t *testing.T, employeeID int64, start, end string, days int64) {
	t.Helper()
	require.NoError(t, f.leaves.Create(context.Background(), &model.LeaveRequest{
		EmployeeID:   employeeID,
		Status:       leave.Approved,
		StartDate:    mustDate(start),
		EndDate:      mustDate(end),
		BusinessDays: decimal.NewFromInt(days),
	}))
}

func TestRecomputeEndToEnd(t *testing.T) {
	f := newBalanceFixture(hired(7, "2020-01-01"))
	f.approved(t, 7, "2025-03-03", "2025-03-07", 5)

	res, err := f.svc.Recompute(context.Background(), RecomputeOptions{Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Updated)
	assert.Empty(t, res.Failures)

	row, err := f.balances.Get(context.Background(), 7, 2025)
	require.NoError(t, err)
	assert.Equal(t, "12", row.DaysAssigned.String())
	assert.Equal(t, "0", row.DaysCarried.String())
	assert.Equal(t, "5", row.DaysTaken.String())
	assert.Equal(t, "7", row.DaysAvailable.String())
	assert.Equal(t, mustDate("2025-12-31"), row.ExpiresOn)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newBalanceFixture(hired(7, "2020-01-01"), hired(8, "2023-06-15"))
	f.approved(t, 7, "2025-03-03", "2025-03-07", 5)
	ctx := context.Background()

	_, err := f.svc.Recompute(ctx, RecomputeOptions{Year: 2025})
	require.NoError(t, err)
	first := map[int64]model.AnnualBalance{}
	for _, id := range []int64{7, 8} {
		b, err := f.balances.Get(ctx, id, 2025)
		require.NoError(t, err)
		first[id] = *b
	}

	res, err := f.svc.Recompute(ctx, RecomputeOptions{Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	for _, id := range []int64{7, 8} {
		b, err := f.balances.Get(ctx, id, 2025)
		require.NoError(t, err)
		assert.True(t, first[id].SameValues(*b), "employee %d changed between runs", id)
	}
}

func TestRecomputeCarryoverFromPreviousYear(t *testing.T) {
	f := newBalanceFixture(hired(7, "2015-01-01"))
	ctx := context.Background()
	require.NoError(t, f.balances.Upsert(ctx, &model.AnnualBalance{
		EmployeeID:    7,
		Year:          2024,
		DaysAvailable: decimal.NewFromInt(9),
	}))

	_, err := f.svc.Recompute(ctx, RecomputeOptions{Year: 2025})
	require.NoError(t, err)

	row, err := f.balances.Get(ctx, 7, 2025)
	require.NoError(t, err)
	assert.Equal(t, "4", row.DaysCarried.String())
	assert.Equal(t, "16", row.DaysAvailable.String())
}

func TestRecomputeDryRunDoesNotPersist(t *testing.T) {
	f := newBalanceFixture(hired(7, "2020-01-01"))
	f.approved(t, 7, "2025-03-03", "2025-03-07", 5)

	res, err := f.svc.Recompute(context.Background(), RecomputeOptions{Year: 2025, DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Updated)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "7", res.Items[0].DaysAvailable.String())
	assert.Equal(t, 0, f.balances.writes)
}

func TestRecomputeRecordsLockedEmployee(t *testing.T) {
	f := newBalanceFixture(hired(7, "2020-01-01"), hired(8, "2020-01-01"))
	f.locker.held[cache.BalanceLockKey(8, 2025)] = true

	res, err := f.svc.Recompute(context.Background(), RecomputeOptions{Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, int64(8), res.Failures[0].EmployeeID)
	assert.Equal(t, errors.BalanceLocked.Message, res.Failures[0].Error)

	// 本次获取的锁都已释放
	assert.False(t, f.locker.held[cache.BalanceLockKey(7, 2025)])
}

func TestRecomputeActiveOnlyAndSingleEmployee(t *testing.T) {
	inactive := hired(9, "2010-01-01")
	inactive.Status = model.EmployeeInactive
	f := newBalanceFixture(hired(7, "2020-01-01"), hired(8, "2021-01-01"), inactive)
	ctx := context.Background()

	res, err := f.svc.Recompute(ctx, RecomputeOptions{Year: 2025, ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)

	res, err = f.svc.Recompute(ctx, RecomputeOptions{Year: 2025, EmployeeID: int64Ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, "0", res.Items[0].DaysAssigned.String(), "no tier covers 15 years")
}

func TestRebuildAsyncEnqueues(t *testing.T) {
	f := newBalanceFixture(hired(7, "2020-01-01"))
	year := 2025

	res, id, err := f.svc.Rebuild(context.Background(), hrActor, dto.RebuildRequest{Year: &year, Async: true, ActiveOnly: true})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "recompute_1", id)
	require.Len(t, f.queue.messages, 1)
	assert.Equal(t, 2025, f.queue.messages[0].Year)
	assert.True(t, f.queue.messages[0].ActiveOnly)
	assert.Equal(t, 0, f.balances.writes)
}

func TestRebuildRequiresHR(t *testing.T) {
	f := newBalanceFixture(hired(7, "2020-01-01"))
	_, _, err := f.svc.Rebuild(context.Background(), employeeActor(20, 7), dto.RebuildRequest{})
	assert.ErrorIs(t, err, errors.Forbidden)
}
