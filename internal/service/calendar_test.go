package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/pkg/errors"
)

func newCalendarFixture(t *testing.T) (*CalendarService, *memLeaves, *memPermissions) {
	t.Helper()
	leaves := newMemLeaves()
	perms := newMemPermissions(model.PermissionType{BaseModel: model.BaseModel{ID: 1}, Name: "Medical", Active: true})
	return NewCalendarService(leaves, perms, 62), leaves, perms
}

func addLeave(t *testing.T, m *memLeaves, employeeID int64, state leave.State, start, end string) int64 {
	t.Helper()
	lr := &model.LeaveRequest{EmployeeID: employeeID, Status: state, StartDate: mustDate(start), EndDate: mustDate(end)}
	require.NoError(t, m.Create(context.Background(), lr))
	return lr.ID
}

func addPermission(t *testing.T, m *memPermissions, employeeID int64, state leave.State, start, end string) int64 {
	t.Helper()
	p := &model.Permission{
		EmployeeID: employeeID,
		TypeID:     1,
		Type:       m.types[1],
		Status:     state,
		StartDate:  mustDate(start),
		EndDate:    mustDate(end),
	}
	require.NoError(t, m.Create(context.Background(), p))
	return p.ID
}

func TestCalendarRangeLimit(t *testing.T) {
	svc, _, _ := newCalendarFixture(t)

	_, err := svc.Absences(context.Background(), hrActor, dto.CalendarQuery{From: "2025-01-01", To: "2025-03-05"})
	assert.ErrorIs(t, err, errors.CalendarRangeTooLarge)

	_, err = svc.Absences(context.Background(), hrActor, dto.CalendarQuery{From: "2025-01-01", To: "2025-03-04"})
	assert.NoError(t, err)

	_, err = svc.Absences(context.Background(), hrActor, dto.CalendarQuery{From: "2025-01-10", To: "2025-01-01"})
	assert.ErrorIs(t, err, errors.LeaveInvalidRange)
}

func TestCalendarPermissionOverridesVacation(t *testing.T) {
	svc, leaves, perms := newCalendarFixture(t)
	leaveID := addLeave(t, leaves, 7, leave.Approved, "2025-03-03", "2025-03-05")
	permID := addPermission(t, perms, 7, leave.Pending, "2025-03-04", "2025-03-04")

	res, err := svc.Absences(context.Background(), hrActor, dto.CalendarQuery{From: "2025-03-01", To: "2025-03-31"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)

	assert.Equal(t, "2025-03-03", res.Entries[0].Date)
	assert.Equal(t, AbsenceVacation, res.Entries[0].Kind)
	assert.Equal(t, leaveID, res.Entries[0].RequestID)

	assert.Equal(t, "2025-03-04", res.Entries[1].Date)
	assert.Equal(t, AbsencePermission, res.Entries[1].Kind)
	assert.Equal(t, permID, res.Entries[1].RequestID)
	assert.Equal(t, "Medical", res.Entries[1].TypeName)

	assert.Equal(t, AbsenceVacation, res.Entries[2].Kind)
}

func TestCalendarClipsToRange(t *testing.T) {
	svc, leaves, _ := newCalendarFixture(t)
	addLeave(t, leaves, 7, leave.Approved, "2025-02-26", "2025-03-02")

	res, err := svc.Absences(context.Background(), hrActor, dto.CalendarQuery{From: "2025-03-01", To: "2025-03-10"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "2025-03-01", res.Entries[0].Date)
	assert.Equal(t, "2025-03-02", res.Entries[1].Date)
}

func TestCalendarStates(t *testing.T) {
	svc, leaves, _ := newCalendarFixture(t)
	addLeave(t, leaves, 7, leave.Pending, "2025-03-03", "2025-03-03")
	addLeave(t, leaves, 7, leave.Rejected, "2025-03-04", "2025-03-04")
	addLeave(t, leaves, 7, leave.Cancelled, "2025-03-05", "2025-03-05")
	ctx := context.Background()

	res, err := svc.Absences(ctx, hrActor, dto.CalendarQuery{From: "2025-03-01", To: "2025-03-31"})
	require.NoError(t, err)
	assert.Equal(t, []string{"PEND", "APROB"}, res.States)
	assert.Len(t, res.Entries, 1)

	res, err = svc.Absences(ctx, hrActor, dto.CalendarQuery{From: "2025-03-01", To: "2025-03-31", IncludeRejected: true, IncludeCancelled: true})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 3)

	addLeave(t, leaves, 8, leave.Approved, "2025-03-06", "2025-03-06")
	noPending := false
	res, err = svc.Absences(ctx, hrActor, dto.CalendarQuery{From: "2025-03-01", To: "2025-03-31", IncludePending: &noPending})
	require.NoError(t, err)
	assert.Equal(t, []string{"APROB"}, res.States)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, int64(8), res.Entries[0].EmployeeID)

	res, err = svc.Absences(ctx, hrActor, dto.CalendarQuery{From: "2025-03-01", To: "2025-03-31", State: "RECH"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "RECH", res.Entries[0].State)
}

func TestCalendarEmployeeScope(t *testing.T) {
	svc, leaves, _ := newCalendarFixture(t)
	addLeave(t, leaves, 7, leave.Approved, "2025-03-03", "2025-03-03")
	addLeave(t, leaves, 8, leave.Approved, "2025-03-03", "2025-03-03")
	ctx := context.Background()

	res, err := svc.Absences(ctx, employeeActor(20, 7), dto.CalendarQuery{From: "2025-03-01", To: "2025-03-31"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, int64(7), res.Entries[0].EmployeeID)

	_, err = svc.Absences(ctx, employeeActor(20, 7), dto.CalendarQuery{EmployeeID: int64Ptr(8), From: "2025-03-01", To: "2025-03-31"})
	assert.ErrorIs(t, err, errors.Forbidden)
}
