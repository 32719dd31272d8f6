package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/queue"
	"HRCore/pkg/errors"
)

func newPermissionFixture() (*PermissionService, *recordingEvents) {
	events := &recordingEvents{}
	store := newMemPermissions(
		model.PermissionType{BaseModel: model.BaseModel{ID: 1}, Name: "Personal", Active: true},
		model.PermissionType{BaseModel: model.BaseModel{ID: 2}, Name: "Medical", RequiresEvidence: true, Active: true},
		model.PermissionType{BaseModel: model.BaseModel{ID: 3}, Name: "Legacy", Active: false},
	)
	return NewPermissionService(store, events), events
}

func hours(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestPermissionHoursRule(t *testing.T) {
	svc, _ := newPermissionFixture()
	ctx := context.Background()
	owner := employeeActor(20, 7)

	_, err := svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 1, StartDate: "2025-03-03", EndDate: "2025-03-04", Hours: hours("2")})
	assert.ErrorIs(t, err, errors.PermissionHoursInvalid)

	_, err = svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 1, StartDate: "2025-03-03", EndDate: "2025-03-03", Hours: hours("-1")})
	assert.ErrorIs(t, err, errors.PermissionHoursInvalid)

	p, err := svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 1, StartDate: "2025-03-03", EndDate: "2025-03-03", Hours: hours("2.5")})
	require.NoError(t, err)
	assert.Equal(t, "2.5", p.Hours.String())
	assert.Equal(t, leave.Pending, p.Status)
	assert.Equal(t, int64(7), p.EmployeeID)

	// 不带小时数时允许跨天
	_, err = svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 1, StartDate: "2025-03-03", EndDate: "2025-03-05"})
	assert.NoError(t, err)
}

func TestPermissionTypeRules(t *testing.T) {
	svc, _ := newPermissionFixture()
	ctx := context.Background()
	owner := employeeActor(20, 7)

	_, err := svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 3, StartDate: "2025-03-03", EndDate: "2025-03-03"})
	assert.ErrorIs(t, err, errors.PermissionTypeNotFound)

	_, err = svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 99, StartDate: "2025-03-03", EndDate: "2025-03-03"})
	assert.ErrorIs(t, err, errors.PermissionTypeNotFound)

	_, err = svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 2, StartDate: "2025-03-03", EndDate: "2025-03-03", Reason: "  "})
	assert.ErrorIs(t, err, errors.PermissionEvidence)

	p, err := svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 2, StartDate: "2025-03-03", EndDate: "2025-03-03", Reason: "clinic"})
	require.NoError(t, err)
	assert.Equal(t, "clinic", p.Reason)
}

func TestPermissionRejectsOtherEmployee(t *testing.T) {
	svc, _ := newPermissionFixture()
	_, err := svc.Create(context.Background(), employeeActor(20, 7), dto.CreatePermissionRequest{
		EmployeeID: int64Ptr(8), TypeID: 1, StartDate: "2025-03-03", EndDate: "2025-03-03",
	})
	assert.ErrorIs(t, err, errors.Forbidden)
}

func TestPermissionTransitions(t *testing.T) {
	svc, events := newPermissionFixture()
	ctx := context.Background()
	owner := employeeActor(20, 7)

	p, err := svc.Create(ctx, owner, dto.CreatePermissionRequest{TypeID: 1, StartDate: "2025-03-03", EndDate: "2025-03-03"})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, owner, p.ID, "")
	assert.ErrorIs(t, err, errors.Forbidden)

	approved, err := svc.Approve(ctx, hrActor, p.ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, leave.Approved, approved.Status)
	assert.Equal(t, "ok", approved.ResolverComment)

	_, err = svc.Reject(ctx, hrActor, p.ID, "")
	assert.ErrorIs(t, err, errors.LeaveNotInExpectedState)

	cancelled, err := svc.Cancel(ctx, owner, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, leave.Cancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, hrActor, 404, "")
	assert.ErrorIs(t, err, errors.PermissionNotFound)

	require.Len(t, events.events, 2)
	assert.Equal(t, queue.EventPermissionStateChanged, events.events[0].eventType)
	assert.Equal(t, "permission:1", events.events[0].key)
	assert.Equal(t, "APROB", events.events[1].payload.From)
	assert.Equal(t, "CANC", events.events[1].payload.To)
}

func TestPermissionSaveType(t *testing.T) {
	svc, _ := newPermissionFixture()
	ctx := context.Background()

	_, err := svc.SaveType(ctx, employeeActor(20, 7), 0, dto.PermissionTypeRequest{Name: "Study"})
	assert.ErrorIs(t, err, errors.Forbidden)

	created, err := svc.SaveType(ctx, hrActor, 0, dto.PermissionTypeRequest{Name: " Study "})
	require.NoError(t, err)
	assert.Equal(t, "Study", created.Name)
	assert.True(t, created.Active)

	inactive := false
	updated, err := svc.SaveType(ctx, hrActor, created.ID, dto.PermissionTypeRequest{Name: "Study", Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	active, err := svc.ListTypes(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
