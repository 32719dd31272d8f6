package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
)

type memOrg struct {
	locations map[int64]*model.Location
}

func (m *memOrg) GetLocation(_ context.Context, id int64) (*model.Location, error) {
	l, ok := m.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memOrg) ListLocations(context.Context, bool) ([]model.Location, error) { return nil, nil }
func (m *memOrg) SaveLocation(context.Context, *model.Location) error           { return nil }
func (m *memOrg) GetSchedule(context.Context, int64) (*model.WorkSchedule, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *memOrg) ListSchedules(context.Context) ([]model.WorkSchedule, error) { return nil, nil }
func (m *memOrg) SaveSchedule(context.Context, *model.WorkSchedule) error     { return nil }

type memAttendance struct {
	org      *memOrg
	checkIns map[int64]*model.CheckIn
	justs    map[int64]*model.Justification
}

func newMemAttendance(org *memOrg) *memAttendance {
	return &memAttendance{org: org, checkIns: map[int64]*model.CheckIn{}, justs: map[int64]*model.Justification{}}
}

func (m *memAttendance) CreateCheckIn(_ context.Context, c *model.CheckIn) error {
	c.ID = int64(len(m.checkIns) + 1)
	cp := *c
	m.checkIns[c.ID] = &cp
	return nil
}

func (m *memAttendance) GetCheckIn(ctx context.Context, id int64) (*model.CheckIn, error) {
	c, ok := m.checkIns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	if cp.LocationID != nil {
		cp.Location, _ = m.org.GetLocation(ctx, *cp.LocationID)
	}
	return &cp, nil
}

func (m *memAttendance) UpdateGeofence(_ context.Context, id int64, distance *int, inside bool) error {
	m.checkIns[id].DistanceM, m.checkIns[id].InsideGeofence = distance, inside
	return nil
}

func (m *memAttendance) ListCheckIns(context.Context, repository.CheckInFilter) ([]model.CheckIn, int64, error) {
	return nil, 0, nil
}

func (m *memAttendance) CheckInsBetween(_ context.Context, employeeID *int64, from, to time.Time) ([]model.CheckIn, error) {
	var out []model.CheckIn
	for _, c := range m.checkIns {
		if (employeeID == nil || c.EmployeeID == *employeeID) && !c.Ts.Before(from) && c.Ts.Before(to) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Ts.Before(out[j].Ts)
	})
	return out, nil
}

func (m *memAttendance) CreateJustification(_ context.Context, j *model.Justification) error {
	j.ID = int64(len(m.justs) + 1)
	cp := *j
	m.justs[j.ID] = &cp
	return nil
}

func (m *memAttendance) GetJustification(_ context.Context, id int64) (*model.Justification, error) {
	j, ok := m.justs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memAttendance) ListJustifications(context.Context, repository.JustificationFilter) ([]model.Justification, int64, error) {
	return nil, 0, nil
}

func (m *memAttendance) ResolveJustification(_ context.Context, id int64, to leave.State, _ model.Resolution) (int64, error) {
	j, ok := m.justs[id]
	if !ok || j.Status != leave.Pending {
		return 0, nil
	}
	j.Status = to
	return 1, nil
}

func floatPtr(v float64) *float64 { return &v }

func newAttendanceFixture() (*AttendanceService, *memAttendance) {
	office := &model.Location{BaseModel: model.BaseModel{ID: 1}, Name: "HQ", Latitude: 19.4326, Longitude: -99.1332, RadiusM: 150, Active: true}
	plant := &model.Location{BaseModel: model.BaseModel{ID: 2}, Name: "Plant", Latitude: 20.6597, Longitude: -103.3496, RadiusM: 0, Active: true}
	org := &memOrg{locations: map[int64]*model.Location{1: office, 2: plant}}
	store := newMemAttendance(org)

	withLocation := model.Employee{BaseModel: model.BaseModel{ID: 7}, Status: model.EmployeeActive, LocationID: int64Ptr(1), Location: office}
	noLocation := model.Employee{BaseModel: model.BaseModel{ID: 8}, Status: model.EmployeeActive}
	return NewAttendanceService(store, newMemEmployees(withLocation, noLocation), org), store
}

func TestCheckInGeofence(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()
	owner := employeeActor(20, 7)

	near, err := svc.CreateCheckIn(ctx, owner, dto.CreateCheckInRequest{Type: "IN", Latitude: floatPtr(19.4336), Longitude: floatPtr(-99.1332)})
	require.NoError(t, err)
	require.NotNil(t, near.DistanceM)
	assert.InDelta(t, 111, *near.DistanceM, 1)
	assert.True(t, near.InsideGeofence)
	assert.Equal(t, int64(1), *near.LocationID)
	assert.Equal(t, model.SourceMobile, near.Source)

	far, err := svc.CreateCheckIn(ctx, owner, dto.CreateCheckInRequest{Type: "OUT", Latitude: floatPtr(19.4426), Longitude: floatPtr(-99.1332)})
	require.NoError(t, err)
	assert.False(t, far.InsideGeofence)
	assert.InDelta(t, 1112, *far.DistanceM, 2)
}

func TestCheckInWithoutGeofenceData(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	c, err := svc.CreateCheckIn(ctx, employeeActor(21, 8), dto.CreateCheckInRequest{Type: "IN", Latitude: floatPtr(19.4), Longitude: floatPtr(-99.1)})
	require.NoError(t, err)
	assert.Nil(t, c.DistanceM)
	assert.False(t, c.InsideGeofence)

	_, err = svc.CreateCheckIn(ctx, employeeActor(20, 7), dto.CreateCheckInRequest{Type: "IN", Latitude: floatPtr(19.4)})
	assert.ErrorIs(t, err, errors.CoordinatesIncomplete)

	// 半径为 0 的地点永远不在围栏内
	c, err = svc.CreateCheckIn(ctx, hrActor, dto.CreateCheckInRequest{
		EmployeeID: int64Ptr(7), LocationID: int64Ptr(2), Type: "IN",
		Latitude: floatPtr(20.6597), Longitude: floatPtr(-103.3496),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, *c.DistanceM)
	assert.False(t, c.InsideGeofence)

	_, err = svc.CreateCheckIn(ctx, hrActor, dto.CreateCheckInRequest{EmployeeID: int64Ptr(7), LocationID: int64Ptr(9), Type: "IN"})
	assert.ErrorIs(t, err, errors.LocationNotFound)
}

func TestRecalculateGeofence(t *testing.T) {
	svc, store := newAttendanceFixture()
	ctx := context.Background()

	c, err := svc.CreateCheckIn(ctx, employeeActor(20, 7), dto.CreateCheckInRequest{Type: "IN", Latitude: floatPtr(19.4426), Longitude: floatPtr(-99.1332)})
	require.NoError(t, err)
	require.False(t, c.InsideGeofence)

	// 地点半径调大后重算
	store.org.locations[1].RadiusM = 2000
	_, err = svc.RecalculateGeofence(ctx, employeeActor(20, 7), c.ID)
	assert.ErrorIs(t, err, errors.Forbidden)

	updated, err := svc.RecalculateGeofence(ctx, hrActor, c.ID)
	require.NoError(t, err)
	assert.True(t, updated.InsideGeofence)
	assert.True(t, store.checkIns[c.ID].InsideGeofence)

	bare, err := svc.CreateCheckIn(ctx, employeeActor(20, 7), dto.CreateCheckInRequest{Type: "IN"})
	require.NoError(t, err)
	_, err = svc.RecalculateGeofence(ctx, hrActor, bare.ID)
	assert.ErrorIs(t, err, errors.GeofenceDataMissing)

	_, err = svc.RecalculateGeofence(ctx, hrActor, 404)
	assert.ErrorIs(t, err, errors.CheckInNotFound)
}

func TestDailySummary(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()
	owner := employeeActor(20, 7)
	at := func(s string) *time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return &ts
	}
	inside := dto.CreateCheckInRequest{Latitude: floatPtr(19.4326), Longitude: floatPtr(-99.1332)}

	for _, ev := range []struct {
		typ string
		ts  string
	}{
		{"IN", "2025-03-03T15:05:00Z"},
		{"IN", "2025-03-03T14:58:00Z"},
		{"OUT", "2025-03-03T23:01:00Z"},
		{"OUT", "2025-03-04T01:00:00Z"},
	} {
		req := inside
		req.EmployeeID, req.Type, req.Ts = int64Ptr(7), ev.typ, at(ev.ts)
		_, err := svc.CreateCheckIn(ctx, hrActor, req)
		require.NoError(t, err)
	}

	sum, err := svc.DailySummary(ctx, owner, dto.SummaryQuery{Date: "2025-03-03"})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Events)
	assert.True(t, sum.AllInside)
	assert.Equal(t, *at("2025-03-03T14:58:00Z"), *sum.FirstIn)
	assert.Equal(t, *at("2025-03-03T23:01:00Z"), *sum.LastOut)

	empty, err := svc.DailySummary(ctx, owner, dto.SummaryQuery{Date: "2025-03-10"})
	require.NoError(t, err)
	assert.Zero(t, empty.Events)
	assert.False(t, empty.AllInside)
	assert.Nil(t, empty.FirstIn)
}

func TestRangeSummary(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()
	at := func(s string) *time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return &ts
	}
	for _, ev := range []struct {
		employee int64
		typ      string
		ts       string
	}{
		{7, "IN", "2025-03-03T15:00:00Z"},
		{7, "OUT", "2025-03-03T23:00:00Z"},
		{7, "IN", "2025-03-04T14:30:00Z"},
		{8, "IN", "2025-03-03T16:00:00Z"},
		{8, "OUT", "2025-03-03T22:00:00Z"},
		{8, "OUT", "2025-03-03T22:10:00Z"},
		{7, "IN", "2025-03-06T15:00:00Z"},
	} {
		_, err := svc.CreateCheckIn(ctx, hrActor, dto.CreateCheckInRequest{EmployeeID: int64Ptr(ev.employee), Type: ev.typ, Ts: at(ev.ts)})
		require.NoError(t, err)
	}

	rows, err := svc.RangeSummary(ctx, hrActor, dto.RangeSummaryQuery{From: "2025-03-03", To: "2025-03-05"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(7), rows[0].EmployeeID)
	assert.Equal(t, "2025-03-03", rows[0].Date)
	assert.Equal(t, 2, rows[0].Events)
	assert.Equal(t, *at("2025-03-03T23:00:00Z"), *rows[0].LastOut)
	assert.Equal(t, "2025-03-04", rows[1].Date)
	assert.Nil(t, rows[1].LastOut)
	assert.Equal(t, int64(8), rows[2].EmployeeID)
	assert.Equal(t, 3, rows[2].Events)
	assert.Equal(t, *at("2025-03-03T16:00:00Z"), *rows[2].FirstIn)
	assert.Equal(t, *at("2025-03-03T22:10:00Z"), *rows[2].LastOut)

	// 员工只能看到本人
	own, err := svc.RangeSummary(ctx, employeeActor(21, 8), dto.RangeSummaryQuery{From: "2025-03-01", To: "2025-03-31"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, int64(8), own[0].EmployeeID)

	_, err = svc.RangeSummary(ctx, employeeActor(21, 8), dto.RangeSummaryQuery{EmployeeID: int64Ptr(7), From: "2025-03-01", To: "2025-03-31"})
	assert.ErrorIs(t, err, errors.Forbidden)

	_, err = svc.RangeSummary(ctx, hrActor, dto.RangeSummaryQuery{From: "2025-03-05", To: "2025-03-01"})
	assert.ErrorIs(t, err, errors.LeaveInvalidRange)

	_, err = svc.RangeSummary(ctx, hrActor, dto.RangeSummaryQuery{From: "2025-01-01", To: "2025-12-31"})
	assert.ErrorIs(t, err, errors.CalendarRangeTooLarge)

	empty, err := svc.RangeSummary(ctx, hrActor, dto.RangeSummaryQuery{From: "2025-04-01", To: "2025-04-02"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCheckInTimestampOnlyForPrivileged(t *testing.T) {
	svc, _ := newAttendanceFixture()
	now := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	past := time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC)

	own, err := svc.CreateCheckIn(context.Background(), employeeActor(20, 7), dto.CreateCheckInRequest{Type: "IN", Ts: &past})
	require.NoError(t, err)
	assert.Equal(t, now, own.Ts)

	backfill, err := svc.CreateCheckIn(context.Background(), hrActor, dto.CreateCheckInRequest{EmployeeID: int64Ptr(7), Type: "IN", Ts: &past})
	require.NoError(t, err)
	assert.Equal(t, past, backfill.Ts)
}

func TestResolveJustification(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	j, err := svc.CreateJustification(ctx, employeeActor(20, 7), dto.CreateJustificationRequest{Date: "2025-03-03", Reason: "Traffic"})
	require.NoError(t, err)
	assert.Equal(t, leave.Pending, j.Status)

	_, err = svc.ResolveJustification(ctx, employeeActor(20, 7), j.ID, dto.ResolveJustificationRequest{Status: "APROB"})
	assert.ErrorIs(t, err, errors.Forbidden)

	resolved, err := svc.ResolveJustification(ctx, hrActor, j.ID, dto.ResolveJustificationRequest{Status: "APROB"})
	require.NoError(t, err)
	assert.Equal(t, leave.Approved, resolved.Status)

	_, err = svc.ResolveJustification(ctx, hrActor, j.ID, dto.ResolveJustificationRequest{Status: "RECH"})
	assert.ErrorIs(t, err, errors.JustificationResolved)
}
