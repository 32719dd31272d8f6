package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"HRCore/config"
	"HRCore/internal/authz"
	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/pkg/geo"
	"HRCore/pkg/logger"
	"HRCore/pkg/metrics"
	"HRCore/storage/database"
	"HRCore/utils"
)

var (
	attendanceService *AttendanceService
	attendanceOnce    sync.Once
)

func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		db := database.DB()
		attendanceService = NewAttendanceService(
			repository.NewAttendanceRepository(db),
			repository.NewEmployeeRepository(db),
			repository.NewOrganizationRepository(db),
		)
	})
	return attendanceService
}

// AttendanceService 打卡与缺勤说明
type AttendanceService struct {
	store     AttendanceStore
	employees EmployeeStore
	org       OrganizationStore
	now       func() time.Time
}

func NewAttendanceService(store AttendanceStore, employees EmployeeStore, org OrganizationStore) *AttendanceService {
	return &AttendanceService{
		store:     store,
		employees: employees,
		org:       org,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateCheckIn 地点取请求中的 location_id，否则取员工默认地点
func (s *AttendanceService) CreateCheckIn(ctx context.Context, actor authz.Actor, req dto.CreateCheckInRequest) (*model.CheckIn, error) {
	employeeID, err := targetEmployee(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.CheckInCreate, authz.Owned("checkin", employeeID)); err != nil {
		return nil, err
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, errors.CoordinatesIncomplete
	}

	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, lookupErr(err, errors.EmployeeNotFound, "employee")
	}

	loc := emp.Location
	if req.LocationID != nil {
		loc, err = s.org.GetLocation(ctx, *req.LocationID)
		if err != nil {
			return nil, lookupErr(err, errors.LocationNotFound, "location")
		}
	}

	c := &model.CheckIn{
		EmployeeID: employeeID,
		Type:       model.CheckInType(req.Type),
		Ts:         s.now(),
		Source:     model.SourceMobile,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Note:       strings.TrimSpace(req.Note),
		CreatedBy:  accountRef(actor),
	}
	// 只有 HR/管理员可以补录指定时间的打卡
	if req.Ts != nil && actor.Privileged() {
		c.Ts = req.Ts.UTC()
	}
	if req.Source != "" {
		c.Source = model.CheckInSource(req.Source)
	}
	if loc != nil {
		id := loc.ID
		c.LocationID = &id
	}

	c.DistanceM, c.InsideGeofence = geo.Evaluate(c.Latitude, c.Longitude, loc.Fence())
	metrics.RecordGeofence(ctx, c.DistanceM != nil, c.InsideGeofence)

	if err := s.store.CreateCheckIn(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	logger.Logger.Debug("Check-in recorded",
		zap.Int64("check_in_id", c.ID),
		zap.Int64("employee_id", employeeID),
		zap.String("type", string(c.Type)),
		zap.Bool("inside_geofence", c.InsideGeofence),
	)
	return c, nil
}

func (s *AttendanceService) GetCheckIn(ctx context.Context, actor authz.Actor, id int64) (*model.CheckIn, error) {
	c, err := s.store.GetCheckIn(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.CheckInNotFound, "check-in")
	}
	if err := authz.Authorize(actor, authz.RecordRead, authz.Owned("checkin", c.EmployeeID)); err != nil {
		return nil, err
	}
	return c, nil
}

// RecalculateGeofence 缺坐标或地点时返回 GeofenceDataMissing
func (s *AttendanceService) RecalculateGeofence(ctx context.Context, actor authz.Actor, id int64) (*model.CheckIn, error) {
	c, err := s.store.GetCheckIn(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.CheckInNotFound, "check-in")
	}
	if err := authz.Authorize(actor, authz.CheckInRecalculate, authz.Owned("checkin", c.EmployeeID)); err != nil {
		return nil, err
	}
	if c.Latitude == nil || c.Longitude == nil || c.Location == nil {
		return nil, errors.GeofenceDataMissing
	}

	distance, inside := geo.Evaluate(c.Latitude, c.Longitude, c.Location.Fence())
	metrics.RecordGeofence(ctx, distance != nil, inside)

	if err := s.store.UpdateGeofence(ctx, c.ID, distance, inside); err != nil {
		return nil, fmt.Errorf("failed to update geofence: %w", err)
	}
	c.DistanceM, c.InsideGeofence = distance, inside
	return c, nil
}

func (s *AttendanceService) ListCheckIns(ctx context.Context, actor authz.Actor, q dto.CheckInQuery) ([]model.CheckIn, int64, error) {
	employeeID, err := scopeEmployee(actor, q.EmployeeID)
	if err != nil {
		return nil, 0, err
	}
	from, err := parseOptionalDate(q.From)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate(q.To)
	if err != nil {
		return nil, 0, err
	}
	if to != nil {
		// to 为闭区间日期
		next := to.AddDate(0, 0, 1)
		to = &next
	}

	items, total, err := s.store.ListCheckIns(ctx, repository.CheckInFilter{
		EmployeeID: employeeID,
		From:       from,
		To:         to,
		Type:       model.CheckInType(q.Type),
		Inside:     q.Inside,
		Page:       toPage(q.PageQuery),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return items, total, nil
}

// DailySummary 当天第一次 IN、最后一次 OUT、事件数与是否全部在围栏内
func (s *AttendanceService) DailySummary(ctx context.Context, actor authz.Actor, q dto.SummaryQuery) (*dto.DailySummary, error) {
	employeeID, err := targetEmployee(actor, q.EmployeeID)
	if err != nil {
		return nil, err
	}
	rows, err := s.RangeSummary(ctx, actor, dto.RangeSummaryQuery{EmployeeID: &employeeID, From: q.Date, To: q.Date})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &dto.DailySummary{EmployeeID: employeeID, Date: q.Date}, nil
	}
	return &rows[0], nil
}

// RangeSummary 区间内每个 (员工, 日期) 一行，没有打卡的日期不出现
func (s *AttendanceService) RangeSummary(ctx context.Context, actor authz.Actor, q dto.RangeSummaryQuery) ([]dto.DailySummary, error) {
	employeeID, err := scopeEmployee(actor, q.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employeeID != nil {
		if err := authz.Authorize(actor, authz.RecordRead, authz.Owned("checkin", *employeeID)); err != nil {
			return nil, err
		}
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	if limit := config.Cfg.CalendarMaxDays; utils.DaysBetween(from, to) > limit {
		return nil, errors.CalendarRangeTooLarge.WithMessage("date range must not exceed %d days", limit)
	}

	events, err := s.store.CheckInsBetween(ctx, employeeID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}
	return summarize(events), nil
}

// summarize events 须按员工、时间升序
func summarize(events []model.CheckIn) []dto.DailySummary {
	out := make([]dto.DailySummary, 0)
	for i := range events {
		e := events[i]
		date := utils.FormatDate(e.Ts.UTC())
		if n := len(out); n == 0 || out[n-1].EmployeeID != e.EmployeeID || out[n-1].Date != date {
			out = append(out, dto.DailySummary{EmployeeID: e.EmployeeID, Date: date, AllInside: true})
		}
		cur := &out[len(out)-1]
		cur.Events++
		if !e.InsideGeofence {
			cur.AllInside = false
		}
		switch e.Type {
		case model.CheckInTypeIn:
			if cur.FirstIn == nil || e.Ts.Before(*cur.FirstIn) {
				ts := e.Ts
				cur.FirstIn = &ts
			}
		case model.CheckInTypeOut:
			if cur.LastOut == nil || e.Ts.After(*cur.LastOut) {
				ts := e.Ts
				cur.LastOut = &ts
			}
		}
	}
	return out
}

func (s *AttendanceService) CreateJustification(ctx context.Context, actor authz.Actor, req dto.CreateJustificationRequest) (*model.Justification, error) {
	employeeID, err := targetEmployee(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.JustificationWrite, authz.Owned("justification", employeeID)); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		return nil, lookupErr(err, errors.EmployeeNotFound, "employee")
	}

	j := &model.Justification{
		EmployeeID: employeeID,
		Date:       date,
		Reason:     strings.TrimSpace(req.Reason),
		Detail:     strings.TrimSpace(req.Detail),
		Status:     leave.Pending,
		CreatedBy:  accountRef(actor),
	}
	if err := s.store.CreateJustification(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to create justification: %w", err)
	}
	return j, nil
}

// ResolveJustification 仅允许 PEND -> APROB / RECH
func (s *AttendanceService) ResolveJustification(ctx context.Context, actor authz.Actor, id int64, req dto.ResolveJustificationRequest) (*model.Justification, error) {
	j, err := s.store.GetJustification(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.JustificationNotFound, "justification")
	}
	if err := authz.Authorize(actor, authz.JustificationRes, authz.Owned("justification", j.EmployeeID)); err != nil {
		return nil, err
	}

	to, err := leave.ParseState(req.Status)
	if err != nil || (to != leave.Approved && to != leave.Rejected) {
		return nil, errors.InvalidRequest.WithMessage("status must be APROB or RECH")
	}

	now := s.now()
	n, err := s.store.ResolveJustification(ctx, id, to, resolution(actor, strings.TrimSpace(req.Comment), now))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve justification: %w", err)
	}
	if n == 0 {
		return nil, errors.JustificationResolved
	}

	by := actor.AccountID
	j.Status, j.ResolvedBy, j.ResolvedAt = to, &by, &now
	return j, nil
}

func (s *AttendanceService) ListJustifications(ctx context.Context, actor authz.Actor, q dto.JustificationQuery) ([]model.Justification, int64, error) {
	employeeID, err := scopeEmployee(actor, q.EmployeeID)
	if err != nil {
		return nil, 0, err
	}
	from, err := parseOptionalDate(q.From)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate(q.To)
	if err != nil {
		return nil, 0, err
	}

	items, total, err := s.store.ListJustifications(ctx, repository.JustificationFilter{
		EmployeeID: employeeID,
		Status:     leave.State(q.Status),
		From:       from,
		To:         to,
		Page:       toPage(q.PageQuery),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list justifications: %w", err)
	}
	return items, total, nil
}
