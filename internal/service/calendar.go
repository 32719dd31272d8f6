package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"HRCore/config"
	"HRCore/internal/authz"
	"HRCore/internal/leave"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/storage/database"
	"HRCore/utils"
)

const (
	AbsenceVacation   = "VACATION"
	AbsencePermission = "PERMISSION"
)

var (
	calendarService *CalendarService
	calendarOnce    sync.Once
)

func Calendar() *CalendarService {
	calendarOnce.Do(func() {
		db := database.DB()
		calendarService = NewCalendarService(
			repository.NewLeaveRepository(db),
			repository.NewPermissionRepository(db),
			config.Cfg.CalendarMaxDays,
		)
	})
	return calendarService
}

// CalendarService 按员工、按天展开的缺勤日历
type CalendarService struct {
	leaves      LeaveStore
	permissions PermissionStore
	maxDays     int
}

func NewCalendarService(leaves LeaveStore, permissions PermissionStore, maxDays int) *CalendarService {
	return &CalendarService{leaves: leaves, permissions: permissions, maxDays: maxDays}
}

func calendarStates(q dto.CalendarQuery) []leave.State {
	if q.State != "" {
		return []leave.State{leave.State(q.State)}
	}
	// include_pending 缺省为 true
	states := []leave.State{leave.Approved}
	if q.IncludePending == nil || *q.IncludePending {
		states = []leave.State{leave.Pending, leave.Approved}
	}
	if q.IncludeRejected {
		states = append(states, leave.Rejected)
	}
	if q.IncludeCancelled {
		states = append(states, leave.Cancelled)
	}
	return states
}

type cellKey struct {
	employeeID int64
	day        int64
}

// Absences 同一天既有年假又有许可时显示许可
func (s *CalendarService) Absences(ctx context.Context, actor authz.Actor, q dto.CalendarQuery) (*dto.CalendarResponse, error) {
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	if utils.DaysBetween(from, to) > s.maxDays {
		return nil, errors.CalendarRangeTooLarge.WithMessage("date range must not exceed %d days", s.maxDays)
	}
	employeeID, err := scopeEmployee(actor, q.EmployeeID)
	if err != nil {
		return nil, err
	}

	states := calendarStates(q)
	f := repository.RequestFilter{EmployeeID: employeeID, States: states, From: &from, To: &to}

	vacations, err := s.leaves.ListOverlapping(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave requests: %w", err)
	}
	permissions, err := s.permissions.ListOverlapping(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}

	cells := make(map[cellKey]dto.CalendarEntry)
	mark := func(employeeID int64, start, end time.Time, entry dto.CalendarEntry) {
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			e := entry
			e.Date = utils.FormatDate(d)
			cells[cellKey{employeeID: employeeID, day: d.Unix()}] = e
		}
	}

	for _, v := range vacations {
		mark(v.EmployeeID, utils.DateOf(v.StartDate), utils.DateOf(v.EndDate), dto.CalendarEntry{
			EmployeeID: v.EmployeeID,
			RequestID:  v.ID,
			Kind:       AbsenceVacation,
			State:      string(v.Status),
		})
	}
	for _, p := range permissions {
		entry := dto.CalendarEntry{
			EmployeeID: p.EmployeeID,
			RequestID:  p.ID,
			Kind:       AbsencePermission,
			State:      string(p.Status),
		}
		if p.Type != nil {
			entry.TypeName = p.Type.Name
		}
		mark(p.EmployeeID, utils.DateOf(p.StartDate), utils.DateOf(p.EndDate), entry)
	}

	entries := make([]dto.CalendarEntry, 0, len(cells))
	for _, e := range cells {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EmployeeID != entries[j].EmployeeID {
			return entries[i].EmployeeID < entries[j].EmployeeID
		}
		return entries[i].Date < entries[j].Date
	})

	out := &dto.CalendarResponse{
		From:    utils.FormatDate(from),
		To:      utils.FormatDate(to),
		States:  make([]string, len(states)),
		Entries: entries,
	}
	for i, st := range states {
		out.States[i] = string(st)
	}
	return out, nil
}
