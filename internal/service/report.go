package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"HRCore/internal/authz"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/storage/database"
)

var (
	reportService *ReportService
	reportOnce    sync.Once
)

func Report() *ReportService {
	reportOnce.Do(func() {
		reportService = NewReportService(repository.NewReportRepository(database.DB()))
	})
	return reportService
}

const (
	defaultBacklogDays = 3
	backlogLimit       = 200
)

// ReportService HR 统计报表
type ReportService struct {
	store ReportStore
	now   func() time.Time
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ReportService) authorize(actor authz.Actor) error {
	return authz.Authorize(actor, authz.ReportRead, authz.Resource{Kind: "report"})
}

func (s *ReportService) Headcount(ctx context.Context, actor authz.Actor) ([]repository.StatusCount, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	rows, err := s.store.EmployeesByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}
	return rows, nil
}

func (s *ReportService) LeaveTotals(ctx context.Context, actor authz.Actor, year int) ([]repository.LeaveStatusCount, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	rows, err := s.store.LeavesByStatus(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to count leave requests: %w", err)
	}
	return rows, nil
}

// PendingBacklog 创建超过 older_than_days 天仍未审批的年假申请
func (s *ReportService) PendingBacklog(ctx context.Context, actor authz.Actor, q dto.BacklogQuery) ([]model.LeaveRequest, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	days := defaultBacklogDays
	if q.OlderThanDays != nil {
		days = *q.OlderThanDays
	}
	items, err := s.store.PendingCreatedBefore(ctx, s.now().AddDate(0, 0, -days), backlogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return items, nil
}

// OutsideGeofence to 为闭区间日期
func (s *ReportService) OutsideGeofence(ctx context.Context, actor authz.Actor, q dto.GeofenceReportQuery) ([]repository.DayCount, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	if err := checkSpan(from, to); err != nil {
		return nil, err
	}
	rows, err := s.store.OutsideGeofenceByDay(ctx, q.EmployeeID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return rows, nil
}

func (s *ReportService) BalanceTotals(ctx context.Context, actor authz.Actor, year int) (*repository.BalanceTotals, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	totals, err := s.store.BalanceTotals(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to sum balances: %w", err)
	}
	return totals, nil
}
