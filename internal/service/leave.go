package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"HRCore/config"
	"HRCore/internal/authz"
	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/queue"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/pkg/logger"
	"HRCore/pkg/workday"
	"HRCore/storage/database"
	"HRCore/utils"
)

var (
	leaveService *LeaveService
	leaveOnce    sync.Once
)

func Leave() *LeaveService {
	leaveOnce.Do(func() {
		db := database.DB()
		leaveService = NewLeaveService(
			repository.NewLeaveRepository(db),
			repository.NewEmployeeRepository(db),
			Holiday(),
			queue.NewProducer(),
			workday.Mask(config.Cfg.DefaultWorkMask),
		)
	})
	return leaveService
}

// LeaveService 年假申请：创建、修改、审批流转。流转不改动年假余额
type LeaveService struct {
	store   LeaveStore
	events  EventPublisher
	now     func() time.Time
	counter dayCounter
}

func NewLeaveService(store LeaveStore, employees EmployeeStore, holidays HolidaySource, events EventPublisher, fallback workday.Mask) *LeaveService {
	return &LeaveService{
		store:   store,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
		counter: dayCounter{employees: employees, holidays: holidays, fallback: fallback},
	}
}

// Simulate 只计算工作日，不落库
func (s *LeaveService) Simulate(ctx context.Context, actor authz.Actor, q dto.SimulateQuery) (*dto.SimulateResponse, error) {
	if q.EmployeeID != nil {
		if err := authz.Authorize(actor, authz.RecordRead, authz.Owned("employee", *q.EmployeeID)); err != nil {
			return nil, err
		}
	}
	start, err := parseDate(q.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(q.End)
	if err != nil {
		return nil, err
	}

	n, err := s.counter.count(ctx, q.EmployeeID, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.SimulateResponse{
		Start:        utils.FormatDate(start),
		End:          utils.FormatDate(end),
		BusinessDays: decimal.NewFromInt(int64(n)),
	}, nil
}

// businessDays 申请区间必须至少包含一个工作日
func (s *LeaveService) businessDays(ctx context.Context, employeeID int64, start, end time.Time) (decimal.Decimal, error) {
	n, err := s.counter.count(ctx, &employeeID, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	if n < 1 {
		return decimal.Zero, errors.LeaveNoBusinessDays
	}
	return decimal.NewFromInt(int64(n)), nil
}

func (s *LeaveService) Create(ctx context.Context, actor authz.Actor, req dto.CreateLeaveRequest) (*model.LeaveRequest, error) {
	employeeID, err := targetEmployee(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.LeaveCreate, authz.Owned(kindVacation, employeeID)); err != nil {
		return nil, err
	}

	start, end, err := parseLeaveRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	days, err := s.businessDays(ctx, employeeID, start, end)
	if err != nil {
		return nil, err
	}

	lr := &model.LeaveRequest{
		EmployeeID:   employeeID,
		Status:       leave.Pending,
		StartDate:    start,
		EndDate:      end,
		BusinessDays: days,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedBy:    accountRef(actor),
	}
	if err := s.store.Create(ctx, lr); err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}

	logger.Logger.Info("Leave request created",
		zap.Int64("request_id", lr.ID),
		zap.Int64("employee_id", employeeID),
		zap.String("business_days", days.String()),
	)
	return lr, nil
}

func (s *LeaveService) Get(ctx context.Context, actor authz.Actor, id int64) (*model.LeaveRequest, error) {
	lr, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.LeaveNotFound, "leave request")
	}
	if err := authz.Authorize(actor, authz.RecordRead, authz.Owned(kindVacation, lr.EmployeeID)); err != nil {
		return nil, err
	}
	return lr, nil
}

func (s *LeaveService) List(ctx context.Context, actor authz.Actor, q dto.RequestQuery) ([]model.LeaveRequest, int64, error) {
	f, err := requestFilter(actor, q)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return items, total, nil
}

// Update 只允许修改 PEND 申请的日期与备注，工作日重新计算
func (s *LeaveService) Update(ctx context.Context, actor authz.Actor, id int64, req dto.UpdateLeaveRequest) (*model.LeaveRequest, error) {
	lr, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.LeaveNotFound, "leave request")
	}
	if err := authz.Authorize(actor, authz.LeaveUpdate, authz.Owned(kindVacation, lr.EmployeeID)); err != nil {
		return nil, err
	}
	if lr.Status != leave.Pending {
		return nil, errors.LeaveNotInExpectedState.WithMessage("only pending requests can be modified")
	}

	start, end, err := parseLeaveRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	days, err := s.businessDays(ctx, lr.EmployeeID, start, end)
	if err != nil {
		return nil, err
	}

	lr.StartDate, lr.EndDate, lr.BusinessDays = start, end, days
	lr.Comment = strings.TrimSpace(req.Comment)

	n, err := s.store.UpdatePending(ctx, lr)
	if err != nil {
		return nil, fmt.Errorf("failed to update leave request: %w", err)
	}
	if n == 0 {
		return nil, errors.LeaveNotInExpectedState.WithMessage("only pending requests can be modified")
	}
	return lr, nil
}

func (s *LeaveService) Approve(ctx context.Context, actor authz.Actor, id int64, comment string) (*model.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionApprove, comment)
}

func (s *LeaveService) Reject(ctx context.Context, actor authz.Actor, id int64, comment string) (*model.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionReject, comment)
}

func (s *LeaveService) Cancel(ctx context.Context, actor authz.Actor, id int64, comment string) (*model.LeaveRequest, error) {
	return s.transition(ctx, actor, id, leave.ActionCancel, comment)
}

func (s *LeaveService) transition(ctx context.Context, actor authz.Actor, id int64, action leave.Action, comment string) (*model.LeaveRequest, error) {
	lr, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.LeaveNotFound, "leave request")
	}

	err = runTransition(ctx, s.events, s.now(), actor, action, strings.TrimSpace(comment), transitionTarget{
		store:      s.store,
		notFound:   errors.LeaveNotFound,
		kind:       kindVacation,
		eventType:  queue.EventLeaveStateChanged,
		current:    lr.Status,
		start:      lr.StartDate,
		end:        lr.EndDate,
		id:         lr.ID,
		employeeID: lr.EmployeeID,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.LeaveNotFound, "leave request")
	}
	return updated, nil
}

// requestFilter 年假与许可列表共用
func requestFilter(actor authz.Actor, q dto.RequestQuery) (repository.RequestFilter, error) {
	employeeID, err := scopeEmployee(actor, q.EmployeeID)
	if err != nil {
		return repository.RequestFilter{}, err
	}
	from, err := parseOptionalDate(q.From)
	if err != nil {
		return repository.RequestFilter{}, err
	}
	to, err := parseOptionalDate(q.To)
	if err != nil {
		return repository.RequestFilter{}, err
	}

	f := repository.RequestFilter{EmployeeID: employeeID, From: from, To: to, Page: toPage(q.PageQuery)}
	if q.State != "" {
		st, err := leave.ParseState(q.State)
		if err != nil {
			return repository.RequestFilter{}, errors.InvalidRequest.WithMessage("%v", err)
		}
		f.States = []leave.State{st}
	}
	return f, nil
}
