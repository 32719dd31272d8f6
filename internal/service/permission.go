package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"HRCore/internal/authz"
	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/queue"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/pkg/logger"
	"HRCore/storage/database"
)

var (
	permissionService *PermissionService
	permissionOnce    sync.Once
)

func Permission() *PermissionService {
	permissionOnce.Do(func() {
		permissionService = NewPermissionService(
			repository.NewPermissionRepository(database.DB()),
			queue.NewProducer(),
		)
	})
	return permissionService
}

// PermissionService 许可申请，与年假共用状态机
type PermissionService struct {
	store  PermissionStore
	events EventPublisher
	now    func() time.Time
}

func NewPermissionService(store PermissionStore, events EventPublisher) *PermissionService {
	return &PermissionService{
		store:  store,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *PermissionService) ListTypes(ctx context.Context, activeOnly bool) ([]model.PermissionType, error) {
	items, err := s.store.ListTypes(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission types: %w", err)
	}
	return items, nil
}

func (s *PermissionService) SaveType(ctx context.Context, actor authz.Actor, id int64, req dto.PermissionTypeRequest) (*model.PermissionType, error) {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "permission_type"}); err != nil {
		return nil, err
	}

	t := &model.PermissionType{Active: true}
	if id != 0 {
		existing, err := s.store.GetType(ctx, id)
		if err != nil {
			return nil, lookupErr(err, errors.PermissionTypeNotFound, "permission type")
		}
		t = existing
	}
	t.Name = strings.TrimSpace(req.Name)
	t.Paid = req.Paid
	t.RequiresEvidence = req.RequiresEvidence
	if req.Active != nil {
		t.Active = *req.Active
	}

	if err := s.store.SaveType(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save permission type: %w", err)
	}
	return t, nil
}

// Create 校验日期区间、小时规则、类型状态与说明要求
func (s *PermissionService) Create(ctx context.Context, actor authz.Actor, req dto.CreatePermissionRequest) (*model.Permission, error) {
	employeeID, err := targetEmployee(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.LeaveCreate, authz.Owned(kindPermission, employeeID)); err != nil {
		return nil, err
	}

	start, end, err := parseLeaveRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.Hours != nil && (req.Hours.IsNegative() || !start.Equal(end)) {
		return nil, errors.PermissionHoursInvalid
	}

	pt, err := s.store.GetType(ctx, req.TypeID)
	if err != nil {
		return nil, lookupErr(err, errors.PermissionTypeNotFound, "permission type")
	}
	if !pt.Active {
		return nil, errors.PermissionTypeNotFound
	}

	reason := strings.TrimSpace(req.Reason)
	if pt.RequiresEvidence && reason == "" {
		return nil, errors.PermissionEvidence
	}

	p := &model.Permission{
		EmployeeID: employeeID,
		TypeID:     pt.ID,
		Type:       pt,
		Status:     leave.Pending,
		StartDate:  start,
		EndDate:    end,
		Hours:      req.Hours,
		Reason:     reason,
		CreatedBy:  accountRef(actor),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}

	logger.Logger.Info("Permission created",
		zap.Int64("permission_id", p.ID),
		zap.Int64("employee_id", employeeID),
		zap.Int64("type_id", pt.ID),
	)
	return p, nil
}

func (s *PermissionService) Get(ctx context.Context, actor authz.Actor, id int64) (*model.Permission, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.PermissionNotFound, "permission")
	}
	if err := authz.Authorize(actor, authz.RecordRead, authz.Owned(kindPermission, p.EmployeeID)); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PermissionService) List(ctx context.Context, actor authz.Actor, q dto.RequestQuery) ([]model.Permission, int64, error) {
	f, err := requestFilter(actor, q)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list permissions: %w", err)
	}
	return items, total, nil
}

func (s *PermissionService) Approve(ctx context.Context, actor authz.Actor, id int64, comment string) (*model.Permission, error) {
	return s.transition(ctx, actor, id, leave.ActionApprove, comment)
}

func (s *PermissionService) Reject(ctx context.Context, actor authz.Actor, id int64, comment string) (*model.Permission, error) {
	return s.transition(ctx, actor, id, leave.ActionReject, comment)
}

func (s *PermissionService) Cancel(ctx context.Context, actor authz.Actor, id int64, comment string) (*model.Permission, error) {
	return s.transition(ctx, actor, id, leave.ActionCancel, comment)
}

func (s *PermissionService) transition(ctx context.Context, actor authz.Actor, id int64, action leave.Action, comment string) (*model.Permission, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.PermissionNotFound, "permission")
	}

	err = runTransition(ctx, s.events, s.now(), actor, action, strings.TrimSpace(comment), transitionTarget{
		store:      s.store,
		notFound:   errors.PermissionNotFound,
		kind:       kindPermission,
		eventType:  queue.EventPermissionStateChanged,
		current:    p.Status,
		start:      p.StartDate,
		end:        p.EndDate,
		id:         p.ID,
		employeeID: p.EmployeeID,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.PermissionNotFound, "permission")
	}
	return updated, nil
}
