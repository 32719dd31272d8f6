package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"HRCore/internal/authz"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/storage/database"
)

var (
	employeeService *EmployeeService
	employeeOnce    sync.Once
)

func Employee() *EmployeeService {
	employeeOnce.Do(func() {
		db := database.DB()
		employeeService = NewEmployeeService(
			repository.NewEmployeeRepository(db),
			repository.NewOrganizationRepository(db),
		)
	})
	return employeeService
}

type EmployeeService struct {
	store EmployeeStore
	org   OrganizationStore
}

func NewEmployeeService(store EmployeeStore, org OrganizationStore) *EmployeeService {
	return &EmployeeService{store: store, org: org}
}

func (s *EmployeeService) Get(ctx context.Context, actor authz.Actor, id int64) (*model.Employee, error) {
	if err := authz.Authorize(actor, authz.RecordRead, authz.Owned("employee", id)); err != nil {
		return nil, err
	}
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.EmployeeNotFound, "employee")
	}
	return e, nil
}

// List 非特权账号只返回本人
func (s *EmployeeService) List(ctx context.Context, actor authz.Actor, q dto.EmployeeQuery) ([]model.Employee, int64, error) {
	if !actor.Privileged() && !actor.HasRole(authz.RoleSuperAdmin) {
		if actor.EmployeeID == nil {
			return nil, 0, errors.Forbidden.WithMessage("account is not linked to an employee")
		}
		e, err := s.store.Get(ctx, *actor.EmployeeID)
		if err != nil {
			return nil, 0, lookupErr(err, errors.EmployeeNotFound, "employee")
		}
		return []model.Employee{*e}, 1, nil
	}

	items, total, err := s.store.List(ctx, repository.EmployeeFilter{
		Status:     model.EmployeeStatus(q.Status),
		Search:     strings.TrimSpace(q.Search),
		LocationID: q.LocationID,
		Page:       toPage(q.PageQuery),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return items, total, nil
}

func (s *EmployeeService) Create(ctx context.Context, actor authz.Actor, req dto.EmployeeRequest) (*model.Employee, error) {
	if err := authz.Authorize(actor, authz.EmployeeWrite, authz.Resource{Kind: "employee"}); err != nil {
		return nil, err
	}
	e := &model.Employee{Status: model.EmployeeActive}
	if err := s.apply(ctx, e, req); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, writeErr(err, "create employee")
	}
	return e, nil
}

func (s *EmployeeService) Update(ctx context.Context, actor authz.Actor, id int64, req dto.EmployeeRequest) (*model.Employee, error) {
	if err := authz.Authorize(actor, authz.EmployeeWrite, authz.Resource{Kind: "employee"}); err != nil {
		return nil, err
	}
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errors.EmployeeNotFound, "employee")
	}
	if err := s.apply(ctx, e, req); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, e); err != nil {
		return nil, writeErr(err, "update employee")
	}
	return e, nil
}

func (s *EmployeeService) apply(ctx context.Context, e *model.Employee, req dto.EmployeeRequest) error {
	hire, err := parseOptionalDate(req.HireDate)
	if err != nil {
		return err
	}
	seniority, err := parseOptionalDate(req.SeniorityDate)
	if err != nil {
		return err
	}

	if req.WorkScheduleID != nil {
		sch, err := s.org.GetSchedule(ctx, *req.WorkScheduleID)
		if err != nil {
			return lookupErr(err, errors.WorkScheduleNotFound, "work schedule")
		}
		e.WorkSchedule = sch
	} else {
		e.WorkSchedule = nil
	}
	if req.LocationID != nil {
		loc, err := s.org.GetLocation(ctx, *req.LocationID)
		if err != nil {
			return lookupErr(err, errors.LocationNotFound, "location")
		}
		e.Location = loc
	} else {
		e.Location = nil
	}
	if req.SupervisorID != nil {
		if e.ID != 0 && *req.SupervisorID == e.ID {
			return errors.InvalidRequest.WithMessage("an employee cannot supervise themselves")
		}
		if _, err := s.store.Get(ctx, *req.SupervisorID); err != nil {
			return lookupErr(err, errors.EmployeeNotFound, "supervisor")
		}
	}

	e.Number = strings.TrimSpace(req.Number)
	e.FirstName = strings.TrimSpace(req.FirstName)
	e.LastName = strings.TrimSpace(req.LastName)
	e.SecondLastName = strings.TrimSpace(req.SecondLastName)
	e.CURP = strings.ToUpper(strings.TrimSpace(req.CURP))
	e.RFC = strings.ToUpper(strings.TrimSpace(req.RFC))
	e.NSS = strings.TrimSpace(req.NSS)
	e.Email = strings.TrimSpace(req.Email)
	if req.Status != "" {
		e.Status = model.EmployeeStatus(req.Status)
	}
	e.HireDate = hire
	e.SeniorityDate = seniority
	e.WorkScheduleID = req.WorkScheduleID
	e.LocationID = req.LocationID
	e.SupervisorID = req.SupervisorID
	return nil
}

// writeErr 唯一索引冲突映射为 EmployeeDuplicate
func writeErr(err error, op string) error {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.EmployeeDuplicate
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
