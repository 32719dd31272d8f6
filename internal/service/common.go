package service

import (
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"HRCore/config"
	"HRCore/internal/authz"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/utils"
)

// lookupErr 记录不存在时返回业务错误，其余错误加上下文
func lookupErr(err error, notFound errors.Definition, what string) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to query %s: %w", what, err)
}

// scopeEmployee 非特权账号只能操作本人；特权账号未指定员工时返回 nil
func scopeEmployee(actor authz.Actor, requested *int64) (*int64, error) {
	if actor.Privileged() || actor.HasRole(authz.RoleSuperAdmin) {
		return requested, nil
	}
	if actor.EmployeeID == nil {
		return nil, errors.Forbidden.WithMessage("account is not linked to an employee")
	}
	if requested != nil && *requested != *actor.EmployeeID {
		return nil, errors.Forbidden.WithMessage("records of other employees are not visible")
	}
	own := *actor.EmployeeID
	return &own, nil
}

// targetEmployee 创建类操作的目标员工，缺省为本人
func targetEmployee(actor authz.Actor, requested *int64) (int64, error) {
	if requested != nil {
		return *requested, nil
	}
	if actor.EmployeeID == nil {
		return 0, errors.InvalidRequest.WithMessage("employee_id is required")
	}
	return *actor.EmployeeID, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, errors.InvalidDate
	}
	return t, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseRange end 早于 start 时返回 LeaveInvalidRange
func parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.LeaveInvalidRange
	}
	return from, to, nil
}

// checkSpan 首尾两天都计入
func checkSpan(from, to time.Time) error {
	limit := config.Cfg.LeaveSpanLimit()
	if utils.DaysBetween(from, to)+1 > limit {
		return errors.LeaveInvalidRange.WithMessage("date range must not exceed %d days", limit)
	}
	return nil
}

// parseLeaveRange 年假与许可申请的区间，另有最大跨度限制
func parseLeaveRange(start, end string) (time.Time, time.Time, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := checkSpan(from, to); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func toPage(q dto.PageQuery) repository.Page {
	return repository.Page{Page: q.Page, PageSize: q.PageSize}.Normalize()
}

func resolution(actor authz.Actor, comment string, at time.Time) model.Resolution {
	return model.Resolution{By: actor.AccountID, At: at, Comment: comment}
}

func accountRef(actor authz.Actor) *int64 {
	if actor.AccountID == 0 {
		return nil
	}
	id := actor.AccountID
	return &id
}
