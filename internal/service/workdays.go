package service

import (
	"context"
	"fmt"
	"time"

	"HRCore/pkg/errors"
	"HRCore/pkg/workday"
)

// dayCounter 按员工排班与全局节假日统计工作日
type dayCounter struct {
	employees EmployeeStore
	holidays  HolidaySource
	fallback  workday.Mask
}

// mask 未指定员工或员工无排班时使用默认掩码
func (c dayCounter) mask(ctx context.Context, employeeID *int64) (workday.Mask, error) {
	if employeeID == nil {
		return c.fallback, nil
	}
	emp, err := c.employees.Get(ctx, *employeeID)
	if err != nil {
		return 0, lookupErr(err, errors.EmployeeNotFound, "employee")
	}
	return emp.WorkMask(c.fallback), nil
}

func (c dayCounter) count(ctx context.Context, employeeID *int64, start, end time.Time) (int, error) {
	if start.After(end) {
		return 0, nil
	}
	if err := checkSpan(start, end); err != nil {
		return 0, err
	}
	mask, err := c.mask(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	holidays, err := c.holidays.Set(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to load holidays: %w", err)
	}
	return workday.Count(start, end, mask, holidays), nil
}
