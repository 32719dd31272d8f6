package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

// ListEmployees 员工列表，普通员工只能看到自己
// GET /v1/employees
func ListEmployees(ctx context.Context, c *app.RequestContext) {
	var q dto.EmployeeQuery
	if !bind(ctx, c, &q) {
		return
	}

	items, total, err := service.Employee().List(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, mapItems(items, dto.NewEmployeeItem), q.Meta(total))
}

// CreateEmployee 新建员工
// POST /v1/employees
func CreateEmployee(ctx context.Context, c *app.RequestContext) {
	var req dto.EmployeeRequest
	if !bind(ctx, c, &req) {
		return
	}

	e, err := service.Employee().Create(ctx, middleware.GetActor(c), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewEmployeeItem(e))
}

// GetEmployee 员工详情
// GET /v1/employees/:id
func GetEmployee(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}

	e, err := service.Employee().Get(ctx, middleware.GetActor(c), id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewEmployeeItem(e))
}

// UpdateEmployee 更新员工
// PUT /v1/employees/:id
func UpdateEmployee(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}
	var req dto.EmployeeRequest
	if !bind(ctx, c, &req) {
		return
	}

	e, err := service.Employee().Update(ctx, middleware.GetActor(c), id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewEmployeeItem(e))
}
