package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/authz"
	"HRCore/internal/middleware"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

// SimulateLeave 预估区间内的工作日数
// GET /v1/leave-requests/simulate?start&end[&employee_id]
func SimulateLeave(ctx context.Context, c *app.RequestContext) {
	var q dto.SimulateQuery
	if !bind(ctx, c, &q) {
		return
	}

	res, err := service.Leave().Simulate(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}

// ListLeaveRequests GET /v1/leave-requests
func ListLeaveRequests(ctx context.Context, c *app.RequestContext) {
	var q dto.RequestQuery
	if !bind(ctx, c, &q) {
		return
	}

	items, total, err := service.Leave().List(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, mapItems(items, dto.NewLeaveItem), q.Meta(total))
}

// CreateLeaveRequest 新建年假申请，状态为 PEND
// POST /v1/leave-requests
func CreateLeaveRequest(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateLeaveRequest
	if !bind(ctx, c, &req) {
		return
	}

	lr, err := service.Leave().Create(ctx, middleware.GetActor(c), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewLeaveItem(lr))
}

// GetLeaveRequest GET /v1/leave-requests/:id
func GetLeaveRequest(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}

	lr, err := service.Leave().Get(ctx, middleware.GetActor(c), id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewLeaveItem(lr))
}

// UpdateLeaveRequest 仅 PEND 状态可修改
// PUT /v1/leave-requests/:id
func UpdateLeaveRequest(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}
	var req dto.UpdateLeaveRequest
	if !bind(ctx, c, &req) {
		return
	}

	lr, err := service.Leave().Update(ctx, middleware.GetActor(c), id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewLeaveItem(lr))
}

type leaveTransition func(*service.LeaveService, context.Context, authz.Actor, int64, string) (*model.LeaveRequest, error)

func transitionLeave(fn leaveTransition) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id, ok := pathID(ctx, c)
		if !ok {
			return
		}
		var req dto.TransitionRequest
		if !bind(ctx, c, &req) {
			return
		}

		lr, err := fn(service.Leave(), ctx, middleware.GetActor(c), id, req.Comment)
		if err != nil {
			response.Error(ctx, c, err)
			return
		}
		response.Success(ctx, c, dto.NewLeaveItem(lr))
	}
}

// 状态不符时返回 409 LEAVE_NOT_IN_EXPECTED_STATE
var (
	// ApproveLeaveRequest POST /v1/leave-requests/:id/approve
	ApproveLeaveRequest = transitionLeave((*service.LeaveService).Approve)
	// RejectLeaveRequest POST /v1/leave-requests/:id/reject
	RejectLeaveRequest = transitionLeave((*service.LeaveService).Reject)
	// CancelLeaveRequest POST /v1/leave-requests/:id/cancel
	CancelLeaveRequest = transitionLeave((*service.LeaveService).Cancel)
)
