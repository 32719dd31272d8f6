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

// ListPermissionTypes GET /v1/permission-types?active=true
func ListPermissionTypes(ctx context.Context, c *app.RequestContext) {
	items, err := service.Permission().ListTypes(ctx, c.Query("active") == "true")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, items)
}

// CreatePermissionType POST /v1/permission-types
func CreatePermissionType(ctx context.Context, c *app.RequestContext) {
	var req dto.PermissionTypeRequest
	if !bind(ctx, c, &req) {
		return
	}

	pt, err := service.Permission().SaveType(ctx, middleware.GetActor(c), 0, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, pt)
}

// ListPermissions GET /v1/permissions
func ListPermissions(ctx context.Context, c *app.RequestContext) {
	var q dto.RequestQuery
	if !bind(ctx, c, &q) {
		return
	}

	items, total, err := service.Permission().List(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, mapItems(items, dto.NewPermissionItem), q.Meta(total))
}

// CreatePermission POST /v1/permissions
func CreatePermission(ctx context.Context, c *app.RequestContext) {
	var req dto.CreatePermissionRequest
	if !bind(ctx, c, &req) {
		return
	}

	p, err := service.Permission().Create(ctx, middleware.GetActor(c), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewPermissionItem(p))
}

type permissionTransition func(*service.PermissionService, context.Context, authz.Actor, int64, string) (*model.Permission, error)

func transitionPermission(fn permissionTransition) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id, ok := pathID(ctx, c)
		if !ok {
			return
		}
		var req dto.TransitionRequest
		if !bind(ctx, c, &req) {
			return
		}

		p, err := fn(service.Permission(), ctx, middleware.GetActor(c), id, req.Comment)
		if err != nil {
			response.Error(ctx, c, err)
			return
		}
		response.Success(ctx, c, dto.NewPermissionItem(p))
	}
}

var (
	// ApprovePermission POST /v1/permissions/:id/approve
	ApprovePermission = transitionPermission((*service.PermissionService).Approve)
	// RejectPermission POST /v1/permissions/:id/reject
	RejectPermission = transitionPermission((*service.PermissionService).Reject)
	// CancelPermission POST /v1/permissions/:id/cancel
	CancelPermission = transitionPermission((*service.PermissionService).Cancel)
)
