package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

// ListPolicies 年假工龄档位
// GET /v1/policies?active=true
func ListPolicies(ctx context.Context, c *app.RequestContext) {
	items, err := service.Policy().List(ctx, c.Query("active") == "true")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, items)
}

// CreatePolicy POST /v1/policies
func CreatePolicy(ctx context.Context, c *app.RequestContext) {
	savePolicy(ctx, c, 0)
}

// UpdatePolicy PUT /v1/policies/:id
func UpdatePolicy(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}
	savePolicy(ctx, c, id)
}

func savePolicy(ctx context.Context, c *app.RequestContext, id int64) {
	var req dto.PolicyRequest
	if !bind(ctx, c, &req) {
		return
	}

	tier, err := service.Policy().Save(ctx, middleware.GetActor(c), id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	if id == 0 {
		response.Created(ctx, c, tier)
		return
	}
	response.Success(ctx, c, tier)
}
