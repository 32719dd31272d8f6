package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

// ListLocations 工作地点
// GET /v1/locations?active=true
func ListLocations(ctx context.Context, c *app.RequestContext) {
	items, err := service.Organization().ListLocations(ctx, c.Query("active") == "true")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, items)
}

// CreateLocation POST /v1/locations
func CreateLocation(ctx context.Context, c *app.RequestContext) {
	saveLocation(ctx, c, 0)
}

// UpdateLocation PUT /v1/locations/:id
func UpdateLocation(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}
	saveLocation(ctx, c, id)
}

func saveLocation(ctx context.Context, c *app.RequestContext, id int64) {
	var req dto.LocationRequest
	if !bind(ctx, c, &req) {
		return
	}

	loc, err := service.Organization().SaveLocation(ctx, middleware.GetActor(c), id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	if id == 0 {
		response.Created(ctx, c, loc)
		return
	}
	response.Success(ctx, c, loc)
}

// ListWorkSchedules 排班
// GET /v1/work-schedules
func ListWorkSchedules(ctx context.Context, c *app.RequestContext) {
	items, err := service.Organization().ListSchedules(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, mapItems(items, func(s *model.WorkSchedule) dto.WorkScheduleItem {
		return dto.NewWorkScheduleItem(*s)
	}))
}

// CreateWorkSchedule POST /v1/work-schedules
func CreateWorkSchedule(ctx context.Context, c *app.RequestContext) {
	var req dto.WorkScheduleRequest
	if !bind(ctx, c, &req) {
		return
	}

	ws, err := service.Organization().CreateSchedule(ctx, middleware.GetActor(c), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewWorkScheduleItem(*ws))
}
