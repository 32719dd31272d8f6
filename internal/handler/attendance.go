package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

// ListCheckIns 打卡记录
// GET /v1/check-ins
func ListCheckIns(ctx context.Context, c *app.RequestContext) {
	var q dto.CheckInQuery
	if !bind(ctx, c, &q) {
		return
	}

	items, total, err := service.Attendance().ListCheckIns(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, mapItems(items, dto.NewCheckInItem), q.Meta(total))
}

// CreateCheckIn 打卡，坐标齐全且有地点时计算地理围栏
// POST /v1/check-ins
func CreateCheckIn(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateCheckInRequest
	if !bind(ctx, c, &req) {
		return
	}

	ci, err := service.Attendance().CreateCheckIn(ctx, middleware.GetActor(c), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewCheckInItem(ci))
}

// GetCheckIn GET /v1/check-ins/:id
func GetCheckIn(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}

	ci, err := service.Attendance().GetCheckIn(ctx, middleware.GetActor(c), id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewCheckInItem(ci))
}

// RecalculateGeofence 按当前地点重算距离
// POST /v1/check-ins/:id/recalculate
func RecalculateGeofence(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}

	ci, err := service.Attendance().RecalculateGeofence(ctx, middleware.GetActor(c), id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewCheckInItem(ci))
}

// GetDailySummary GET /v1/attendance/summary?employee_id&date
func GetDailySummary(ctx context.Context, c *app.RequestContext) {
	var q dto.SummaryQuery
	if !bind(ctx, c, &q) {
		return
	}

	summary, err := service.Attendance().DailySummary(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, summary)
}

// GetRangeSummary GET /v1/attendance/summary/range?employee_id&from&to
func GetRangeSummary(ctx context.Context, c *app.RequestContext) {
	var q dto.RangeSummaryQuery
	if !bind(ctx, c, &q) {
		return
	}

	rows, err := service.Attendance().RangeSummary(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, rows)
}

// ListJustifications GET /v1/justifications
func ListJustifications(ctx context.Context, c *app.RequestContext) {
	var q dto.JustificationQuery
	if !bind(ctx, c, &q) {
		return
	}

	items, total, err := service.Attendance().ListJustifications(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, mapItems(items, dto.NewJustificationItem), q.Meta(total))
}

// CreateJustification POST /v1/justifications
func CreateJustification(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateJustificationRequest
	if !bind(ctx, c, &req) {
		return
	}

	j, err := service.Attendance().CreateJustification(ctx, middleware.GetActor(c), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewJustificationItem(j))
}

// ResolveJustification 批准或驳回
// POST /v1/justifications/:id/resolve
func ResolveJustification(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}
	var req dto.ResolveJustificationRequest
	if !bind(ctx, c, &req) {
		return
	}

	j, err := service.Attendance().ResolveJustification(ctx, middleware.GetActor(c), id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewJustificationItem(j))
}
