package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

// GetHeadcount GET /v1/reports/headcount
func GetHeadcount(ctx context.Context, c *app.RequestContext) {
	rows, err := service.Report().Headcount(ctx, middleware.GetActor(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, rows)
}

// GetLeaveTotals GET /v1/reports/leave-totals?year
func GetLeaveTotals(ctx context.Context, c *app.RequestContext) {
	var q dto.YearQuery
	if !bind(ctx, c, &q) {
		return
	}

	rows, err := service.Report().LeaveTotals(ctx, middleware.GetActor(c), q.Year)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, rows)
}

// GetPendingBacklog GET /v1/reports/pending-approvals?older_than_days
func GetPendingBacklog(ctx context.Context, c *app.RequestContext) {
	var q dto.BacklogQuery
	if !bind(ctx, c, &q) {
		return
	}

	items, err := service.Report().PendingBacklog(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, mapItems(items, dto.NewLeaveItem))
}

// GetOutsideGeofence GET /v1/reports/outside-geofence?from&to&employee_id
func GetOutsideGeofence(ctx context.Context, c *app.RequestContext) {
	var q dto.GeofenceReportQuery
	if !bind(ctx, c, &q) {
		return
	}

	rows, err := service.Report().OutsideGeofence(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, rows)
}

// GetBalanceTotals GET /v1/reports/balance-totals?year
func GetBalanceTotals(ctx context.Context, c *app.RequestContext) {
	var q dto.YearQuery
	if !bind(ctx, c, &q) {
		return
	}

	totals, err := service.Report().BalanceTotals(ctx, middleware.GetActor(c), q.Year)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, totals)
}
