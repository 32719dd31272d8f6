package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

// GetAbsenceCalendar 按天展开的缺勤日历
// GET /v1/calendar/absences?from&to[&employee_id&state&include_rejected&include_cancelled]
func GetAbsenceCalendar(ctx context.Context, c *app.RequestContext) {
	var q dto.CalendarQuery
	if !bind(ctx, c, &q) {
		return
	}

	res, err := service.Calendar().Absences(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}
