package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/errors"
	"HRCore/pkg/response"
)

func holidayItem(h *model.Holiday) dto.HolidayItem {
	return dto.NewHolidayItem(*h)
}

// ListHolidays GET /v1/holidays?from&to|year
func ListHolidays(ctx context.Context, c *app.RequestContext) {
	var q dto.HolidayQuery
	if !bind(ctx, c, &q) {
		return
	}

	items, err := service.Holiday().List(ctx, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, mapItems(items, holidayItem))
}

// CreateHoliday POST /v1/holidays
func CreateHoliday(ctx context.Context, c *app.RequestContext) {
	var req dto.HolidayRequest
	if !bind(ctx, c, &req) {
		return
	}

	h, err := service.Holiday().Create(ctx, middleware.GetActor(c), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, holidayItem(h))
}

// UpdateHoliday PUT /v1/holidays/:id
func UpdateHoliday(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}
	var req dto.HolidayRequest
	if !bind(ctx, c, &req) {
		return
	}

	h, err := service.Holiday().Update(ctx, middleware.GetActor(c), id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, holidayItem(h))
}

// DeleteHoliday DELETE /v1/holidays/:id
func DeleteHoliday(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(ctx, c)
	if !ok {
		return
	}

	if err := service.Holiday().Delete(ctx, middleware.GetActor(c), id); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}

// ExpandHolidays 按 recurrence 规则生成某年的节假日
// POST /v1/holidays/expand?year
func ExpandHolidays(ctx context.Context, c *app.RequestContext) {
	var q dto.YearQuery
	if !bind(ctx, c, &q) {
		return
	}

	res, err := service.Holiday().Expand(ctx, middleware.GetActor(c), q.Year)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}

// ImportHolidays 导入 XLSX，第一列日期、第二列名称
// POST /v1/holidays/import (multipart file)
func ImportHolidays(ctx context.Context, c *app.RequestContext) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest.WithMessage("multipart field 'file' is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(ctx, c, errors.HolidayImportInvalid)
		return
	}
	defer f.Close()

	res, err := service.Holiday().Import(ctx, middleware.GetActor(c), f)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}
