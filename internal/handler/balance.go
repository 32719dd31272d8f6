package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func balanceItem(b *model.AnnualBalance) dto.BalanceItem {
	return dto.NewBalanceItem(*b)
}

// ListBalances GET /v1/balances
func ListBalances(ctx context.Context, c *app.RequestContext) {
	var q dto.BalanceQuery
	if !bind(ctx, c, &q) {
		return
	}

	items, total, err := service.Balance().List(ctx, middleware.GetActor(c), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, mapItems(items, balanceItem), q.Meta(total))
}

// ExportBalances 导出某年余额 XLSX
// GET /v1/balances/export?year
func ExportBalances(ctx context.Context, c *app.RequestContext) {
	var q dto.YearQuery
	if !bind(ctx, c, &q) {
		return
	}

	buf, err := service.Balance().Export(ctx, middleware.GetActor(c), q.Year)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="balances_%d.xlsx"`, q.Year))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// RebuildBalances 同步重算，或 async=true 时投递到队列并返回 202
// POST /v1/balances/rebuild
func RebuildBalances(ctx context.Context, c *app.RequestContext) {
	var req dto.RebuildRequest
	if !bind(ctx, c, &req) {
		return
	}

	res, messageID, err := service.Balance().Rebuild(ctx, middleware.GetActor(c), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	if messageID != "" {
		response.Accepted(ctx, c, map[string]string{"message_id": messageID})
		return
	}
	response.Success(ctx, c, res)
}
