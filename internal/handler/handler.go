package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/pkg/errors"
	"HRCore/pkg/response"
	"HRCore/pkg/validate"
)

// bind 绑定请求并校验，失败时已写出响应
func bind(ctx context.Context, c *app.RequestContext, req interface{}) bool {
	if err := c.Bind(req); err != nil {
		response.BindError(ctx, c, err)
		return false
	}
	if errs := validate.Struct(req); errs != nil {
		response.ValidationError(ctx, c, errs)
		return false
	}
	return true
}

// pathID 解析路径中的 :id
func pathID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(ctx, c, errors.InvalidRequest.WithMessage("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

// mapItems 列表转换为响应项
func mapItems[T, R any](items []T, fn func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = fn(&items[i])
	}
	return out
}
