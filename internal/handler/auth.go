package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/internal/middleware"
	"HRCore/internal/model/dto"
	"HRCore/internal/service"
	"HRCore/pkg/response"
)

// Login 用户名密码登录
// POST /v1/auth/login
func Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if !bind(ctx, c, &req) {
		return
	}

	pair, err := service.Auth().Login(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, pair)
}

// RefreshToken 刷新访问令牌
// POST /v1/auth/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshRequest
	if !bind(ctx, c, &req) {
		return
	}

	pair, err := service.Auth().Refresh(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, pair)
}

// GetMe 当前账号
// GET /v1/me
func GetMe(ctx context.Context, c *app.RequestContext) {
	me, err := service.Auth().Me(ctx, middleware.GetActor(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, me)
}
