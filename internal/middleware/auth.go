package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"HRCore/internal/authz"
	"HRCore/pkg/errors"
	"HRCore/pkg/response"
	"HRCore/pkg/token"
)

const IdentityKey = token.IdentityKey

var authMiddleware *jwt.HertzJWTMiddleware

func initAuthMiddleware() error {
	// 签名参数与 token 包共用同一个生成器
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	authMiddleware = &jwt.HertzJWTMiddleware{
		Realm:       "HRCore API",
		Key:         sharedGenerator.Key,
		Timeout:     sharedGenerator.Timeout,
		MaxRefresh:  sharedGenerator.MaxRefresh,
		IdentityKey: sharedGenerator.IdentityKey,
		TimeFunc:    sharedGenerator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			actor, err := ActorFromClaims(jwt.ExtractClaims(ctx, c))
			if err != nil {
				return nil
			}
			return actor
		},

		// refresh token 或 claims 不完整时拒绝
		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			_, ok := data.(authz.Actor)
			return ok
		},

		// Authorizator 拒绝时 jwt 默认给 403，这里统一为 401
		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: response.ErrorDetail{
				Code:    errors.Unauthorized.Code,
				Message: message,
			}})
		},

		TokenLookup:   "header: Authorization",
		TokenHeadName: "Bearer",
	}

	return nil
}

// ActorFromClaims 由 access token claims 构造当前账号
func ActorFromClaims(claims map[string]interface{}) (authz.Actor, error) {
	sub, err := token.SubjectFromClaims(claims)
	if err != nil {
		return authz.Actor{}, err
	}
	actor := authz.Actor{AccountID: sub.AccountID, EmployeeID: sub.EmployeeID}
	for _, r := range sub.Roles {
		actor.Roles = append(actor.Roles, authz.ParseRoles(r)...)
	}
	return actor, nil
}

func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// GetActor 未认证时返回零值 Actor，授权会全部拒绝
func GetActor(c *app.RequestContext) authz.Actor {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return authz.Actor{}
	}
	actor, _ := v.(authz.Actor)
	return actor
}
