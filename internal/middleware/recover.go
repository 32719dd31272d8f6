package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"HRCore/config"
	"HRCore/pkg/errors"
	"HRCore/pkg/logger"
	"HRCore/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 生产环境是否返回 panic 详情
	ExposeDetailsInProduction bool
	// 是否记录请求体（小于 1KB 且非 multipart）
	LogRequestBody bool
	// 是否在当前 span 中记录异常
	RecordInSpan bool
	IsProduction bool
}

func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		LogRequestBody: true,
		RecordInSpan:   true,
		IsProduction:   config.Cfg.IsProduction(),
	}
}

func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if r := recover(); r != nil {
				handlePanic(ctx, c, r, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, r interface{}, cfg RecoverConfig) {
	stack := trimStack(debug.Stack())
	logPanic(ctx, c, r, stack, cfg)

	if cfg.RecordInSpan {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.RecordError(fmt.Errorf("panic: %v", r), trace.WithStackTrace(true))
			span.SetStatus(codes.Error, "panic recovered")
		}
	}

	if cfg.IsProduction && !cfg.ExposeDetailsInProduction {
		response.Error(ctx, c, errors.InternalError)
	} else {
		response.ErrorWithDetails(ctx, c, errors.InternalError.WithMessage("Internal error: %v", r), map[string]interface{}{
			"panic":     fmt.Sprintf("%v", r),
			"timestamp": time.Now().Format(time.RFC3339),
			"stack":     string(stack),
		})
	}
	c.Abort()
}

// trimStack 去掉 runtime 与 debug 自身的栈帧
func trimStack(stack []byte) []byte {
	lines := strings.Split(string(stack), "\n")
	filtered := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "runtime/") || strings.HasPrefix(line, "panic(") {
			i++ // 同时跳过下一行的文件位置
			continue
		}
		filtered = append(filtered, line)
	}
	return []byte(strings.Join(filtered, "\n"))
}

func logPanic(ctx context.Context, c *app.RequestContext, r interface{}, stack []byte, cfg RecoverConfig) {
	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", r)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", GetRequestID(c)),
	}

	if actor := GetActor(c); actor.AccountID != 0 {
		fields = append(fields, zap.Int64("account_id", actor.AccountID))
	}

	if cfg.LogRequestBody {
		body := c.Request.Body()
		if len(body) > 0 && len(body) < 1024 && !strings.Contains(string(c.ContentType()), "multipart") {
			fields = append(fields, zap.ByteString("body", body))
		}
	}

	fields = append(fields, zap.ByteString("stack", stack))
	logger.Ctx(ctx).Error("[PANIC RECOVERED]", fields...)
}
