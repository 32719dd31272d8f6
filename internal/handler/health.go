package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"HRCore/config"
	"HRCore/pkg/response"
	"HRCore/storage"
)

// Health GET /health
// 任一依赖不可用时返回 503，components 中给出原因
func Health(ctx context.Context, c *app.RequestContext) {
	components := map[string]string{"database": "ok", "redis": "ok", "rabbitmq": "ok"}
	failed := storage.Check(ctx)
	for name, err := range failed {
		components[name] = err.Error()
	}

	status, code := "ok", http.StatusOK
	if len(failed) > 0 {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, response.SuccessResponse{Data: map[string]interface{}{
		"status":     status,
		"service":    config.Cfg.ServiceName,
		"version":    config.Cfg.ServiceVersion,
		"components": components,
	}})
}
