package middleware

import (
	"fmt"

	"go.uber.org/zap"

	"HRCore/config"
	"HRCore/pkg/logger"
)

// Init 需在 token.Init 之后调用
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		logger.Logger.Error("Failed to initialize auth middleware", zap.Error(err))
		return err
	}

	if config.Cfg.RateLimitEnabled && config.Cfg.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive when rate limiting is enabled, got %d", config.Cfg.RateLimitRPS)
	}

	logger.Logger.Info("All middlewares initialized successfully",
		zap.Bool("rate_limit", config.Cfg.RateLimitEnabled),
		zap.Int("rate_limit_rps", config.Cfg.RateLimitRPS),
		zap.String("cors_origins", config.Cfg.CORSAllowedOrigins),
	)
	return nil
}
