package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"HRCore/pkg/logger"
	"HRCore/storage/database"
	"HRCore/storage/mq"
	"HRCore/storage/redis"
)

// Close 关闭顺序：MQ -> Redis -> Database
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	closers := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"message queue", mq.Close},
		{"redis", redis.Close},
		{"database", database.Close},
	}

	for _, c := range closers {
		if err := c.fn(ctx); err != nil {
			logger.Logger.Error("Failed to close storage", zap.String("component", c.name), zap.Error(err))
			continue
		}
		logger.Logger.Info("Storage closed", zap.String("component", c.name))
	}
}
