package storage

import (
	"context"
	"errors"
	"time"

	"HRCore/storage/database"
	"HRCore/storage/mq"
	"HRCore/storage/redis"
)

var errBrokerDown = errors.New("rabbitmq connection closed")

// Check 逐个探测外部依赖，返回组件名到错误的映射，全部正常时为空
func Check(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	failed := map[string]error{}
	if err := database.Ping(ctx); err != nil {
		failed["database"] = err
	}
	if err := redis.Ping(ctx); err != nil {
		failed["redis"] = err
	}
	if !mq.Ready() {
		failed["rabbitmq"] = errBrokerDown
	}
	return failed
}
