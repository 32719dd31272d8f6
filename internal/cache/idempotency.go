package cache

import (
	"context"
	"fmt"
	"time"

	"HRCore/storage/redis"
)

const (
	messageProcessedPrefix = "message:processed"
	processedTTL           = 48 * time.Hour
)

// Deduper 消息去重
type Deduper interface {
	MarkProcessed(ctx context.Context, messageID string) (first bool, err error)
	Unmark(ctx context.Context, messageID string) error
}

type RedisDeduper struct{}

func NewRedisDeduper() *RedisDeduper {
	return &RedisDeduper{}
}

// MarkProcessed 首次标记返回 true，重复投递返回 false
func (RedisDeduper) MarkProcessed(ctx context.Context, messageID string) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	ok, err := redis.Client().SetNX(ctx, key, time.Now().Unix(), processedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message processed: %w", err)
	}
	return ok, nil
}

// Unmark 处理失败时撤销标记，允许重新投递后再次处理
func (RedisDeduper) Unmark(ctx context.Context, messageID string) error {
	return redis.Client().Del(ctx, redis.Key(messageProcessedPrefix, messageID)).Err()
}
