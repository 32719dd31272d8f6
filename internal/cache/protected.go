package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"HRCore/pkg/logger"
	"HRCore/storage/redis"
)

const (
	// 空值缓存标识，防穿透
	emptyValueFlag = "__EMPTY__"
	emptyValueTTL  = 5 * time.Minute
)

// ProtectedCache 带空值保护、TTL 抖动与熔断的 JSON 缓存
type ProtectedCache struct {
	breaker   *CircuitBreaker
	keyPrefix string
	ttl       time.Duration
	emptyTTL  time.Duration
}

func NewProtectedCache(keyPrefix string, ttl time.Duration) *ProtectedCache {
	return &ProtectedCache{
		keyPrefix: keyPrefix,
		ttl:       ttl,
		emptyTTL:  emptyValueTTL,
		breaker:   RedisBreaker,
	}
}

// jitter 防雪崩，在 TTL 上叠加最多 10% 的随机量
func (pc *ProtectedCache) jitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(int64(ttl)/10+1))
}

// Set value 为 nil 时写入空值标识
func (pc *ProtectedCache) Set(ctx context.Context, key string, value interface{}) error {
	data, ttl := emptyValueFlag, pc.emptyTTL
	if value != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
		data, ttl = string(raw), pc.jitter(pc.ttl)
	}

	return pc.breaker.Call(func() error {
		return redis.Client().Set(ctx, redis.Key(pc.keyPrefix, key), data, ttl).Err()
	})
}

// Get 返回 (命中, 是否空值, error)
func (pc *ProtectedCache) Get(ctx context.Context, key string, dest interface{}) (hit bool, empty bool, err error) {
	var data string
	err = pc.breaker.Call(func() error {
		var getErr error
		data, getErr = redis.Client().Get(ctx, redis.Key(pc.keyPrefix, key)).Result()
		if errors.Is(getErr, goredis.Nil) {
			return nil
		}
		return getErr
	})
	if err != nil {
		return false, false, err
	}

	switch data {
	case "":
		return false, false, nil
	case emptyValueFlag:
		return true, true, nil
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, false, nil
}

func (pc *ProtectedCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = redis.Key(pc.keyPrefix, k)
	}
	return pc.breaker.Call(func() error {
		return redis.Client().Del(ctx, full...).Err()
	})
}

// GetOrLoad 缓存未命中或 Redis 不可用时回源，缓存错误只记录日志
func GetOrLoad[T any](ctx context.Context, pc *ProtectedCache, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	hit, empty, err := pc.Get(ctx, key, &v)
	if err != nil && !errors.Is(err, ErrBreakerOpen) {
		logger.Logger.Warn("Cache read failed, falling back to loader",
			zap.String("prefix", pc.keyPrefix),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	if hit {
		if empty {
			var zero T
			return zero, nil
		}
		return v, nil
	}

	v, err = load(ctx)
	if err != nil {
		return v, err
	}

	if setErr := pc.Set(ctx, key, v); setErr != nil && !errors.Is(setErr, ErrBreakerOpen) {
		logger.Logger.Warn("Cache write failed",
			zap.String("prefix", pc.keyPrefix),
			zap.String("key", key),
			zap.Error(setErr),
		)
	}
	return v, nil
}
