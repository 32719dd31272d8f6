package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"HRCore/storage/redis"
)

const lockPrefix = "lock"

// 只删除自己持有的锁
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker 分布式互斥锁，release 只释放本次获取的锁
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// RedisLocker SET NX + 随机 token
type RedisLocker struct{}

func NewRedisLocker() *RedisLocker {
	return &RedisLocker{}
}

func (RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	fullKey := redis.Key(lockPrefix, key)
	token := uuid.NewString()

	ok, err := redis.Client().SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		return unlockScript.Run(ctx, redis.Client(), []string{fullKey}, token).Err()
	}
	return release, true, nil
}

// BalanceLockKey 同一员工同一年度的余额写入串行化
func BalanceLockKey(employeeID int64, year int) string {
	return fmt.Sprintf("balance:%d:%d", employeeID, year)
}

// JobLockKey 定时任务在多实例间只运行一次
func JobLockKey(job, runKey string) string {
	return "job:" + job + ":" + runKey
}
