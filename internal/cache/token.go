package cache

import (
	"context"
	"strconv"
	"time"

	"HRCore/config"
	"HRCore/storage/redis"
)

const tokenPrefix = "token"

// RefreshStore 每个账号只保留最近一次签发的 refresh token
type RefreshStore interface {
	Save(ctx context.Context, accountID int64, refreshToken string) error
	Matches(ctx context.Context, accountID int64, refreshToken string) bool
	Revoke(ctx context.Context, accountID int64) error
}

type RedisRefreshStore struct{}

func NewRedisRefreshStore() *RedisRefreshStore {
	return &RedisRefreshStore{}
}

func refreshKey(accountID int64) string {
	return redis.Key(tokenPrefix, "refresh", strconv.FormatInt(accountID, 10))
}

// Save Key: hrcore:token:refresh:{account_id}
func (RedisRefreshStore) Save(ctx context.Context, accountID int64, refreshToken string) error {
	ttl := time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour
	return redis.Client().Set(ctx, refreshKey(accountID), refreshToken, ttl).Err()
}

func (RedisRefreshStore) Matches(ctx context.Context, accountID int64, refreshToken string) bool {
	stored, err := redis.Client().Get(ctx, refreshKey(accountID)).Result()
	return err == nil && stored == refreshToken
}

func (RedisRefreshStore) Revoke(ctx context.Context, accountID int64) error {
	return redis.Client().Del(ctx, refreshKey(accountID)).Err()
}
