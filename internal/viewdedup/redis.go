package viewdedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// --- Redis 键名常量 ---

const (
	// clientKeyPrefix 每个客户端一个Hash
	// Key: viewdedup:client:<clientID>
	// Field: viewed_profile_<id>, Value: "true"
	clientKeyPrefix = "viewdedup:client:"

	// DirtySetKey 记录自上次落盘以来写入过标记的客户端ID，用于增量持久化
	DirtySetKey = "viewdedup:dirty"

	// ProcessingDirtySetKey 只在落盘逻辑中使用
	ProcessingDirtySetKey = "viewdedup:dirty:processing"
)

func clientKey(clientID string) string {
	return clientKeyPrefix + clientID
}

// RedisBackend 把去重标记保存在Redis中，并登记脏客户端等待落盘
type RedisBackend struct {
	rdb *redis.Client
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) ForClient(clientID string) KeyValueStore {
	return &redisStore{rdb: b.rdb, clientID: clientID}
}

type redisStore struct {
	rdb      *redis.Client
	clientID string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, clientKey(s.clientID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("无法从Redis读取去重标记: %w", err)
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, clientKey(s.clientID), key, value)
	pipe.SAdd(ctx, DirtySetKey, s.clientID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("无法写入Redis去重标记: %w", err)
	}
	return nil
}
