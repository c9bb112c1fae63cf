package viewdedup

import (
	"context"

	"go.uber.org/zap"

	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

// LayeredBackend 优先读Redis，Redis未命中或不健康时回查SQLite。
// 写入同时进入两层，Flusher只负责补写SQLite写入失败的标记。
type LayeredBackend struct {
	hot     *RedisBackend
	durable *SQLBackend
	healthy func() bool
}

func NewLayeredBackend(hot *RedisBackend, durable *SQLBackend, healthy func() bool) *LayeredBackend {
	return &LayeredBackend{hot: hot, durable: durable, healthy: healthy}
}

func (b *LayeredBackend) ForClient(clientID string) KeyValueStore {
	return &layeredStore{
		hot:     b.hot.ForClient(clientID),
		durable: b.durable.ForClient(clientID),
		healthy: b.healthy,
	}
}

type layeredStore struct {
	hot     KeyValueStore
	durable KeyValueStore
	healthy func() bool
}

func (s *layeredStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.healthy() {
		v, ok, err := s.hot.Get(ctx, key)
		if err == nil && ok {
			return v, true, nil
		}
		if err != nil {
			applog.L().Warn("读取Redis去重标记失败，回查SQLite", zap.Error(err))
		}
	}
	return s.durable.Get(ctx, key)
}

// Set 先写SQLite再写Redis。只要有一层写成功就不算失败，
// 只进了Redis的标记由Flusher补写，Redis重启也不会丢失已落盘的标记。
func (s *layeredStore) Set(ctx context.Context, key, value string) error {
	durableErr := s.durable.Set(ctx, key, value)
	if !s.healthy() {
		return durableErr
	}
	if err := s.hot.Set(ctx, key, value); err != nil {
		applog.L().Warn("写入Redis去重标记失败", zap.Error(err))
		return durableErr
	}
	if durableErr != nil {
		applog.L().Warn("写入SQLite去重标记失败，等待Flusher落盘", zap.Error(durableErr))
	}
	return nil
}
