package viewdedup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SlpAus/fame-list-backend/internal/platform/database"
	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/platform/metadata"
	"github.com/SlpAus/fame-list-backend/pkg/lifecycle"
)

// Flusher 把Redis中新写入的去重标记增量持久化到SQLite
type Flusher struct {
	rdb     *redis.Client
	db      *gorm.DB
	healthy func() bool

	mu sync.Mutex // 避免定时落盘和停机落盘并发执行
}

func NewFlusher(rdb *redis.Client, db *gorm.DB, healthy func() bool) *Flusher {
	return &Flusher{rdb: rdb, db: db, healthy: healthy}
}

// Run 按固定间隔落盘，直到生命周期句柄被取消
func (f *Flusher) Run(handle *lifecycle.Handle, interval time.Duration) {
	defer handle.Close()
	applog.L().Info("去重标记落盘调度器已启动", zap.Duration("interval", interval))

	for {
		// 可中断的休眠，收到停机信号时立刻退出
		if err := handle.Sleep(interval); err != nil {
			applog.L().Info("去重标记落盘调度器: 休眠被中断，正在关闭")
			return
		}

		if !f.healthy() {
			applog.L().Warn("去重标记落盘调度器: Redis不可用，跳过本次落盘")
			continue
		}

		n, err := f.Flush(handle.Ctx())
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				applog.L().Error("去重标记落盘失败", zap.Error(err))
			}
			continue
		}
		if n > 0 {
			applog.L().Debug("去重标记落盘成功", zap.Int("clients", n))
		}
	}
}

// Flush 执行一次增量落盘，返回本次处理的客户端数量。
// 脏集合先被原子地改名为处理中集合；失败时合并回去，下次重试。
func (f *Flusher) Flush(ctx context.Context) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	exists, err := f.rdb.Exists(ctx, DirtySetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("无法检查脏集合是否存在: %w", err)
	}
	if exists == 0 {
		// 上一次失败遗留的处理中集合也需要重试
		leftover, err := f.rdb.Exists(ctx, ProcessingDirtySetKey).Result()
		if err != nil || leftover == 0 {
			return 0, err
		}
	} else {
		pipe := f.rdb.TxPipeline()
		pipe.SUnionStore(ctx, ProcessingDirtySetKey, ProcessingDirtySetKey, DirtySetKey)
		pipe.Del(ctx, DirtySetKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return 0, fmt.Errorf("无法转移脏集合: %w", err)
		}
	}

	defer func() {
		if err != nil {
			pipe := f.rdb.TxPipeline()
			pipe.SUnionStore(context.Background(), DirtySetKey, DirtySetKey, ProcessingDirtySetKey)
			pipe.Del(context.Background(), ProcessingDirtySetKey)
			_, _ = pipe.Exec(context.Background())
			return
		}
		f.rdb.Del(context.Background(), ProcessingDirtySetKey)
	}()

	clientIDs, err := f.rdb.SMembers(ctx, ProcessingDirtySetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("无法读取处理中集合: %w", err)
	}
	if len(clientIDs) == 0 {
		return 0, nil
	}

	pipe := f.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(clientIDs))
	for i, id := range clientIDs {
		cmds[i] = pipe.HGetAll(ctx, clientKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("无法批量读取去重标记: %w", err)
	}

	var marks []ViewMark
	for i, id := range clientIDs {
		for key, value := range cmds[i].Val() {
			marks = append(marks, ViewMark{ClientID: id, MarkKey: key, Value: value})
		}
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	const maxRetry = 3
	const delay = 50 * time.Millisecond
	for i := 0; i < maxRetry; i++ {
		err = f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return upsertMarks(tx, marks)
		})
		if err == nil || !database.IsRetryableError(err) {
			break
		}
		time.Sleep(delay)
	}
	if err != nil {
		return 0, fmt.Errorf("无法把去重标记写入SQLite: %w", err)
	}
	if err := metadata.SetTime(f.db, metadata.LastFlushAtKey, time.Now()); err != nil {
		applog.L().Warn("记录落盘时间失败", zap.Error(err))
	}
	return len(clientIDs), nil
}
