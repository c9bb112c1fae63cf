package viewdedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/platform/metadata"
)

// MigrateDB 负责自动迁移数据库表结构
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&ViewMark{}); err != nil {
		return fmt.Errorf("无法迁移view_marks表: %w", err)
	}
	applog.L().Info("ViewMark数据库表迁移成功")
	return metadata.MigrateDB(db)
}

// WarmupCache 把SQLite中的全部标记预热到Redis。
// 只做并集写入，不清空Redis，因为Redis中可能还有尚未落盘的标记。
func WarmupCache(ctx context.Context, rdb *redis.Client, db *gorm.DB) error {
	const batchSize = 1000
	total := 0

	// 复合主键不适合 FindInBatches，这里按 (client_id, mark_key) 排序后分页
	for offset := 0; ; offset += batchSize {
		var batch []ViewMark
		err := db.WithContext(ctx).Order("client_id asc, mark_key asc").Limit(batchSize).Offset(offset).Find(&batch).Error
		if err != nil {
			return fmt.Errorf("无法从SQLite读取去重标记: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		pipe := rdb.Pipeline()
		for _, m := range batch {
			pipe.HSet(ctx, clientKey(m.ClientID), m.MarkKey, m.Value)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("预热去重标记到Redis失败: %w", err)
		}
		total += len(batch)

		if len(batch) < batchSize {
			break
		}
	}

	applog.L().Info("成功预热去重标记到Redis", zap.Int("marks", total))
	if err := metadata.SetTime(db, metadata.LastWarmupAtKey, time.Now()); err != nil {
		applog.L().Warn("记录预热时间失败", zap.Error(err))
	}
	return nil
}

// PrimeCachedDB 是viewdedup模块的初始化总入口
func PrimeCachedDB(ctx context.Context, rdb *redis.Client, db *gorm.DB) error {
	if err := MigrateDB(db); err != nil {
		return err
	}
	return WarmupCache(ctx, rdb, db)
}
