package metadata

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue 读取一个元数据，不存在时返回空字符串
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 使用 OnConflict 原子地写入或更新一个元数据
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}

// GetTime 读取一个时间类型的元数据，不存在时返回零值
func GetTime(db *gorm.DB, key string) (time.Time, error) {
	raw, err := GetValue(db, key)
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", key, err)
	}
	return t, nil
}

func SetTime(db *gorm.DB, key string, t time.Time) error {
	return SetValue(db, key, t.UTC().Format(time.RFC3339Nano))
}
