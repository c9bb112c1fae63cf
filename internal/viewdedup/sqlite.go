package viewdedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ViewMark 是去重标记在SQLite中的持久化模型
type ViewMark struct {
	ClientID  string `gorm:"primaryKey;type:varchar(36)"`
	MarkKey   string `gorm:"primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:varchar(16)"`
	CreatedAt time.Time
}

// SQLBackend 是去重标记的持久层，也是Redis不可用时的退路
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) ForClient(clientID string) KeyValueStore {
	return &sqlStore{db: b.db, clientID: clientID}
}

// upsertMarks 批量写入标记，已存在的标记保持不变
func upsertMarks(tx *gorm.DB, marks []ViewMark) error {
	if len(marks) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&marks, 500).Error
}

type sqlStore struct {
	db       *gorm.DB
	clientID string
}

func (s *sqlStore) Get(ctx context.Context, key string) (string, bool, error) {
	var mark ViewMark
	err := s.db.WithContext(ctx).Where("client_id = ? AND mark_key = ?", s.clientID, key).First(&mark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("无法从SQLite读取去重标记: %w", err)
	}
	return mark.Value, true, nil
}

func (s *sqlStore) Set(ctx context.Context, key, value string) error {
	mark := ViewMark{ClientID: s.clientID, MarkKey: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "mark_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&mark).Error
	if err != nil {
		return fmt.Errorf("无法写入SQLite去重标记: %w", err)
	}
	return nil
}
