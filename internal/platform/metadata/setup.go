package metadata

import (
	"fmt"

	"gorm.io/gorm"

	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

// MigrateDB 迁移metadata表
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}
	applog.L().Info("Metadata数据库表迁移成功")
	return nil
}
