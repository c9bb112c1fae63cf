package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

var DB *gorm.DB

// OpenSQLite 打开一个SQLite数据库。path 为 ":memory:" 时用于测试。
func OpenSQLite(path string) (*gorm.DB, error) {
	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if path == ":memory:" {
		// 内存数据库每个连接都是独立的库
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层连接失败: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// InitDB 初始化全局数据库连接
func InitDB(path string) {
	db, err := OpenSQLite(path)
	if err != nil {
		panic(err)
	}
	DB = db
	applog.L().Info("数据库连接成功", zap.String("path", path))
}

// IsRetryableError 判断SQLite错误是否为短暂的锁冲突
func IsRetryableError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return strings.Contains(err.Error(), "database is locked")
}
