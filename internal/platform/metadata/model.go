package metadata

import "time"

// Metadata 是系统元数据的键值对表
type Metadata struct {
	Key       string `gorm:"primaryKey;type:varchar(255)"`
	Value     string `gorm:"type:varchar(255)"`
	UpdatedAt time.Time
}
