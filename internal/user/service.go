package user

import (
	"fmt"

	"github.com/google/uuid"
)

// NewClientID 生成一个新的访客ID（UUID v7）
func NewClientID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return id.String(), nil
}

// IsValidUUID 检查字符串是否为合法的UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
