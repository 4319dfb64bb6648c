package util

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成一个标准的 UUID (v4)，作为通知对外的唯一标识
func GenerateUUID() string {
	return uuid.New().String()
}
