package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// findOwned 按 id 与 user_id 读取单条记录，其他用户的数据一律视为不存在
func findOwned[T any](gdb *gorm.DB, userID, id string, notFound error, label string) (*T, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return nil, notFound
	}

	var record T
	if err := gdb.Where("id = ? AND user_id = ?", id, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("find %s: %w", label, err)
	}
	return &record, nil
}

// trimOptional 去掉首尾空白，空字符串归一为 nil
func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
