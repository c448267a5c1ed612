package models

import (
	"strings"
)

// InitDefaultBranch 确保至少存在一个门店
// 新部署时订单与客户需要可归属的门店，否则列表过滤无从选择。
func InitDefaultBranch(name string) error {
	var count int64
	if err := DB.Model(&Branch{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = "Head Office"
	}
	branch := Branch{
		Name:     trimmed,
		IsActive: true,
	}
	return DB.Create(&branch).Error
}
