package models

import (
	"time"

	"gorm.io/gorm"
)

// Branch 门店表
type Branch struct {
	ID        uint           `gorm:"primarykey" json:"id"`                         // 主键
	Name      string         `gorm:"type:varchar(100);not null;index" json:"name"` // 门店名称
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`       // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Branch) TableName() string {
	return "branches"
}
