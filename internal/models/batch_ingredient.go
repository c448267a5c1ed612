package models

import (
	"time"

	"gorm.io/gorm"
)

// BatchIngredient 生产批次原料表
type BatchIngredient struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                   // 主键
	BatchID   uint           `gorm:"index;not null" json:"batch_id"`                         // 批次ID
	Name      string         `gorm:"type:varchar(200);not null" json:"name"`                 // 原料名称
	Quantity  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"quantity"` // 用量
	Unit      string         `gorm:"type:varchar(20)" json:"unit,omitempty"`                 // 计量单位（kg/L/个）
	Cost      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cost"`     // 成本
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间
}

// TableName 指定表名
func (BatchIngredient) TableName() string {
	return "batch_ingredients"
}
