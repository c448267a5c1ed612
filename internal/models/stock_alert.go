package models

import (
	"time"

	"gorm.io/gorm"
)

// StockAlert 低库存警报表
// 由后台扫描任务维护：库存低于警戒线时置为 active，回升后自动解除。
type StockAlert struct {
	ID            uint           `gorm:"primarykey" json:"id"`                       // 主键
	VariationID   uint           `gorm:"uniqueIndex;not null" json:"variation_id"`   // 商品规格ID
	StockQuantity int            `gorm:"not null" json:"stock_quantity"`             // 触发时库存
	ReorderLevel  int            `gorm:"not null" json:"reorder_level"`              // 警戒线
	IsActive      bool           `gorm:"not null;default:true;index" json:"is_active"` // 是否生效
	TriggeredAt   time.Time      `gorm:"index" json:"triggered_at"`                  // 触发时间
	ResolvedAt    *time.Time     `gorm:"index" json:"resolved_at,omitempty"`         // 解除时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                    // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (StockAlert) TableName() string {
	return "stock_alerts"
}
