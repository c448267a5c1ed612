package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
// 商品编码/名称/规格为下单时快照，商品目录后续变更不回写。
type OrderItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                           // 主键
	OrderID         uint           `gorm:"index;not null" json:"order_id"`                                 // 订单ID
	ProductID       uint           `gorm:"index;not null" json:"product_id"`                               // 商品ID
	VariationID     uint           `gorm:"index;not null" json:"variation_id"`                             // 商品规格ID
	ProductCode     string         `gorm:"type:varchar(64);not null" json:"product_code"`                  // 商品编码快照
	ProductName     string         `gorm:"type:varchar(200);not null" json:"product_name"`                 // 商品名称快照
	BottleSize      string         `gorm:"type:varchar(50)" json:"bottle_size,omitempty"`                  // 瓶装规格快照
	Quantity        int            `gorm:"not null" json:"quantity"`                                       // 数量
	UnitPrice       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`       // 单价
	DiscountPercent Money          `gorm:"type:decimal(6,2);not null;default:0" json:"discount_percent"`  // 折扣比例（百分比）
	DiscountAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // 折扣金额
	Total           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`            // 行合计（折后）
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`                               // 行备注
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	Shipments []OrderShipment `gorm:"foreignKey:OrderItemID" json:"shipments,omitempty"` // 配送计划
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
