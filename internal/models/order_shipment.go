package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderShipment 订单配送计划表
// 每条记录隶属于一个订单项，数量之和必须与订单项数量一致。
type OrderShipment struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderID           uint           `gorm:"index;not null" json:"order_id"`                               // 订单ID（冗余，便于整单查询）
	OrderItemID       uint           `gorm:"index;not null" json:"order_item_id"`                          // 订单项ID
	ShippingAddressID uint           `gorm:"index;not null" json:"shipping_address_id"`                    // 收货地址ID
	Quantity          int            `gorm:"not null" json:"quantity"`                                     // 配送数量
	ShippingFee       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`   // 该目的地运费
	DeliveryStatus    string         `gorm:"type:varchar(30);not null;default:'pending'" json:"delivery_status"` // 配送状态
	DeliveryNotes     string         `gorm:"type:text" json:"delivery_notes,omitempty"`                    // 配送备注
	ScheduledDate     *time.Time     `gorm:"index" json:"scheduled_date,omitempty"`                        // 计划配送日期
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (OrderShipment) TableName() string {
	return "order_shipments"
}
