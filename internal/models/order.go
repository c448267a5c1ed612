package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 金额恒等式：total_amount = subtotal - discount_amount + vat_amount + shipping_fee
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNumber    string         `gorm:"uniqueIndex;not null" json:"order_number"`                      // 订单编号
	CustomerID     uint           `gorm:"index;not null" json:"customer_id"`                             // 客户ID
	BranchID       *uint          `gorm:"index" json:"branch_id,omitempty"`                              // 下单门店ID
	Status         string         `gorm:"index;not null" json:"status"`                                  // 订单状态
	PaymentStatus  string         `gorm:"index;not null" json:"payment_status"`                          // 付款状态
	OrderDate      time.Time      `gorm:"index;not null" json:"order_date"`                              // 下单日期
	DeliveryDate   *time.Time     `gorm:"index" json:"delivery_date,omitempty"`                          // 交货日期
	PaymentMethod  string         `gorm:"type:varchar(50)" json:"payment_method,omitempty"`              // 付款方式
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 商品小计（折扣前）
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 折扣合计
	VATRate        Money          `gorm:"type:decimal(6,2);not null;default:0" json:"vat_rate"`         // 增值税率（百分比）
	VATAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"vat_amount"`      // 增值税额
	ShippingFee    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`    // 运费合计
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 应付总额
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`                              // 备注
	InternalNotes  string         `gorm:"type:text" json:"internal_notes,omitempty"`                     // 内部备注（不对客户展示）
	CreatedBy      string         `gorm:"type:varchar(64);index" json:"created_by,omitempty"`            // 创建人（身份服务用户ID）
	PaidAt         *time.Time     `gorm:"index" json:"paid_at,omitempty"`                                // 付款时间
	CancelledAt    *time.Time     `gorm:"index" json:"cancelled_at,omitempty"`                           // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
