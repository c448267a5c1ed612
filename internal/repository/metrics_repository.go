package repository

import (
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// OrderDateRow 跟进统计用的轻量订单行
type OrderDateRow struct {
	CustomerID  uint
	OrderDate   time.Time
	TotalAmount models.Money
}

// UnpaidOrderRow 账龄统计用的未收款订单行
type UnpaidOrderRow struct {
	ID            uint
	OrderNumber   string
	CustomerID    uint
	OrderDate     time.Time
	PaymentStatus string
	TotalAmount   models.Money
}

// MetricsRepository 跟进与账龄统计的数据访问接口
// 只取统计所需列，聚合在服务层完成，避免依赖方言相关的日期函数。
type MetricsRepository interface {
	ListOrderRows() ([]OrderDateRow, error)
	ListOrderRowsByCustomer(customerID uint) ([]OrderDateRow, error)
	ListUnpaidOrders() ([]UnpaidOrderRow, error)
}

// GormMetricsRepository GORM 实现
type GormMetricsRepository struct {
	db *gorm.DB
}

// NewMetricsRepository 创建统计仓库
func NewMetricsRepository(db *gorm.DB) *GormMetricsRepository {
	return &GormMetricsRepository{db: db}
}

// ListOrderRows 获取全部非取消订单行，按客户与下单时间排序
func (r *GormMetricsRepository) ListOrderRows() ([]OrderDateRow, error) {
	var rows []OrderDateRow
	err := r.db.Model(&models.Order{}).
		Select("customer_id", "order_date", "total_amount").
		Where("status != ?", constants.OrderStatusCancelled).
		Order("customer_id ASC, order_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListOrderRowsByCustomer 获取单个客户的非取消订单行
func (r *GormMetricsRepository) ListOrderRowsByCustomer(customerID uint) ([]OrderDateRow, error) {
	var rows []OrderDateRow
	err := r.db.Model(&models.Order{}).
		Select("customer_id", "order_date", "total_amount").
		Where("customer_id = ?", customerID).
		Where("status != ?", constants.OrderStatusCancelled).
		Order("order_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUnpaidOrders 获取未收款订单（pending/verifying 且订单未取消）
func (r *GormMetricsRepository) ListUnpaidOrders() ([]UnpaidOrderRow, error) {
	var rows []UnpaidOrderRow
	err := r.db.Model(&models.Order{}).
		Select("id", "order_number", "customer_id", "order_date", "payment_status", "total_amount").
		Where("payment_status IN ?", []string{constants.PaymentStatusPending, constants.PaymentStatusVerifying}).
		Where("status != ?", constants.OrderStatusCancelled).
		Order("order_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
