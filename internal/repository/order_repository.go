package repository

import (
	"errors"
	"fmt"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	ListByCustomer(customerID uint, page, pageSize int) ([]models.Order, int64, error)
	ReplaceItems(orderID uint, items []models.OrderItem) error
	UpdateHeader(id uint, updates map[string]interface{}) error
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	CountItems(orderID uint) (int64, error)
	CountShipments(orderID uint) (int64, error)
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

var orderSortColumns = map[string]string{
	"order_date":   "order_date",
	"total_amount": "total_amount",
	"created_at":   "created_at",
	"id":           "id",
}

// Create 创建订单头、订单项与配送计划
// 订单项内嵌的配送计划由 GORM 级联写入，订单 ID 在此统一回填。
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
		for j := range items[i].Shipments {
			items[i].Shipments[j].OrderID = order.ID
		}
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单（含订单项与配送计划）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	query := r.db.Preload("Items").Preload("Items.Shipments")
	if err := query.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNumber 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	query := r.db.Preload("Items").Preload("Items.Shipments")
	if err := query.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{})

	if filter.Search != "" {
		operator := likeOperatorByDialect(dbDialectName(r.db))
		like := "%" + filter.Search + "%"
		query = query.Where(
			fmt.Sprintf("order_number %s ? OR customer_id IN (SELECT id FROM customers WHERE name %s ?)", operator, operator),
			like, like,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.DateFrom != nil {
		query = query.Where("order_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("order_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	query = applySorting(query, orderSortColumns, filter.SortBy, filter.SortDir, "id DESC")

	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByCustomer 按客户查询订单列表
func (r *GormOrderRepository) ListByCustomer(customerID uint, page, pageSize int) ([]models.Order, int64, error) {
	var total int64
	query := r.db.Model(&models.Order{}).Where("customer_id = ?", customerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query, page, pageSize)
	if err := query.Preload("Items").Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ReplaceItems 整单替换订单项与配送计划
// 先清空旧明细再写入新明细，必须在事务内调用。
func (r *GormOrderRepository) ReplaceItems(orderID uint, items []models.OrderItem) error {
	if err := r.db.Where("order_id = ?", orderID).Delete(&models.OrderShipment{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = orderID
		for j := range items[i].Shipments {
			items[i].Shipments[j].ID = 0
			items[i].Shipments[j].OrderID = orderID
		}
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpdateHeader 更新订单头字段
func (r *GormOrderRepository) UpdateHeader(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateStatus 更新订单状态
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// CountItems 统计订单项行数
func (r *GormOrderRepository) CountItems(orderID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

// CountShipments 统计配送计划行数
func (r *GormOrderRepository) CountShipments(orderID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrderShipment{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}
