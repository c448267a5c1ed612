package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// orderStatusTransitions 订单状态流转表
// new -> shipping -> completed，cancelled 仅从非终态可达。
var orderStatusTransitions = map[string]map[string]bool{
	constants.OrderStatusNew: {
		constants.OrderStatusShipping:  true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipping: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCancelled: true,
	},
}

var orderStatusValues = map[string]bool{
	constants.OrderStatusNew:       true,
	constants.OrderStatusShipping:  true,
	constants.OrderStatusCompleted: true,
	constants.OrderStatusCancelled: true,
}

var paymentStatusValues = map[string]bool{
	constants.PaymentStatusPending:   true,
	constants.PaymentStatusVerifying: true,
	constants.PaymentStatusPaid:      true,
	constants.PaymentStatusCancelled: true,
}

// OrderService 订单服务
type OrderService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	addressRepo  repository.AddressRepository
	branchRepo   repository.BranchRepository
	vatRate      decimal.Decimal
	vatMode      string
	numberPrefix string
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, customerRepo repository.CustomerRepository, addressRepo repository.AddressRepository, branchRepo repository.BranchRepository, vatRate float64, vatMode, numberPrefix string) *OrderService {
	mode := strings.TrimSpace(vatMode)
	if mode != constants.VATModeInclusive {
		mode = constants.VATModeExclusive
	}
	rate := decimal.NewFromFloat(vatRate)
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	prefix := strings.TrimSpace(numberPrefix)
	if prefix == "" {
		prefix = "JF"
	}
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		addressRepo:  addressRepo,
		branchRepo:   branchRepo,
		vatRate:      rate,
		vatMode:      mode,
		numberPrefix: prefix,
	}
}

// CreateOrderShipment 行配送计划输入
type CreateOrderShipment struct {
	ShippingAddressID uint
	Quantity          int
	ShippingFee       decimal.Decimal
	DeliveryNotes     string
	ScheduledDate     *time.Time
}

// CreateOrderItem 订单行输入，商品编码/名称/规格作为下单快照落库
type CreateOrderItem struct {
	ProductID   uint
	VariationID uint
	ProductCode string
	ProductName string
	BottleSize  string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    *Discount
	Notes       string
	Shipments   []CreateOrderShipment
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	CustomerID     uint
	BranchID       *uint
	DeliveryDate   *time.Time
	PaymentMethod  string
	DiscountAmount decimal.Decimal
	Notes          string
	InternalNotes  string
	CreatedBy      string
	Items          []CreateOrderItem
}

// UpdateOrderInput 更新订单输入
// Items 非 nil 时走整单替换（仅限 new 状态），否则仅更新头部字段。
type UpdateOrderInput struct {
	DeliveryDate   *time.Time
	PaymentMethod  *string
	DiscountAmount *decimal.Decimal
	ShippingFee    *decimal.Decimal
	Notes          *string
	InternalNotes  *string
	BranchID       *uint
	Status         *string
	PaymentStatus  *string
	Items          []CreateOrderItem
}

// CreateOrder 创建订单：校验 -> 计价 -> 单事务落库
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.CustomerID == 0 {
		return nil, newValidationError("customer_id is required")
	}
	if input.DiscountAmount.IsNegative() {
		return nil, newValidationError("Order discount must not be negative")
	}
	if err := validateOrderItems(input.Items); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if err := s.validateShipmentAddresses(customer.ID, input.Items); err != nil {
		return nil, err
	}

	branchID := input.BranchID
	if branchID == nil {
		branchID = customer.BranchID
	}

	items, pricing := s.buildOrderPlan(input.Items, input.DiscountAmount)
	order := &models.Order{
		OrderNumber:    s.generateOrderNumber(),
		CustomerID:     customer.ID,
		BranchID:       branchID,
		Status:         constants.OrderStatusNew,
		PaymentStatus:  constants.PaymentStatusPending,
		OrderDate:      time.Now(),
		DeliveryDate:   input.DeliveryDate,
		PaymentMethod:  strings.TrimSpace(input.PaymentMethod),
		Subtotal:       models.NewMoneyFromDecimal(pricing.Subtotal),
		DiscountAmount: models.NewMoneyFromDecimal(pricing.DiscountAmount),
		VATRate:        models.NewMoneyFromDecimal(pricing.VATRate),
		VATAmount:      models.NewMoneyFromDecimal(pricing.VATAmount),
		ShippingFee:    models.NewMoneyFromDecimal(pricing.ShippingFee),
		TotalAmount:    models.NewMoneyFromDecimal(pricing.TotalAmount),
		Notes:          input.Notes,
		InternalNotes:  input.InternalNotes,
		CreatedBy:      input.CreatedBy,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, items)
	})
	if err != nil {
		logger.Warnw("order_create_failed",
			"customer_id", input.CustomerID,
			"order_number", order.OrderNumber,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}

	created, err := s.reloadOrder(order.ID)
	if err != nil {
		return nil, err
	}
	logger.Infow("order_created",
		"order_id", created.ID,
		"order_number", created.OrderNumber,
		"customer_id", created.CustomerID,
		"total_amount", created.TotalAmount.String(),
	)
	return created, nil
}

// UpdateOrder 更新订单：携带 Items 走整单替换，否则仅头部字段
func (s *OrderService) UpdateOrder(orderID uint, input UpdateOrderInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if input.Items != nil {
		return s.replaceOrderItems(order, input)
	}
	return s.updateOrderHeader(order, input)
}

// replaceOrderItems 整单替换：仅 new 状态允许，替换明细并重算头部金额
func (s *OrderService) replaceOrderItems(order *models.Order, input UpdateOrderInput) (*models.Order, error) {
	if order.Status != constants.OrderStatusNew {
		return nil, newStateConflictError(
			"Cannot edit order items with status: %s. Only 'new' orders can be fully edited.",
			order.Status,
		)
	}
	if err := validateOrderItems(input.Items); err != nil {
		return nil, err
	}
	discount := order.DiscountAmount.Decimal
	if input.DiscountAmount != nil {
		if input.DiscountAmount.IsNegative() {
			return nil, newValidationError("Order discount must not be negative")
		}
		discount = input.DiscountAmount.Round(2)
	}
	if err := s.validateShipmentAddresses(order.CustomerID, input.Items); err != nil {
		return nil, err
	}

	items, pricing := s.buildOrderPlan(input.Items, discount)
	updates := map[string]interface{}{
		"subtotal":        models.NewMoneyFromDecimal(pricing.Subtotal),
		"discount_amount": models.NewMoneyFromDecimal(pricing.DiscountAmount),
		"vat_rate":        models.NewMoneyFromDecimal(pricing.VATRate),
		"vat_amount":      models.NewMoneyFromDecimal(pricing.VATAmount),
		"shipping_fee":    models.NewMoneyFromDecimal(pricing.ShippingFee),
		"total_amount":    models.NewMoneyFromDecimal(pricing.TotalAmount),
	}
	applyHeaderFieldUpdates(updates, input)

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		if err := repo.ReplaceItems(order.ID, items); err != nil {
			return err
		}
		return repo.UpdateHeader(order.ID, updates)
	})
	if err != nil {
		logger.Warnw("order_replace_items_failed", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	logger.Infow("order_items_replaced",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"item_count", len(items),
	)
	return s.reloadOrder(order.ID)
}

// updateOrderHeader 头部字段部分更新，不触碰订单明细
// 覆盖折扣/运费时基于已存明细重算税额与总额，保持金额恒等式。
func (s *OrderService) updateOrderHeader(order *models.Order, input UpdateOrderInput) (*models.Order, error) {
	updates := map[string]interface{}{}
	applyHeaderFieldUpdates(updates, input)

	discount := order.DiscountAmount.Decimal
	shipping := order.ShippingFee.Decimal
	moneyChanged := false
	if input.DiscountAmount != nil {
		if input.DiscountAmount.IsNegative() {
			return nil, newValidationError("Order discount must not be negative")
		}
		discount = input.DiscountAmount.Round(2)
		moneyChanged = true
	}
	if input.ShippingFee != nil {
		if input.ShippingFee.IsNegative() {
			return nil, newValidationError("Shipping fee must not be negative")
		}
		shipping = input.ShippingFee.Round(2)
		moneyChanged = true
	}
	if moneyChanged {
		pricing := repriceOrderHeader(order, discount, shipping, s.vatMode)
		updates["subtotal"] = models.NewMoneyFromDecimal(pricing.Subtotal)
		updates["discount_amount"] = models.NewMoneyFromDecimal(pricing.DiscountAmount)
		updates["vat_amount"] = models.NewMoneyFromDecimal(pricing.VATAmount)
		updates["shipping_fee"] = models.NewMoneyFromDecimal(pricing.ShippingFee)
		updates["total_amount"] = models.NewMoneyFromDecimal(pricing.TotalAmount)
	}

	if input.PaymentStatus != nil {
		status := strings.TrimSpace(*input.PaymentStatus)
		if !paymentStatusValues[status] {
			return nil, newValidationError("Invalid payment status: %s", status)
		}
		updates["payment_status"] = status
		if status == constants.PaymentStatusPaid && order.PaidAt == nil {
			updates["paid_at"] = time.Now()
		}
	}

	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if !orderStatusValues[status] {
			return nil, newValidationError("Invalid order status: %s", status)
		}
		if status == constants.OrderStatusCancelled {
			if len(updates) > 0 {
				if err := s.orderRepo.UpdateHeader(order.ID, updates); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
				}
			}
			return s.cancelOrder(order)
		}
		if status != order.Status {
			if !canTransitionOrderStatus(order.Status, status) {
				return nil, newStateConflictError(
					"Cannot change order status from '%s' to '%s'", order.Status, status,
				)
			}
			updates["status"] = status
		}
	}

	if len(updates) == 0 {
		return order, nil
	}
	if err := s.orderRepo.UpdateHeader(order.ID, updates); err != nil {
		logger.Warnw("order_update_header_failed", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	return s.reloadOrder(order.ID)
}

// UpdateOrderStatus 推进订单状态（流转表约束）
func (s *OrderService) UpdateOrderStatus(orderID uint, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if !orderStatusValues[status] {
		return nil, newValidationError("Invalid order status: %s", status)
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if status == constants.OrderStatusCancelled {
		return s.cancelOrder(order)
	}
	if status == order.Status {
		return order, nil
	}
	if !canTransitionOrderStatus(order.Status, status) {
		return nil, newStateConflictError(
			"Cannot change order status from '%s' to '%s'", order.Status, status,
		)
	}
	if err := s.orderRepo.UpdateStatus(order.ID, status, nil); err != nil {
		logger.Warnw("order_update_status_failed", "order_id", order.ID, "status", status, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	logger.Infow("order_status_updated",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"from", order.Status,
		"to", status,
	)
	return s.reloadOrder(order.ID)
}

// CancelOrder 取消订单：订单与付款状态一并置为 cancelled，可重复调用
func (s *OrderService) CancelOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.cancelOrder(order)
}

func (s *OrderService) cancelOrder(order *models.Order) (*models.Order, error) {
	if order.Status == constants.OrderStatusCancelled {
		return order, nil
	}
	if order.Status == constants.OrderStatusCompleted {
		return nil, newStateConflictError("Cannot cancel a completed order")
	}
	updates := map[string]interface{}{
		"payment_status": constants.PaymentStatusCancelled,
		"cancelled_at":   time.Now(),
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusCancelled, updates); err != nil {
		logger.Warnw("order_cancel_failed", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	logger.Infow("order_cancelled",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"previous_status", order.Status,
	)
	return s.reloadOrder(order.ID)
}

// buildOrderPlan 计价并装配订单明细与配送计划模型
func (s *OrderService) buildOrderPlan(inputs []CreateOrderItem, orderDiscount decimal.Decimal) ([]models.OrderItem, orderPricing) {
	items := make([]models.OrderItem, 0, len(inputs))
	lines := make([]pricedOrderLine, 0, len(inputs))
	for _, in := range inputs {
		line := priceOrderLine(in.Quantity, in.UnitPrice, in.Discount)
		lines = append(lines, line)

		shipments := make([]models.OrderShipment, 0, len(in.Shipments))
		for _, sh := range in.Shipments {
			shipments = append(shipments, models.OrderShipment{
				ShippingAddressID: sh.ShippingAddressID,
				Quantity:          sh.Quantity,
				ShippingFee:       models.NewMoneyFromDecimal(sh.ShippingFee),
				DeliveryStatus:    constants.DeliveryStatusPending,
				DeliveryNotes:     sh.DeliveryNotes,
				ScheduledDate:     sh.ScheduledDate,
			})
		}
		items = append(items, models.OrderItem{
			ProductID:       in.ProductID,
			VariationID:     in.VariationID,
			ProductCode:     in.ProductCode,
			ProductName:     in.ProductName,
			BottleSize:      in.BottleSize,
			Quantity:        in.Quantity,
			UnitPrice:       models.NewMoneyFromDecimal(in.UnitPrice),
			DiscountPercent: models.NewMoneyFromDecimal(line.DiscountPercent),
			DiscountAmount:  models.NewMoneyFromDecimal(line.DiscountAmount),
			Total:           models.NewMoneyFromDecimal(line.Total),
			Notes:           in.Notes,
			Shipments:       shipments,
		})
	}
	pricing := priceOrder(lines, orderDiscount, dedupShippingFee(inputs), s.vatRate, s.vatMode)
	return items, pricing
}

// validateShipmentAddresses 校验配送地址存在且归属下单客户
func (s *OrderService) validateShipmentAddresses(customerID uint, items []CreateOrderItem) error {
	seen := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, item := range items {
		for _, shipment := range item.Shipments {
			if !seen[shipment.ShippingAddressID] {
				seen[shipment.ShippingAddressID] = true
				ids = append(ids, shipment.ShippingAddressID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	addresses, err := s.addressRepo.ListByIDs(ids)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	found := make(map[uint]models.ShippingAddress, len(addresses))
	for _, address := range addresses {
		found[address.ID] = address
	}
	for _, id := range ids {
		address, ok := found[id]
		if !ok {
			return newValidationError("Shipping address %d not found", id)
		}
		if address.CustomerID != customerID {
			return newValidationError("Shipping address %d does not belong to this customer", id)
		}
	}
	return nil
}

func (s *OrderService) reloadOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func canTransitionOrderStatus(from, to string) bool {
	allowed, ok := orderStatusTransitions[from]
	return ok && allowed[to]
}

// generateOrderNumber 生成订单编号：前缀 + 时间戳 + 随机数字
func (s *OrderService) generateOrderNumber() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", s.numberPrefix, now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

func applyHeaderFieldUpdates(updates map[string]interface{}, input UpdateOrderInput) {
	if input.DeliveryDate != nil {
		updates["delivery_date"] = *input.DeliveryDate
	}
	if input.PaymentMethod != nil {
		updates["payment_method"] = strings.TrimSpace(*input.PaymentMethod)
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.InternalNotes != nil {
		updates["internal_notes"] = *input.InternalNotes
	}
	if input.BranchID != nil {
		updates["branch_id"] = *input.BranchID
	}
}
