package api

import (
	"strings"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/shared"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// orderShipmentRequest 订单行配送计划
type orderShipmentRequest struct {
	ShippingAddressID uint    `json:"shipping_address_id"`
	Quantity          int     `json:"quantity"`
	ShippingFee       float64 `json:"shipping_fee"`
	DeliveryNotes     string  `json:"delivery_notes"`
	ScheduledDate     string  `json:"scheduled_date"`
}

// orderItemRequest 订单行，折扣字段 discount_value+discount_type 优先于 discount_percent
type orderItemRequest struct {
	ProductID       uint                   `json:"product_id"`
	VariationID     uint                   `json:"variation_id"`
	ProductCode     string                 `json:"product_code"`
	ProductName     string                 `json:"product_name"`
	BottleSize      string                 `json:"bottle_size"`
	Quantity        int                    `json:"quantity"`
	UnitPrice       float64                `json:"unit_price"`
	DiscountPercent *float64               `json:"discount_percent"`
	DiscountValue   *float64               `json:"discount_value"`
	DiscountType    string                 `json:"discount_type"`
	Notes           string                 `json:"notes"`
	Shipments       []orderShipmentRequest `json:"shipments"`
}

// createOrderRequest 创建订单请求
type createOrderRequest struct {
	CustomerID     uint               `json:"customer_id"`
	BranchID       *uint              `json:"branch_id"`
	DeliveryDate   string             `json:"delivery_date"`
	PaymentMethod  string             `json:"payment_method"`
	DiscountAmount float64            `json:"discount_amount"`
	Notes          string             `json:"notes"`
	InternalNotes  string             `json:"internal_notes"`
	Items          []orderItemRequest `json:"items"`
}

// updateOrderRequest 更新订单请求，items 非空走整单替换
type updateOrderRequest struct {
	DeliveryDate   *string            `json:"delivery_date"`
	PaymentMethod  *string            `json:"payment_method"`
	DiscountAmount *float64           `json:"discount_amount"`
	ShippingFee    *float64           `json:"shipping_fee"`
	Notes          *string            `json:"notes"`
	InternalNotes  *string            `json:"internal_notes"`
	BranchID       *uint              `json:"branch_id"`
	Status         *string            `json:"order_status"`
	PaymentStatus  *string            `json:"payment_status"`
	Items          []orderItemRequest `json:"items"`
}

// updateOrderStatusRequest 更新订单状态请求
type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// parseDateValue 解析日期字段，支持 RFC3339 与 2006-01-02
func parseDateValue(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, true
	}
	return nil, false
}

// discountFromRequest 解析行折扣，未给出任何折扣字段返回 nil
func discountFromRequest(req orderItemRequest) *service.Discount {
	if req.DiscountValue != nil {
		mode := constants.DiscountModePercent
		if strings.TrimSpace(req.DiscountType) == constants.DiscountModeAmount {
			mode = constants.DiscountModeAmount
		}
		return &service.Discount{Mode: mode, Value: decimal.NewFromFloat(*req.DiscountValue)}
	}
	if req.DiscountPercent != nil {
		return &service.Discount{Mode: constants.DiscountModePercent, Value: decimal.NewFromFloat(*req.DiscountPercent)}
	}
	return nil
}

func orderItemsFromRequest(items []orderItemRequest) ([]service.CreateOrderItem, bool) {
	result := make([]service.CreateOrderItem, 0, len(items))
	for _, item := range items {
		shipments := make([]service.CreateOrderShipment, 0, len(item.Shipments))
		for _, shipment := range item.Shipments {
			scheduled, ok := parseDateValue(shipment.ScheduledDate)
			if !ok {
				return nil, false
			}
			shipments = append(shipments, service.CreateOrderShipment{
				ShippingAddressID: shipment.ShippingAddressID,
				Quantity:          shipment.Quantity,
				ShippingFee:       decimal.NewFromFloat(shipment.ShippingFee),
				DeliveryNotes:     shipment.DeliveryNotes,
				ScheduledDate:     scheduled,
			})
		}
		result = append(result, service.CreateOrderItem{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			BottleSize:  item.BottleSize,
			Quantity:    item.Quantity,
			UnitPrice:   decimal.NewFromFloat(item.UnitPrice),
			Discount:    discountFromRequest(item),
			Notes:       item.Notes,
			Shipments:   shipments,
		})
	}
	return result, true
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	deliveryDate, ok := parseDateValue(req.DeliveryDate)
	if !ok {
		response.BadRequest(c, "Invalid delivery_date format")
		return
	}
	items, ok := orderItemsFromRequest(req.Items)
	if !ok {
		response.BadRequest(c, "Invalid scheduled_date format")
		return
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		CustomerID:     req.CustomerID,
		BranchID:       req.BranchID,
		DeliveryDate:   deliveryDate,
		PaymentMethod:  req.PaymentMethod,
		DiscountAmount: decimal.NewFromFloat(req.DiscountAmount),
		Notes:          req.Notes,
		InternalNotes:  req.InternalNotes,
		CreatedBy:      shared.CurrentUserID(c),
		Items:          items,
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}

	response.OK(c, gin.H{
		"success":      true,
		"order":        order,
		"id":           order.ID,
		"order_number": order.OrderNumber,
	})
}

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, limit := shared.ParsePagination(c)
	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      limit,
		Search:        strings.TrimSpace(c.Query("search")),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		CustomerID:    shared.ParseUintQuery(c, "customer_id"),
		BranchID:      shared.ParseUintQuery(c, "branch_id"),
		DateFrom:      shared.ParseDateQuery(c, "date_from"),
		DateTo:        shared.ParseDateQuery(c, "date_to"),
		SortBy:        strings.TrimSpace(c.Query("sort_by")),
		SortDir:       strings.TrimSpace(c.Query("sort_dir")),
	}

	orders, total, err := h.OrderService.ListOrders(filter)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.Paginated(c, "orders", orders, response.NewPagination(page, limit, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order id")
		return
	}
	order, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"order": order})
}

// GetOrderByNumber 按订单号查询
func (h *Handler) GetOrderByNumber(c *gin.Context) {
	orderNumber := strings.TrimSpace(c.Param("orderNumber"))
	if orderNumber == "" {
		response.BadRequest(c, "Invalid order number")
		return
	}
	order, err := h.OrderService.GetOrderByNumber(orderNumber)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"order": order})
}

// UpdateOrder 更新订单：带 items 整单替换，否则仅头部字段
func (h *Handler) UpdateOrder(c *gin.Context) {
	orderID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order id")
		return
	}
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := service.UpdateOrderInput{
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		InternalNotes: req.InternalNotes,
		BranchID:      req.BranchID,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	}
	if req.DeliveryDate != nil {
		deliveryDate, ok := parseDateValue(*req.DeliveryDate)
		if !ok {
			response.BadRequest(c, "Invalid delivery_date format")
			return
		}
		input.DeliveryDate = deliveryDate
	}
	if req.DiscountAmount != nil {
		amount := decimal.NewFromFloat(*req.DiscountAmount)
		input.DiscountAmount = &amount
	}
	if req.ShippingFee != nil {
		fee := decimal.NewFromFloat(*req.ShippingFee)
		input.ShippingFee = &fee
	}
	if req.Items != nil {
		items, ok := orderItemsFromRequest(req.Items)
		if !ok {
			response.BadRequest(c, "Invalid scheduled_date format")
			return
		}
		input.Items = items
	}

	order, err := h.OrderService.UpdateOrder(orderID, input)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "order": order})
}

// UpdateOrderStatus 订单状态流转
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order id")
		return
	}
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}

	order, err := h.OrderService.UpdateOrderStatus(orderID, req.Status)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "order": order})
}

// CancelOrder 取消订单，幂等
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order id")
		return
	}
	order, err := h.OrderService.CancelOrder(orderID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "order": order})
}
