package service

import (
	"fmt"
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"
)

// OrderListEntry 订单列表项，回填客户与门店名称
type OrderListEntry struct {
	models.Order
	CustomerName string `json:"customer_name"`
	CustomerCode string `json:"customer_code"`
	BranchName   string `json:"branch_name,omitempty"`
}

// OrderDetail 订单详情，附带明细涉及的配送地址
type OrderDetail struct {
	OrderListEntry
	Addresses []models.ShippingAddress `json:"addresses"`
}

// ListOrders 订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]OrderListEntry, int64, error) {
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	entries, err := s.decorateOrders(orders)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListOrdersByCustomer 客户订单列表
func (s *OrderService) ListOrdersByCustomer(customerID uint, page, pageSize int) ([]OrderListEntry, int64, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, 0, ErrCustomerNotFound
	}
	orders, total, err := s.orderRepo.ListByCustomer(customerID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	entries, err := s.decorateOrders(orders)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// GetOrder 订单详情
func (s *OrderService) GetOrder(orderID uint) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.buildOrderDetail(order)
}

// GetOrderByNumber 按订单号获取订单详情
func (s *OrderService) GetOrderByNumber(orderNumber string) (*OrderDetail, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNumber(orderNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.buildOrderDetail(order)
}

// decorateOrders 批量回填客户与门店名称
func (s *OrderService) decorateOrders(orders []models.Order) ([]OrderListEntry, error) {
	customerIDs := make([]uint, 0, len(orders))
	branchIDs := make([]uint, 0)
	seenCustomers := make(map[uint]bool)
	seenBranches := make(map[uint]bool)
	for _, order := range orders {
		if !seenCustomers[order.CustomerID] {
			seenCustomers[order.CustomerID] = true
			customerIDs = append(customerIDs, order.CustomerID)
		}
		if order.BranchID != nil && !seenBranches[*order.BranchID] {
			seenBranches[*order.BranchID] = true
			branchIDs = append(branchIDs, *order.BranchID)
		}
	}

	customers := make(map[uint]models.Customer)
	if len(customerIDs) > 0 {
		rows, err := s.customerRepo.ListByIDs(customerIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
		}
		for _, row := range rows {
			customers[row.ID] = row
		}
	}
	branches := make(map[uint]models.Branch)
	if len(branchIDs) > 0 {
		rows, err := s.branchRepo.ListByIDs(branchIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
		}
		for _, row := range rows {
			branches[row.ID] = row
		}
	}

	entries := make([]OrderListEntry, 0, len(orders))
	for _, order := range orders {
		entry := OrderListEntry{Order: order}
		if customer, ok := customers[order.CustomerID]; ok {
			entry.CustomerName = customer.Name
			entry.CustomerCode = customer.Code
		}
		if order.BranchID != nil {
			if branch, ok := branches[*order.BranchID]; ok {
				entry.BranchName = branch.Name
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// buildOrderDetail 装配订单详情，收集明细配送计划引用的地址
func (s *OrderService) buildOrderDetail(order *models.Order) (*OrderDetail, error) {
	entries, err := s.decorateOrders([]models.Order{*order})
	if err != nil {
		return nil, err
	}
	detail := &OrderDetail{OrderListEntry: entries[0], Addresses: []models.ShippingAddress{}}

	seen := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, item := range order.Items {
		for _, shipment := range item.Shipments {
			if !seen[shipment.ShippingAddressID] {
				seen[shipment.ShippingAddressID] = true
				ids = append(ids, shipment.ShippingAddressID)
			}
		}
	}
	if len(ids) > 0 {
		addresses, err := s.addressRepo.ListByIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
		}
		detail.Addresses = addresses
	}
	return detail, nil
}
