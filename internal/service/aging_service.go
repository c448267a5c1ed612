package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/shopspring/decimal"
)

// UnpaidOrderView 未收款订单明细行
type UnpaidOrderView struct {
	OrderID         uint         `json:"order_id"`
	OrderNumber     string       `json:"order_number"`
	OrderDate       time.Time    `json:"order_date"`
	PaymentStatus   string       `json:"payment_status"`
	TotalAmount     models.Money `json:"total_amount"`
	DaysOutstanding int          `json:"days_outstanding"`
}

// CustomerAging 客户账龄视图
type CustomerAging struct {
	CustomerID      uint              `json:"customer_id"`
	Code            string            `json:"code"`
	Name            string            `json:"name"`
	Phone           string            `json:"phone,omitempty"`
	TotalPending    models.Money      `json:"total_pending"`
	OrderCount      int               `json:"order_count"`
	OldestOrderDate time.Time         `json:"oldest_order_date"`
	NewestOrderDate time.Time         `json:"newest_order_date"`
	DaysOverdue     int               `json:"days_overdue"`
	Bucket          string            `json:"bucket"`
	Orders          []UnpaidOrderView `json:"orders"`
}

// AgingFilter 账龄列表过滤条件
type AgingFilter struct {
	Search  string
	Bucket  string
	SortBy  string
	SortDir string
	Page    int
	Limit   int
}

// AgingSummary 账龄汇总，受搜索过滤影响但不受区间过滤影响
type AgingSummary struct {
	TotalCustomers int64            `json:"total_customers"`
	TotalOrders    int64            `json:"total_orders"`
	TotalPending   models.Money     `json:"total_pending"`
	Buckets        map[string]int64 `json:"buckets"`
}

// AgingService 应收账龄统计服务
type AgingService struct {
	customerRepo repository.CustomerRepository
	metricsRepo  repository.MetricsRepository
}

// NewAgingService 创建账龄统计服务
func NewAgingService(customerRepo repository.CustomerRepository, metricsRepo repository.MetricsRepository) *AgingService {
	return &AgingService{customerRepo: customerRepo, metricsRepo: metricsRepo}
}

// ListAging 账龄列表：未收款订单按客户分组聚合
func (s *AgingService) ListAging(filter AgingFilter) ([]CustomerAging, AgingSummary, int64, error) {
	summary := AgingSummary{
		TotalPending: models.NewMoneyFromDecimal(decimal.Zero),
		Buckets:      emptyAgingBuckets(),
	}
	rows, err := s.metricsRepo.ListUnpaidOrders()
	if err != nil {
		return nil, summary, 0, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}

	now := time.Now()
	entries, err := s.groupUnpaidOrders(rows, now)
	if err != nil {
		return nil, summary, 0, err
	}
	entries = filterAgingBySearch(entries, filter.Search)
	summary = summarizeAging(entries)

	if filter.Bucket != "" {
		kept := make([]CustomerAging, 0, len(entries))
		for _, entry := range entries {
			if entry.Bucket == filter.Bucket {
				kept = append(kept, entry)
			}
		}
		entries = kept
	}

	sortAging(entries, filter.SortBy, filter.SortDir)
	total := int64(len(entries))
	paged := paginateAging(entries, filter.Page, filter.Limit)
	return paged, summary, total, nil
}

// GetCustomerAging 单客户账龄
func (s *AgingService) GetCustomerAging(customerID uint) (*CustomerAging, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	rows, err := s.metricsRepo.ListUnpaidOrders()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	now := time.Now()
	filtered := make([]repository.UnpaidOrderRow, 0)
	for _, row := range rows {
		if row.CustomerID == customerID {
			filtered = append(filtered, row)
		}
	}
	if len(filtered) == 0 {
		return &CustomerAging{
			CustomerID:   customer.ID,
			Code:         customer.Code,
			Name:         customer.Name,
			Phone:        customer.Phone,
			TotalPending: models.NewMoneyFromDecimal(decimal.Zero),
			Orders:       []UnpaidOrderView{},
		}, nil
	}
	entries, err := s.groupUnpaidOrders(filtered, now)
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// groupUnpaidOrders 未收款订单按客户分组，回填客户信息
func (s *AgingService) groupUnpaidOrders(rows []repository.UnpaidOrderRow, now time.Time) ([]CustomerAging, error) {
	grouped := make(map[uint]*CustomerAging)
	order := make([]uint, 0)
	for _, row := range rows {
		entry, ok := grouped[row.CustomerID]
		if !ok {
			entry = &CustomerAging{
				CustomerID:      row.CustomerID,
				TotalPending:    models.NewMoneyFromDecimal(decimal.Zero),
				OldestOrderDate: row.OrderDate,
				NewestOrderDate: row.OrderDate,
				Orders:          []UnpaidOrderView{},
			}
			grouped[row.CustomerID] = entry
			order = append(order, row.CustomerID)
		}
		if row.OrderDate.Before(entry.OldestOrderDate) {
			entry.OldestOrderDate = row.OrderDate
		}
		if row.OrderDate.After(entry.NewestOrderDate) {
			entry.NewestOrderDate = row.OrderDate
		}
		entry.TotalPending = models.NewMoneyFromDecimal(entry.TotalPending.Decimal.Add(row.TotalAmount.Decimal))
		entry.OrderCount++
		entry.Orders = append(entry.Orders, UnpaidOrderView{
			OrderID:         row.ID,
			OrderNumber:     row.OrderNumber,
			OrderDate:       row.OrderDate,
			PaymentStatus:   row.PaymentStatus,
			TotalAmount:     row.TotalAmount,
			DaysOutstanding: daysBetween(row.OrderDate, now),
		})
	}
	if len(order) == 0 {
		return []CustomerAging{}, nil
	}

	customers, err := s.customerRepo.ListByIDs(order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	names := make(map[uint]models.Customer, len(customers))
	for _, customer := range customers {
		names[customer.ID] = customer
	}

	entries := make([]CustomerAging, 0, len(order))
	for _, customerID := range order {
		entry := grouped[customerID]
		if customer, ok := names[customerID]; ok {
			entry.Code = customer.Code
			entry.Name = customer.Name
			entry.Phone = customer.Phone
		}
		entry.DaysOverdue = daysBetween(entry.OldestOrderDate, now)
		entry.Bucket = agingBucket(entry.DaysOverdue)
		entries = append(entries, *entry)
	}
	return entries, nil
}

// agingBucket 账龄区间：7/14/30/60 天阈值
func agingBucket(days int) string {
	switch {
	case days <= 7:
		return constants.AgingBucketOnTime
	case days <= 14:
		return constants.AgingBucketDue
	case days <= 30:
		return constants.AgingBucketLate
	case days <= 60:
		return constants.AgingBucketVeryLate
	default:
		return constants.AgingBucketCritical
	}
}

func emptyAgingBuckets() map[string]int64 {
	return map[string]int64{
		constants.AgingBucketOnTime:   0,
		constants.AgingBucketDue:      0,
		constants.AgingBucketLate:     0,
		constants.AgingBucketVeryLate: 0,
		constants.AgingBucketCritical: 0,
	}
}

func filterAgingBySearch(entries []CustomerAging, search string) []CustomerAging {
	search = strings.TrimSpace(search)
	if search == "" {
		return entries
	}
	needle := strings.ToLower(search)
	filtered := make([]CustomerAging, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), needle) ||
			strings.Contains(strings.ToLower(entry.Code), needle) ||
			strings.Contains(strings.ToLower(entry.Phone), needle) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func summarizeAging(entries []CustomerAging) AgingSummary {
	summary := AgingSummary{
		TotalCustomers: int64(len(entries)),
		Buckets:        emptyAgingBuckets(),
	}
	pending := decimal.Zero
	for _, entry := range entries {
		summary.TotalOrders += int64(entry.OrderCount)
		pending = pending.Add(entry.TotalPending.Decimal)
		summary.Buckets[entry.Bucket]++
	}
	summary.TotalPending = models.NewMoneyFromDecimal(pending)
	return summary
}

// sortAging 列表排序，默认按欠款天数降序
func sortAging(entries []CustomerAging, sortBy, sortDir string) {
	asc := strings.EqualFold(sortDir, "asc")
	less := func(a, b CustomerAging) bool {
		switch sortBy {
		case "total_pending":
			return a.TotalPending.Decimal.LessThan(b.TotalPending.Decimal)
		case "order_count":
			return a.OrderCount < b.OrderCount
		default:
			return a.DaysOverdue < b.DaysOverdue
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if asc {
			return less(entries[i], entries[j])
		}
		return less(entries[j], entries[i])
	})
}

func paginateAging(entries []CustomerAging, page, limit int) []CustomerAging {
	if limit <= 0 {
		return entries
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(entries) {
		return []CustomerAging{}
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}
