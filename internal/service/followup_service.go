package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/shopspring/decimal"
)

// CustomerFollowUp 客户跟进视图
type CustomerFollowUp struct {
	CustomerID            uint         `json:"customer_id"`
	Code                  string       `json:"code"`
	Name                  string       `json:"name"`
	ContactName           string       `json:"contact_name,omitempty"`
	Phone                 string       `json:"phone,omitempty"`
	BranchID              *uint        `json:"branch_id,omitempty"`
	LastOrderDate         *time.Time   `json:"last_order_date"`
	DaysSinceLastOrder    *int         `json:"days_since_last_order"`
	AvgOrderFrequencyDays *int         `json:"avg_order_frequency_days"`
	TotalOrders           int          `json:"total_orders"`
	TotalSpent            models.Money `json:"total_spent"`
	FollowUpLevel         string       `json:"follow_up_level,omitempty"`
	Bucket                string       `json:"bucket"`
}

// FollowUpFilter 跟进列表过滤条件
// MinDays/MaxDays 作用于距上次下单天数，OrderDaysMin/Max 作用于平均下单间隔。
type FollowUpFilter struct {
	Search       string
	BranchID     uint
	Level        string
	Bucket       string
	MinDays      *int
	MaxDays      *int
	OrderDaysMin *int
	OrderDaysMax *int
	SortBy       string
	SortDir      string
	Page         int
	Limit        int
}

// FollowUpSummary 跟进分布汇总，仅受搜索与门店过滤影响
type FollowUpSummary struct {
	TotalCustomers int64            `json:"total_customers"`
	Buckets        map[string]int64 `json:"buckets"`
}

// FollowUpService 客户跟进统计服务
type FollowUpService struct {
	customerRepo repository.CustomerRepository
	metricsRepo  repository.MetricsRepository
}

// NewFollowUpService 创建跟进统计服务
func NewFollowUpService(customerRepo repository.CustomerRepository, metricsRepo repository.MetricsRepository) *FollowUpService {
	return &FollowUpService{customerRepo: customerRepo, metricsRepo: metricsRepo}
}

// ListFollowUps 跟进列表：批量取订单行后在服务层聚合
func (s *FollowUpService) ListFollowUps(filter FollowUpFilter) ([]CustomerFollowUp, FollowUpSummary, int64, error) {
	summary := FollowUpSummary{Buckets: map[string]int64{}}
	customers, err := s.customerRepo.ListActive(filter.Search, filter.BranchID)
	if err != nil {
		return nil, summary, 0, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	rows, err := s.metricsRepo.ListOrderRows()
	if err != nil {
		return nil, summary, 0, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}

	now := time.Now()
	stats := aggregateOrderRows(rows)
	entries := make([]CustomerFollowUp, 0, len(customers))
	for _, customer := range customers {
		entries = append(entries, buildFollowUpEntry(customer, stats[customer.ID], now))
	}

	summary = summarizeFollowUps(entries)
	filtered := filterFollowUps(entries, filter)
	sortFollowUps(filtered, filter.SortBy, filter.SortDir)

	total := int64(len(filtered))
	paged := paginateFollowUps(filtered, filter.Page, filter.Limit)
	return paged, summary, total, nil
}

// GetCustomerFollowUp 单客户跟进指标
func (s *FollowUpService) GetCustomerFollowUp(customerID uint) (*CustomerFollowUp, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	rows, err := s.metricsRepo.ListOrderRowsByCustomer(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	stats := aggregateOrderRows(rows)
	entry := buildFollowUpEntry(*customer, stats[customerID], time.Now())
	return &entry, nil
}

// customerOrderStats 客户订单聚合中间结果
type customerOrderStats struct {
	count      int
	firstDate  time.Time
	lastDate   time.Time
	totalSpent decimal.Decimal
}

// aggregateOrderRows 按客户聚合订单行，取首末下单时间与累计金额
func aggregateOrderRows(rows []repository.OrderDateRow) map[uint]*customerOrderStats {
	stats := make(map[uint]*customerOrderStats)
	for _, row := range rows {
		st, ok := stats[row.CustomerID]
		if !ok {
			st = &customerOrderStats{
				firstDate:  row.OrderDate,
				lastDate:   row.OrderDate,
				totalSpent: decimal.Zero,
			}
			stats[row.CustomerID] = st
		}
		if row.OrderDate.Before(st.firstDate) {
			st.firstDate = row.OrderDate
		}
		if row.OrderDate.After(st.lastDate) {
			st.lastDate = row.OrderDate
		}
		st.count++
		st.totalSpent = st.totalSpent.Add(row.TotalAmount.Decimal)
	}
	return stats
}

func buildFollowUpEntry(customer models.Customer, st *customerOrderStats, now time.Time) CustomerFollowUp {
	entry := CustomerFollowUp{
		CustomerID:  customer.ID,
		Code:        customer.Code,
		Name:        customer.Name,
		ContactName: customer.ContactName,
		Phone:       customer.Phone,
		BranchID:    customer.BranchID,
		TotalSpent:  models.NewMoneyFromDecimal(decimal.Zero),
	}
	if st != nil && st.count > 0 {
		last := st.lastDate
		entry.LastOrderDate = &last
		days := daysBetween(st.lastDate, now)
		entry.DaysSinceLastOrder = &days
		entry.AvgOrderFrequencyDays = averageGapDays(st.firstDate, st.lastDate, st.count)
		entry.TotalOrders = st.count
		entry.TotalSpent = models.NewMoneyFromDecimal(st.totalSpent)
	}
	entry.FollowUpLevel = classifyFollowUp(entry.DaysSinceLastOrder, entry.AvgOrderFrequencyDays)
	entry.Bucket = followUpBucket(entry.DaysSinceLastOrder)
	return entry
}

// daysBetween 取整天数，不足一天按零计
func daysBetween(from, to time.Time) int {
	hours := to.Sub(from).Hours()
	if hours < 0 {
		return 0
	}
	return int(hours / 24)
}

// averageGapDays 平均下单间隔：相邻间隔之和即首末差，四舍五入到整数天
// 订单数不足 2 时无法计算，返回 nil。
func averageGapDays(first, last time.Time, count int) *int {
	if count < 2 {
		return nil
	}
	span := last.Sub(first).Hours() / 24
	avg := int(math.Round(span / float64(count-1)))
	return &avg
}

// classifyFollowUp 跟进等级：有平均间隔时按倍率分级，否则按固定阈值
func classifyFollowUp(daysSince, avgDays *int) string {
	if daysSince == nil {
		return ""
	}
	if avgDays != nil && *avgDays > 0 {
		ratio := float64(*daysSince) / float64(*avgDays)
		switch {
		case ratio >= 2:
			return constants.FollowUpLevelSevere
		case ratio >= 1.5:
			return constants.FollowUpLevelElevated
		case ratio > 1:
			return constants.FollowUpLevelMild
		default:
			return constants.FollowUpLevelOnSchedule
		}
	}
	switch {
	case *daysSince > 30:
		return constants.FollowUpLevelSevere
	case *daysSince > 14:
		return constants.FollowUpLevelElevated
	case *daysSince > 7:
		return constants.FollowUpLevelMild
	default:
		return constants.FollowUpLevelOnSchedule
	}
}

// followUpBucket 距上次下单天数所属区间
func followUpBucket(daysSince *int) string {
	if daysSince == nil {
		return constants.FollowUpBucketNever
	}
	switch {
	case *daysSince <= 7:
		return constants.FollowUpBucket0To7
	case *daysSince <= 14:
		return constants.FollowUpBucket8To14
	case *daysSince <= 30:
		return constants.FollowUpBucket15To30
	case *daysSince <= 60:
		return constants.FollowUpBucket31To60
	default:
		return constants.FollowUpBucketOver60
	}
}

func summarizeFollowUps(entries []CustomerFollowUp) FollowUpSummary {
	summary := FollowUpSummary{
		TotalCustomers: int64(len(entries)),
		Buckets: map[string]int64{
			constants.FollowUpBucket0To7:   0,
			constants.FollowUpBucket8To14:  0,
			constants.FollowUpBucket15To30: 0,
			constants.FollowUpBucket31To60: 0,
			constants.FollowUpBucketOver60: 0,
			constants.FollowUpBucketNever:  0,
		},
	}
	for _, entry := range entries {
		summary.Buckets[entry.Bucket]++
	}
	return summary
}

func filterFollowUps(entries []CustomerFollowUp, filter FollowUpFilter) []CustomerFollowUp {
	filtered := make([]CustomerFollowUp, 0, len(entries))
	for _, entry := range entries {
		if filter.Level != "" && entry.FollowUpLevel != filter.Level {
			continue
		}
		if filter.Bucket != "" && entry.Bucket != filter.Bucket {
			continue
		}
		if filter.MinDays != nil {
			if entry.DaysSinceLastOrder == nil || *entry.DaysSinceLastOrder < *filter.MinDays {
				continue
			}
		}
		if filter.MaxDays != nil {
			if entry.DaysSinceLastOrder == nil || *entry.DaysSinceLastOrder > *filter.MaxDays {
				continue
			}
		}
		if filter.OrderDaysMin != nil {
			if entry.AvgOrderFrequencyDays == nil || *entry.AvgOrderFrequencyDays < *filter.OrderDaysMin {
				continue
			}
		}
		if filter.OrderDaysMax != nil {
			if entry.AvgOrderFrequencyDays == nil || *entry.AvgOrderFrequencyDays > *filter.OrderDaysMax {
				continue
			}
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

// sortFollowUps 列表排序，默认按距上次下单天数降序，从未下单的客户排在最后
func sortFollowUps(entries []CustomerFollowUp, sortBy, sortDir string) {
	asc := strings.EqualFold(sortDir, "asc")
	less := func(a, b CustomerFollowUp) bool {
		switch sortBy {
		case "name":
			return a.Name < b.Name
		case "total_orders":
			return a.TotalOrders < b.TotalOrders
		case "total_spent":
			return a.TotalSpent.Decimal.LessThan(b.TotalSpent.Decimal)
		case "avg_order_frequency_days":
			return compareIntPtr(a.AvgOrderFrequencyDays, b.AvgOrderFrequencyDays)
		case "last_order_date":
			return compareTimePtr(a.LastOrderDate, b.LastOrderDate)
		default:
			return compareIntPtr(a.DaysSinceLastOrder, b.DaysSinceLastOrder)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		// 无订单客户始终排在末尾
		if (a.DaysSinceLastOrder == nil) != (b.DaysSinceLastOrder == nil) {
			return b.DaysSinceLastOrder == nil
		}
		if asc {
			return less(a, b)
		}
		return less(b, a)
	})
}

// compareIntPtr nil 视为最小值
func compareIntPtr(a, b *int) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return *a < *b
}

func compareTimePtr(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

func paginateFollowUps(entries []CustomerFollowUp, page, limit int) []CustomerFollowUp {
	if limit <= 0 {
		return entries
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(entries) {
		return []CustomerFollowUp{}
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}
