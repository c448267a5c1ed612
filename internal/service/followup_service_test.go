package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestAverageGapDays(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// 间隔 10 天和 15 天 => 平均 12.5，四舍五入为 13
	got := averageGapDays(base, base.AddDate(0, 0, 25), 3)
	if got == nil || *got != 13 {
		t.Fatalf("avg gap want 13 got %v", got)
	}

	if averageGapDays(base, base, 1) != nil {
		t.Fatalf("single order should not yield an average gap")
	}

	got = averageGapDays(base, base.AddDate(0, 0, 20), 3)
	if got == nil || *got != 10 {
		t.Fatalf("avg gap want 10 got %v", got)
	}
}

func TestClassifyFollowUpByRatio(t *testing.T) {
	avg := 10
	cases := []struct {
		daysSince int
		want      string
	}{
		{5, constants.FollowUpLevelOnSchedule},
		{10, constants.FollowUpLevelOnSchedule},
		{11, constants.FollowUpLevelMild},
		{15, constants.FollowUpLevelElevated},
		{19, constants.FollowUpLevelElevated},
		{20, constants.FollowUpLevelSevere},
		{40, constants.FollowUpLevelSevere},
	}
	for _, tc := range cases {
		days := tc.daysSince
		got := classifyFollowUp(&days, &avg)
		if got != tc.want {
			t.Fatalf("daysSince=%d avg=%d: want %s got %s", tc.daysSince, avg, tc.want, got)
		}
	}
}

func TestClassifyFollowUpFallbackThresholds(t *testing.T) {
	cases := []struct {
		daysSince int
		want      string
	}{
		{3, constants.FollowUpLevelOnSchedule},
		{7, constants.FollowUpLevelOnSchedule},
		{8, constants.FollowUpLevelMild},
		{14, constants.FollowUpLevelMild},
		{15, constants.FollowUpLevelElevated},
		{30, constants.FollowUpLevelElevated},
		{31, constants.FollowUpLevelSevere},
	}
	for _, tc := range cases {
		days := tc.daysSince
		got := classifyFollowUp(&days, nil)
		if got != tc.want {
			t.Fatalf("daysSince=%d no avg: want %s got %s", tc.daysSince, tc.want, got)
		}
	}

	if classifyFollowUp(nil, nil) != "" {
		t.Fatalf("never-ordered customer should have empty level")
	}
}

func TestFollowUpBucketBoundaries(t *testing.T) {
	cases := []struct {
		daysSince int
		want      string
	}{
		{0, constants.FollowUpBucket0To7},
		{7, constants.FollowUpBucket0To7},
		{8, constants.FollowUpBucket8To14},
		{14, constants.FollowUpBucket8To14},
		{15, constants.FollowUpBucket15To30},
		{30, constants.FollowUpBucket15To30},
		{31, constants.FollowUpBucket31To60},
		{60, constants.FollowUpBucket31To60},
		{61, constants.FollowUpBucketOver60},
	}
	for _, tc := range cases {
		days := tc.daysSince
		got := followUpBucket(&days)
		if got != tc.want {
			t.Fatalf("daysSince=%d: want %s got %s", tc.daysSince, tc.want, got)
		}
	}
	if followUpBucket(nil) != constants.FollowUpBucketNever {
		t.Fatalf("nil daysSince should map to never bucket")
	}
}

func TestAggregateOrderRows(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []repository.OrderDateRow{
		{CustomerID: 1, OrderDate: base.AddDate(0, 0, 5), TotalAmount: models.NewMoneyFromFloat(200)},
		{CustomerID: 1, OrderDate: base, TotalAmount: models.NewMoneyFromFloat(100)},
		{CustomerID: 2, OrderDate: base.AddDate(0, 0, 2), TotalAmount: models.NewMoneyFromFloat(50)},
	}
	stats := aggregateOrderRows(rows)

	st := stats[1]
	if st == nil || st.count != 2 {
		t.Fatalf("customer 1 stats missing or wrong count: %+v", st)
	}
	if !st.firstDate.Equal(base) || !st.lastDate.Equal(base.AddDate(0, 0, 5)) {
		t.Fatalf("first/last dates wrong: %v / %v", st.firstDate, st.lastDate)
	}
	if !st.totalSpent.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("total spent want 300 got %s", st.totalSpent.String())
	}
	if stats[2].count != 1 {
		t.Fatalf("customer 2 count want 1 got %d", stats[2].count)
	}
}

type followUpTestEnv struct {
	db  *gorm.DB
	svc *FollowUpService
}

func newFollowUpTestEnv(t *testing.T, name string) *followUpTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.ShippingAddress{}, &models.Order{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewFollowUpService(
		repository.NewCustomerRepository(db),
		repository.NewMetricsRepository(db),
	)
	return &followUpTestEnv{db: db, svc: svc}
}

func (env *followUpTestEnv) createCustomer(t *testing.T, code, name string) models.Customer {
	t.Helper()
	customer := models.Customer{Code: code, Name: name, IsActive: true}
	if err := env.db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func (env *followUpTestEnv) createOrder(t *testing.T, customerID uint, daysAgo int, total float64, status string) {
	t.Helper()
	order := models.Order{
		OrderNumber:   fmt.Sprintf("JF-%d-%d", customerID, daysAgo),
		CustomerID:    customerID,
		Status:        status,
		PaymentStatus: constants.PaymentStatusPending,
		OrderDate:     time.Now().Add(-time.Duration(daysAgo) * 24 * time.Hour),
		TotalAmount:   models.NewMoneyFromFloat(total),
	}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
}

func TestGetCustomerFollowUpMetrics(t *testing.T) {
	env := newFollowUpTestEnv(t, "followup_single")
	customer := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")

	// 三次下单：30/20/10 天前，平均间隔 10 天，距今 10 天 => 按期
	env.createOrder(t, customer.ID, 30, 500, constants.OrderStatusCompleted)
	env.createOrder(t, customer.ID, 20, 300, constants.OrderStatusCompleted)
	env.createOrder(t, customer.ID, 10, 200, constants.OrderStatusNew)

	entry, err := env.svc.GetCustomerFollowUp(customer.ID)
	if err != nil {
		t.Fatalf("get followup failed: %v", err)
	}
	if entry.TotalOrders != 3 {
		t.Fatalf("total orders want 3 got %d", entry.TotalOrders)
	}
	if entry.DaysSinceLastOrder == nil || *entry.DaysSinceLastOrder != 10 {
		t.Fatalf("days since want 10 got %v", entry.DaysSinceLastOrder)
	}
	if entry.AvgOrderFrequencyDays == nil || *entry.AvgOrderFrequencyDays != 10 {
		t.Fatalf("avg gap want 10 got %v", entry.AvgOrderFrequencyDays)
	}
	if entry.FollowUpLevel != constants.FollowUpLevelOnSchedule {
		t.Fatalf("level want on_schedule got %s", entry.FollowUpLevel)
	}
	if entry.Bucket != constants.FollowUpBucket8To14 {
		t.Fatalf("bucket want 8-14 got %s", entry.Bucket)
	}
	if !entry.TotalSpent.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("total spent want 1000 got %s", entry.TotalSpent.String())
	}
}

func TestGetCustomerFollowUpExcludesCancelled(t *testing.T) {
	env := newFollowUpTestEnv(t, "followup_cancelled")
	customer := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")
	env.createOrder(t, customer.ID, 5, 500, constants.OrderStatusCancelled)

	entry, err := env.svc.GetCustomerFollowUp(customer.ID)
	if err != nil {
		t.Fatalf("get followup failed: %v", err)
	}
	if entry.TotalOrders != 0 {
		t.Fatalf("cancelled orders must not count, got %d", entry.TotalOrders)
	}
	if entry.Bucket != constants.FollowUpBucketNever {
		t.Fatalf("bucket want never got %s", entry.Bucket)
	}
	if entry.LastOrderDate != nil {
		t.Fatalf("last order date should be nil")
	}
}

func TestGetCustomerFollowUpNotFound(t *testing.T) {
	env := newFollowUpTestEnv(t, "followup_missing")
	_, err := env.svc.GetCustomerFollowUp(999)
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected customer not found, got: %v", err)
	}
}

func TestListFollowUpsSummaryIgnoresRangeFilters(t *testing.T) {
	env := newFollowUpTestEnv(t, "followup_summary")

	fresh := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")
	stale := env.createCustomer(t, "CUST-0002", "Riverside Hotel Cafe")
	never := env.createCustomer(t, "CUST-0003", "Green Corner")

	env.createOrder(t, fresh.ID, 3, 400, constants.OrderStatusCompleted)
	env.createOrder(t, stale.ID, 50, 800, constants.OrderStatusCompleted)
	env.createOrder(t, stale.ID, 40, 600, constants.OrderStatusCompleted)
	_ = never

	minDays := 35
	entries, summary, total, err := env.svc.ListFollowUps(FollowUpFilter{MinDays: &minDays})
	if err != nil {
		t.Fatalf("list followups failed: %v", err)
	}

	// 区间过滤只影响列表，分布汇总仍覆盖全部客户
	if summary.TotalCustomers != 3 {
		t.Fatalf("summary customers want 3 got %d", summary.TotalCustomers)
	}
	if summary.Buckets[constants.FollowUpBucket0To7] != 1 {
		t.Fatalf("bucket 0-7 want 1 got %d", summary.Buckets[constants.FollowUpBucket0To7])
	}
	if summary.Buckets[constants.FollowUpBucket31To60] != 1 {
		t.Fatalf("bucket 31-60 want 1 got %d", summary.Buckets[constants.FollowUpBucket31To60])
	}
	if summary.Buckets[constants.FollowUpBucketNever] != 1 {
		t.Fatalf("bucket never want 1 got %d", summary.Buckets[constants.FollowUpBucketNever])
	}

	if total != 1 || len(entries) != 1 {
		t.Fatalf("filtered list want 1 entry got total=%d len=%d", total, len(entries))
	}
	if entries[0].CustomerID != stale.ID {
		t.Fatalf("expected stale customer, got %d", entries[0].CustomerID)
	}
	// 间隔 10 天、距今 40 天 => 比率 4 => 严重
	if entries[0].FollowUpLevel != constants.FollowUpLevelSevere {
		t.Fatalf("level want severe got %s", entries[0].FollowUpLevel)
	}
}

func TestListFollowUpsDefaultSortNeverLast(t *testing.T) {
	env := newFollowUpTestEnv(t, "followup_sort")

	fresh := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")
	stale := env.createCustomer(t, "CUST-0002", "Riverside Hotel Cafe")
	never := env.createCustomer(t, "CUST-0003", "Green Corner")

	env.createOrder(t, fresh.ID, 3, 400, constants.OrderStatusCompleted)
	env.createOrder(t, stale.ID, 40, 800, constants.OrderStatusCompleted)

	entries, _, _, err := env.svc.ListFollowUps(FollowUpFilter{})
	if err != nil {
		t.Fatalf("list followups failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries want 3 got %d", len(entries))
	}
	// 默认按距上次下单天数降序，从未下单的排在最后
	if entries[0].CustomerID != stale.ID {
		t.Fatalf("first entry want stale customer got %d", entries[0].CustomerID)
	}
	if entries[1].CustomerID != fresh.ID {
		t.Fatalf("second entry want fresh customer got %d", entries[1].CustomerID)
	}
	if entries[2].CustomerID != never.ID {
		t.Fatalf("never-ordered customer must sort last, got %d", entries[2].CustomerID)
	}
}

func TestListFollowUpsBucketFilterAndPagination(t *testing.T) {
	env := newFollowUpTestEnv(t, "followup_paging")

	for i := 1; i <= 5; i++ {
		customer := env.createCustomer(t, fmt.Sprintf("CUST-%04d", i), fmt.Sprintf("Shop %d", i))
		env.createOrder(t, customer.ID, 20+i, 100, constants.OrderStatusCompleted)
	}

	entries, _, total, err := env.svc.ListFollowUps(FollowUpFilter{
		Bucket: constants.FollowUpBucket15To30,
		Page:   2,
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("list followups failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("total want 5 got %d", total)
	}
	if len(entries) != 2 {
		t.Fatalf("page 2 with limit 2 want 2 entries got %d", len(entries))
	}
}
