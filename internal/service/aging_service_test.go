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

func TestAgingBucketBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{0, constants.AgingBucketOnTime},
		{7, constants.AgingBucketOnTime},
		{8, constants.AgingBucketDue},
		{14, constants.AgingBucketDue},
		{15, constants.AgingBucketLate},
		{30, constants.AgingBucketLate},
		{31, constants.AgingBucketVeryLate},
		{45, constants.AgingBucketVeryLate},
		{60, constants.AgingBucketVeryLate},
		{61, constants.AgingBucketCritical},
		{65, constants.AgingBucketCritical},
	}
	for _, tc := range cases {
		got := agingBucket(tc.days)
		if got != tc.want {
			t.Fatalf("days=%d: want %s got %s", tc.days, tc.want, got)
		}
	}
}

type agingTestEnv struct {
	db  *gorm.DB
	svc *AgingService
}

func newAgingTestEnv(t *testing.T, name string) *agingTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.ShippingAddress{}, &models.Order{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewAgingService(
		repository.NewCustomerRepository(db),
		repository.NewMetricsRepository(db),
	)
	return &agingTestEnv{db: db, svc: svc}
}

func (env *agingTestEnv) createCustomer(t *testing.T, code, name string) models.Customer {
	t.Helper()
	customer := models.Customer{Code: code, Name: name, IsActive: true}
	if err := env.db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func (env *agingTestEnv) createOrder(t *testing.T, customerID uint, daysAgo int, total float64, status, paymentStatus string) {
	t.Helper()
	order := models.Order{
		OrderNumber:   fmt.Sprintf("JF-%d-%d-%s", customerID, daysAgo, paymentStatus),
		CustomerID:    customerID,
		Status:        status,
		PaymentStatus: paymentStatus,
		OrderDate:     time.Now().Add(-time.Duration(daysAgo) * 24 * time.Hour),
		TotalAmount:   models.NewMoneyFromFloat(total),
	}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
}

func TestGetCustomerAgingAggregates(t *testing.T) {
	env := newAgingTestEnv(t, "aging_single")
	customer := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")

	// 最老一笔 45 天未收款 => very_late
	env.createOrder(t, customer.ID, 45, 1000, constants.OrderStatusCompleted, constants.PaymentStatusPending)
	env.createOrder(t, customer.ID, 10, 500, constants.OrderStatusShipping, constants.PaymentStatusVerifying)
	// 已收款与已取消的订单不计入账龄
	env.createOrder(t, customer.ID, 30, 999, constants.OrderStatusCompleted, constants.PaymentStatusPaid)
	env.createOrder(t, customer.ID, 70, 888, constants.OrderStatusCancelled, constants.PaymentStatusPending)

	aging, err := env.svc.GetCustomerAging(customer.ID)
	if err != nil {
		t.Fatalf("get aging failed: %v", err)
	}
	if aging.OrderCount != 2 {
		t.Fatalf("order count want 2 got %d", aging.OrderCount)
	}
	if !aging.TotalPending.Decimal.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("total pending want 1500 got %s", aging.TotalPending.String())
	}
	if aging.DaysOverdue != 45 {
		t.Fatalf("days overdue want 45 got %d", aging.DaysOverdue)
	}
	if aging.Bucket != constants.AgingBucketVeryLate {
		t.Fatalf("bucket want very_late got %s", aging.Bucket)
	}
	if len(aging.Orders) != 2 {
		t.Fatalf("orders want 2 got %d", len(aging.Orders))
	}
	for _, row := range aging.Orders {
		if row.PaymentStatus == constants.PaymentStatusPaid {
			t.Fatalf("paid order leaked into aging rows: %+v", row)
		}
	}
}

func TestGetCustomerAgingNoUnpaidOrders(t *testing.T) {
	env := newAgingTestEnv(t, "aging_clean")
	customer := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")
	env.createOrder(t, customer.ID, 10, 500, constants.OrderStatusCompleted, constants.PaymentStatusPaid)

	aging, err := env.svc.GetCustomerAging(customer.ID)
	if err != nil {
		t.Fatalf("get aging failed: %v", err)
	}
	if aging.OrderCount != 0 {
		t.Fatalf("order count want 0 got %d", aging.OrderCount)
	}
	if !aging.TotalPending.Decimal.IsZero() {
		t.Fatalf("total pending want 0 got %s", aging.TotalPending.String())
	}
	if len(aging.Orders) != 0 {
		t.Fatalf("orders want empty got %d", len(aging.Orders))
	}
}

func TestGetCustomerAgingNotFound(t *testing.T) {
	env := newAgingTestEnv(t, "aging_missing")
	_, err := env.svc.GetCustomerAging(999)
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected customer not found, got: %v", err)
	}
}

func TestListAgingSummaryAndBucketFilter(t *testing.T) {
	env := newAgingTestEnv(t, "aging_list")

	recent := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")
	late := env.createCustomer(t, "CUST-0002", "Riverside Hotel Cafe")
	critical := env.createCustomer(t, "CUST-0003", "Green Corner")

	env.createOrder(t, recent.ID, 3, 400, constants.OrderStatusCompleted, constants.PaymentStatusPending)
	env.createOrder(t, late.ID, 20, 800, constants.OrderStatusCompleted, constants.PaymentStatusPending)
	env.createOrder(t, late.ID, 18, 200, constants.OrderStatusCompleted, constants.PaymentStatusVerifying)
	env.createOrder(t, critical.ID, 65, 1500, constants.OrderStatusCompleted, constants.PaymentStatusPending)

	entries, summary, total, err := env.svc.ListAging(AgingFilter{Bucket: constants.AgingBucketCritical})
	if err != nil {
		t.Fatalf("list aging failed: %v", err)
	}

	// 汇总覆盖全部欠款客户，区间过滤只影响列表
	if summary.TotalCustomers != 3 {
		t.Fatalf("summary customers want 3 got %d", summary.TotalCustomers)
	}
	if summary.TotalOrders != 4 {
		t.Fatalf("summary orders want 4 got %d", summary.TotalOrders)
	}
	if !summary.TotalPending.Decimal.Equal(decimal.NewFromInt(2900)) {
		t.Fatalf("summary pending want 2900 got %s", summary.TotalPending.String())
	}
	if summary.Buckets[constants.AgingBucketOnTime] != 1 {
		t.Fatalf("bucket on_time want 1 got %d", summary.Buckets[constants.AgingBucketOnTime])
	}
	if summary.Buckets[constants.AgingBucketLate] != 1 {
		t.Fatalf("bucket late want 1 got %d", summary.Buckets[constants.AgingBucketLate])
	}
	if summary.Buckets[constants.AgingBucketCritical] != 1 {
		t.Fatalf("bucket critical want 1 got %d", summary.Buckets[constants.AgingBucketCritical])
	}

	if total != 1 || len(entries) != 1 {
		t.Fatalf("filtered list want 1 entry got total=%d len=%d", total, len(entries))
	}
	if entries[0].CustomerID != critical.ID {
		t.Fatalf("expected critical customer got %d", entries[0].CustomerID)
	}
	if entries[0].Name != "Green Corner" {
		t.Fatalf("customer name not backfilled: %s", entries[0].Name)
	}
}

func TestListAgingSearchAffectsSummary(t *testing.T) {
	env := newAgingTestEnv(t, "aging_search")

	bangkok := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")
	riverside := env.createCustomer(t, "CUST-0002", "Riverside Hotel Cafe")
	env.createOrder(t, bangkok.ID, 10, 400, constants.OrderStatusCompleted, constants.PaymentStatusPending)
	env.createOrder(t, riverside.ID, 20, 800, constants.OrderStatusCompleted, constants.PaymentStatusPending)

	entries, summary, total, err := env.svc.ListAging(AgingFilter{Search: "riverside"})
	if err != nil {
		t.Fatalf("list aging failed: %v", err)
	}
	if summary.TotalCustomers != 1 {
		t.Fatalf("search-scoped summary want 1 customer got %d", summary.TotalCustomers)
	}
	if !summary.TotalPending.Decimal.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("summary pending want 800 got %s", summary.TotalPending.String())
	}
	if total != 1 || len(entries) != 1 || entries[0].CustomerID != riverside.ID {
		t.Fatalf("unexpected search result: total=%d len=%d", total, len(entries))
	}
}

func TestListAgingDefaultSortByDaysOverdue(t *testing.T) {
	env := newAgingTestEnv(t, "aging_sort")

	a := env.createCustomer(t, "CUST-0001", "Bangkok Juice Bar")
	b := env.createCustomer(t, "CUST-0002", "Riverside Hotel Cafe")
	c := env.createCustomer(t, "CUST-0003", "Green Corner")
	env.createOrder(t, a.ID, 5, 100, constants.OrderStatusCompleted, constants.PaymentStatusPending)
	env.createOrder(t, b.ID, 40, 100, constants.OrderStatusCompleted, constants.PaymentStatusPending)
	env.createOrder(t, c.ID, 20, 100, constants.OrderStatusCompleted, constants.PaymentStatusPending)

	entries, _, _, err := env.svc.ListAging(AgingFilter{})
	if err != nil {
		t.Fatalf("list aging failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries want 3 got %d", len(entries))
	}
	if entries[0].CustomerID != b.ID || entries[1].CustomerID != c.ID || entries[2].CustomerID != a.ID {
		t.Fatalf("default sort should be days overdue desc, got %d,%d,%d",
			entries[0].CustomerID, entries[1].CustomerID, entries[2].CustomerID)
	}
}
