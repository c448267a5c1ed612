//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderShipment{},
		&models.OrderItem{},
		&models.Order{},
		&models.ShippingAddress{},
		&models.ProductVariation{},
		&models.Product{},
		&models.Customer{},
		&models.Branch{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Branch{},
		&models.Customer{},
		&models.ShippingAddress{},
		&models.Product{},
		&models.ProductVariation{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderShipment{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCaseInsensitiveSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	customerRepo := NewCustomerRepository(db)
	customer := &models.Customer{
		Code:     "CUST-0001",
		Name:     "Bangkok Juice Bar",
		Phone:    "021234567",
		IsActive: true,
	}
	if err := customerRepo.Create(customer); err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	// postgres 走 ILIKE，分支在小写关键词下命中
	rows, total, err := customerRepo.List(CustomerListFilter{Page: 1, PageSize: 20, Search: "bangkok"})
	if err != nil {
		t.Fatalf("customer search lowercase failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("customer search lowercase want 1 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = customerRepo.List(CustomerListFilter{Page: 1, PageSize: 20, Search: "JUICE BAR"})
	if err != nil {
		t.Fatalf("customer search uppercase failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("customer search uppercase want 1 got total=%d len=%d", total, len(rows))
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		Code:     "JUICE-ORANGE",
		Name:     "Orange Juice",
		Category: "juice",
		IsActive: true,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	productRows, productTotal, err := productRepo.List(ProductListFilter{Page: 1, PageSize: 20, Search: "orange"})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if productTotal != 1 || len(productRows) != 1 {
		t.Fatalf("product search want 1 got total=%d len=%d", productTotal, len(productRows))
	}
}

func TestPostgresMetricsQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	customer := &models.Customer{
		Code:     "CUST-0001",
		Name:     "Riverside Cafe",
		IsActive: true,
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	createOrder := func(number string, daysAgo int, total string, status, paymentStatus string) {
		order := &models.Order{
			OrderNumber:   number,
			CustomerID:    customer.ID,
			Status:        status,
			PaymentStatus: paymentStatus,
			OrderDate:     now.Add(-time.Duration(daysAgo) * 24 * time.Hour),
			TotalAmount:   models.NewMoneyFromDecimal(decimal.RequireFromString(total)),
		}
		if err := db.Create(order).Error; err != nil {
			t.Fatalf("create order %s failed: %v", number, err)
		}
	}

	createOrder("PG-ORDER-001", 20, "963.42", constants.OrderStatusCompleted, constants.PaymentStatusPending)
	createOrder("PG-ORDER-002", 10, "500.00", constants.OrderStatusShipping, constants.PaymentStatusVerifying)
	createOrder("PG-ORDER-003", 5, "120.00", constants.OrderStatusCompleted, constants.PaymentStatusPaid)
	createOrder("PG-ORDER-004", 2, "80.00", constants.OrderStatusCancelled, constants.PaymentStatusPending)

	repo := NewMetricsRepository(db)

	orderRows, err := repo.ListOrderRows()
	if err != nil {
		t.Fatalf("list order rows failed: %v", err)
	}
	// 取消订单不计入跟进统计
	if len(orderRows) != 3 {
		t.Fatalf("order rows len want 3 got %d", len(orderRows))
	}

	unpaid, err := repo.ListUnpaidOrders()
	if err != nil {
		t.Fatalf("list unpaid orders failed: %v", err)
	}
	if len(unpaid) != 2 {
		t.Fatalf("unpaid rows len want 2 got %d", len(unpaid))
	}
	if unpaid[0].OrderNumber != "PG-ORDER-001" {
		t.Fatalf("unpaid rows should be ordered by order_date, got %s first", unpaid[0].OrderNumber)
	}
	// numeric(20,2) 金额精度不丢失
	if !unpaid[0].TotalAmount.Decimal.Equal(decimal.RequireFromString("963.42")) {
		t.Fatalf("unpaid amount want 963.42 got %s", unpaid[0].TotalAmount)
	}

	byCustomer, err := repo.ListOrderRowsByCustomer(customer.ID)
	if err != nil {
		t.Fatalf("list order rows by customer failed: %v", err)
	}
	if len(byCustomer) != 3 {
		t.Fatalf("customer order rows len want 3 got %d", len(byCustomer))
	}
	if !byCustomer[0].OrderDate.Before(byCustomer[2].OrderDate) {
		t.Fatalf("customer order rows should be ordered by order_date ascending")
	}
}
