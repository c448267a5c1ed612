package main

import (
	"fmt"

	"github.com/kwamkid/joolz-factory-sub002/internal/config"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"github.com/joho/godotenv"
)

func main() {
	// 连接数据库
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加门店
	branches := []models.Branch{
		{Name: "Head Office", IsActive: true},
		{Name: "Sukhumvit Branch", IsActive: true},
		{Name: "Chiang Mai Branch", IsActive: true},
	}

	branchIDs := map[string]uint{}
	for _, branch := range branches {
		var existing models.Branch
		if err := models.DB.Where("name = ?", branch.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&branch).Error; err != nil {
				stdLog.Printf("Failed to create branch %s: %v", branch.Name, err)
				continue
			}
			stdLog.Printf("Created branch: %s", branch.Name)
			branchIDs[branch.Name] = branch.ID
		} else {
			stdLog.Printf("Branch already exists: %s", existing.Name)
			branchIDs[existing.Name] = existing.ID
		}
	}

	// 添加商品与规格
	type variationPlan struct {
		SKUCode       string
		BottleSize    string
		UnitPrice     float64
		StockQuantity int
		ReorderLevel  int
		SortOrder     int
	}
	type productPlan struct {
		Code        string
		Name        string
		Description string
		Category    string
		SortOrder   int
		Variations  []variationPlan
	}

	products := []productPlan{
		{
			Code:        "JUICE-ORANGE",
			Name:        "Fresh Orange Juice",
			Description: "100% cold squeezed Thai oranges, no sugar added",
			Category:    "fresh",
			SortOrder:   100,
			Variations: []variationPlan{
				{SKUCode: "ORG-250", BottleSize: "250ml", UnitPrice: 55, StockQuantity: 120, ReorderLevel: 30, SortOrder: 10},
				{SKUCode: "ORG-1000", BottleSize: "1L", UnitPrice: 180, StockQuantity: 48, ReorderLevel: 12, SortOrder: 20},
			},
		},
		{
			Code:        "JUICE-APPLE",
			Name:        "Cold-Pressed Apple Juice",
			Description: "Slow pressed Fuji apples, bottled same day",
			Category:    "cold-pressed",
			SortOrder:   90,
			Variations: []variationPlan{
				{SKUCode: "APL-250", BottleSize: "250ml", UnitPrice: 65, StockQuantity: 80, ReorderLevel: 20, SortOrder: 10},
				{SKUCode: "APL-500", BottleSize: "500ml", UnitPrice: 110, StockQuantity: 40, ReorderLevel: 10, SortOrder: 20},
			},
		},
		{
			Code:        "JUICE-WATERMELON",
			Name:        "Watermelon Juice",
			Description: "Seasonal watermelon, lightly chilled",
			Category:    "fresh",
			SortOrder:   80,
			Variations: []variationPlan{
				{SKUCode: "WML-250", BottleSize: "250ml", UnitPrice: 45, StockQuantity: 60, ReorderLevel: 15, SortOrder: 10},
			},
		},
		{
			Code:        "JUICE-GREEN-DETOX",
			Name:        "Green Detox Blend",
			Description: "Kale, cucumber, green apple and lime",
			Category:    "cold-pressed",
			SortOrder:   70,
			Variations: []variationPlan{
				{SKUCode: "GRD-250", BottleSize: "250ml", UnitPrice: 85, StockQuantity: 36, ReorderLevel: 12, SortOrder: 10},
				{SKUCode: "GRD-500", BottleSize: "500ml", UnitPrice: 150, StockQuantity: 18, ReorderLevel: 6, SortOrder: 20},
			},
		},
	}

	for _, plan := range products {
		var product models.Product
		if err := models.DB.Where("code = ?", plan.Code).First(&product).Error; err != nil {
			product = models.Product{
				Code:        plan.Code,
				Name:        plan.Name,
				Description: plan.Description,
				Category:    plan.Category,
				SortOrder:   plan.SortOrder,
				IsActive:    true,
			}
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", plan.Code, err)
				continue
			}
			stdLog.Printf("Created product: %s", plan.Code)
		} else {
			product.Name = plan.Name
			product.Description = plan.Description
			product.Category = plan.Category
			product.SortOrder = plan.SortOrder
			if err := models.DB.Save(&product).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", plan.Code, err)
				continue
			}
			stdLog.Printf("Updated product: %s", plan.Code)
		}

		// 规格：已存在时只刷新价格与警戒线，库存以现场数据为准
		for _, vp := range plan.Variations {
			var variation models.ProductVariation
			if err := models.DB.Where("product_id = ? AND sku_code = ?", product.ID, vp.SKUCode).First(&variation).Error; err != nil {
				variation = models.ProductVariation{
					ProductID:     product.ID,
					SKUCode:       vp.SKUCode,
					BottleSize:    vp.BottleSize,
					UnitPrice:     models.NewMoneyFromFloat(vp.UnitPrice),
					StockQuantity: vp.StockQuantity,
					ReorderLevel:  vp.ReorderLevel,
					SortOrder:     vp.SortOrder,
					IsActive:      true,
				}
				if err := models.DB.Create(&variation).Error; err != nil {
					stdLog.Printf("Failed to create variation %s: %v", vp.SKUCode, err)
				} else {
					stdLog.Printf("Created variation: %s (%s)", vp.SKUCode, vp.BottleSize)
				}
				continue
			}
			variation.BottleSize = vp.BottleSize
			variation.UnitPrice = models.NewMoneyFromFloat(vp.UnitPrice)
			variation.ReorderLevel = vp.ReorderLevel
			variation.SortOrder = vp.SortOrder
			if err := models.DB.Save(&variation).Error; err != nil {
				stdLog.Printf("Failed to update variation %s: %v", vp.SKUCode, err)
			} else {
				stdLog.Printf("Updated variation: %s", vp.SKUCode)
			}
		}
	}

	// 添加演示客户与收货地址
	headOfficeID := branchIDs["Head Office"]
	customers := []struct {
		Customer  models.Customer
		Addresses []models.ShippingAddress
	}{
		{
			Customer: models.Customer{
				Code:        "CUST-0001",
				Name:        "Bangkok Juice Bar",
				ContactName: "Khun Nok",
				Phone:       "02-111-2222",
				Email:       "orders@bkkjuicebar.example",
				IsActive:    true,
			},
			Addresses: []models.ShippingAddress{
				{Label: "Storefront", AddressLine: "88/12 Sukhumvit Soi 11", District: "Watthana", Province: "Bangkok", PostalCode: "10110", ContactPhone: "02-111-2222", IsDefault: true},
				{Label: "Warehouse", AddressLine: "45 Rama IV Rd", District: "Khlong Toei", Province: "Bangkok", PostalCode: "10500", ContactPhone: "02-333-4444"},
			},
		},
		{
			Customer: models.Customer{
				Code:        "CUST-0002",
				Name:        "Riverside Hotel Cafe",
				ContactName: "Khun Ploy",
				Phone:       "02-555-6666",
				IsActive:    true,
			},
			Addresses: []models.ShippingAddress{
				{Label: "Cafe", AddressLine: "257 Charoenkrung Rd", District: "Bang Rak", Province: "Bangkok", PostalCode: "10500", ContactPhone: "02-555-6666", IsDefault: true},
			},
		},
	}

	for _, entry := range customers {
		customer := entry.Customer
		if headOfficeID > 0 {
			customer.BranchID = &headOfficeID
		}
		var existing models.Customer
		if err := models.DB.Where("code = ?", customer.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&customer).Error; err != nil {
				stdLog.Printf("Failed to create customer %s: %v", customer.Code, err)
				continue
			}
			stdLog.Printf("Created customer: %s", customer.Code)
			for _, addr := range entry.Addresses {
				addr.CustomerID = customer.ID
				if err := models.DB.Create(&addr).Error; err != nil {
					stdLog.Printf("Failed to create address for %s: %v", customer.Code, err)
				}
			}
		} else {
			stdLog.Printf("Customer already exists: %s", existing.Code)
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Branches")
	fmt.Println("- 4 Products with 7 variations")
	fmt.Println("- 2 Customers with shipping addresses")
}
