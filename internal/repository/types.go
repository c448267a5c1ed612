package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	Search        string
	Status        string
	PaymentStatus string
	CustomerID    uint
	BranchID      uint
	DateFrom      *time.Time
	DateTo        *time.Time
	SortBy        string
	SortDir       string
}

// CustomerListFilter 查询客户列表的过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	Search   string
	BranchID uint
	IsActive *bool
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page           int
	PageSize       int
	Search         string
	Category       string
	OnlyActive     bool
	WithVariations bool
}

// BatchListFilter 查询生产批次列表的过滤条件
type BatchListFilter struct {
	Page        int
	PageSize    int
	Status      string
	ProductID   uint
	VariationID uint
	DateFrom    *time.Time
	DateTo      *time.Time
}

// StockTxnListFilter 查询库存流水列表的过滤条件
type StockTxnListFilter struct {
	Page        int
	PageSize    int
	VariationID uint
	Type        string
	BatchID     uint
	DateFrom    *time.Time
	DateTo      *time.Time
}
