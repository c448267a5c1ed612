package service

import (
	"errors"
	"fmt"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/queue"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"gorm.io/gorm"
)

// StockService 库存服务
type StockService struct {
	stockRepo     repository.StockRepository
	variationRepo repository.VariationRepository
	productRepo   repository.ProductRepository
	queueClient   *queue.Client
}

// NewStockService 创建库存服务
func NewStockService(stockRepo repository.StockRepository, variationRepo repository.VariationRepository, productRepo repository.ProductRepository, queueClient *queue.Client) *StockService {
	return &StockService{
		stockRepo:     stockRepo,
		variationRepo: variationRepo,
		productRepo:   productRepo,
		queueClient:   queueClient,
	}
}

// RecordTransactionInput 库存流水输入
// in/out 的数量为正数，adjust 为带符号的修正量。
type RecordTransactionInput struct {
	VariationID uint
	Type        string
	Quantity    int
	Reason      string
	Notes       string
	CreatedBy   string
}

// StockTxnView 库存流水视图
type StockTxnView struct {
	models.StockTransaction
	ProductName string `json:"product_name"`
	SKUCode     string `json:"sku_code"`
	BottleSize  string `json:"bottle_size"`
}

// StockAlertView 缺货预警视图
type StockAlertView struct {
	models.StockAlert
	ProductName string `json:"product_name"`
	SKUCode     string `json:"sku_code"`
	BottleSize  string `json:"bottle_size"`
}

// RecordTransaction 记录库存流水并原子更新规格库存
// 出库超过当前余量时整体回滚并返回库存不足。
func (s *StockService) RecordTransaction(input RecordTransactionInput) (*models.StockTransaction, error) {
	delta, err := stockDelta(input.Type, input.Quantity)
	if err != nil {
		return nil, err
	}
	variation, err := s.variationRepo.GetByID(input.VariationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
	}
	if variation == nil {
		return nil, ErrVariationNotFound
	}

	txn := &models.StockTransaction{
		VariationID: input.VariationID,
		Type:        input.Type,
		Quantity:    input.Quantity,
		Reason:      input.Reason,
		Notes:       input.Notes,
		CreatedBy:   input.CreatedBy,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		variationRepo := s.variationRepo.WithTx(tx)
		rows, err := variationRepo.AdjustStock(input.VariationID, delta)
		if err != nil {
			return err
		}
		if rows == 0 {
			if delta < 0 {
				return ErrStockInsufficient
			}
			return ErrVariationNotFound
		}
		current, err := variationRepo.GetByID(input.VariationID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrVariationNotFound
		}
		txn.BalanceAfter = current.StockQuantity
		return s.stockRepo.WithTx(tx).CreateTransaction(txn)
	})
	if err != nil {
		if errors.Is(err, ErrStockInsufficient) || errors.Is(err, ErrVariationNotFound) {
			return nil, err
		}
		logger.Warnw("stock_transaction_failed",
			"variation_id", input.VariationID,
			"type", input.Type,
			"quantity", input.Quantity,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
	}

	logger.Infow("stock_transaction_recorded",
		"transaction_id", txn.ID,
		"variation_id", txn.VariationID,
		"type", txn.Type,
		"quantity", txn.Quantity,
		"balance_after", txn.BalanceAfter,
	)
	if err := s.queueClient.EnqueueStockLowScan(queue.StockLowScanPayload{Reason: "stock_transaction"}); err != nil {
		logger.Warnw("stock_scan_enqueue_failed", "variation_id", txn.VariationID, "error", err)
	}
	return txn, nil
}

// ListTransactions 库存流水列表
func (s *StockService) ListTransactions(filter repository.StockTxnListFilter) ([]StockTxnView, int64, error) {
	txns, total, err := s.stockRepo.ListTransactions(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
	}

	variationIDs := make([]uint, 0, len(txns))
	seen := make(map[uint]bool)
	for _, txn := range txns {
		if !seen[txn.VariationID] {
			seen[txn.VariationID] = true
			variationIDs = append(variationIDs, txn.VariationID)
		}
	}
	info, err := loadVariationInfo(s.variationRepo, s.productRepo, variationIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
	}

	views := make([]StockTxnView, 0, len(txns))
	for _, txn := range txns {
		view := StockTxnView{StockTransaction: txn}
		if v, ok := info[txn.VariationID]; ok {
			view.ProductName = v.ProductName
			view.SKUCode = v.SKUCode
			view.BottleSize = v.BottleSize
		}
		views = append(views, view)
	}
	return views, total, nil
}

// ListAlerts 当前生效的缺货预警列表
func (s *StockService) ListAlerts() ([]StockAlertView, error) {
	alerts, err := s.stockRepo.ListActiveAlerts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
	}

	variationIDs := make([]uint, 0, len(alerts))
	seen := make(map[uint]bool)
	for _, alert := range alerts {
		if !seen[alert.VariationID] {
			seen[alert.VariationID] = true
			variationIDs = append(variationIDs, alert.VariationID)
		}
	}
	info, err := loadVariationInfo(s.variationRepo, s.productRepo, variationIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
	}

	views := make([]StockAlertView, 0, len(alerts))
	for _, alert := range alerts {
		view := StockAlertView{StockAlert: alert}
		if v, ok := info[alert.VariationID]; ok {
			view.ProductName = v.ProductName
			view.SKUCode = v.SKUCode
			view.BottleSize = v.BottleSize
		}
		views = append(views, view)
	}
	return views, nil
}

// ScanLowStock 扫描低库存规格：触达警戒线的建档预警，回升的自动解除
// 返回本次扫描后处于触发状态的规格数量。
func (s *StockService) ScanLowStock() (int, error) {
	low, err := s.variationRepo.ListBelowReorderLevel()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
	}
	lowSet := make(map[uint]bool, len(low))
	for _, variation := range low {
		lowSet[variation.ID] = true
		if err := s.stockRepo.UpsertAlert(variation.ID, variation.StockQuantity, variation.ReorderLevel); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
		}
	}

	active, err := s.stockRepo.ListActiveAlerts()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
	}
	for _, alert := range active {
		if lowSet[alert.VariationID] {
			continue
		}
		if err := s.stockRepo.ResolveAlert(alert.VariationID); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStockWriteFailed, err)
		}
	}

	if len(low) > 0 {
		logger.Infow("stock_low_scan", "triggered", len(low), "resolved", len(active)-countStillActive(active, lowSet))
	}
	return len(low), nil
}

func countStillActive(alerts []models.StockAlert, lowSet map[uint]bool) int {
	count := 0
	for _, alert := range alerts {
		if lowSet[alert.VariationID] {
			count++
		}
	}
	return count
}

// stockDelta 流水类型折算为库存增减量
func stockDelta(txnType string, quantity int) (int, error) {
	switch txnType {
	case constants.StockTxnTypeIn:
		if quantity <= 0 {
			return 0, newValidationError("Quantity must be greater than zero for stock-in")
		}
		return quantity, nil
	case constants.StockTxnTypeOut:
		if quantity <= 0 {
			return 0, newValidationError("Quantity must be greater than zero for stock-out")
		}
		return -quantity, nil
	case constants.StockTxnTypeAdjust:
		if quantity == 0 {
			return 0, newValidationError("Adjustment quantity must not be zero")
		}
		return quantity, nil
	default:
		return 0, newValidationError("Transaction type must be one of 'in', 'out' or 'adjust'")
	}
}

// variationInfo 规格与所属商品的展示信息
type variationInfo struct {
	ProductID   uint
	ProductName string
	ProductCode string
	SKUCode     string
	BottleSize  string
}

// loadVariationInfo 批量加载规格及其商品信息
func loadVariationInfo(variationRepo repository.VariationRepository, productRepo repository.ProductRepository, ids []uint) (map[uint]variationInfo, error) {
	result := make(map[uint]variationInfo, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	variations, err := variationRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(variations))
	seen := make(map[uint]bool)
	for _, variation := range variations {
		if !seen[variation.ProductID] {
			seen[variation.ProductID] = true
			productIDs = append(productIDs, variation.ProductID)
		}
	}
	products, err := productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]models.Product, len(products))
	for _, product := range products {
		names[product.ID] = product
	}

	for _, variation := range variations {
		info := variationInfo{
			ProductID:  variation.ProductID,
			SKUCode:    variation.SKUCode,
			BottleSize: variation.BottleSize,
		}
		if product, ok := names[variation.ProductID]; ok {
			info.ProductName = product.Name
			info.ProductCode = product.Code
		}
		result[variation.ID] = info
	}
	return result, nil
}
