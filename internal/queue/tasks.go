package queue

import (
	"encoding/json"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskStockLowScan 低库存扫描任务
	TaskStockLowScan = constants.TaskStockLowScan
)

// StockLowScanPayload 低库存扫描任务载荷
type StockLowScanPayload struct {
	Reason string `json:"reason"`
}

// NewStockLowScanTask 创建低库存扫描任务
func NewStockLowScanTask(payload StockLowScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockLowScan, body), nil
}
