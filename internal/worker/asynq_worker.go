package worker

import (
	"context"
	"encoding/json"

	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/provider"
	"github.com/kwamkid/joolz-factory-sub002/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskStockLowScan, c.handleStockLowScan)
}

func (c *Consumer) handleStockLowScan(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_stock_low_scan_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StockLowScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stock_low_scan_unmarshal_failed", "error", err)
		return err
	}
	if c.StockService == nil {
		logger.Debugw("worker_stock_low_scan_skip_service_nil", "reason", payload.Reason)
		return nil
	}
	triggered, err := c.StockService.ScanLowStock()
	if err != nil {
		logger.Warnw("worker_stock_low_scan_failed", "reason", payload.Reason, "error", err)
		return err
	}
	logger.Debugw("worker_stock_low_scan_done", "reason", payload.Reason, "triggered", triggered)
	return nil
}
