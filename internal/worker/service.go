package worker

import (
	"context"
	"errors"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/config"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultStockScanInterval = 5 * time.Minute

// Service 异步队列服务
// 除消费 asynq 任务外，内置一个周期性的低库存扫描循环。
type Service struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	consumer     *Consumer
	scanInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, stockCfg *config.StockConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}

	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	return &Service{
		server:       asynq.NewServer(opt, serverCfg),
		mux:          mux,
		consumer:     consumer,
		scanInterval: stockScanInterval(stockCfg),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动任务消费与库存扫描循环，阻塞到服务停止
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.StockService != nil {
		go s.runStockScanLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runStockScanLoop 启动后先扫描一次，之后按固定间隔扫描，ctx 结束即退出
func (s *Service) runStockScanLoop(ctx context.Context) {
	s.scanOnce()

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanOnce()
		}
	}
}

func (s *Service) scanOnce() {
	if _, err := s.consumer.StockService.ScanLowStock(); err != nil {
		logger.Warnw("worker_stock_scan_failed", "error", err)
	}
}

func stockScanInterval(cfg *config.StockConfig) time.Duration {
	if cfg == nil || cfg.ScanIntervalSeconds <= 0 {
		return defaultStockScanInterval
	}
	return time.Duration(cfg.ScanIntervalSeconds) * time.Second
}
