package worker

import (
	"testing"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/config"
)

func TestStockScanIntervalDefault(t *testing.T) {
	if got := stockScanInterval(nil); got != defaultStockScanInterval {
		t.Fatalf("expected default interval for nil config, got %v", got)
	}
	if got := stockScanInterval(&config.StockConfig{ScanIntervalSeconds: 0}); got != defaultStockScanInterval {
		t.Fatalf("expected default interval for zero seconds, got %v", got)
	}
	if got := stockScanInterval(&config.StockConfig{ScanIntervalSeconds: -10}); got != defaultStockScanInterval {
		t.Fatalf("expected default interval for negative seconds, got %v", got)
	}
}

func TestStockScanIntervalFromConfig(t *testing.T) {
	got := stockScanInterval(&config.StockConfig{ScanIntervalSeconds: 90})
	if got != 90*time.Second {
		t.Fatalf("expected 90s interval, got %v", got)
	}
}

func TestNewServiceQueueDisabled(t *testing.T) {
	if _, err := NewService(nil, nil, NewConsumer(nil)); err == nil {
		t.Fatal("expected error for nil queue config")
	}
	cfg := &config.QueueConfig{Enabled: false}
	if _, err := NewService(cfg, nil, NewConsumer(nil)); err == nil {
		t.Fatal("expected error for disabled queue")
	}
}

func TestNewServiceNilConsumer(t *testing.T) {
	cfg := &config.QueueConfig{Enabled: true, Host: "127.0.0.1", Port: 6379}
	if _, err := NewService(cfg, nil, nil); err == nil {
		t.Fatal("expected error for nil consumer")
	}
}
