package app

import (
	"errors"
	"fmt"

	"github.com/kwamkid/joolz-factory-sub002/internal/config"
	"github.com/kwamkid/joolz-factory-sub002/internal/provider"
	"github.com/kwamkid/joolz-factory-sub002/internal/router"
	"github.com/kwamkid/joolz-factory-sub002/internal/worker"
)

// BuildRunner 按启动模式组装服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !validMode(mode) {
		return nil, fmt.Errorf("unknown run mode: %q", mode)
	}

	container := provider.NewContainer(cfg)

	var services []Service
	if mode != ModeWorker {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Host+":"+cfg.Server.Port, engine))
	}
	if mode != ModeAPI {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, &cfg.Stock, consumer)
		if err != nil {
			return nil, fmt.Errorf("build worker service: %w", err)
		}
		services = append(services, workerService)
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode,
	)
	return RunWithOptions(runner, opts)
}
