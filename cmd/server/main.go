package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/kwamkid/joolz-factory-sub002/internal/app"
	"github.com/kwamkid/joolz-factory-sub002/internal/config"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiGreen  = "\033[32m"
	ansiCyan   = "\033[36m"
	ansiYellow = "\033[33m"
)

func main() {
	printStartupBanner()

	// 加载 .env（如果存在）与配置
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if strings.TrimSpace(cfg.Identity.VerifyURL) == "" {
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("identity.verify_url 未配置，生产环境必须指向身份网关校验接口")
		}
		stdLog.Printf("警告: identity.verify_url 未配置，所有请求都会被拒绝")
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 初始化默认门店
	if err := models.InitDefaultBranch(os.Getenv("JOOLZ_DEFAULT_BRANCH_NAME")); err != nil {
		stdLog.Printf("警告: 初始化默认门店失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiYellow + "╔══════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiYellow + "║        🍊 Joolz Factory API 启动中        ║" + ansiReset)
	fmt.Println(ansiYellow + "╚══════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiCyan + "     ██╗ ██████╗  ██████╗ ██╗     ███████╗" + ansiReset)
	fmt.Println(ansiCyan + "     ██║██╔═══██╗██╔═══██╗██║     ╚══███╔╝" + ansiReset)
	fmt.Println(ansiCyan + "     ██║██║   ██║██║   ██║██║       ███╔╝ " + ansiReset)
	fmt.Println(ansiCyan + "██   ██║██║   ██║██║   ██║██║      ███╔╝  " + ansiReset)
	fmt.Println(ansiCyan + "╚█████╔╝╚██████╔╝╚██████╔╝███████╗███████╗" + ansiReset)
	fmt.Println(ansiCyan + " ╚════╝  ╚═════╝  ╚═════╝ ╚══════╝╚══════╝" + ansiReset)
	fmt.Println(ansiGreen + "Fresh juice order & production back office" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
