package router

import (
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/config"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/api"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := api.New(c)

	// 中间件
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered interface{}) {
		logger.Errorw("panic_recovered",
			"request_id", getRequestID(ctx),
			"path", ctx.Request.URL.Path,
			"panic", recovered,
		)
		response.InternalError(ctx)
		ctx.Abort()
	}))
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 健康检查（无需鉴权）
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// 业务接口统一走网关鉴权
	cacheTTL := time.Duration(cfg.Identity.CacheTTLSeconds) * time.Second
	apiGroup := r.Group("/api")
	apiGroup.Use(AuthMiddleware(c.Verifier, cacheTTL))
	{
		// 订单
		apiGroup.POST("/orders", handler.CreateOrder)
		apiGroup.GET("/orders", handler.ListOrders)
		apiGroup.GET("/orders/by-number/:orderNumber", handler.GetOrderByNumber)
		apiGroup.GET("/orders/:id", handler.GetOrder)
		apiGroup.PUT("/orders/:id", handler.UpdateOrder)
		apiGroup.PATCH("/orders/:id/status", handler.UpdateOrderStatus)
		apiGroup.POST("/orders/:id/cancel", handler.CancelOrder)

		// 客户与跟进
		apiGroup.GET("/customers/followups", handler.ListFollowUps)
		apiGroup.GET("/customers", handler.ListCustomers)
		apiGroup.POST("/customers", handler.CreateCustomer)
		apiGroup.GET("/customers/:id", handler.GetCustomer)
		apiGroup.PUT("/customers/:id", handler.UpdateCustomer)
		apiGroup.GET("/customers/:id/orders", handler.ListCustomerOrders)
		apiGroup.GET("/customers/:id/followup", handler.GetCustomerFollowUp)
		apiGroup.GET("/customers/:id/aging", handler.GetCustomerAging)
		apiGroup.POST("/customers/:id/chat-contact", handler.LinkChatContact)
		apiGroup.DELETE("/customers/:id/chat-contact", handler.UnlinkChatContact)
		apiGroup.GET("/customers/:id/addresses", handler.ListAddresses)
		apiGroup.POST("/customers/:id/addresses", handler.CreateAddress)
		apiGroup.PUT("/customers/:id/addresses/:addressId", handler.UpdateAddress)
		apiGroup.DELETE("/customers/:id/addresses/:addressId", handler.DeleteAddress)

		// 应收账龄
		apiGroup.GET("/payments/aging", handler.ListAging)

		// 商品
		apiGroup.GET("/products", handler.ListProducts)
		apiGroup.POST("/products", handler.CreateProduct)
		apiGroup.GET("/products/:id", handler.GetProduct)
		apiGroup.PUT("/products/:id", handler.UpdateProduct)
		apiGroup.DELETE("/products/:id", handler.DeleteProduct)
		apiGroup.GET("/products/:id/variations", handler.ListVariations)

		// 生产批次
		apiGroup.GET("/batches", handler.ListBatches)
		apiGroup.POST("/batches", handler.CreateBatch)
		apiGroup.GET("/batches/:id", handler.GetBatch)
		apiGroup.PUT("/batches/:id", handler.UpdateBatch)
		apiGroup.POST("/batches/:id/start", handler.StartBatch)
		apiGroup.POST("/batches/:id/complete", handler.CompleteBatch)
		apiGroup.POST("/batches/:id/cancel", handler.CancelBatch)

		// 库存
		apiGroup.POST("/stock/transactions", handler.RecordStockTransaction)
		apiGroup.GET("/stock/transactions", handler.ListStockTransactions)
		apiGroup.GET("/stock/alerts", handler.ListStockAlerts)

		// 分店
		apiGroup.GET("/branches", handler.ListBranches)
		apiGroup.POST("/branches", handler.CreateBranch)
		apiGroup.GET("/branches/:id", handler.GetBranch)
		apiGroup.PUT("/branches/:id", handler.UpdateBranch)
	}

	return r
}
